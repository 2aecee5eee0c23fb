package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/urfave/cli"
	"github.com/visux/visux"
	"gopkg.in/yaml.v3"
)

var DefaultDatabase = `visux.db`
var DefaultAddress = `127.0.0.1:8118`
var DefaultRenderFormat = `json`
var log = logging.MustGetLogger(`main`)

func main() {
	// a missing .env is fine
	godotenv.Load()

	app := cli.NewApp()
	app.Name = `visux`
	app.Usage = `Turn tabular datasets into chart figures and images.`
	app.Version = `0.1.0`
	app.EnableBashCompletion = false

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   `log-level, L`,
			Usage:  `Level of log output verbosity`,
			Value:  `info`,
			EnvVar: `LOGLEVEL`,
		},
		cli.StringFlag{
			Name:   `db, d`,
			Usage:  `Path of the dataset database`,
			Value:  DefaultDatabase,
			EnvVar: `VISUX_DB`,
		},
		cli.StringFlag{
			Name:   `palette, P`,
			Usage:  `Palette used to color new graphs (slices, spectrum14, classic9, munin, or a comma-separated list of hex colors)`,
			EnvVar: `VISUX_PALETTE`,
		},
	}

	app.Before = func(c *cli.Context) error {
		logging.SetFormatter(logging.MustStringFormatter(`%{color}%{level:.4s}%{color:reset}[%{id:04d}] %{message}`))

		if level, err := logging.LogLevel(c.String(`log-level`)); err == nil {
			logging.SetLevel(level, ``)
		} else {
			return err
		}

		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:  `serve`,
			Usage: `Serve the graph API over HTTP.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   `address, a`,
					Usage:  `Address to listen on`,
					Value:  DefaultAddress,
					EnvVar: `VISUX_ADDRESS`,
				},
				cli.StringFlag{
					Name:   `cors-origin`,
					Usage:  `Value of the Access-Control-Allow-Origin header`,
					Value:  visux.DefaultAllowedOrigin,
					EnvVar: `VISUX_CORS_ORIGIN`,
				},
			},
			Action: func(c *cli.Context) {
				store := openStore(c)
				defer store.Close()

				manager := visux.Initialize(managerOptions(c)...)
				defer visux.Cleanup()

				manager.OnChange(func(event visux.Event) {
					log.Debugf("%s: %s", event.Type, event.GraphID)
				})

				server := visux.NewServer(manager, store)
				server.AllowedOrigin = c.String(`cors-origin`)

				log.Noticef("Listening on %s", c.String(`address`))

				if err := http.ListenAndServe(c.String(`address`), server); err != nil {
					log.Fatalf("Server failed: %v", err)
				}
			},
		}, {
			Name:      `import`,
			ArgsUsage: `FILE [ID]`,
			Usage:     `Import a .csv or .xlsx file as a dataset. The ID defaults to the file name.`,
			Action: func(c *cli.Context) {
				if c.NArg() == 0 {
					log.Fatalf("Must specify a file to import.")
				}

				path := c.Args().First()
				id := c.Args().Get(1)

				if id == `` {
					id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				}

				if records, err := visux.LoadRecordSet(path); err == nil {
					store := openStore(c)
					defer store.Close()

					if err := store.Put(id, records); err == nil {
						log.Noticef("Imported %d rows of %d features as %q", len(records.Records), len(records.Features), id)
					} else {
						log.Fatalf("Failed to store dataset: %v", err)
					}
				} else {
					log.Fatalf("Failed to read %s: %v", path, err)
				}
			},
		}, {
			Name:      `ls`,
			ArgsUsage: `[PATTERN]`,
			Usage:     `List dataset IDs.`,
			Action: func(c *cli.Context) {
				store := openStore(c)
				defer store.Close()

				if names, err := store.GetNames(c.Args().First()); err == nil {
					for _, name := range names {
						fmt.Println(name)
					}
				} else {
					log.Fatalf("Failed to retrieve names: %v", err)
				}
			},
		}, {
			Name:      `rm`,
			ArgsUsage: `PATTERN [PATTERN ..]`,
			Usage:     `Remove datasets.`,
			Action: func(c *cli.Context) {
				if c.NArg() == 0 {
					log.Fatalf("Must specify at least one dataset to remove.")
				}

				store := openStore(c)
				defer store.Close()

				if n, err := store.Remove(c.Args()...); err == nil {
					log.Noticef("Removed %d datasets", n)
				} else {
					log.Fatalf("Failed to remove datasets: %v", err)
				}
			},
		}, {
			Name:      `show`,
			ArgsUsage: `ID`,
			Usage:     `Print a dataset as JSON.`,
			Action: func(c *cli.Context) {
				store := openStore(c)
				defer store.Close()

				if records, err := store.Get(c.Args().First()); err == nil {
					printJSON(records)
				} else {
					log.Fatalf("Failed to load dataset: %v", err)
				}
			},
		}, {
			Name:  `charts`,
			Usage: `List the supported chart types.`,
			Action: func(c *cli.Context) {
				for _, category := range visux.DefaultChartCatalog.Categories() {
					fmt.Println(category.Name)

					for _, info := range category.Charts {
						fmt.Printf("  %-14s %-16s %d features\n", info.Type, info.Name, info.RequiredFeatures)
					}
				}
			},
		}, {
			Name:      `render`,
			ArgsUsage: `ID`,
			Usage:     `Build a graph from a stored dataset and write it to standard output.`,
			Flags: graphFlags(cli.StringFlag{
				Name:  `format, f`,
				Usage: `Output format (json, yaml, png, svg)`,
				Value: DefaultRenderFormat,
			}, cli.StringFlag{
				Name:  `title, T`,
				Usage: `The title of the image.`,
			}),
			Action: func(c *cli.Context) {
				manager, graph := buildGraph(c)
				defer manager.Reset()

				switch format := visux.RenderFormat(c.String(`format`)); format {
				case visux.RenderFormatJSON, visux.RenderFormatYAML:
					if figure, err := manager.Visualize(graph.GetID()); err == nil {
						if format == visux.RenderFormatJSON {
							printJSON(figure)
						} else if data, err := yaml.Marshal(figure); err == nil {
							os.Stdout.Write(data)
						} else {
							log.Fatal(err)
						}
					} else {
						log.Fatalf("Visualization failed: %v", err)
					}
				default:
					options := visux.GraphOptions{
						Title: c.String(`title`),
					}

					if err := manager.Render(graph.GetID(), os.Stdout, format, options); err != nil {
						log.Fatalf("Graph render error: %v", err)
					}
				}
			},
		}, {
			Name:      `summary`,
			ArgsUsage: `ID`,
			Usage:     `Print statistics for the selected features of a stored dataset.`,
			Flags: graphFlags(cli.StringFlag{
				Name:  `fn`,
				Usage: `Comma-separated list of reducers`,
			}),
			Action: func(c *cli.Context) {
				manager, graph := buildGraph(c)
				defer manager.Reset()

				var reducers []string

				if v := c.String(`fn`); v != `` {
					reducers = strings.Split(v, `,`)
				}

				if summary, err := manager.Summarize(graph.GetID(), reducers...); err == nil {
					printJSON(summary)
				} else {
					log.Fatalf("Summary failed: %v", err)
				}
			},
		},
	}

	app.Run(os.Args)
}

func graphFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		cli.StringFlag{
			Name:  `type, t`,
			Usage: `Chart type`,
			Value: `scatter`,
		},
		cli.StringFlag{
			Name:  `features, F`,
			Usage: `Comma-separated features to plot, in axis order`,
		},
		cli.StringFlag{
			Name:  `color, c`,
			Usage: `Graph color`,
		},
		cli.StringFlag{
			Name:  `exclude, x`,
			Usage: `Exclude a range of rows, as MIN:MAX (1-based, inclusive)`,
		},
	}, extra...)
}

func buildGraph(c *cli.Context) (*visux.GraphManager, *visux.Graph) {
	if c.NArg() == 0 {
		log.Fatalf("Must specify a dataset ID.")
	}

	store := openStore(c)
	records, err := store.Get(c.Args().First())
	store.Close()

	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	manager := visux.NewGraphManager(managerOptions(c)...)
	info := visux.GraphInfo{
		DatasetID: c.Args().First(),
		GraphType: c.String(`type`),
		Dataset:   records,
	}

	if v := c.String(`features`); v != `` {
		info.SelectedFeatures = strings.Split(v, `,`)
	}

	graph, err := manager.CreateGraph(info)

	if err != nil {
		log.Fatalf("Failed to create graph: %v", err)
	}

	if v := c.String(`color`); v != `` {
		if err := manager.ChangeGraphColor(graph.GetID(), v); err != nil {
			log.Fatal(err)
		}
	}

	if v := c.String(`exclude`); v != `` {
		var min, max int

		if _, err := fmt.Sscanf(v, "%d:%d", &min, &max); err != nil {
			log.Fatalf("Invalid range %q: %v", v, err)
		}

		if err := manager.ExcludeRangeFromGraph(graph.GetID(), min, max); err != nil {
			log.Fatal(err)
		}
	}

	return manager, graph
}

func managerOptions(c *cli.Context) []visux.ManagerOption {
	options := make([]visux.ManagerOption, 0)

	if v := c.GlobalString(`palette`); v != `` {
		options = append(options, visux.WithPalette(visux.GetPalette(v)))
	}

	return options
}

func openStore(c *cli.Context) *visux.DatasetStore {
	if store, err := visux.OpenDatasetStore(c.GlobalString(`db`)); err == nil {
		return store
	} else {
		log.Fatalf("Failed to open dataset database: %v", err)
		return nil
	}
}

func printJSON(data interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent(``, `  `)

	if err := enc.Encode(data); err != nil {
		log.Fatal(err)
	}
}
