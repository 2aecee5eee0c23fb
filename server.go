package visux

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ghetzel/go-stockutil/httputil"
	"github.com/husobee/vestigo"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"
)

var DefaultAllowedOrigin = `*`

type Server struct {
	router        *vestigo.Router
	graphs        *GraphManager
	datasets      *DatasetStore
	AllowedOrigin string
}

// graphCommand is the request body of PUT /graphs/:id/:action.
type graphCommand struct {
	Color   string       `json:"color"`
	Axis    string       `json:"axis"`
	Feature string       `json:"feature"`
	Type    string       `json:"type"`
	Min     int          `json:"min"`
	Max     int          `json:"max"`
	Points  []CurvePoint `json:"points"`
}

// NewServer exposes the graph registry over HTTP. The dataset store is
// optional; without it graphs must be created with an inline dataset.
func NewServer(graphs *GraphManager, datasets *DatasetStore) *Server {
	server := &Server{
		router:        vestigo.NewRouter(),
		graphs:        graphs,
		datasets:      datasets,
		AllowedOrigin: DefaultAllowedOrigin,
	}

	router := server.router

	router.Get(`/metrics`, promhttp.Handler().ServeHTTP)

	router.Get(`/charts`, func(w http.ResponseWriter, req *http.Request) {
		respond(w, graphs.Catalog().Categories())
	})

	router.Get(`/datasets`, func(w http.ResponseWriter, req *http.Request) {
		if store, ok := server.store(w); ok {
			if names, err := store.GetNames(httputil.Q(req, `filter`, `**`)); err == nil {
				respond(w, names)
			} else {
				respond(w, err)
			}
		}
	})

	router.Get(`/datasets/:id`, func(w http.ResponseWriter, req *http.Request) {
		if store, ok := server.store(w); ok {
			if records, err := store.Get(vestigo.Param(req, `id`)); err == nil {
				respond(w, records)
			} else {
				respond(w, err)
			}
		}
	})

	router.Put(`/datasets/:id`, func(w http.ResponseWriter, req *http.Request) {
		if store, ok := server.store(w); ok {
			var records RecordSet

			if err := decode(req, &records); err != nil {
				respond(w, err)
				return
			}

			id := vestigo.Param(req, `id`)

			if err := store.Put(id, &records); err == nil {
				respond(w, map[string]interface{}{
					`id`:       id,
					`features`: records.Features,
					`rows`:     len(records.Records),
				}, http.StatusCreated)
			} else {
				respond(w, err)
			}
		}
	})

	router.Delete(`/datasets/:id`, func(w http.ResponseWriter, req *http.Request) {
		if store, ok := server.store(w); ok {
			if n, err := store.Remove(vestigo.Param(req, `id`)); err != nil {
				respond(w, err)
			} else if n == 0 {
				respond(w, errors.Wrapf(ErrNotFound, "dataset %q", vestigo.Param(req, `id`)))
			} else {
				w.WriteHeader(http.StatusNoContent)
			}
		}
	})

	router.Get(`/graphs`, func(w http.ResponseWriter, req *http.Request) {
		snapshots := make([]*GraphSnapshot, 0)

		for _, graph := range graphs.GetAllGraphs() {
			if snapshot, err := graphs.Snapshot(graph.GetID()); err == nil {
				snapshots = append(snapshots, snapshot)
			}
		}

		respond(w, snapshots)
	})

	router.Post(`/graphs`, func(w http.ResponseWriter, req *http.Request) {
		var info GraphInfo

		if err := decode(req, &info); err != nil {
			respond(w, err)
			return
		}

		if info.Dataset == nil && info.DatasetID != `` && server.datasets != nil {
			if records, err := server.datasets.Get(info.DatasetID); err == nil {
				info.Dataset = records
			} else {
				respond(w, err)
				return
			}
		}

		if graph, err := graphs.CreateGraph(info); err == nil {
			if snapshot, err := graphs.Snapshot(graph.GetID()); err == nil {
				respond(w, snapshot, http.StatusCreated)
			} else {
				respond(w, err)
			}
		} else {
			respond(w, err)
		}
	})

	router.Get(`/graphs/:id`, func(w http.ResponseWriter, req *http.Request) {
		if snapshot, err := graphs.Snapshot(vestigo.Param(req, `id`)); err == nil {
			respond(w, snapshot)
		} else {
			respond(w, err)
		}
	})

	router.Delete(`/graphs/:id`, func(w http.ResponseWriter, req *http.Request) {
		if err := graphs.DeleteGraph(vestigo.Param(req, `id`)); err == nil {
			w.WriteHeader(http.StatusNoContent)
		} else {
			respond(w, err)
		}
	})

	router.Get(`/graphs/:id/:action`, func(w http.ResponseWriter, req *http.Request) {
		id := vestigo.Param(req, `id`)

		switch vestigo.Param(req, `action`) {
		case `render`:
			server.render(w, req, id)
		case `summary`:
			var reducers []string

			if v := httputil.Q(req, `fn`); v != `` {
				reducers = strings.Split(v, `,`)
			}

			if summary, err := graphs.Summarize(id, reducers...); err == nil {
				respond(w, summary)
			} else {
				respond(w, err)
			}
		default:
			respond(w, `Not Found`, http.StatusNotFound)
		}
	})

	router.Put(`/graphs/:id/:action`, func(w http.ResponseWriter, req *http.Request) {
		var command graphCommand
		var err error

		id := vestigo.Param(req, `id`)
		action := vestigo.Param(req, `action`)

		if action != `visibility` {
			if err := decode(req, &command); err != nil {
				respond(w, err)
				return
			}
		}

		switch action {
		case `color`:
			err = graphs.ChangeGraphColor(id, command.Color)
		case `axis`:
			err = graphs.ChangeAxis(id, command.Axis, command.Feature)
		case `type`:
			err = graphs.ChangeType(id, command.Type)
		case `visibility`:
			err = graphs.ChangeVisibility(id)
		case `curve`:
			err = graphs.ApplyCurveFitting(id, command.Points)
		case `exclude`:
			err = graphs.ExcludeRangeFromGraph(id, command.Min, command.Max)
		case `restore`:
			err = graphs.RestoreRangeToGraph(id, command.Min, command.Max)
		case `yaxis`:
			err = graphs.AddMoreYAxis(id, command.Feature)
		default:
			respond(w, `Not Found`, http.StatusNotFound)
			return
		}

		if err != nil {
			respond(w, err)
		} else if snapshot, err := graphs.Snapshot(id); err == nil {
			respond(w, snapshot)
		} else {
			respond(w, err)
		}
	})

	// DELETE /graphs/:id/yaxis/:feature
	router.Delete(`/graphs/:id/:action/:feature`, func(w http.ResponseWriter, req *http.Request) {
		id := vestigo.Param(req, `id`)

		if vestigo.Param(req, `action`) != `yaxis` {
			respond(w, `Not Found`, http.StatusNotFound)
			return
		}

		if err := graphs.RemoveMoreYAxis(id, vestigo.Param(req, `feature`)); err != nil {
			respond(w, err)
		} else if snapshot, err := graphs.Snapshot(id); err == nil {
			respond(w, snapshot)
		} else {
			respond(w, err)
		}
	})

	return server
}

func (self *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set(`Access-Control-Allow-Origin`, self.AllowedOrigin)
	w.Header().Set(`Access-Control-Allow-Methods`, `GET, POST, PUT, DELETE, OPTIONS`)
	w.Header().Set(`Access-Control-Allow-Headers`, `Content-Type, Authorization`)
	w.Header().Set(`Access-Control-Max-Age`, `3600`)

	if req.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	self.router.ServeHTTP(w, req)
}

func (self *Server) store(w http.ResponseWriter) (*DatasetStore, bool) {
	if self.datasets == nil {
		respond(w, errors.New(`no dataset store configured`), http.StatusServiceUnavailable)
		return nil, false
	}

	return self.datasets, true
}

func (self *Server) render(w http.ResponseWriter, req *http.Request, id string) {
	format := RenderFormat(httputil.Q(req, `format`, string(RenderFormatJSON)))

	switch format {
	case RenderFormatJSON, RenderFormatYAML:
		figure, err := self.graphs.Visualize(id)

		if err != nil {
			respond(w, err)
			return
		}

		if format == RenderFormatJSON {
			respond(w, figure)
		} else if data, err := yaml.Marshal(figure); err == nil {
			w.Header().Set(`Content-Type`, format.ContentType())
			w.Write(data)
		} else {
			respond(w, err)
		}

	case RenderFormatPNG, RenderFormatSVG:
		options := GraphOptions{
			Title:  httputil.Q(req, `title`),
			Width:  int(httputil.QInt(req, `width`)),
			Height: int(httputil.QInt(req, `height`)),
			DPI:    httputil.QFloat(req, `dpi`, DefaultDPI),
		}

		w.Header().Set(`Content-Type`, format.ContentType())

		if err := self.graphs.Render(id, w, format, options); err != nil {
			w.Header().Set(`Content-Type`, `application/json`)
			respond(w, err)
		}

	default:
		respond(w, errors.Wrapf(ErrUnsupportedRender, "format %q", format))
	}
}

func decode(req *http.Request, into interface{}) error {
	if err := json.NewDecoder(req.Body).Decode(into); err != nil {
		return errors.Wrapf(ErrValidation, "malformed request body: %v", err)
	}

	return nil
}

func statusFor(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsValidationError(err), errors.Is(err, ErrUnsupportedRender):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, data interface{}, code ...int) {
	w.Header().Set(`Content-Type`, `application/json`)

	if err, ok := data.(error); ok {
		data = map[string]interface{}{
			`error`: err.Error(),
		}

		if len(code) == 0 || code[0] < 400 {
			code = []int{statusFor(err)}
		}
	}

	if output, err := json.MarshalIndent(data, ``, `  `); err == nil {
		if len(code) > 0 {
			w.WriteHeader(code[0])
		}

		w.Write(output)
	} else {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
