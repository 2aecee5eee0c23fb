package visux

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
)

var DefaultDPI float64 = 72.0

type RenderFormat string

const (
	RenderFormatJSON RenderFormat = `json`
	RenderFormatYAML RenderFormat = `yaml`
	RenderFormatPNG  RenderFormat = `png`
	RenderFormatSVG  RenderFormat = `svg`
)

type GraphOptions struct {
	Title  string  `json:"title"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	DPI    float64 `json:"dpi"`
}

func (self RenderFormat) ContentType() string {
	switch self {
	case RenderFormatPNG:
		return `image/png`
	case RenderFormatSVG:
		return `image/svg+xml`
	case RenderFormatYAML:
		return `application/yaml`
	default:
		return `application/json`
	}
}

// Render draws the graph's shown datapoints as a PNG or SVG image. Polar,
// 3-D and heatmap graphs only exist as figures and cannot be rendered here.
func (self *Graph) Render(w io.Writer, format RenderFormat, options GraphOptions) error {
	var renderProvider chart.RendererProvider

	switch format {
	case RenderFormatPNG:
		renderProvider = chart.PNG
	case RenderFormatSVG:
		renderProvider = chart.SVG
	default:
		return errors.Wrapf(ErrUnsupportedRender, "format %q", format)
	}

	columns, err := extractColumns(self.dataset, self.selectedFeatures)

	if err != nil {
		return err
	}

	columns = filterColumns(columns, self.isShown())

	if options.Title == `` {
		options.Title = self.name
	}

	if options.Width <= 0 {
		options.Width = self.style.LayoutSize.Width
	}

	if options.Height <= 0 {
		options.Height = self.style.LayoutSize.Height
	}

	if options.DPI <= 0 {
		options.DPI = DefaultDPI
	}

	var renderable chartRenderer

	switch self.chartType {
	case `scatter`, `line`, `area`:
		renderable, err = self.continuousChart(columns, options)
	case `bar`:
		renderable, err = self.barChart(columns, options)
	case `pie`:
		renderable, err = self.pieChart(columns, options)
	default:
		return errors.Wrapf(ErrUnsupportedRender, "%q", self.chartType)
	}

	if err != nil {
		return err
	}

	return writeChart(w, renderable, renderProvider)
}

type chartRenderer interface {
	Render(chart.RendererProvider, io.Writer) error
}

// writeChart renders into memory first; go-chart emits part of the image
// before it notices bad input, and nothing may reach w in that case.
func writeChart(w io.Writer, renderable chartRenderer, provider chart.RendererProvider) error {
	var buf bytes.Buffer

	if err := renderable.Render(provider, &buf); err != nil {
		return errors.Wrapf(ErrValidation, "cannot draw chart: %v", err)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func (self *Graph) seriesStyle() chart.Style {
	switch self.chartType {
	case `scatter`:
		return self.style.MarkerChartStyle()
	case `area`:
		return self.style.FillChartStyle()
	default:
		style := self.style.ChartStyle()
		style.DotWidth = float64(self.style.MarkerStyle.Size) / 2
		return style
	}
}

func (self *Graph) continuousChart(columns [][]interface{}, options GraphOptions) (*chart.Chart, error) {
	if len(columns) < 2 {
		return nil, errors.Wrapf(ErrValidation, "%s needs 2 features", self.chartType)
	}

	x, y, err := toFloatPairs(self.selectedFeatures[0], columns[0], self.selectedFeatures[1], columns[1])

	if err != nil {
		return nil, err
	} else if len(x) < 2 {
		return nil, errors.Wrapf(ErrValidation, "%s needs at least 2 shown datapoints, have %d", self.chartType, len(x))
	}

	graph := &chart.Chart{
		Title:  options.Title,
		Width:  options.Width,
		Height: options.Height,
		DPI:    options.DPI,
		Background: chart.Style{
			FillColor: parseColor(self.style.BackgroundColor),
		},
		XAxis: chart.XAxis{
			Name: self.selectedFeatures[0],
		},
		YAxis: chart.YAxis{
			Name: self.selectedFeatures[1],
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    self.selectedFeatures[1],
				Style:   self.seriesStyle(),
				XValues: x,
				YValues: y,
			},
		},
	}

	shown := self.isShown()
	xColumn := columns[0]
	extraStyles := PaletteSpectrum14.Styles(func(style *chart.Style) {
		style.StrokeWidth = self.style.LineStyle.Width
		style.FillColor = style.FillColor.WithAlpha(0)
	})

	for i, feature := range self.moreYAxes {
		if column, err := extractColumns(self.dataset, []string{feature}); err == nil {
			if xs, ys, err := toFloatPairs(self.selectedFeatures[0], xColumn, feature, filterColumns(column, shown)[0]); err == nil {
				graph.Series = append(graph.Series, chart.ContinuousSeries{
					Name:    feature,
					Style:   extraStyles[i%len(extraStyles)],
					XValues: xs,
					YValues: ys,
				})
			} else {
				log.Warningf("graph %s: skipping extra y axis: %v", self.id, err)
			}
		} else {
			log.Warningf("graph %s: skipping extra y axis: %v", self.id, err)
		}
	}

	if len(self.fittedCurve) > 0 {
		curve := chart.ContinuousSeries{
			Name: FittedCurveName,
			Style: chart.Style{
				StrokeColor: parseColor(FittedCurveColor),
				StrokeWidth: 2,
			},
			XValues: make([]float64, len(self.fittedCurve)),
			YValues: make([]float64, len(self.fittedCurve)),
		}

		for i, point := range self.fittedCurve {
			curve.XValues[i] = point.X
			curve.YValues[i] = point.Y
		}

		graph.Series = append(graph.Series, curve)
	}

	return graph, nil
}

func (self *Graph) barChart(columns [][]interface{}, options GraphOptions) (*chart.BarChart, error) {
	if len(columns) < 2 {
		return nil, errors.Wrap(ErrValidation, `bar needs 2 features`)
	}

	style := self.style.ChartStyle()
	style.FillColor = style.StrokeColor
	bars := make([]chart.Value, 0, len(columns[1]))

	for i, cell := range columns[1] {
		if isBlank(cell) {
			continue
		}

		if value, err := toFloat(self.selectedFeatures[1], i, cell); err == nil {
			bars = append(bars, chart.Value{
				Label: fmt.Sprintf("%v", columns[0][i]),
				Value: value,
				Style: style,
			})
		} else {
			return nil, err
		}
	}

	if len(bars) == 0 {
		return nil, errors.Wrap(ErrValidation, `bar has no shown datapoints`)
	}

	return &chart.BarChart{
		Title:  options.Title,
		Width:  options.Width,
		Height: options.Height,
		DPI:    options.DPI,
		Background: chart.Style{
			FillColor: parseColor(self.style.BackgroundColor),
		},
		Bars: bars,
	}, nil
}

func (self *Graph) pieChart(columns [][]interface{}, options GraphOptions) (*chart.PieChart, error) {
	if len(columns) < 1 {
		return nil, errors.Wrap(ErrValidation, `pie needs 1 feature`)
	}

	styles := PaletteSlices.Styles(nil)
	slices := make([]chart.Value, 0, len(columns[0]))

	for i, cell := range columns[0] {
		if isBlank(cell) {
			continue
		}

		if value, err := toFloat(self.selectedFeatures[0], i, cell); err == nil {
			slices = append(slices, chart.Value{
				Label: fmt.Sprintf("%v", cell),
				Value: value,
				Style: styles[len(slices)%len(styles)],
			})
		} else {
			return nil, err
		}
	}

	if len(slices) == 0 {
		return nil, errors.Wrap(ErrValidation, `pie has no shown datapoints`)
	}

	return &chart.PieChart{
		Title:  options.Title,
		Width:  options.Width,
		Height: options.Height,
		DPI:    options.DPI,
		Background: chart.Style{
			FillColor: parseColor(self.style.BackgroundColor),
		},
		Values: slices,
	}, nil
}
