package visux

import (
	"sort"

	"github.com/pkg/errors"
)

var FittedCurveName = `Fitted Curve`
var FittedCurveColor = `red`

type Marker struct {
	Color  string   `json:"color,omitempty" yaml:"color,omitempty"`
	Colors []string `json:"colors,omitempty" yaml:"colors,omitempty"`
	Size   int      `json:"size,omitempty" yaml:"size,omitempty"`
	Symbol string   `json:"symbol,omitempty" yaml:"symbol,omitempty"`
}

type Line struct {
	Color string  `json:"color,omitempty" yaml:"color,omitempty"`
	Width float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Dash  string  `json:"dash,omitempty" yaml:"dash,omitempty"`
}

// Trace is one renderable series, using the plotting library's field names.
// Data arrays a chart type does not use are nil and left out of the JSON; an
// empty array is still written when every row is excluded.
type Trace struct {
	Type       string        `json:"type" yaml:"type"`
	Mode       string        `json:"mode,omitempty" yaml:"mode,omitempty"`
	Name       string        `json:"name,omitempty" yaml:"name,omitempty"`
	X          []interface{} `json:"x,omitzero" yaml:"x,omitempty"`
	Y          []interface{} `json:"y,omitzero" yaml:"y,omitempty"`
	Z          []interface{} `json:"z,omitzero" yaml:"z,omitempty"`
	R          []interface{} `json:"r,omitzero" yaml:"r,omitempty"`
	Theta      []interface{} `json:"theta,omitzero" yaml:"theta,omitempty"`
	Labels     []interface{} `json:"labels,omitzero" yaml:"labels,omitempty"`
	Values     []interface{} `json:"values,omitzero" yaml:"values,omitempty"`
	Fill       string        `json:"fill,omitempty" yaml:"fill,omitempty"`
	Colorscale string        `json:"colorscale,omitempty" yaml:"colorscale,omitempty"`
	Hole       float64       `json:"hole,omitempty" yaml:"hole,omitempty"`
	Marker     *Marker       `json:"marker,omitempty" yaml:"marker,omitempty"`
	Line       *Line         `json:"line,omitempty" yaml:"line,omitempty"`
}

type Axis struct {
	Title         string `json:"title" yaml:"title"`
	GridColor     string `json:"gridcolor" yaml:"gridcolor"`
	ZeroLineColor string `json:"zerolinecolor" yaml:"zerolinecolor"`
}

type Margin struct {
	L int `json:"l" yaml:"l"`
	R int `json:"r" yaml:"r"`
	T int `json:"t" yaml:"t"`
	B int `json:"b" yaml:"b"`
}

type Layout struct {
	XAxis        *Axis  `json:"xaxis" yaml:"xaxis"`
	YAxis        *Axis  `json:"yaxis,omitempty" yaml:"yaxis,omitempty"`
	ZAxis        *Axis  `json:"zaxis,omitempty" yaml:"zaxis,omitempty"`
	PlotBgColor  string `json:"plot_bgcolor" yaml:"plot_bgcolor"`
	PaperBgColor string `json:"paper_bgcolor" yaml:"paper_bgcolor"`
	Margin       Margin `json:"margin" yaml:"margin"`
}

// Figure is a chart specification ready to hand to the plotting library.
type Figure struct {
	Data   []*Trace `json:"data" yaml:"data"`
	Layout *Layout  `json:"layout" yaml:"layout"`
}

type traceBuilder func(columns [][]interface{}, style *GraphStyle) *Trace

type chartHandler struct {
	features  int
	cartesian bool
	build     traceBuilder
}

var chartHandlers = map[string]chartHandler{
	`scatter`:      {features: 2, cartesian: true, build: scatterTrace},
	`bar`:          {features: 2, cartesian: true, build: barTrace},
	`line`:         {features: 2, cartesian: true, build: lineTrace},
	`area`:         {features: 2, cartesian: true, build: areaTrace},
	`scatterpolar`: {features: 2, build: polarTrace},
	`scatter3d`:    {features: 3, build: scatter3DTrace},
	`heatmap`:      {features: 3, build: heatmapTrace},
	`pie`:          {features: 1, build: pieTrace},
}

// VisualizationManager turns graphs into chart specifications. It holds no
// state besides the catalog it resolves feature counts against.
type VisualizationManager struct {
	catalog *ChartCatalog
}

func NewVisualizationManager(catalog *ChartCatalog) *VisualizationManager {
	return &VisualizationManager{
		catalog: catalogOrDefault(catalog),
	}
}

func SupportedChartTypes() []string {
	types := make([]string, 0, len(chartHandlers))

	for chartType := range chartHandlers {
		types = append(types, chartType)
	}

	sort.Strings(types)
	return types
}

func (self *VisualizationManager) GetRequiredFeatures(chartType string) int {
	if chartType == `` {
		log.Errorf("chart type is empty")
		return 0
	}

	if info, ok := self.catalog.Lookup(chartType); ok {
		return info.RequiredFeatures
	}

	log.Warningf("no chart type %q in catalog", chartType)
	return 0
}

// Visualize builds the figure for a graph. Any selected feature that is
// missing or empty invalidates the whole figure.
func (self *VisualizationManager) Visualize(graph *Graph) (*Figure, error) {
	if graph == nil {
		return nil, visualizeFailure(`invalid`, errors.Wrap(ErrValidation, `graph is nil`))
	} else if graph.chartType == `` {
		return nil, visualizeFailure(`invalid`, errors.Wrapf(ErrValidation, "graph %s has no chart type", graph.id))
	} else if graph.dataset == nil {
		return nil, visualizeFailure(`invalid`, errors.Wrapf(ErrValidation, "graph %s has no dataset", graph.id))
	}

	columns, err := extractColumns(graph.dataset, graph.selectedFeatures)

	if err != nil {
		return nil, visualizeFailure(`feature`, errors.Wrapf(err, "graph %s", graph.id))
	}

	handler, ok := chartHandlers[graph.chartType]

	if !ok {
		return nil, visualizeFailure(`unsupported`, errors.Wrapf(ErrUnsupportedChartType, "%q", graph.chartType))
	}

	if len(columns) < handler.features {
		return nil, visualizeFailure(`feature`, errors.Wrapf(
			ErrValidation,
			"%s needs %d features, graph %s selects %d",
			graph.chartType,
			handler.features,
			graph.id,
			len(columns),
		))
	}

	shown := graph.isShown()
	columns = filterColumns(columns, shown)

	figure := &Figure{
		Data: []*Trace{
			handler.build(columns, graph.style),
		},
		Layout: buildLayout(graph.selectedFeatures),
	}

	if handler.cartesian {
		figure.Data = append(figure.Data, extraYTraces(graph, handler, columns[0], shown)...)
	}

	if trace := fittedCurveTrace(graph.fittedCurve); trace != nil {
		figure.Data = append(figure.Data, trace)
	}

	return figure, nil
}

func visualizeFailure(reason string, err error) error {
	visualizeFailures.WithLabelValues(reason).Inc()
	log.Errorf("visualize: %v", err)
	return err
}

func extractColumns(dataset Dataset, features []string) ([][]interface{}, error) {
	columns := make([][]interface{}, len(features))

	for i, feature := range features {
		if column, ok := dataset[feature]; !ok {
			return nil, errors.Wrapf(ErrValidation, "feature %q is not in the dataset", feature)
		} else if len(column) == 0 {
			return nil, errors.Wrapf(ErrValidation, "feature %q is empty", feature)
		} else {
			columns[i] = column
		}
	}

	return columns, nil
}

// filterColumns keeps the values whose 1-based row number is shown.
func filterColumns(columns [][]interface{}, shown map[int]bool) [][]interface{} {
	output := make([][]interface{}, len(columns))

	for c, column := range columns {
		filtered := make([]interface{}, 0, len(column))

		for i, value := range column {
			if shown[i+1] {
				filtered = append(filtered, value)
			}
		}

		output[c] = filtered
	}

	return output
}

func extraYTraces(graph *Graph, handler chartHandler, x []interface{}, shown map[int]bool) []*Trace {
	traces := make([]*Trace, 0, len(graph.moreYAxes))

	for _, feature := range graph.moreYAxes {
		if columns, err := extractColumns(graph.dataset, []string{feature}); err == nil {
			y := filterColumns(columns, shown)[0]
			trace := handler.build([][]interface{}{append(make([]interface{}, 0, len(x)), x...), y}, graph.style)
			trace.Name = feature

			traces = append(traces, trace)
		} else {
			log.Warningf("graph %s: skipping extra y axis: %v", graph.id, err)
		}
	}

	return traces
}

func markerColor(style *GraphStyle, fallback string) string {
	if style != nil && style.MarkerStyle.Color != `` {
		return style.MarkerStyle.Color
	}

	return fallback
}

func markerSize(style *GraphStyle) int {
	if style != nil && style.MarkerStyle.Size > 0 {
		return style.MarkerStyle.Size
	}

	return 8
}

func lineWidth(style *GraphStyle) float64 {
	if style != nil && style.LineStyle.Width > 0 {
		return style.LineStyle.Width
	}

	return 2
}

func scatterTrace(columns [][]interface{}, style *GraphStyle) *Trace {
	return &Trace{
		Type: `scatter`,
		Mode: `markers`,
		X:    columns[0],
		Y:    columns[1],
		Marker: &Marker{
			Color: markerColor(style, `blue`),
			Size:  markerSize(style),
		},
	}
}

func barTrace(columns [][]interface{}, style *GraphStyle) *Trace {
	return &Trace{
		Type: `bar`,
		X:    columns[0],
		Y:    columns[1],
		Marker: &Marker{
			Color: markerColor(style, `blue`),
		},
	}
}

func lineTrace(columns [][]interface{}, style *GraphStyle) *Trace {
	color := markerColor(style, `green`)

	return &Trace{
		Type: `scatter`,
		Mode: `lines+markers`,
		X:    columns[0],
		Y:    columns[1],
		Line: &Line{
			Color: color,
			Width: lineWidth(style),
		},
		Marker: &Marker{
			Color:  color,
			Size:   markerSize(style),
			Symbol: `circle`,
		},
	}
}

func areaTrace(columns [][]interface{}, style *GraphStyle) *Trace {
	return &Trace{
		Type: `scatter`,
		Mode: `lines`,
		Fill: `tozeroy`,
		X:    columns[0],
		Y:    columns[1],
		Line: &Line{
			Color: markerColor(style, `blue`),
			Width: lineWidth(style),
		},
	}
}

func polarTrace(columns [][]interface{}, style *GraphStyle) *Trace {
	return &Trace{
		Type:  `scatterpolar`,
		R:     columns[0],
		Theta: columns[1],
		Marker: &Marker{
			Color: markerColor(style, `purple`),
			Size:  markerSize(style),
		},
	}
}

func scatter3DTrace(columns [][]interface{}, style *GraphStyle) *Trace {
	return &Trace{
		Type: `scatter3d`,
		Mode: `markers`,
		X:    columns[0],
		Y:    columns[1],
		Z:    columns[2],
		Marker: &Marker{
			Color: markerColor(style, `red`),
			Size:  markerSize(style),
		},
	}
}

func heatmapTrace(columns [][]interface{}, style *GraphStyle) *Trace {
	return &Trace{
		Type:       `heatmap`,
		X:          columns[0],
		Y:          columns[1],
		Z:          columns[2],
		Colorscale: `Viridis`,
	}
}

// pie slices take both their labels and their values from the first feature
func pieTrace(columns [][]interface{}, style *GraphStyle) *Trace {
	colors := PaletteSlices.Colors(len(columns[0]))

	if len(colors) > 0 && style != nil && style.MarkerStyle.Color != `` {
		colors[0] = style.MarkerStyle.Color
	}

	return &Trace{
		Type:   `pie`,
		Labels: columns[0],
		Values: columns[0],
		Hole:   0.3,
		Marker: &Marker{
			Colors: colors,
		},
	}
}

func fittedCurveTrace(points []CurvePoint) *Trace {
	if len(points) == 0 {
		return nil
	}

	x := make([]interface{}, len(points))
	y := make([]interface{}, len(points))

	for i, point := range points {
		x[i] = point.X
		y[i] = point.Y
	}

	return &Trace{
		Type: `scatter`,
		Mode: `lines`,
		Name: FittedCurveName,
		X:    x,
		Y:    y,
		Line: &Line{
			Color: FittedCurveColor,
			Width: 2,
		},
	}
}

func axisWithTitle(title string, fallback string) *Axis {
	if title == `` {
		title = fallback
	}

	return &Axis{
		Title:         title,
		GridColor:     `#DDDDDD`,
		ZeroLineColor: `#BBBBBB`,
	}
}

func buildLayout(features []string) *Layout {
	layout := &Layout{
		PlotBgColor:  `rgba(245, 245, 245, 0.9)`,
		PaperBgColor: `white`,
		Margin: Margin{
			L: 50,
			R: 50,
			T: 50,
			B: 50,
		},
	}

	if len(features) > 0 {
		layout.XAxis = axisWithTitle(features[0], `X`)
	} else {
		layout.XAxis = axisWithTitle(``, `X`)
	}

	if len(features) >= 2 {
		layout.YAxis = axisWithTitle(features[1], `Y`)
	}

	if len(features) == 3 {
		layout.ZAxis = axisWithTitle(features[2], `Z`)
	}

	return layout
}
