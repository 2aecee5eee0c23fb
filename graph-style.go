package visux

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var DefaultColorScheme = `#0000FF`
var DefaultBackgroundColor = `#FFFFFF`

type MarkerStyle struct {
	Size  int    `json:"size"`
	Color string `json:"color"`
}

type LineStyle struct {
	Width float64 `json:"width"`
	Dash  string  `json:"dash"`
}

type LayoutSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type GraphStyle struct {
	ColorScheme     string      `json:"color_scheme"`
	MarkerStyle     MarkerStyle `json:"marker_style"`
	LineStyle       LineStyle   `json:"line_style"`
	LayoutSize      LayoutSize  `json:"layout_size"`
	BackgroundColor string      `json:"background_color"`
}

func NewGraphStyle() *GraphStyle {
	return &GraphStyle{
		ColorScheme: DefaultColorScheme,
		MarkerStyle: MarkerStyle{
			Size:  8,
			Color: DefaultColorScheme,
		},
		LineStyle: LineStyle{
			Width: 2,
			Dash:  `solid`,
		},
		LayoutSize: LayoutSize{
			Width:  600,
			Height: 400,
		},
		BackgroundColor: DefaultBackgroundColor,
	}
}

func (self *GraphStyle) SetColorScheme(color string) {
	self.ColorScheme = color
	self.MarkerStyle.Color = color
}

func (self *GraphStyle) ChangeColor(color string) {
	self.SetColorScheme(color)
}

func (self *GraphStyle) GetMarkerStyle() MarkerStyle {
	return self.MarkerStyle
}

// ChartStyle converts the style into a go-chart series style.
func (self *GraphStyle) ChartStyle() chart.Style {
	color := parseColor(self.MarkerStyle.Color)

	style := chart.Style{
		StrokeColor: color,
		StrokeWidth: self.LineStyle.Width,
		DotColor:    color,
	}

	switch self.LineStyle.Dash {
	case `dash`:
		style.StrokeDashArray = []float64{6, 4}
	case `dot`:
		style.StrokeDashArray = []float64{2, 3}
	}

	return style
}

func (self *GraphStyle) MarkerChartStyle() chart.Style {
	color := parseColor(self.MarkerStyle.Color)

	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    float64(self.MarkerStyle.Size) / 2,
		DotColor:    color,
	}
}

func (self *GraphStyle) FillChartStyle() chart.Style {
	style := self.ChartStyle()
	style.FillColor = style.StrokeColor.WithAlpha(64)
	return style
}

// hex colors of any length other than 3 or 6 would make drawing.ColorFromHex
// slice out of range.
func parseColor(value string) drawing.Color {
	value = strings.TrimSpace(value)

	if strings.HasPrefix(value, `#`) {
		switch len(strings.TrimPrefix(value, `#`)) {
		case 3, 6:
			return drawing.ColorFromHex(value)
		default:
			return drawing.ColorTransparent
		}
	}

	return drawing.ParseColor(value)
}
