package visux

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2"
)

type Palette []string

func (self Palette) Get(index int) string {
	if len(self) == 0 {
		return ``
	}

	return `#` + strings.TrimPrefix(self[index%len(self)], `#`)
}

// Colors returns n colors, cycling through the palette.
func (self Palette) Colors(n int) []string {
	if len(self) == 0 || n <= 0 {
		return nil
	}

	colors := make([]string, n)

	for i := range colors {
		colors[i] = self.Get(i)
	}

	return colors
}

// Styles builds one go-chart style per palette color.
func (self Palette) Styles(each func(style *chart.Style)) []chart.Style {
	styles := make([]chart.Style, len(self))

	for i := range self {
		color := parseColor(self.Get(i))
		style := chart.Style{
			StrokeColor: color,
			FillColor:   color,
		}

		if each != nil {
			each(&style)
		}

		styles[i] = style
	}

	return styles
}

// GetPalette resolves a palette by name; any other non-empty value is read as
// a comma-separated list of colors.
func GetPalette(name string) Palette {
	switch name {
	case ``:
		return nil
	case `slices`:
		return PaletteSlices
	case `spectrum14`:
		return PaletteSpectrum14
	case `classic9`:
		return PaletteClassic9
	case `munin`:
		return PaletteMunin
	default:
		return Palette(strings.Split(name, `,`))
	}
}

var PaletteSlices = Palette{
	`FF7F0E`, `1F77B4`, `2CA02C`, `D62728`, `9467BD`,
}

var PaletteSpectrum14 = Palette{
	`387aa3`, `649eb9`, `9dc2d3`, `a888c2`, `d8aad6`,
	`e7cbe6`, `a1d05d`, `bbe468`, `d2ed82`, `716c49`,
	`92875a`, `b2a470`, `dc8f70`, `ecb796`,
}

var PaletteClassic9 = Palette{
	`2f254a`, `491d37`, `7c2626`, `963b20`, `7d5836`,
	`c5a32f`, `ddcb53`, `a2b73c`, `848f39`, `4a6860`,
	`423d4f`,
}

var PaletteMunin = Palette{
	`00cc00`, `0066b3`, `ff8000`, `ffcc00`, `330099`,
	`990099`, `ccff00`, `ff0000`, `808080`, `008f00`,
	`00487d`, `b35a00`, `b38f00`, `6b006b`, `8fb300`,
	`b30000`, `bebebe`, `80ff80`, `80c9ff`, `ffc080`,
	`ffe680`, `aa80ff`, `ee00cc`, `ff8080`, `666600`,
	`ffbfff`, `00ffcc`, `cc6699`, `999900`,
}
