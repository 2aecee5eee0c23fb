package visux

import (
	"sync"
)

type ChartInfo struct {
	Type             string `json:"type"`
	Name             string `json:"name"`
	Category         string `json:"category"`
	RequiredFeatures int    `json:"required_features"`
}

type ChartCategory struct {
	Name   string      `json:"name"`
	Charts []ChartInfo `json:"charts"`
}

// ChartCatalog maps chart types to the number of features they plot.
type ChartCatalog struct {
	categories []ChartCategory
	lock       sync.RWMutex
}

func NewChartCatalog(categories ...ChartCategory) *ChartCatalog {
	catalog := &ChartCatalog{}

	for _, category := range categories {
		for _, info := range category.Charts {
			catalog.Register(category.Name, info)
		}
	}

	return catalog
}

var DefaultChartCatalog = NewChartCatalog(
	ChartCategory{
		Name: `Basic Charts`,
		Charts: []ChartInfo{
			{Type: `scatter`, Name: `Scatter Plot`, RequiredFeatures: 2},
			{Type: `line`, Name: `Line Chart`, RequiredFeatures: 2},
			{Type: `bar`, Name: `Bar Chart`, RequiredFeatures: 2},
			{Type: `area`, Name: `Area Chart`, RequiredFeatures: 2},
			{Type: `pie`, Name: `Pie Chart`, RequiredFeatures: 1},
		},
	},
	ChartCategory{
		Name: `Polar Charts`,
		Charts: []ChartInfo{
			{Type: `scatterpolar`, Name: `Polar Scatter`, RequiredFeatures: 2},
		},
	},
	ChartCategory{
		Name: `3D Charts`,
		Charts: []ChartInfo{
			{Type: `scatter3d`, Name: `3D Scatter`, RequiredFeatures: 3},
			{Type: `heatmap`, Name: `Heatmap`, RequiredFeatures: 3},
		},
	},
)

// Register adds a chart type to the named category, replacing any existing
// entry for the same type.
func (self *ChartCatalog) Register(category string, info ChartInfo) {
	self.lock.Lock()
	defer self.lock.Unlock()

	info.Category = category

	for c := range self.categories {
		charts := self.categories[c].Charts

		for i := range charts {
			if charts[i].Type == info.Type {
				self.categories[c].Charts = append(charts[:i:i], charts[i+1:]...)
				break
			}
		}
	}

	for c := range self.categories {
		if self.categories[c].Name == category {
			self.categories[c].Charts = append(self.categories[c].Charts, info)
			return
		}
	}

	self.categories = append(self.categories, ChartCategory{
		Name:   category,
		Charts: []ChartInfo{info},
	})
}

func (self *ChartCatalog) Lookup(chartType string) (ChartInfo, bool) {
	self.lock.RLock()
	defer self.lock.RUnlock()

	for _, category := range self.categories {
		for _, info := range category.Charts {
			if info.Type == chartType {
				return info, true
			}
		}
	}

	return ChartInfo{}, false
}

// GetRequiredFeatures returns the number of features the given chart type
// plots, or zero if the type is not in the catalog.
func (self *ChartCatalog) GetRequiredFeatures(chartType string) int {
	if info, ok := self.Lookup(chartType); ok {
		return info.RequiredFeatures
	}

	return 0
}

func (self *ChartCatalog) Categories() []ChartCategory {
	self.lock.RLock()
	defer self.lock.RUnlock()

	output := make([]ChartCategory, len(self.categories))

	for i, category := range self.categories {
		output[i] = ChartCategory{
			Name:   category.Name,
			Charts: append([]ChartInfo(nil), category.Charts...),
		}
	}

	return output
}

func catalogOrDefault(catalog *ChartCatalog) *ChartCatalog {
	if catalog == nil {
		return DefaultChartCatalog
	}

	return catalog
}
