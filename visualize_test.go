package visux

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func testLayout(titles ...string) *Layout {
	layout := buildLayout(nil)

	for i, title := range titles {
		axis := &Axis{
			Title:         title,
			GridColor:     `#DDDDDD`,
			ZeroLineColor: `#BBBBBB`,
		}

		switch i {
		case 0:
			layout.XAxis = axis
		case 1:
			layout.YAxis = axis
		case 2:
			layout.ZAxis = axis
		}
	}

	return layout
}

func visualizeGraph(t *testing.T, info GraphInfo, mutations ...func(manager *GraphManager, id string)) (*Figure, error) {
	manager := NewGraphManager()

	if info.Dataset == nil {
		info.Dataset = testRecords()
	}

	graph, err := manager.CreateGraph(info)
	require.NoError(t, err)

	for _, mutate := range mutations {
		mutate(manager, graph.GetID())
	}

	return manager.Visualize(graph.GetID())
}

func TestVisualizeScatter(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType: `scatter`,
	})
	assert.NoError(err)

	expected := &Figure{
		Data: []*Trace{
			{
				Type: `scatter`,
				Mode: `markers`,
				X:    []interface{}{10.0, 20.0, 30.0, 40.0},
				Y:    []interface{}{140.0, 175.0, 180.0, 178.0},
				Marker: &Marker{
					Color: DefaultColorScheme,
					Size:  8,
				},
			},
		},
		Layout: &Layout{
			XAxis:        &Axis{Title: `age`, GridColor: `#DDDDDD`, ZeroLineColor: `#BBBBBB`},
			YAxis:        &Axis{Title: `height`, GridColor: `#DDDDDD`, ZeroLineColor: `#BBBBBB`},
			PlotBgColor:  `rgba(245, 245, 245, 0.9)`,
			PaperBgColor: `white`,
			Margin:       Margin{L: 50, R: 50, T: 50, B: 50},
		},
	}

	if diff := cmp.Diff(expected, figure); diff != `` {
		t.Fatalf("figure mismatch (-want +got):\n%s", diff)
	}
}

func TestVisualizeExcludedRows(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType:        `bar`,
		SelectedFeatures: []string{`city`, `weight`},
	}, func(manager *GraphManager, id string) {
		assert.NoError(manager.ExcludeRangeFromGraph(id, 2, 3))
	})
	assert.NoError(err)
	assert.Len(figure.Data, 1)

	expected := &Trace{
		Type: `bar`,
		X:    []interface{}{`Boston`, `Tulsa`},
		Y:    []interface{}{35.0, 85.0},
		Marker: &Marker{
			Color: DefaultColorScheme,
		},
	}

	if diff := cmp.Diff(expected, figure.Data[0]); diff != `` {
		t.Fatalf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestVisualizeRestoredOrderFollowsDataset(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType: `line`,
	}, func(manager *GraphManager, id string) {
		assert.NoError(manager.ExcludeRangeFromGraph(id, 1, 2))
		assert.NoError(manager.RestoreRangeToGraph(id, 1, 1))
	})
	assert.NoError(err)
	assert.Equal([]interface{}{10.0, 30.0, 40.0}, figure.Data[0].X)
}

func TestVisualizeLineAndArea(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType: `line`,
	}, func(manager *GraphManager, id string) {
		assert.NoError(manager.ChangeGraphColor(id, `orange`))
	})
	assert.NoError(err)

	trace := figure.Data[0]
	assert.Equal(`scatter`, trace.Type)
	assert.Equal(`lines+markers`, trace.Mode)
	assert.Equal(&Line{Color: `orange`, Width: 2}, trace.Line)
	assert.Equal(`circle`, trace.Marker.Symbol)

	figure, err = visualizeGraph(t, GraphInfo{
		GraphType: `area`,
	})
	assert.NoError(err)

	trace = figure.Data[0]
	assert.Equal(`lines`, trace.Mode)
	assert.Equal(`tozeroy`, trace.Fill)
	assert.Nil(trace.Marker)
}

func TestVisualizePie(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType: `pie`,
	}, func(manager *GraphManager, id string) {
		assert.NoError(manager.ChangeGraphColor(id, `#123456`))
	})
	assert.NoError(err)
	assert.Len(figure.Data, 1)

	trace := figure.Data[0]
	assert.Equal(`pie`, trace.Type)
	assert.Equal([]interface{}{10.0, 20.0, 30.0, 40.0}, trace.Labels)
	assert.Equal(trace.Labels, trace.Values)
	assert.Equal(0.3, trace.Hole)
	assert.Equal([]string{`#123456`, `#1F77B4`, `#2CA02C`, `#D62728`}, trace.Marker.Colors)

	if diff := cmp.Diff(testLayout(`age`), figure.Layout); diff != `` {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestVisualizeThreeDimensional(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType: `scatter3d`,
	})
	assert.NoError(err)

	trace := figure.Data[0]
	assert.Equal(`scatter3d`, trace.Type)
	assert.Equal(`markers`, trace.Mode)
	assert.Equal([]interface{}{35.0, 70.0, 80.0, 85.0}, trace.Z)

	if diff := cmp.Diff(testLayout(`age`, `height`, `weight`), figure.Layout); diff != `` {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}

	figure, err = visualizeGraph(t, GraphInfo{
		GraphType: `heatmap`,
	})
	assert.NoError(err)
	assert.Equal(`heatmap`, figure.Data[0].Type)
	assert.Equal(`Viridis`, figure.Data[0].Colorscale)
	assert.Nil(figure.Data[0].Marker)
}

func TestVisualizePolar(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType: `scatterpolar`,
	})
	assert.NoError(err)

	trace := figure.Data[0]
	assert.Equal(`scatterpolar`, trace.Type)
	assert.Equal([]interface{}{10.0, 20.0, 30.0, 40.0}, trace.R)
	assert.Equal([]interface{}{140.0, 175.0, 180.0, 178.0}, trace.Theta)
	assert.Empty(trace.X)
}

func TestVisualizeExtraAxesAndFittedCurve(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType: `scatter`,
	}, func(manager *GraphManager, id string) {
		assert.NoError(manager.ApplyCurveFitting(id, []CurvePoint{{X: 10, Y: 150}, {X: 40, Y: 180}}))
		assert.NoError(manager.AddMoreYAxis(id, `weight`))
		assert.NoError(manager.AddMoreYAxis(id, `missing`))
		assert.NoError(manager.ExcludeRangeFromGraph(id, 4, 4))
	})
	assert.NoError(err)
	assert.Len(figure.Data, 3)

	assert.Equal(``, figure.Data[0].Name)

	assert.Equal(`weight`, figure.Data[1].Name)
	assert.Equal(`markers`, figure.Data[1].Mode)
	assert.Equal([]interface{}{10.0, 20.0, 30.0}, figure.Data[1].X)
	assert.Equal([]interface{}{35.0, 70.0, 80.0}, figure.Data[1].Y)

	expected := &Trace{
		Type: `scatter`,
		Mode: `lines`,
		Name: FittedCurveName,
		X:    []interface{}{10.0, 40.0},
		Y:    []interface{}{150.0, 180.0},
		Line: &Line{
			Color: FittedCurveColor,
			Width: 2,
		},
	}

	if diff := cmp.Diff(expected, figure.Data[2]); diff != `` {
		t.Fatalf("fitted curve mismatch (-want +got):\n%s", diff)
	}
}

func TestVisualizeExtraAxesOnlyForCartesianTypes(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType: `pie`,
	}, func(manager *GraphManager, id string) {
		assert.NoError(manager.AddMoreYAxis(id, `weight`))
	})
	assert.NoError(err)
	assert.Len(figure.Data, 1)
}

func TestVisualizeFailures(t *testing.T) {
	assert := require.New(t)

	_, err := visualizeGraph(t, GraphInfo{
		GraphType:        `treemap`,
		SelectedFeatures: []string{`age`},
	})
	assert.True(errors.Is(err, ErrUnsupportedChartType))

	_, err = visualizeGraph(t, GraphInfo{
		GraphType:        `scatter`,
		SelectedFeatures: []string{`age`, `shoe_size`},
	})
	assert.True(IsValidationError(err))

	_, err = visualizeGraph(t, GraphInfo{
		GraphType:        `scatter`,
		SelectedFeatures: []string{`age`},
	})
	assert.True(IsValidationError(err))

	_, err = visualizeGraph(t, GraphInfo{
		GraphType: `scatter`,
		Dataset: &RecordSet{
			Features: []string{`age`, `height`},
			Records:  []map[string]interface{}{},
		},
	})
	assert.True(IsValidationError(err))

	_, err = visualizeGraph(t, GraphInfo{
		GraphType: `scatter`,
	}, func(manager *GraphManager, id string) {
		assert.NoError(manager.ChangeAxis(id, `x`, `shoe_size`))
	})
	assert.True(IsValidationError(err))

	_, err = NewVisualizationManager(nil).Visualize(nil)
	assert.True(IsValidationError(err))
}

func TestVisualizeAllExcluded(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType: `scatter`,
	}, func(manager *GraphManager, id string) {
		assert.NoError(manager.ExcludeRangeFromGraph(id, 1, 4))
	})
	assert.NoError(err)
	assert.Empty(figure.Data[0].X)
	assert.Empty(figure.Data[0].Y)

	data, err := json.Marshal(figure.Data[0])
	assert.NoError(err)
	assert.Contains(string(data), `"x":[]`)
	assert.Contains(string(data), `"y":[]`)
	assert.NotContains(string(data), `"z"`)

	figure, err = visualizeGraph(t, GraphInfo{
		GraphType: `pie`,
	}, func(manager *GraphManager, id string) {
		assert.NoError(manager.ExcludeRangeFromGraph(id, 1, 4))
	})
	assert.NoError(err)

	data, err = json.Marshal(figure.Data[0])
	assert.NoError(err)
	assert.Contains(string(data), `"values":[]`)
	assert.NotContains(string(data), `"x"`)
}

func TestVisualizeExtraAxesOwnTheirX(t *testing.T) {
	assert := require.New(t)

	figure, err := visualizeGraph(t, GraphInfo{
		GraphType: `line`,
	}, func(manager *GraphManager, id string) {
		assert.NoError(manager.AddMoreYAxis(id, `weight`))
	})
	assert.NoError(err)
	assert.Len(figure.Data, 2)

	figure.Data[1].X[0] = `changed`
	assert.Equal(10.0, figure.Data[0].X[0])
}

func TestVisualizationManagerRequiredFeatures(t *testing.T) {
	assert := require.New(t)
	visualizer := NewVisualizationManager(nil)

	assert.Equal(2, visualizer.GetRequiredFeatures(`scatter`))
	assert.Equal(1, visualizer.GetRequiredFeatures(`pie`))
	assert.Equal(3, visualizer.GetRequiredFeatures(`heatmap`))
	assert.Equal(0, visualizer.GetRequiredFeatures(``))
	assert.Equal(0, visualizer.GetRequiredFeatures(`treemap`))
}

func TestSupportedChartTypesMatchCatalog(t *testing.T) {
	assert := require.New(t)
	types := make([]string, 0)

	for _, category := range DefaultChartCatalog.Categories() {
		for _, info := range category.Charts {
			types = append(types, info.Type)
			assert.Equal(info.RequiredFeatures, chartHandlers[info.Type].features, info.Type)
		}
	}

	assert.ElementsMatch(types, SupportedChartTypes())
}
