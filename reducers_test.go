package visux

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReduceGetName(t *testing.T) {
	assert := require.New(t)

	assert.Equal(`sum`, GetReducerName(`sum`))
	assert.Equal(`inter-quartile-range`, GetReducerName(`inter-quartile-range`))
	assert.Equal(`inter-quartile-range`, GetReducerName(`iqr`))
	assert.Equal(`maximum`, GetReducerName(`maximum`))
	assert.Equal(`maximum`, GetReducerName(`max`))
	assert.Equal(`mean`, GetReducerName(`avg`))
	assert.Equal(``, GetReducerName(`mode`))

	_, ok := GetReducer(`mode`)
	assert.False(ok)
}

func TestReduceFirst(t *testing.T) {
	assert := require.New(t)

	assert.Equal(float64(0), Reduce(First))
	assert.Equal(float64(0), Reduce(First, 0))
	assert.Equal(float64(1), Reduce(First, 1, -1))
	assert.Equal(float64(-1), Reduce(First, -1, 1))
	assert.Equal(float64(1.1), Reduce(First, 1.1, 2.2, 3.3))
}

func TestReduceLast(t *testing.T) {
	assert := require.New(t)

	assert.Equal(float64(0), Reduce(Last))
	assert.Equal(float64(-1), Reduce(Last, 1, -1))
	assert.Equal(float64(3.3), Reduce(Last, 1.1, 2.2, 3.3))
}

func TestReduceCount(t *testing.T) {
	assert := require.New(t)

	assert.Equal(float64(0), Reduce(Count))
	assert.Equal(float64(1), Reduce(Count, 0))
	assert.Equal(float64(3), Reduce(Count, 1.1, 2.2, 3.3))
}

func TestReduceSum(t *testing.T) {
	assert := require.New(t)

	assert.Equal(float64(0), Reduce(Sum))
	assert.Equal(float64(0), Reduce(Sum, 1, -1))
	assert.InDelta(6.6, Reduce(Sum, 1.1, 2.2, 3.3), 1e-9)
}

func TestReduceMinMax(t *testing.T) {
	assert := require.New(t)

	assert.Equal(float64(0), Reduce(Minimum))
	assert.Equal(float64(-1), Reduce(Minimum, 1, -1))
	assert.Equal(float64(1.1), Reduce(Minimum, 1.1, 2.2, 3.3))
	assert.Equal(float64(3.3), Reduce(Maximum, 1.1, 2.2, 3.3))
}

func TestReduceStdDev(t *testing.T) {
	assert := require.New(t)

	assert.Equal(float64(0), Reduce(StandardDeviation))
	assert.Equal(float64(0), Reduce(StandardDeviation, 1))
	assert.Equal(float64(2), Reduce(StandardDeviation, 2, 4, 4, 4, 5, 5, 7, 9))
}

func TestReduceVariance(t *testing.T) {
	assert := require.New(t)

	assert.Equal(float64(0), Reduce(Variance))
	assert.Equal(float64(0), Reduce(Variance, 1))
	assert.Equal(float64(4), Reduce(Variance, 2, 4, 4, 4, 5, 5, 7, 9))
}

func TestGraphSummarize(t *testing.T) {
	assert := require.New(t)
	manager := NewGraphManager()

	graph, err := manager.CreateGraph(GraphInfo{
		GraphType: `scatter`,
		Dataset:   testRecords(),
	})
	assert.NoError(err)

	summary, err := graph.Summarize(`count`, `min`, `max`, `mean`)
	assert.NoError(err)
	assert.Equal(map[string]map[string]float64{
		`age`: {
			`count`:   4,
			`minimum`: 10,
			`maximum`: 40,
			`mean`:    25,
		},
		`height`: {
			`count`:   4,
			`minimum`: 140,
			`maximum`: 180,
			`mean`:    168.25,
		},
	}, summary)

	// only the shown rows count
	assert.NoError(manager.ExcludeRangeFromGraph(graph.GetID(), 1, 2))

	summary, err = manager.Summarize(graph.GetID(), `sum`)
	assert.NoError(err)
	assert.Equal(float64(70), summary[`age`][`sum`])
	assert.Equal(float64(358), summary[`height`][`sum`])

	summary, err = manager.Summarize(graph.GetID())
	assert.NoError(err)
	assert.Len(summary[`age`], len(DefaultSummaryReducers))
	assert.Contains(summary[`age`], `standard_deviation`)

	_, err = graph.Summarize(`mode`)
	assert.True(IsValidationError(err))
}

func TestGraphSummarizeNonNumeric(t *testing.T) {
	assert := require.New(t)
	manager := NewGraphManager()

	graph, err := manager.CreateGraph(GraphInfo{
		GraphType:        `bar`,
		Dataset:          testRecords(),
		SelectedFeatures: []string{`city`, `age`},
	})
	assert.NoError(err)

	_, err = graph.Summarize(`count`)
	assert.True(IsValidationError(err))
}

func TestGraphSummarizeSkipsBlankCells(t *testing.T) {
	assert := require.New(t)
	manager := NewGraphManager()

	graph, err := manager.CreateGraph(GraphInfo{
		GraphType: `scatter`,
		Dataset: &RecordSet{
			Features: []string{`a`, `b`},
			Records: []map[string]interface{}{
				{`a`: 1.0, `b`: nil},
				{`a`: 2.0, `b`: 3.0},
				{`a`: 3.0, `b`: ` `},
			},
		},
		SelectedFeatures: []string{`a`, `b`},
	})
	assert.NoError(err)

	summary, err := graph.Summarize(`count`, `min`, `mean`)
	assert.NoError(err)
	assert.Equal(map[string]float64{
		`count`:   1,
		`minimum`: 3,
		`mean`:    3,
	}, summary[`b`])
	assert.Equal(float64(3), summary[`a`][`count`])
}
