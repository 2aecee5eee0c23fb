package visux

import (
	"math"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

type statsUnary func(stats.Float64Data) (float64, error)
type ReducerFunc func(values ...float64) float64

// wraps a unary function from the stats package in our ReducerFunc
func statsFn(fn statsUnary) ReducerFunc {
	return func(values ...float64) float64 {
		if result, err := fn(stats.Float64Data(values)); err == nil {
			return result
		} else {
			return math.NaN()
		}
	}
}

var First = func(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return values[0]
}

var Last = func(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return values[len(values)-1]
}

var Count = func(values ...float64) float64 {
	return float64(len(values))
}

var InterQuartileRange = statsFn(stats.InterQuartileRange)
var Maximum = statsFn(stats.Max)
var Mean = statsFn(stats.Mean)
var Median = statsFn(stats.Median)
var Minimum = statsFn(stats.Min)
var StandardDeviation = statsFn(stats.StandardDeviation)
var Sum = statsFn(stats.Sum)
var Variance = statsFn(stats.Variance)

func Reduce(reducer ReducerFunc, values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return reducer(values...)
}

var DefaultSummaryReducers = []string{
	`count`, `minimum`, `maximum`, `mean`, `median`, `standard-deviation`,
}

var reducerNameMap = map[string]ReducerFunc{
	`count`:                Count,
	`first`:                First,
	`inter-quartile-range`: InterQuartileRange,
	`last`:                 Last,
	`maximum`:              Maximum,
	`mean`:                 Mean,
	`median`:               Median,
	`minimum`:              Minimum,
	`standard-deviation`:   StandardDeviation,
	`sum`:                  Sum,
	`variance`:             Variance,
}

var reducerAliasMap = map[string]string{
	`iqr`:     `inter-quartile-range`,
	`max`:     `maximum`,
	`min`:     `minimum`,
	`avg`:     `mean`,
	`average`: `mean`,
	`stddev`:  `standard-deviation`,
	`var`:     `variance`,
}

func GetReducer(name string) (ReducerFunc, bool) {
	if reducer, ok := reducerNameMap[GetReducerName(name)]; ok {
		return reducer, true
	}

	return nil, false
}

func GetReducerName(aliasOrName string) string {
	if _, ok := reducerNameMap[aliasOrName]; ok {
		return aliasOrName
	} else if alias, ok := reducerAliasMap[aliasOrName]; ok {
		return alias
	}

	return ``
}

// Summarize reduces the shown values of every selected feature with the
// named reducers. Keys of the inner maps use underscores, e.g.
// "standard_deviation"; results the stats package cannot compute are left
// out.
func (self *Graph) Summarize(names ...string) (map[string]map[string]float64, error) {
	if len(names) == 0 {
		names = DefaultSummaryReducers
	}

	reducers := make([]ReducerFunc, len(names))

	for i, name := range names {
		if reducer, ok := GetReducer(name); ok {
			reducers[i] = reducer
		} else {
			return nil, errors.Wrapf(ErrValidation, "unknown reducer %q", name)
		}
	}

	columns, err := extractColumns(self.dataset, self.selectedFeatures)

	if err != nil {
		return nil, err
	}

	columns = filterColumns(columns, self.isShown())
	summary := make(map[string]map[string]float64)

	for c, feature := range self.selectedFeatures {
		if _, ok := summary[feature]; ok {
			continue
		}

		values, err := toFloats(feature, columns[c])

		if err != nil {
			return nil, err
		}

		featureStats := make(map[string]float64)

		for i, reducer := range reducers {
			key := strings.Replace(GetReducerName(names[i]), `-`, `_`, -1)

			// NaN has no JSON encoding
			if value := Reduce(reducer, values...); !math.IsNaN(value) {
				featureStats[key] = value
			}
		}

		summary[feature] = featureStats
	}

	return summary, nil
}
