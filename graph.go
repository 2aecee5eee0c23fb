package visux

import (
	"encoding/json"
	"time"

	"github.com/op/go-logging"
	"github.com/tiendc/go-deepcopy"
)

var log = logging.MustGetLogger(`visux`)

type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Graph is one user-created visualization bound to a snapshot of a dataset.
// Graphs are owned by a GraphManager; mutate them through it.
type Graph struct {
	id               string
	name             string
	datasetID        string
	dataset          Dataset
	features         []string
	rowCount         int
	chartType        string
	selectedFeatures []string
	moreYAxes        []string
	style            *GraphStyle
	visible          bool
	fittedCurve      []CurvePoint
	showedDatapoints []int
	catalog          *ChartCatalog
	createdAt        time.Time
	updatedAt        time.Time
}

type graphParams struct {
	ID               string
	Name             string
	DatasetID        string
	Records          *RecordSet
	ChartType        string
	SelectedFeatures []string
	Style            *GraphStyle
	Catalog          *ChartCatalog
}

func newGraph(params graphParams) *Graph {
	now := time.Now()

	graph := &Graph{
		id:               params.ID,
		name:             params.Name,
		datasetID:        params.DatasetID,
		dataset:          params.Records.Columns(),
		features:         append([]string(nil), params.Records.Features...),
		chartType:        params.ChartType,
		selectedFeatures: append([]string(nil), params.SelectedFeatures...),
		moreYAxes:        make([]string, 0),
		style:            params.Style,
		visible:          true,
		catalog:          catalogOrDefault(params.Catalog),
		createdAt:        now,
		updatedAt:        now,
	}

	if graph.name == `` {
		graph.name = graph.id
	}

	if graph.style == nil {
		graph.style = NewGraphStyle()
	}

	if len(graph.selectedFeatures) > 0 {
		graph.rowCount = len(graph.dataset[graph.selectedFeatures[0]])
	}

	graph.showedDatapoints = make([]int, graph.rowCount)

	for i := range graph.showedDatapoints {
		graph.showedDatapoints[i] = i + 1
	}

	return graph
}

func (self *Graph) GetID() string {
	return self.id
}

func (self *Graph) GetName() string {
	return self.name
}

func (self *Graph) GetDatasetID() string {
	return self.datasetID
}

func (self *Graph) GetDataset() Dataset {
	return self.dataset
}

// GetFeatures returns the dataset's feature names in their original order.
func (self *Graph) GetFeatures() []string {
	return copyStrings(self.features)
}

func (self *Graph) GetRowCount() int {
	return self.rowCount
}

func (self *Graph) GetType() string {
	return self.chartType
}

func (self *Graph) GetSelectedFeatures() []string {
	return copyStrings(self.selectedFeatures)
}

func (self *Graph) axis(i int) string {
	if i < len(self.selectedFeatures) {
		return self.selectedFeatures[i]
	}

	return ``
}

func (self *Graph) GetXAxis() string {
	return self.axis(0)
}

func (self *Graph) GetYAxis() string {
	return self.axis(1)
}

func (self *Graph) GetZAxis() string {
	return self.axis(2)
}

func (self *Graph) GetStyle() *GraphStyle {
	return self.style
}

func (self *Graph) IsVisible() bool {
	return self.visible
}

func (self *Graph) GetFittedCurve() []CurvePoint {
	points := make([]CurvePoint, len(self.fittedCurve))
	copy(points, self.fittedCurve)
	return points
}

func (self *Graph) GetShowedDatapoints() []int {
	indices := make([]int, len(self.showedDatapoints))
	copy(indices, self.showedDatapoints)
	return indices
}

func (self *Graph) GetMoreYAxes() []string {
	return copyStrings(self.moreYAxes)
}

// slices handed out by getters are copies; only the GraphManager changes a graph
func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func (self *Graph) GetCreatedAt() time.Time {
	return self.createdAt
}

func (self *Graph) GetUpdatedAt() time.Time {
	return self.updatedAt
}

func (self *Graph) touch() {
	self.updatedAt = time.Now()
}

func (self *Graph) ChangeColor(color string) {
	self.style.ChangeColor(color)
	self.touch()
}

func (self *Graph) ToggleVisibility() {
	self.visible = !self.visible
	self.touch()
}

func (self *Graph) setAxis(i int, feature string) {
	for len(self.selectedFeatures) <= i {
		self.selectedFeatures = append(self.selectedFeatures, ``)
	}

	self.selectedFeatures[i] = feature
	self.touch()
}

func (self *Graph) SetXAxis(feature string) {
	self.setAxis(0, feature)
}

func (self *Graph) SetYAxis(feature string) {
	self.setAxis(1, feature)
}

func (self *Graph) SetZAxis(feature string) {
	self.setAxis(2, feature)
}

func (self *Graph) GetRequiredFeatures(chartType string) int {
	return self.catalog.GetRequiredFeatures(chartType)
}

// SetType changes the chart type and resizes the selected features to the
// count the new type requires, padding with the first selected feature or
// truncating from the end.
func (self *Graph) SetType(chartType string) {
	required := self.GetRequiredFeatures(chartType)

	if current := len(self.selectedFeatures); required > current {
		pad := ``

		if current > 0 {
			pad = self.selectedFeatures[0]
		} else if len(self.features) > 0 {
			pad = self.features[0]
		}

		for i := current; i < required; i++ {
			self.selectedFeatures = append(self.selectedFeatures, pad)
		}
	} else if required < current {
		self.selectedFeatures = self.selectedFeatures[:required:required]
	}

	self.chartType = chartType
	self.touch()
}

func (self *Graph) SetFittedCurve(points []CurvePoint) {
	self.fittedCurve = append([]CurvePoint(nil), points...)
	self.touch()
}

func (self *Graph) SetMoreYAxes(features []string) {
	self.moreYAxes = append(make([]string, 0, len(features)), features...)
	self.touch()
}

// ExcludeRange hides every row index in [min, max].
func (self *Graph) ExcludeRange(min int, max int) {
	kept := make([]int, 0, len(self.showedDatapoints))

	for _, i := range self.showedDatapoints {
		if i < min || i > max {
			kept = append(kept, i)
		}
	}

	self.showedDatapoints = kept
	self.touch()
}

// RestoreRange shows every row index in [min, max] again. Restored indices
// are appended in ascending order after the ones already shown, so the
// result is not necessarily sorted. Indices outside the dataset are ignored.
func (self *Graph) RestoreRange(min int, max int) {
	shown := make(map[int]bool, len(self.showedDatapoints))

	for _, i := range self.showedDatapoints {
		shown[i] = true
	}

	if min < 1 {
		min = 1
	}

	if max > self.rowCount {
		max = self.rowCount
	}

	for i := min; i <= max; i++ {
		if !shown[i] {
			self.showedDatapoints = append(self.showedDatapoints, i)
		}
	}

	self.touch()
}

func (self *Graph) isShown() map[int]bool {
	shown := make(map[int]bool, len(self.showedDatapoints))

	for _, i := range self.showedDatapoints {
		shown[i] = true
	}

	return shown
}

type GraphSnapshot struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	DatasetID        string       `json:"dataset_id,omitempty"`
	Type             string       `json:"type"`
	Features         []string     `json:"features"`
	SelectedFeatures []string     `json:"selected_features"`
	XAxis            string       `json:"x_axis,omitempty"`
	YAxis            string       `json:"y_axis,omitempty"`
	ZAxis            string       `json:"z_axis,omitempty"`
	MoreYAxes        []string     `json:"more_y_axes"`
	Style            GraphStyle   `json:"style"`
	Visible          bool         `json:"visible"`
	FittedCurve      []CurvePoint `json:"fitted_curve,omitempty"`
	ShowedDatapoints []int        `json:"showed_datapoints"`
	RowCount         int          `json:"row_count"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Snapshot returns a copy of the graph's state that shares no memory with it.
func (self *Graph) Snapshot() (*GraphSnapshot, error) {
	view := GraphSnapshot{
		ID:               self.id,
		Name:             self.name,
		DatasetID:        self.datasetID,
		Type:             self.chartType,
		Features:         self.features,
		SelectedFeatures: self.selectedFeatures,
		XAxis:            self.GetXAxis(),
		YAxis:            self.GetYAxis(),
		ZAxis:            self.GetZAxis(),
		MoreYAxes:        self.moreYAxes,
		Style:            *self.style,
		Visible:          self.visible,
		FittedCurve:      self.fittedCurve,
		ShowedDatapoints: self.showedDatapoints,
		RowCount:         self.rowCount,
		CreatedAt:        self.createdAt,
		UpdatedAt:        self.updatedAt,
	}

	var out GraphSnapshot

	if err := deepcopy.Copy(&out, &view); err != nil {
		return nil, err
	}

	return &out, nil
}

func (self *Graph) MarshalJSON() ([]byte, error) {
	if snapshot, err := self.Snapshot(); err == nil {
		return json.Marshal(snapshot)
	} else {
		return nil, err
	}
}
