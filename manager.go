package visux

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const EventGraphUpdated = `graphUpdated`

type Event struct {
	Type    string `json:"type"`
	GraphID string `json:"graphId,omitempty"`
}

type Listener func(Event)

// Subscription is the handle returned by OnChange; pass it to OffChange to
// stop receiving events.
type Subscription struct {
	listener Listener
}

type GraphInfo struct {
	DatasetID        string     `json:"datasetId"`
	GraphType        string     `json:"graphType"`
	GraphName        string     `json:"graphName,omitempty"`
	Dataset          *RecordSet `json:"dataset"`
	SelectedFeatures []string   `json:"selectedFeatures,omitempty"`
}

type ManagerOption func(*GraphManager)

func WithCatalog(catalog *ChartCatalog) ManagerOption {
	return func(manager *GraphManager) {
		manager.catalog = catalogOrDefault(catalog)
	}
}

// WithPalette colors each new graph with the next palette color instead of
// the default style color.
func WithPalette(palette Palette) ManagerOption {
	return func(manager *GraphManager) {
		manager.palette = palette
	}
}

// GraphManager owns every Graph and tells listeners when one changes.
type GraphManager struct {
	graphs       *orderedmap.OrderedMap[string, *Graph]
	catalog      *ChartCatalog
	visualizer   *VisualizationManager
	palette      Palette
	created      int
	lock         sync.RWMutex
	listeners    []*Subscription
	listenerLock sync.Mutex
}

func NewGraphManager(options ...ManagerOption) *GraphManager {
	manager := &GraphManager{
		graphs:    orderedmap.New[string, *Graph](),
		catalog:   DefaultChartCatalog,
		listeners: make([]*Subscription, 0),
	}

	for _, option := range options {
		option(manager)
	}

	manager.visualizer = NewVisualizationManager(manager.catalog)

	return manager
}

func (self *GraphManager) Catalog() *ChartCatalog {
	return self.catalog
}

func (self *GraphManager) Visualizer() *VisualizationManager {
	return self.visualizer
}

// CreateGraph builds a graph from row-oriented records, registers it and
// announces it.
func (self *GraphManager) CreateGraph(info GraphInfo) (*Graph, error) {
	if info.GraphType == `` {
		err := errors.Wrap(ErrValidation, `graph type is missing`)
		log.Errorf("create graph: %v", err)
		return nil, err
	}

	if err := info.Dataset.Validate(); err != nil {
		log.Errorf("create graph: %v", err)
		return nil, err
	}

	selected := info.SelectedFeatures

	if len(selected) == 0 {
		if n := self.catalog.GetRequiredFeatures(info.GraphType); n <= len(info.Dataset.Features) {
			selected = info.Dataset.Features[:n]
		} else {
			selected = info.Dataset.Features
		}
	}

	self.lock.Lock()

	style := NewGraphStyle()

	if color := self.palette.Get(self.created); color != `` {
		style.SetColorScheme(color)
	}

	graph := newGraph(graphParams{
		ID:               newGraphID(),
		Name:             info.GraphName,
		DatasetID:        info.DatasetID,
		Records:          info.Dataset,
		ChartType:        info.GraphType,
		SelectedFeatures: selected,
		Style:            style,
		Catalog:          self.catalog,
	})

	self.graphs.Set(graph.GetID(), graph)
	self.created += 1
	registeredGraphs.Inc()
	self.lock.Unlock()

	log.Debugf("created graph %s (%s) over %d rows", graph.GetID(), graph.GetType(), graph.GetRowCount())
	self.Notify(Event{Type: EventGraphUpdated, GraphID: graph.GetID()})

	return graph, nil
}

// ids are time-ordered UUIDs, unique for the life of the process
func newGraphID() string {
	return `graph_` + uuid.Must(uuid.NewV7()).String()
}

func (self *GraphManager) DeleteGraph(id string) error {
	self.lock.Lock()
	_, ok := self.graphs.Delete(id)

	if ok {
		registeredGraphs.Dec()
	}

	self.lock.Unlock()

	if !ok {
		err := errors.Wrapf(ErrNotFound, "graph %q", id)
		log.Warningf("delete graph: %v", err)
		return err
	}

	self.Notify(Event{Type: EventGraphUpdated, GraphID: id})
	return nil
}

// GetGraphByID returns the registered graph, or nil if there is none. Do not
// hold on to the result across change events; look it up again.
func (self *GraphManager) GetGraphByID(id string) *Graph {
	self.lock.RLock()
	defer self.lock.RUnlock()

	if graph, ok := self.graphs.Get(id); ok {
		return graph
	}

	log.Warningf("graph %q not found", id)
	return nil
}

func (self *GraphManager) GetAllGraphs() []*Graph {
	self.lock.RLock()
	defer self.lock.RUnlock()

	graphs := make([]*Graph, 0, self.graphs.Len())

	for pair := self.graphs.Oldest(); pair != nil; pair = pair.Next() {
		graphs = append(graphs, pair.Value)
	}

	return graphs
}

func (self *GraphManager) Len() int {
	self.lock.RLock()
	defer self.lock.RUnlock()

	return self.graphs.Len()
}

// read runs fn against the graph while holding the registry read lock.
func (self *GraphManager) read(id string, fn func(graph *Graph) error) error {
	self.lock.RLock()
	defer self.lock.RUnlock()

	if graph, ok := self.graphs.Get(id); ok {
		return fn(graph)
	}

	err := errors.Wrapf(ErrNotFound, "graph %q", id)
	log.Warningf("%v", err)
	return err
}

func (self *GraphManager) Snapshot(id string) (*GraphSnapshot, error) {
	var snapshot *GraphSnapshot

	err := self.read(id, func(graph *Graph) error {
		var err error
		snapshot, err = graph.Snapshot()
		return err
	})

	return snapshot, err
}

func (self *GraphManager) Visualize(id string) (*Figure, error) {
	var figure *Figure

	err := self.read(id, func(graph *Graph) error {
		var err error
		figure, err = self.visualizer.Visualize(graph)
		return err
	})

	return figure, err
}

func (self *GraphManager) Render(id string, w io.Writer, format RenderFormat, options GraphOptions) error {
	return self.read(id, func(graph *Graph) error {
		return graph.Render(w, format, options)
	})
}

func (self *GraphManager) Summarize(id string, reducers ...string) (map[string]map[string]float64, error) {
	var summary map[string]map[string]float64

	err := self.read(id, func(graph *Graph) error {
		var err error
		summary, err = graph.Summarize(reducers...)
		return err
	})

	return summary, err
}

// mutate applies fn to the graph under the registry write lock, then
// announces the change. Nothing is announced if the graph is missing or fn
// fails; fn must validate before it modifies anything.
func (self *GraphManager) mutate(id string, action string, fn func(graph *Graph) error) error {
	err := func() error {
		self.lock.Lock()
		defer self.lock.Unlock()

		if graph, ok := self.graphs.Get(id); ok {
			return fn(graph)
		}

		return errors.Wrapf(ErrNotFound, "graph %q", id)
	}()

	if err != nil {
		if IsNotFound(err) {
			log.Warningf("%s: %v", action, err)
		} else {
			log.Errorf("%s: %v", action, err)
		}

		return err
	}

	self.Notify(Event{Type: EventGraphUpdated, GraphID: id})
	return nil
}

func (self *GraphManager) ChangeGraphColor(id string, color string) error {
	return self.mutate(id, `change color`, func(graph *Graph) error {
		if color == `` {
			return errors.Wrap(ErrValidation, `color is empty`)
		}

		graph.ChangeColor(color)
		return nil
	})
}

// ChangeAxis points the x, y or z axis at another feature.
func (self *GraphManager) ChangeAxis(id string, axis string, feature string) error {
	return self.mutate(id, `change axis`, func(graph *Graph) error {
		switch axis {
		case `x`:
			graph.SetXAxis(feature)
		case `y`:
			graph.SetYAxis(feature)
		case `z`:
			graph.SetZAxis(feature)
		default:
			return errors.Wrapf(ErrValidation, "unknown axis %q", axis)
		}

		return nil
	})
}

func (self *GraphManager) ChangeType(id string, chartType string) error {
	return self.mutate(id, `change type`, func(graph *Graph) error {
		if chartType == `` {
			return errors.Wrap(ErrValidation, `chart type is empty`)
		}

		graph.SetType(chartType)
		log.Debugf("graph %s changed type to %s", id, chartType)
		return nil
	})
}

func (self *GraphManager) ChangeVisibility(id string) error {
	return self.mutate(id, `change visibility`, func(graph *Graph) error {
		graph.ToggleVisibility()
		return nil
	})
}

func (self *GraphManager) ApplyCurveFitting(id string, points []CurvePoint) error {
	return self.mutate(id, `apply curve fitting`, func(graph *Graph) error {
		graph.SetFittedCurve(points)
		return nil
	})
}

func (self *GraphManager) ExcludeRangeFromGraph(id string, min int, max int) error {
	return self.mutate(id, `exclude range`, func(graph *Graph) error {
		graph.ExcludeRange(min, max)
		return nil
	})
}

func (self *GraphManager) ExcludeRangeToGraph(id string, min int, max int) error {
	return self.ExcludeRangeFromGraph(id, min, max)
}

func (self *GraphManager) RestoreRangeToGraph(id string, min int, max int) error {
	return self.mutate(id, `restore range`, func(graph *Graph) error {
		graph.RestoreRange(min, max)
		return nil
	})
}

// AddMoreYAxis adds an extra y feature; adding one that is already present
// changes nothing but still succeeds.
func (self *GraphManager) AddMoreYAxis(id string, feature string) error {
	return self.mutate(id, `add y axis`, func(graph *Graph) error {
		if feature == `` {
			return errors.Wrap(ErrValidation, `feature is empty`)
		}

		axes := graph.GetMoreYAxes()

		for _, existing := range axes {
			if existing == feature {
				return nil
			}
		}

		graph.SetMoreYAxes(append(axes, feature))
		return nil
	})
}

func (self *GraphManager) RemoveMoreYAxis(id string, feature string) error {
	return self.mutate(id, `remove y axis`, func(graph *Graph) error {
		axes := make([]string, 0, len(graph.GetMoreYAxes()))

		for _, existing := range graph.GetMoreYAxes() {
			if existing != feature {
				axes = append(axes, existing)
			}
		}

		graph.SetMoreYAxes(axes)
		return nil
	})
}

func (self *GraphManager) OnChange(listener Listener) *Subscription {
	subscription := &Subscription{
		listener: listener,
	}

	self.listenerLock.Lock()
	self.listeners = append(self.listeners, subscription)
	self.listenerLock.Unlock()

	return subscription
}

// OffChange removes the subscription and reports whether it was registered.
func (self *GraphManager) OffChange(subscription *Subscription) bool {
	self.listenerLock.Lock()
	defer self.listenerLock.Unlock()

	for i, existing := range self.listeners {
		if existing == subscription {
			self.listeners = append(self.listeners[:i:i], self.listeners[i+1:]...)
			return true
		}
	}

	return false
}

// Notify calls every listener in subscription order. A listener that panics
// is logged and skipped.
func (self *GraphManager) Notify(event Event) {
	self.listenerLock.Lock()
	listeners := append([]*Subscription(nil), self.listeners...)
	self.listenerLock.Unlock()

	log.Debugf("notify %s %s (%d listeners)", event.Type, event.GraphID, len(listeners))

	for i, subscription := range listeners {
		if err := deliver(subscription.listener, event); err != nil {
			log.Errorf("listener %d: %v", i, err)
		}
	}

	graphEvents.WithLabelValues(event.Type).Inc()
}

func deliver(listener Listener, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling %s: %v", event.Type, r)
		}
	}()

	listener(event)
	return nil
}

// Reset drops every graph and listener.
func (self *GraphManager) Reset() {
	self.lock.Lock()
	registeredGraphs.Sub(float64(self.graphs.Len()))
	self.graphs = orderedmap.New[string, *Graph]()
	self.created = 0
	self.lock.Unlock()

	self.listenerLock.Lock()
	self.listeners = make([]*Subscription, 0)
	self.listenerLock.Unlock()
}
