package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nanogrid/cache"
	"nanogrid/catalog"
	"nanogrid/storage"
)

const queryTimeout = 30 * time.Second

// PanelRunner refreshes panels: it runs the panel's catalog query, stamps a
// snapshot, persists it, primes the result cache, and notifies subscribers.
type PanelRunner struct {
	querier         catalog.Querier
	engine          storage.SnapEngine
	results         *cache.ResultCache
	notify          func(storage.Snapshot)
	onError         func(panelName string)
	ctx             context.Context
	panelsInProcess sync.Map
}

func NewPanelRunner(querier catalog.Querier, engine storage.SnapEngine, results *cache.ResultCache) (*PanelRunner, error) {
	return &PanelRunner{
		querier: querier,
		engine:  engine,
		results: results,
		ctx:     context.Background(),
	}, nil
}

// SetNotify registers a callback invoked with every fresh snapshot.
func (runner *PanelRunner) SetNotify(notify func(storage.Snapshot)) {
	runner.notify = notify
}

// SetOnError registers a callback invoked when a refresh fails.
func (runner *PanelRunner) SetOnError(onError func(panelName string)) {
	runner.onError = onError
}

func (runner *PanelRunner) refresh(panel Panel) {
	timestamp := time.Now().Unix()
	runner.panelsInProcess.Store(panel.Name, timestamp)
	defer runner.panelsInProcess.Delete(panel.Name)

	ctx, cancel := context.WithTimeout(runner.ctx, queryTimeout)
	defer cancel()

	points, err := catalog.Run(ctx, runner.querier, panel.Query, panel.Range, panel.Window)
	if err != nil {
		logrus.Errorf("Failed to refresh panel [%s], err [%s]", panel.Name, err)
		if runner.onError != nil {
			runner.onError(panel.Name)
		}
		return
	}

	snapshot := storage.Snapshot{
		ID:      uuid.NewString(),
		Panel:   panel.Name,
		Title:   panel.Title,
		Unit:    panel.Unit,
		Query:   panel.Query,
		Range:   panel.Range,
		Window:  panel.Window,
		TakenAt: timestamp,
		Points:  points,
	}

	if err := runner.engine.Save(snapshot); err != nil {
		logrus.Errorf("Failed to save snapshot for panel [%s], err [%s]", panel.Name, err)
		return
	}
	if runner.results != nil {
		runner.results.Add(cache.Key(panel.Query, panel.Range, panel.Window), points)
	}
	if runner.notify != nil {
		runner.notify(snapshot)
	}
}

func (runner *PanelRunner) Add(panel Panel) error {
	if _, isExist := runner.panelsInProcess.Load(panel.Name); isExist {
		return fmt.Errorf("Panel [%s] is still refreshing", panel.Name)
	}

	go runner.refresh(panel)
	return nil
}

func (runner *PanelRunner) Run(ctx context.Context) {
	runner.ctx = ctx
}
