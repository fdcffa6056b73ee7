package collector

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type PanelTicker struct {
	ReadyPanels chan string
	quit        chan bool
	mutex       sync.Mutex
	cancel      map[string]chan bool
}

func NewPanelTicker() (*PanelTicker, error) {
	return &PanelTicker{
		ReadyPanels: make(chan string, 16),
		quit:        make(chan bool),
		cancel:      make(map[string]chan bool)}, nil
}

func (panelTicker *PanelTicker) AddPanel(panel Panel) {
	cancel := make(chan bool)
	panelTicker.mutex.Lock()
	panelTicker.cancel[panel.Name] = cancel
	panelTicker.mutex.Unlock()

	if panel.Class == Once {
		go func() {
			timer := time.NewTimer(time.Microsecond)
			defer timer.Stop()
			select {
			case <-panelTicker.quit:
			case <-cancel:
				return
			case <-timer.C:
				panelTicker.ReadyPanels <- panel.Name
			}
		}()
	} else if panel.Class == Periodic {
		go func() {
			ticker := time.NewTicker(time.Duration(panel.Interval) * time.Second)
			defer ticker.Stop()

			// Periodic panels refresh immediately, then on each tick.
			panelTicker.ReadyPanels <- panel.Name

			for {
				select {
				case <-panelTicker.quit:
					return
				case <-cancel:
					return
				case <-ticker.C:
					panelTicker.ReadyPanels <- panel.Name
				}
			}
		}()
	} else {
		logrus.Errorf("Unhandled class [%s]", panel.Class)
	}
}

func (panelTicker *PanelTicker) RemovePanel(panelName string) {
	panelTicker.mutex.Lock()
	defer panelTicker.mutex.Unlock()

	if cancel, isExist := panelTicker.cancel[panelName]; isExist {
		close(cancel)
		delete(panelTicker.cancel, panelName)
	}
}

func (panelTicker *PanelTicker) run(ctx context.Context) {
	<-ctx.Done()
	close(panelTicker.quit)
}

func (panelTicker *PanelTicker) Run(ctx context.Context) {
	go panelTicker.run(ctx)
}
