package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type PanelQueueComm struct {
	AddPanel    chan Panel
	RemovePanel chan string
	Ack         chan error
}

// PanelQueue owns the live panel set. Additions and removals arrive over the
// Comm channels, refreshes are triggered by the ticker and handed to the
// runner.
type PanelQueue struct {
	Comm        PanelQueueComm
	panelProtos map[string]Panel
	ticker      *PanelTicker
	runner      *PanelRunner
}

func NewPanelQueue(runner *PanelRunner) (*PanelQueue, error) {
	ticker, err := NewPanelTicker()
	if err != nil {
		return nil, err
	}

	return &PanelQueue{
		Comm: PanelQueueComm{
			AddPanel:    make(chan Panel),
			RemovePanel: make(chan string),
			Ack:         make(chan error)},
		panelProtos: make(map[string]Panel),
		ticker:      ticker,
		runner:      runner}, nil
}

func (panelQueue *PanelQueue) addPanel(panel Panel) error {
	if _, isExist := panelQueue.panelProtos[panel.Name]; isExist {
		return errors.New("Duplicated panel name")
	}
	panelQueue.panelProtos[panel.Name] = panel

	panelQueue.ticker.AddPanel(panel)
	return nil
}

func (panelQueue *PanelQueue) removePanel(panelName string) error {
	if _, isExist := panelQueue.panelProtos[panelName]; !isExist {
		return fmt.Errorf("Panel [%s] does not exist", panelName)
	}

	delete(panelQueue.panelProtos, panelName)
	panelQueue.ticker.RemovePanel(panelName)
	return nil
}

func (panelQueue *PanelQueue) handlePanelInstance(panelName string) {
	panel, isExist := panelQueue.panelProtos[panelName]
	if !isExist {
		logrus.Errorf("Panel [%s] does not exist, cannot refresh.", panelName)
		return
	}

	if err := panelQueue.runner.Add(panel); err != nil {
		logrus.Errorf(err.Error())
	}
}

func (panelQueue *PanelQueue) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case panel := <-panelQueue.Comm.AddPanel:
			panelQueue.Comm.Ack <- panelQueue.addPanel(panel)
		case panelName := <-panelQueue.Comm.RemovePanel:
			panelQueue.Comm.Ack <- panelQueue.removePanel(panelName)
		case panelName := <-panelQueue.ticker.ReadyPanels:
			panelQueue.handlePanelInstance(panelName)
		}
	}
}

func (panelQueue *PanelQueue) Run(ctx context.Context) {
	panelQueue.ticker.Run(ctx)
	panelQueue.runner.Run(ctx)
	go panelQueue.run(ctx)
}
