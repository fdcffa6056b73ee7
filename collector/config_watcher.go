package collector

import (
	"context"
	"io/ioutil"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// ConfigWatcher keeps the panel set in sync with the YAML files in the
// panels directory. Dropping a file in adds the panel, removing it takes the
// panel out, both without a restart.
type ConfigWatcher struct {
	panelQueueComm PanelQueueComm
	watcher        *fsnotify.Watcher
}

func NewConfigWatcher(panelQueueComm PanelQueueComm) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ConfigWatcher{
		panelQueueComm: panelQueueComm,
		watcher:        watcher}, nil
}

func (watcher *ConfigWatcher) initConfigs(panelsDir string) error {
	files, err := ioutil.ReadDir(panelsDir)
	if err != nil {
		return err
	}

	for _, file := range files {
		if filepath.Ext(file.Name()) != ".yaml" {
			continue
		}

		if err := watcher.handleConfig(fsnotify.Create, filepath.Join(panelsDir, file.Name())); err != nil {
			return err
		}
	}

	return nil
}

func (watcher *ConfigWatcher) handleConfig(op fsnotify.Op, configPath string) error {
	switch op {
	case fsnotify.Create:
		panel, err := NewPanel(configPath)
		if err != nil {
			return err
		}
		watcher.panelQueueComm.AddPanel <- *panel
	case fsnotify.Remove:
		watcher.panelQueueComm.RemovePanel <- getFileNameWithoutExtension(configPath)
	}
	return <-watcher.panelQueueComm.Ack
}

func (watcher *ConfigWatcher) Run(ctx context.Context, panelsDir string) error {
	go func() {
		if err := watcher.initConfigs(panelsDir); err != nil {
			logrus.Error(err.Error())
		}

		monitorOps := map[fsnotify.Op]bool{
			fsnotify.Create: true,
			fsnotify.Remove: true,
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.watcher.Events:
				if !ok {
					continue
				}
				if filepath.Ext(event.Name) != ".yaml" {
					continue
				}
				if _, isExist := monitorOps[event.Op]; !isExist {
					continue
				}
				if err := watcher.handleConfig(event.Op, event.Name); err != nil {
					logrus.Errorf("Failed to handle config path [%s], err [%s].", event.Name, err)
				}
			case err, ok := <-watcher.watcher.Errors:
				if !ok {
					continue
				}
				logrus.Errorf("Failed to watch events, err [%s].", err)
			}
		}
	}()

	return watcher.watcher.Add(panelsDir)
}

func (watcher *ConfigWatcher) Release() {
	watcher.watcher.Close()
}
