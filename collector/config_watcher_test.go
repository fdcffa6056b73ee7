package collector

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

// ackingComm drains the queue side of the Comm channels so handleConfig can
// be exercised without a running PanelQueue.
func ackingComm() (PanelQueueComm, chan Panel, chan string) {
	comm := PanelQueueComm{
		AddPanel:    make(chan Panel),
		RemovePanel: make(chan string),
		Ack:         make(chan error),
	}
	added := make(chan Panel, 8)
	removed := make(chan string, 8)
	go func() {
		for {
			select {
			case panel := <-comm.AddPanel:
				added <- panel
				comm.Ack <- nil
			case panelName := <-comm.RemovePanel:
				removed <- panelName
				comm.Ack <- nil
			}
		}
	}()
	return comm, added, removed
}

func TestConfigWatcherInitConfigs(t *testing.T) {
	panelsDir := t.TempDir()
	writePanelConfig(t, panelsDir, "grid_power.yaml", "query: grid_power\n")
	writePanelConfig(t, panelsDir, "notes.txt", "not a panel")

	comm, added, _ := ackingComm()
	watcher, err := NewConfigWatcher(comm)
	if err != nil {
		t.Fatalf("NewConfigWatcher failed: %v", err)
	}
	defer watcher.Release()

	if err := watcher.initConfigs(panelsDir); err != nil {
		t.Fatalf("initConfigs failed: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("expected 1 panel, got %d", len(added))
	}
	panel := <-added
	if panel.Name != "grid_power" {
		t.Errorf("unexpected panel %q", panel.Name)
	}
}

func TestConfigWatcherHandleConfig(t *testing.T) {
	panelsDir := t.TempDir()
	path := writePanelConfig(t, panelsDir, "indoor.yaml", "query: indoor_temperature\n")

	comm, added, removed := ackingComm()
	watcher, err := NewConfigWatcher(comm)
	if err != nil {
		t.Fatalf("NewConfigWatcher failed: %v", err)
	}
	defer watcher.Release()

	if err := watcher.handleConfig(fsnotify.Create, path); err != nil {
		t.Fatalf("handleConfig create failed: %v", err)
	}
	if panel := <-added; panel.Query != "indoor_temperature" {
		t.Errorf("unexpected panel %+v", panel)
	}

	// Removal must work even after the file is gone.
	if err := watcher.handleConfig(fsnotify.Remove, path); err != nil {
		t.Fatalf("handleConfig remove failed: %v", err)
	}
	if panelName := <-removed; panelName != "indoor" {
		t.Errorf("unexpected removal %q", panelName)
	}
}

func TestConfigWatcherRejectsBrokenConfig(t *testing.T) {
	panelsDir := t.TempDir()
	path := writePanelConfig(t, panelsDir, "broken.yaml", "query: no_such_query\n")

	comm, added, _ := ackingComm()
	watcher, err := NewConfigWatcher(comm)
	if err != nil {
		t.Fatalf("NewConfigWatcher failed: %v", err)
	}
	defer watcher.Release()

	if err := watcher.handleConfig(fsnotify.Create, path); err == nil {
		t.Fatal("expected error for broken panel config")
	}
	if len(added) != 0 {
		t.Error("broken config must not reach the queue")
	}
}
