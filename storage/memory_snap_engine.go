package storage

import (
	"fmt"
	"sync"
)

// MemorySnapEngine keeps only the latest snapshot per panel. Used when the
// dashboard runs without a data directory.
type MemorySnapEngine struct {
	mutex     sync.RWMutex
	snapshots map[string]Snapshot
}

func GetMemorySnapEngine(_ string) (SnapEngine, error) {
	return &MemorySnapEngine{
		snapshots: map[string]Snapshot{},
	}, nil
}

func (engine *MemorySnapEngine) Save(snapshot Snapshot) error {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	current, isExist := engine.snapshots[snapshot.Panel]
	if isExist && current.TakenAt > snapshot.TakenAt {
		return nil
	}
	engine.snapshots[snapshot.Panel] = snapshot
	return nil
}

func (engine *MemorySnapEngine) Latest(panel string) (*Snapshot, error) {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()

	snapshot, isExist := engine.snapshots[panel]
	if !isExist {
		return nil, fmt.Errorf("no snapshots for panel [%s]", panel)
	}
	return &snapshot, nil
}

func (engine *MemorySnapEngine) Load() (map[string]Snapshot, error) {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()

	snapshots := make(map[string]Snapshot, len(engine.snapshots))
	for panel, snapshot := range engine.snapshots {
		snapshots[panel] = snapshot
	}
	return snapshots, nil
}
