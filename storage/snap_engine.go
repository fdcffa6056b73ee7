package storage

import (
	"fmt"

	"nanogrid/influx"
)

// Snapshot is one refreshed panel result, stamped and persisted so the API
// can serve the latest data without touching the store.
type Snapshot struct {
	ID      string           `yaml:"id" json:"id"`
	Panel   string           `yaml:"panel" json:"panel"`
	Title   string           `yaml:"title" json:"title"`
	Unit    string           `yaml:"unit" json:"unit"`
	Query   string           `yaml:"query" json:"query"`
	Range   influx.TimeRange `yaml:"range" json:"range"`
	Window  string           `yaml:"window" json:"window"`
	TakenAt int64            `yaml:"taken_at" json:"taken_at"`
	Points  []influx.Point   `yaml:"points" json:"points"`
}

type SnapEngineType string

const (
	File   SnapEngineType = "file"
	Memory SnapEngineType = "memory"
)

var snapEngineMap = map[string]func(string) (SnapEngine, error){
	"file":   GetFileSnapEngine,
	"memory": GetMemorySnapEngine,
}

type SnapEngine interface {
	Save(snapshot Snapshot) error
	Latest(panel string) (*Snapshot, error)
	Load() (map[string]Snapshot, error)
}

func GetSnapEngine(snapEngine, dataDir string) (SnapEngine, error) {
	getSnapEngineFunc, isExist := snapEngineMap[snapEngine]
	if isExist {
		return getSnapEngineFunc(dataDir)
	}
	return nil, fmt.Errorf("Unhandled snapshot engine [%s]", snapEngine)
}
