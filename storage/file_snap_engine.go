package storage

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v2"
)

const SnapshotDirName = "snapshots"

type FileSnapEngine struct {
	dataDir string
}

func GetFileSnapEngine(dataDir string) (SnapEngine, error) {
	snapshotDir := filepath.Join(dataDir, SnapshotDirName)
	if err := os.MkdirAll(snapshotDir, os.ModePerm); err != nil {
		return nil, err
	}
	return &FileSnapEngine{
		dataDir: dataDir,
	}, nil
}

func (engine *FileSnapEngine) loadFile(file string) (*Snapshot, error) {
	var snapshot Snapshot
	bytes, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(bytes, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (engine *FileSnapEngine) panelDir(panel string) string {
	return filepath.Join(engine.dataDir, SnapshotDirName, panel)
}

func (engine *FileSnapEngine) Save(snapshot Snapshot) error {
	panelDir := engine.panelDir(snapshot.Panel)
	if err := os.MkdirAll(panelDir, os.ModePerm); err != nil {
		return err
	}

	bytes, err := yaml.Marshal(&snapshot)
	if err != nil {
		return err
	}

	snapshotPath := filepath.Join(panelDir, strconv.FormatInt(snapshot.TakenAt, 10))
	fp, err := os.OpenFile(snapshotPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer fp.Close()

	if _, err = fp.WriteString(string(bytes)); err != nil {
		return err
	}
	return nil
}

// latestPath picks the newest snapshot file in a panel directory. Files are
// named by unix timestamp, so the numeric maximum wins.
func (engine *FileSnapEngine) latestPath(panelDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(panelDir, "*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no snapshots under [%s]", panelDir)
	}

	var latest string
	var latestStamp int64 = -1
	for _, file := range matches {
		stamp, err := strconv.ParseInt(filepath.Base(file), 10, 64)
		if err != nil {
			continue
		}
		if stamp > latestStamp {
			latestStamp = stamp
			latest = file
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no snapshots under [%s]", panelDir)
	}
	return latest, nil
}

func (engine *FileSnapEngine) Latest(panel string) (*Snapshot, error) {
	latest, err := engine.latestPath(engine.panelDir(panel))
	if err != nil {
		return nil, err
	}
	return engine.loadFile(latest)
}

func (engine *FileSnapEngine) Load() (map[string]Snapshot, error) {
	snapshots := map[string]Snapshot{}
	panelDirs, err := ioutil.ReadDir(filepath.Join(engine.dataDir, SnapshotDirName))
	if err != nil {
		return nil, err
	}

	for _, dir := range panelDirs {
		if !dir.IsDir() {
			continue
		}
		snapshot, err := engine.Latest(dir.Name())
		if err != nil {
			return nil, err
		}
		snapshots[dir.Name()] = *snapshot
	}
	return snapshots, nil
}
