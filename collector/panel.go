package collector

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"nanogrid/catalog"
	"nanogrid/influx"
)

type PanelClass uint8

const (
	Once PanelClass = iota
	Periodic
)

func (panelClass PanelClass) String() string {
	return [...]string{"Once", "Periodic"}[panelClass]
}

// Panel is one dashboard tile, defined by a YAML file in the panels
// directory. The panel name is the file name.
type Panel struct {
	Name     string
	Title    string           `yaml:"title"`
	Query    string           `yaml:"query"`
	Range    influx.TimeRange `yaml:"range"`
	Window   string           `yaml:"window"`
	Unit     string           `yaml:"unit"`
	Class    PanelClass       `yaml:"class"`
	Interval uint32           `yaml:"interval"`
}

func getFileNameWithoutExtension(configPath string) string {
	l := strings.LastIndexByte(configPath, '/') + 1
	if r := strings.LastIndexByte(configPath, '.'); r != -1 && r > l {
		return configPath[l:r]
	}
	return configPath[l:]
}

func (panel *Panel) validate() error {
	entry, err := catalog.Get(panel.Query)
	if err != nil {
		return err
	}
	if panel.Range != "" && !panel.Range.Valid() {
		return fmt.Errorf("unhandled time range [%s]", panel.Range)
	}
	if panel.Class == Periodic && panel.Interval == 0 {
		return fmt.Errorf("periodic panel [%s] needs an interval", panel.Name)
	}

	if panel.Title == "" {
		panel.Title = entry.Title
	}
	if panel.Unit == "" {
		panel.Unit = entry.Unit
	}
	return nil
}

func NewPanel(configPath string) (*Panel, error) {
	var panel Panel

	panel.Name = getFileNameWithoutExtension(configPath)
	if _, err := os.Stat(configPath); err != nil {
		return nil, err
	}

	data, err := ioutil.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, &panel); err != nil {
		return nil, err
	}

	if err := panel.validate(); err != nil {
		return nil, err
	}
	return &panel, nil
}
