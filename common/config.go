package common

import (
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"

	"nanogrid/influx"
)

type CacheConfig struct {
	Size       int `yaml:"size"`
	TTLSeconds int `yaml:"ttl"`
}

type Config struct {
	Listen     string        `yaml:"listen"`
	Token      string        `yaml:"token"`
	PanelsDir  string        `yaml:"panels_dir"`
	DataDir    string        `yaml:"data_dir"`
	SnapEngine string        `yaml:"snap_engine"`
	Influx     influx.Config `yaml:"influx"`
	Cache      CacheConfig   `yaml:"cache"`
}

func defaultConfig() *Config {
	return &Config{
		Listen:     ":8080",
		PanelsDir:  "/etc/nanogrid/panels",
		DataDir:    "/var/lib/nanogrid",
		SnapEngine: "file",
		Cache: CacheConfig{
			Size:       128,
			TTLSeconds: 60,
		},
	}
}

// LoadConfig reads the YAML config, then lets environment variables override
// the secrets so tokens can stay out of the file.
func LoadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := ioutil.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if url := os.Getenv("INFLUX_URL"); url != "" {
		config.Influx.URL = url
	}
	if token := os.Getenv("INFLUX_TOKEN"); token != "" {
		config.Influx.Token = token
	}
	if org := os.Getenv("INFLUX_ORG"); org != "" {
		config.Influx.Org = org
	}
	if bucket := os.Getenv("INFLUX_BUCKET"); bucket != "" {
		config.Influx.Bucket = bucket
	}
	if token := os.Getenv("NANOGRID_TOKEN"); token != "" {
		config.Token = token
	}

	return config, nil
}

func (config *Config) Validate() error {
	if config.Listen == "" {
		return fmt.Errorf("listen address is not set")
	}
	if config.PanelsDir == "" {
		return fmt.Errorf("panels directory is not set")
	}
	return config.Influx.Validate()
}
