package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes yaml scalars like "30s" or "1m"; yaml.v3 cannot decode
// time.Duration on its own.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Server struct {
	Addr string `yaml:"addr"` // e.g. :8080
}

type Backend struct {
	URL     string   `yaml:"url"`     // default Prometheus base URL
	Timeout Duration `yaml:"timeout"` // per range query, e.g. 30s
}

type Query struct {
	Step      Duration `yaml:"step"`      // 0 = derive from window
	MaxPoints int      `yaml:"maxPoints"` // target points when deriving step
	MinStep   Duration `yaml:"minStep"`   // floor for the derived step
}

type Chart struct {
	Title  string  `yaml:"title"`
	XLabel string  `yaml:"xlabel"`
	YLabel string  `yaml:"ylabel"`
	Width  float64 `yaml:"width"`  // inches
	Height float64 `yaml:"height"` // inches
}

type Probe struct {
	Enabled bool     `yaml:"enabled"`
	Every   Duration `yaml:"every"` // e.g. 30s
}

type Tracing struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	SampleRatio  float64 `yaml:"sampleRatio"`
}

type Config struct {
	Server  Server  `yaml:"server"`
	Backend Backend `yaml:"backend"`
	Query   Query   `yaml:"query"`
	Chart   Chart   `yaml:"chart"`
	Probe   Probe   `yaml:"probe"`
	Tracing Tracing `yaml:"tracing"`
}

// Load reads a yaml config file; an empty path yields pure defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Backend.URL == "" {
		c.Backend.URL = "http://localhost:9090"
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = Duration(30 * time.Second)
	}
	if c.Query.MaxPoints == 0 {
		c.Query.MaxPoints = 100
	}
	if c.Query.MinStep == 0 {
		c.Query.MinStep = Duration(15 * time.Second)
	}
	if c.Chart.Title == "" {
		c.Chart.Title = "Prometheus Query Result"
	}
	if c.Chart.XLabel == "" {
		c.Chart.XLabel = "Time"
	}
	if c.Chart.YLabel == "" {
		c.Chart.YLabel = "Value"
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 14
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 8
	}
	if c.Probe.Every == 0 {
		c.Probe.Every = Duration(30 * time.Second)
	}
}
