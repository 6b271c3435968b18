package config

import (
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/kbukum/codenexus/validation"
)

// Config is the complete nexus configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Pipeline      PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline"`
	Manager       WorkersConfig       `yaml:"manager" mapstructure:"manager"`
	Dispatcher    WorkersConfig       `yaml:"dispatcher" mapstructure:"dispatcher"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	HTTP          HTTPConfig          `yaml:"http" mapstructure:"http"`
}

// PipelineConfig configures the stage chain adapters.
type PipelineConfig struct {
	// CSVDelimiter separates fields for the CSV adapter.
	CSVDelimiter string `yaml:"csv_delimiter" mapstructure:"csv_delimiter" validate:"len=1"`
}

// WorkersConfig bounds the fan-out of Manager.ProcessData or Dispatcher.ProcessAll.
// Zero or one runs every unit sequentially.
type WorkersConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"min=0,max=64"`
}

// ObservabilityConfig configures OTLP metric and trace export.
type ObservabilityConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true,omitempty,hostname_port"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval" validate:"min=0"`
}

// HTTPConfig configures the optional HTTP surface.
type HTTPConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"min=0"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Name == "" {
		c.Name = "nexus"
		c.Logging.ServiceName = c.Name
	}
	if c.Pipeline.CSVDelimiter == "" {
		c.Pipeline.CSVDelimiter = ","
	}
	if c.Observability.Endpoint == "" && c.Observability.Enabled {
		c.Observability.Endpoint = "localhost:4318"
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
	if c.Observability.MetricInterval == 0 {
		c.Observability.MetricInterval = 15 * time.Second
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
}

// Validate checks the service fields and every struct tag, reporting all
// failures together.
func (c *Config) Validate() error {
	var result *multierror.Error
	if err := c.ServiceConfig.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := validation.Validate(c); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
