// Package entity provides entities for business logic.
package entity

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	DefaultServerConfigFileName = "sockserver.yaml"

	EngineNameV1 = "v1"
	EngineNameV2 = "v2"

	OverflowNameWrap     = "wrap"
	OverflowNameSaturate = "saturate"
)

// ServerConfig server configuration
type ServerConfig struct {
	Logger      *LoggerConfig      `yaml:"Logger" toml:"Logger"`
	Runtime     *RuntimeConfig     `yaml:"Runtime" toml:"Runtime"`
	Network     *NetworkConfig     `yaml:"Network" toml:"Network"`
	Accumulator *AccumulatorConfig `yaml:"Accumulator" toml:"Accumulator"`
	Profiler    *ProfilerConfig    `yaml:"Profiler" toml:"Profiler"`
	Rest        *RestConfig        `yaml:"Rest" toml:"Rest"`
}

// LoggerConfig logger settings
type LoggerConfig struct {
	Level             string `yaml:"level" toml:"level" default:"info"`
	TimeFieldFormat   string `yaml:"timeFieldFormat" toml:"timeFieldFormat" default:"2006-01-02T15:04:05.000000"`
	PrettyPrint       *bool  `yaml:"prettyPrint" toml:"prettyPrint" default:"false"`
	DisableSampling   *bool  `yaml:"disableSampling" toml:"disableSampling" default:"true"`
	RedirectStdLogger *bool  `yaml:"redirectStdLogger" toml:"redirectStdLogger" default:"true"`
	ErrorStack        *bool  `yaml:"errorStack" toml:"errorStack" default:"true"`
	ShowCaller        *bool  `yaml:"showCaller" toml:"showCaller" default:"false"`
	FileName          string `yaml:"fileName,omitempty" toml:"fileName,omitempty" default:""`
}

// RuntimeConfig runtime settings
type RuntimeConfig struct {
	GoMaxProcs int `yaml:"goMaxProcs" toml:"goMaxProcs" default:"0"`
}

// NetworkConfig listener and connection settings. The port is not part of
// the file, it is passed on the command line. ShutdownTimeout is in seconds,
// 0 waits for connections without a limit.
type NetworkConfig struct {
	Host            string `yaml:"host,omitempty" toml:"host,omitempty" default:""`
	Engine          string `yaml:"engine" toml:"engine" default:"v1"`
	ReadBufferSize  int    `yaml:"readBufferSize" toml:"readBufferSize" default:"1024"`
	MaxFrameSize    int    `yaml:"maxFrameSize" toml:"maxFrameSize" default:"0"`
	Multicore       *bool  `yaml:"multicore" toml:"multicore" default:"true"`
	ShutdownTimeout *int   `yaml:"shutdownTimeout" toml:"shutdownTimeout" default:"5"`
	Tracing         *bool  `yaml:"tracing" toml:"tracing" default:"false"`
}

// AccumulatorConfig per-client sum settings
type AccumulatorConfig struct {
	Overflow string `yaml:"overflow" toml:"overflow" default:"wrap"`
}

// ProfilerConfig pprof configuration
type ProfilerConfig struct {
	Enabled *bool  `yaml:"enabled" toml:"enabled" default:"false"`
	Host    string `yaml:"host" toml:"host" default:"localhost"`
	Port    int    `yaml:"port" toml:"port" default:"8888"`
}

// RestConfig REST server configuration
type RestConfig struct {
	Enabled *bool  `yaml:"enabled" toml:"enabled" default:"false"`
	Host    string `yaml:"host" toml:"host" default:""`
	Port    int    `yaml:"port" toml:"port" default:"8877"`
}

func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Logger, validation.Required),
		validation.Field(&c.Network, validation.Required),
		validation.Field(&c.Accumulator, validation.Required),
		validation.Field(&c.Profiler, validation.Required),
		validation.Field(&c.Rest, validation.Required),
	)
}

func (c *LoggerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required,
			validation.In("debug", "info", "warn", "error", "fatal", "panic", "disabled")),
	)
}

func (c *NetworkConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, is.Host),
		validation.Field(&c.Engine, validation.Required, validation.In(EngineNameV1, EngineNameV2)),
		validation.Field(&c.ReadBufferSize, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxFrameSize, validation.Min(0)),
		validation.Field(&c.ShutdownTimeout, validation.NotNil, validation.Min(0)),
	)
}

func (c *AccumulatorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Overflow, validation.Required, validation.In(OverflowNameWrap, OverflowNameSaturate)),
	)
}

func (c *ProfilerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Min(1), validation.Max(65535)),
	)
}

func (c *RestConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Min(1), validation.Max(65535)),
	)
}
