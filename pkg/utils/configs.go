package utils

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the complete collector configuration.
type Config struct {
	Path       string           `yaml:"path"`
	Interval   time.Duration    `yaml:"interval"`
	Docker     DockerConfig     `yaml:"docker"`
	Naming     NamingConfig     `yaml:"naming"`
	Collection CollectionConfig `yaml:"collection"`
	Metrics    []MetricPath     `yaml:"metrics"`
	Output     OutputConfig     `yaml:"output"`
	Serve      ServeConfig      `yaml:"serve"`
	Log        LogConfig        `yaml:"log"`
}

// DockerConfig selects and bounds the engine connection.
type DockerConfig struct {
	Host        string        `yaml:"host"`
	APIVersion  string        `yaml:"api_version"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// NamingConfig controls logical-name resolution.
type NamingConfig struct {
	EnvVar  string `yaml:"env_var"`
	Unknown string `yaml:"unknown"`
}

type CollectionConfig struct {
	Workers         int  `yaml:"workers"`
	IsolateFailures bool `yaml:"isolate_failures"`
}

// MetricPath maps a dotted stats path to a metric suffix.
type MetricPath struct {
	Path   string `yaml:"path"`
	Suffix string `yaml:"suffix"`
}

type OutputConfig struct {
	Format  string `yaml:"format"`
	File    string `yaml:"file"`
	Address string `yaml:"address"`
}

type ServeConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func NewConfig() *Config {
	return &Config{
		Path:     DefaultPath,
		Interval: DefaultInterval,
		Docker: DockerConfig{
			CallTimeout: DefaultCallTimeout,
		},
		Naming: NamingConfig{
			EnvVar:  DefaultNameEnvVar,
			Unknown: DefaultUnknownName,
		},
		Collection: CollectionConfig{
			Workers: DefaultWorkers,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
		},
		Serve: ServeConfig{
			Port: DefaultPort,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadFile merges a YAML file over the current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides values from DOCKER_STATS_* variables.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"PATH":           &c.Path,
		"DOCKER_HOST":    &c.Docker.Host,
		"API_VERSION":    &c.Docker.APIVersion,
		"NAME_ENV_VAR":   &c.Naming.EnvVar,
		"UNKNOWN_NAME":   &c.Naming.Unknown,
		"OUTPUT_FORMAT":  &c.Output.Format,
		"OUTPUT_FILE":    &c.Output.File,
		"OUTPUT_ADDRESS": &c.Output.Address,
		"LOG_LEVEL":      &c.Log.Level,
		"LOG_FORMAT":     &c.Log.Format,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"INTERVAL":     &c.Interval,
		"CALL_TIMEOUT": &c.Docker.CallTimeout,
	}
	for key, dst := range durations {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"WORKERS": &c.Collection.Workers,
		"PORT":    &c.Serve.Port,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "ISOLATE_FAILURES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sISOLATE_FAILURES: %w", EnvPrefix, err)
		}
		c.Collection.IsolateFailures = b
	}
	return nil
}

// Load layers the config file and the environment under any flags the user
// set explicitly, then validates the result. Flags bound with AddFlags win.
func (c *Config) Load(file string, flags *pflag.FlagSet) error {
	changed := make(map[string]string)
	if flags != nil {
		flags.Visit(func(f *pflag.Flag) {
			changed[f.Name] = f.Value.String()
		})
	}

	if file != "" {
		if err := c.LoadFile(file); err != nil {
			return err
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return err
	}

	for name, val := range changed {
		if err := flags.Set(name, val); err != nil {
			return fmt.Errorf("failed to reapply flag --%s: %w", name, err)
		}
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.Docker.CallTimeout < 0 {
		return fmt.Errorf("docker.call_timeout must not be negative, got %s", c.Docker.CallTimeout)
	}
	if c.Collection.Workers < 1 {
		return fmt.Errorf("collection.workers must be at least 1, got %d", c.Collection.Workers)
	}
	if c.Naming.EnvVar == "" {
		return fmt.Errorf("naming.env_var must not be empty")
	}
	if c.Naming.Unknown == "" {
		return fmt.Errorf("naming.unknown must not be empty")
	}

	c.Output.Format = strings.ToLower(c.Output.Format)
	if !slices.Contains(OutputFormats, c.Output.Format) {
		return fmt.Errorf("unsupported output format %q (want one of %s)",
			c.Output.Format, strings.Join(OutputFormats, ", "))
	}
	switch c.Output.Format {
	case "graphite":
		if c.Output.Address == "" {
			return fmt.Errorf("output.address is required for graphite output")
		}
	case "jsonl", "csv", "tsv", "parquet":
		if c.Output.File == "" {
			return fmt.Errorf("output.file is required for %s output", c.Output.Format)
		}
	}

	if c.Serve.Port <= 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port out of range: %d", c.Serve.Port)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log.format %q (want json or console)", c.Log.Format)
	}

	seen := make(map[string]bool, len(c.Metrics))
	for i, m := range c.Metrics {
		if m.Path == "" || m.Suffix == "" {
			return fmt.Errorf("metrics[%d]: path and suffix are required", i)
		}
		if seen[m.Path] {
			return fmt.Errorf("metrics[%d]: duplicate path %q", i, m.Path)
		}
		seen[m.Path] = true
	}
	return nil
}

// AddCollectionFlags adds the flags every collecting command shares.
func (c *Config) AddCollectionFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.Path, "path", c.Path, "Namespace prefix for published metric names")
	flags.StringVar(&c.Docker.Host, "docker-host", c.Docker.Host, "Docker engine endpoint (default: DOCKER_HOST)")
	flags.StringVar(&c.Docker.APIVersion, "api-version", c.Docker.APIVersion, "Pin the engine API version (default: negotiate)")
	flags.DurationVar(&c.Docker.CallTimeout, "call-timeout", c.Docker.CallTimeout, "Timeout for each engine call (0 disables)")
	flags.StringVar(&c.Naming.EnvVar, "name-env", c.Naming.EnvVar, "Environment variable holding the logical container name")
	flags.IntVar(&c.Collection.Workers, "workers", c.Collection.Workers, "Containers extracted concurrently")
	flags.BoolVar(&c.Collection.IsolateFailures, "isolate-failures", c.Collection.IsolateFailures, "Skip failing containers instead of abandoning the cycle")
}

// AddOutputFlags adds sink selection flags.
func (c *Config) AddOutputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&c.Output.Format, "format", "f", c.Output.Format, "Output format ("+strings.Join(OutputFormats, ", ")+")")
	flags.StringVarP(&c.Output.File, "output", "o", c.Output.File, "Output file (default: stdout for text)")
	flags.StringVar(&c.Output.Address, "address", c.Output.Address, "Graphite host:port")
}

func (c *Config) AddScheduleFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&c.Interval, "interval", c.Interval, "Collection interval")
}

func (c *Config) AddServeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&c.Serve.Port, "port", c.Serve.Port, "HTTP server port")
}

// AddLogFlags adds logging flags as persistent flags of the root command.
func (c *Config) AddLogFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&c.Log.Level, "log-level", c.Log.Level, "Log level (debug, info, warn, error)")
	flags.StringVar(&c.Log.Format, "log-format", c.Log.Format, "Log format (json, console)")
}

func GetHostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
