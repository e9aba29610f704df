package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aliskhannn/watermarker/internal/model"
)

// EnvPrefix prefixes every environment variable, e.g. WATERMARKER_OUTPUT_DIR.
const EnvPrefix = "WATERMARKER"

// Config holds the main configuration for the application.
type Config struct {
	Watermark string   `mapstructure:"watermark"` // Path to the overlay image
	Output    Output   `mapstructure:"output"`
	Pipeline  Pipeline `mapstructure:"pipeline"`
	Retry     Retry    `mapstructure:"retry"`
	Storage   Storage  `mapstructure:"storage"`
	Kafka     Kafka    `mapstructure:"kafka"`
	Journal   Journal  `mapstructure:"journal"`
	Server    Server   `mapstructure:"server"`
	Log       Log      `mapstructure:"log"`
}

// Output holds output placement and encoding settings.
type Output struct {
	Dir         string `mapstructure:"dir"`          // Target directory, created if absent
	Format      string `mapstructure:"format"`       // Explicit output format; empty infers from source
	Width       int    `mapstructure:"width"`        // Target width, 0 = unset
	Height      int    `mapstructure:"height"`       // Target height, 0 = unset
	JPEGQuality int    `mapstructure:"jpeg_quality"` // JPEG quality 1..100
	Recursive   bool   `mapstructure:"recursive"`    // Descend into nested directories
	Report      string `mapstructure:"report"`       // Optional report file (.json, .yaml, .yml)
}

// Pipeline holds worker pool settings.
type Pipeline struct {
	Concurrency int `mapstructure:"concurrency"` // Max jobs in flight, 0 = number of CPUs
}

// Retry defines retry policy configuration.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of attempts, 1 = no retry
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// Storage holds configuration for the optional S3-compatible mirror.
type Storage struct {
	Endpoint   string `mapstructure:"endpoint"` // Empty disables the mirror
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	Prefix     string `mapstructure:"prefix"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Kafka holds configuration for the Kafka message queue.
type Kafka struct {
	Brokers       []string `mapstructure:"brokers"`        // Empty disables Kafka
	ResultsTopic  string   `mapstructure:"results_topic"`  // Job result events
	RequestsTopic string   `mapstructure:"requests_topic"` // Batch requests for the consumer
	GroupID       string   `mapstructure:"group_id"`       // Consumer group ID
}

// Journal holds the result journal database settings.
type Journal struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres; empty disables the journal
	DSN    string `mapstructure:"dsn"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort string `mapstructure:"http_port"` // HTTP address to listen on
}

// Log holds logger settings.
type Log struct {
	Level string `mapstructure:"level"` // zerolog level name
}

// flagBindings maps configuration keys to command line flag names.
var flagBindings = map[string]string{
	"watermark":            "watermark",
	"output.dir":           "target-path",
	"output.format":        "format",
	"output.width":         "width",
	"output.height":        "height",
	"output.jpeg_quality":  "jpeg-quality",
	"output.recursive":     "recursive",
	"output.report":        "report",
	"pipeline.concurrency": "concurrency",
	"retry.attempts":       "retry-attempts",
	"server.http_port":     "addr",
	"log.level":            "log-level",
}

// setDefaults registers every key so that AutomaticEnv can override keys
// that appear in neither the config file nor the flags.
func setDefaults(v *viper.Viper) {
	v.SetDefault("watermark", "")
	v.SetDefault("output.dir", "./output")
	v.SetDefault("output.format", "")
	v.SetDefault("output.width", 0)
	v.SetDefault("output.height", 0)
	v.SetDefault("output.jpeg_quality", 95)
	v.SetDefault("output.recursive", false)
	v.SetDefault("output.report", "")
	v.SetDefault("pipeline.concurrency", runtime.NumCPU())
	v.SetDefault("retry.attempts", 1)
	v.SetDefault("retry.delay", 200*time.Millisecond)
	v.SetDefault("retry.backoff", 2.0)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket_name", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.results_topic", "watermark.results")
	v.SetDefault("kafka.requests_topic", "watermark.requests")
	v.SetDefault("kafka.group_id", "watermarker")
	v.SetDefault("journal.driver", "")
	v.SetDefault("journal.dsn", "")
	v.SetDefault("journal.max_open_conns", 4)
	v.SetDefault("journal.max_idle_conns", 2)
	v.SetDefault("journal.conn_max_lifetime", time.Hour)
	v.SetDefault("server.http_port", ":8080")
	v.SetDefault("log.level", "info")
}

// Load builds the configuration from defaults, an optional YAML file,
// WATERMARKER_* environment variables and flags, in increasing precedence.
// flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for key, name := range flagBindings {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks settings that must be correct before any job runs.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.ExplicitFormat(); err != nil {
		errs = append(errs, err)
	}
	if c.Output.Width < 0 || c.Output.Height < 0 {
		errs = append(errs, fmt.Errorf("width and height must not be negative"))
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		errs = append(errs, fmt.Errorf("output directory must not be empty"))
	}
	if c.Retry.Attempts < 1 {
		errs = append(errs, fmt.Errorf("retry attempts must be at least 1"))
	}
	switch c.Journal.Driver {
	case "", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown journal driver %q", c.Journal.Driver))
	}
	if c.Storage.Endpoint != "" && c.Storage.BucketName == "" {
		errs = append(errs, fmt.Errorf("storage bucket_name is required when endpoint is set"))
	}

	return errors.Join(errs...)
}

// ExplicitFormat parses Output.Format. It returns nil when no format is set.
func (c *Config) ExplicitFormat() (*model.Format, error) {
	if strings.TrimSpace(c.Output.Format) == "" {
		return nil, nil
	}

	f, err := model.ParseFormat(c.Output.Format)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// Resize returns the requested output dimensions.
func (c *Config) Resize() model.Resize {
	return model.Resize{Width: c.Output.Width, Height: c.Output.Height}
}

// KafkaEnabled reports whether brokers are configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
