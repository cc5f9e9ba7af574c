package cqlmatch

import (
	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smhanov/cqlmatch/metacard"
)

// Config holds the settings shared by the command line tool and embedders.
type Config struct {
	RegistryFile string   `mapstructure:"registry"`
	RecordsFile  string   `mapstructure:"records"`
	Filter       string   `mapstructure:"filter"`
	Params       []string `mapstructure:"param"`
	Capabilities []string `mapstructure:"capabilities"`
	Blacklist    []string `mapstructure:"blacklist"`

	Explain     bool   `mapstructure:"explain"`
	Count       bool   `mapstructure:"count"`
	ExportProto string `mapstructure:"export_proto"`

	MetricsTextfile string `mapstructure:"metrics_textfile"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var globalConfig Config

func init() {
	globalConfig = Config{
		Capabilities: []string{"default"},
		Blacklist:    []string{},
		LogLevel:     "info",
		LogFormat:    "logfmt",
	}
}

func Configure(cfg Config) {
	globalConfig = cfg
}

// CurrentConfig returns the configuration last passed to Configure.
func CurrentConfig() Config {
	return globalConfig
}

// NewConfiguredMatcher builds a Matcher from the global configuration,
// loading the attribute registry from Config.RegistryFile when one is set.
func NewConfiguredMatcher(logger log.Logger, reg prometheus.Registerer) (*Matcher, error) {
	cfg := globalConfig

	registry := metacard.Registry{}
	if cfg.RegistryFile != "" {
		var err error
		registry, err = metacard.LoadRegistryFile(cfg.RegistryFile)
		if err != nil {
			return nil, errors.Wrap(err, "loading attribute registry")
		}
	}

	return NewMatcher(registry, MatcherOptions{
		Logger:       logger,
		Registerer:   reg,
		Capabilities: cfg.Capabilities,
		Blacklist:    cfg.Blacklist,
	})
}
