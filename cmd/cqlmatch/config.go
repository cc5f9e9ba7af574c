package main

import (
	"fmt"
	"strings"

	"github.com/smhanov/cqlmatch"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	// Bind command-line flags
	pflag.String("registry", "", "Path to the attribute registry (YAML or JSON)")
	pflag.String("records", "", "Path to the records file (.json, .ndjson, .jsonl or .pb)")
	pflag.String("filter", "", "CQL filter to evaluate; empty matches every record")
	pflag.StringArray("param", nil, "Query parameter as name=value, may be repeated")
	pflag.StringSlice("capabilities", []string{"default"}, "Evaluator capabilities, or 'default' / 'legacy'")
	pflag.StringSlice("blacklist", nil, "Attributes excluded from anyText searches")
	pflag.Bool("explain", false, "Print the parsed filter instead of evaluating it")
	pflag.Bool("count", false, "Print only the number of matching records")
	pflag.String("export-proto", "", "Write matching records to this file as length-delimited protobuf")
	pflag.String("metrics-textfile", "", "Write evaluation metrics to this file in Prometheus text format")
	pflag.String("config", "", "Path to the configuration file")
	pflag.String("log-level", "info", "Log level: debug, info, warn or error")
	pflag.String("log-format", "logfmt", "Log format: logfmt or json")

	f := pflag.CommandLine
	normalizeFunc := f.GetNormalizeFunc()
	f.SetNormalizeFunc(func(fs *pflag.FlagSet, name string) pflag.NormalizedName {
		result := normalizeFunc(fs, name)
		name = strings.ReplaceAll(string(result), "-", "_")
		return pflag.NormalizedName(name)
	})
}

func LoadConfig() (cqlmatch.Config, error) {
	var cfg cqlmatch.Config

	// Set default values
	viper.SetDefault("capabilities", []string{"default"})
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "logfmt")
	viper.SetEnvPrefix("cqlmatch")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Parse command-line flags
	pflag.Parse()

	// Bind command-line flags to Viper
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return cfg, fmt.Errorf("unable to bind flags, %v", err)
	}

	// Bind environment variables
	viper.AutomaticEnv()

	// Read configuration file if specified
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("cqlmatch.conf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc")
	}

	if err := viper.ReadInConfig(); err != nil {
		if configFile != "" {
			return cfg, fmt.Errorf("unable to read config file %s, %v", configFile, err)
		}
	}

	// Unmarshal configuration into struct
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode into struct, %v", err)
	}

	// Assign the loaded configuration to the global variable
	cqlmatch.Configure(cfg)

	return cfg, nil
}
