package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/smhanov/cqlmatch"
	"github.com/smhanov/cqlmatch/metacard"
	"github.com/smhanov/cqlmatch/query"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := cqlmatch.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.RecordsFile == "" && !cfg.Explain {
		fmt.Println("Usage:")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(cfg, logger, os.Stdout); err != nil {
		level.Error(logger).Log("msg", "cqlmatch failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg cqlmatch.Config, logger log.Logger, out io.Writer) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m, err := cqlmatch.NewConfiguredMatcher(logger, reg)
	if err != nil {
		return err
	}

	text := cfg.Filter
	if strings.TrimSpace(text) == "" {
		text = "INCLUDE"
	}
	f, err := m.Compile(text, params)
	if err != nil {
		return err
	}

	if cfg.Explain {
		fmt.Fprintln(out, f.String())
		fmt.Fprintf(out, "capabilities: %s\n", m.Capabilities())
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}

	records, err := metacard.ReadRecordFile(cfg.RecordsFile)
	if err != nil {
		return err
	}
	level.Debug(logger).Log("msg", "loaded records", "file", cfg.RecordsFile, "count", len(records))

	matched := m.Filter(records, f)
	level.Info(logger).Log("msg", "evaluated filter", "records", len(records), "matched", len(matched))

	switch {
	case cfg.Count:
		fmt.Fprintln(out, len(matched))
	case cfg.ExportProto != "":
		if err := exportProto(cfg.ExportProto, matched); err != nil {
			return err
		}
	default:
		if err := metacard.WriteRecords(out, matched); err != nil {
			return err
		}
	}

	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, reg); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}
	return nil
}

func exportProto(path string, records []*metacard.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := metacard.WriteProtoRecords(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseParams turns name=value pairs into query parameters. Values are kept
// as text; comparisons against numeric attributes convert them as needed.
func parseParams(pairs []string) (query.Parameters, error) {
	params := query.Parameters{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid parameter %q, expected name=value", pair)
		}
		params[name] = value
	}
	return params, nil
}
