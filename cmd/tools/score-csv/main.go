// cmd/tools/score-csv/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"screening-workers/internal/classifier"
	"screening-workers/internal/common/config"
	"screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/dataset"
	"screening-workers/internal/screening"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var version = "v0.0.1-default"

type options struct {
	In         string
	Out        string
	ConfigPath string
	Strict     bool
	Format     string
	Classifier string
	ModelPath  string
	Endpoint   string
}

// summary is printed once the results file has been written.
type summary struct {
	Input          string                 `json:"input" yaml:"input"`
	Output         string                 `json:"output" yaml:"output"`
	BatchID        string                 `json:"batchId" yaml:"batchId"`
	Classifier     string                 `json:"classifier" yaml:"classifier"`
	IgnoredColumns []string               `json:"ignoredColumns,omitempty" yaml:"ignoredColumns,omitempty"`
	Counts         screening.BatchSummary `json:"counts" yaml:"counts"`
	Failures       []errors.RowFailure    `json:"failures,omitempty" yaml:"failures,omitempty"`
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "score-csv: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var opts options
	var debug bool

	return &cli.App{
		Name:    "score-csv",
		Usage:   "Score a CSV of applicants and write AI_Selection_Results.csv",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "Input CSV file", Required: true, Destination: &opts.In},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Results CSV file", Value: dataset.DefaultResultsFileName, Destination: &opts.Out},
			&cli.StringFlag{Name: "config", Usage: "Worker config file supplying the classifier section (optional)", Destination: &opts.ConfigPath},
			&cli.BoolFlag{Name: "strict", Usage: "Reject rows with columns that name no known field (default: ignore them)", Destination: &opts.Strict},
			&cli.StringFlag{Name: "format", Usage: "Summary format [json, yaml]", Value: formatYAML, Destination: &opts.Format},
			&cli.StringFlag{Name: "classifier", Usage: "Override classifier type [none, onnx, remote]", Destination: &opts.Classifier},
			&cli.StringFlag{Name: "model", Usage: "ONNX model path (implies --classifier onnx)", Destination: &opts.ModelPath},
			&cli.StringFlag{Name: "endpoint", Usage: "Remote model URL (implies --classifier remote)", Destination: &opts.Endpoint},
			&cli.BoolFlag{Name: "debug", Usage: "Prints verbose logs", Destination: &debug},
		},
		Action: func(c *cli.Context) error {
			level := "info"
			if debug {
				level = "debug"
			}
			zapLog := logger.New(level, "console", "stderr")
			defer zapLog.Sync()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, opts, c.App.Writer, zapLog)
		},
	}
}

func run(ctx context.Context, opts options, stdout io.Writer, zapLog *zap.Logger) error {
	if opts.Format != formatJSON && opts.Format != formatYAML {
		return fmt.Errorf("unsupported format %q", opts.Format)
	}
	log := logger.NewZapAdapter(zapLog)

	ccfg, err := classifierConfig(opts)
	if err != nil {
		return err
	}

	model, err := classifier.NewFromConfig(ccfg, nil, log)
	if err != nil {
		return fmt.Errorf("load classifier: %w", err)
	}
	adapter := classifier.NewAdapter(model, config.GetDuration(ccfg.Timeout), log)
	defer adapter.Close()

	table, err := dataset.ReadFile(opts.In)
	if err != nil {
		return err
	}
	rows, ignored := table.Rows(opts.Strict)
	if len(ignored) > 0 {
		zapLog.Info("Ignoring columns that name no known field", zap.Strings("columns", ignored))
	}

	orchestrator := screening.New(adapter, screening.Options{}, log)
	batch, err := orchestrator.ScoreBatch(ctx, rows)
	partial, isPartial := errors.AsPartialBatchFailure(err)
	if err != nil && !isPartial {
		return fmt.Errorf("score %s: %w", opts.In, err)
	}

	if err := writeResults(opts.Out, table, batch); err != nil {
		return err
	}

	s := summary{
		Input:          opts.In,
		Output:         opts.Out,
		BatchID:        batch.BatchID,
		Classifier:     ccfg.Type,
		IgnoredColumns: ignored,
		Counts:         batch.Summary,
	}
	if isPartial {
		s.Failures = partial.Failures
	}

	zapLog.Info("Results written",
		zap.String("output", opts.Out),
		zap.Int("accepted", batch.Summary.Accepted),
		zap.Int("rejected", batch.Summary.Rejected),
		zap.Int("failed", batch.Summary.Failed),
	)
	return printSummary(stdout, opts.Format, s)
}

func classifierConfig(opts options) (config.ClassifierConfig, error) {
	ccfg := config.ClassifierConfig{Type: config.ClassifierNone, Timeout: 5000}
	if opts.ConfigPath != "" {
		cfg, err := config.LoadFromFile(opts.ConfigPath)
		if err != nil {
			return ccfg, err
		}
		ccfg = cfg.Classifier
		ccfg.Cache.Enabled = false
	}

	switch {
	case opts.Classifier != "":
		ccfg.Type = opts.Classifier
	case opts.ModelPath != "":
		ccfg.Type = config.ClassifierONNX
	case opts.Endpoint != "":
		ccfg.Type = config.ClassifierRemote
	}
	if opts.ModelPath != "" {
		ccfg.ModelPath = opts.ModelPath
	}
	if opts.Endpoint != "" {
		ccfg.Endpoint = opts.Endpoint
	}
	return ccfg, nil
}

func writeResults(path string, table *dataset.Table, batch *screening.BatchResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := dataset.WriteResultsCSV(f, table, batch); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printSummary(w io.Writer, format string, s summary) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
