// Package cli implements the covdash command line.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chmouel/covdash/internal/config"
	"github.com/chmouel/covdash/internal/parser"
)

// ErrBelowThreshold is returned when --fail-under is not met.
var ErrBelowThreshold = errors.New("coverage below threshold")

type options struct {
	configFile string
	envFile    string
	format     string
	sort       string
	pathPrefix string
	srcRoot    string
	title      string
	base       string
	exclude    []string
	htmlPath   string
	badgePath  string
	badgeLabel string
	failUnder  float64
	open       bool
	verbose    bool
}

// flagToKey maps flags that override configuration keys.
var flagToKey = map[string]string{
	"format":      "output.format",
	"sort":        "output.sort",
	"path-prefix": "path_prefix",
	"src":         "src_root",
}

type app struct {
	fs     afero.Fs
	opts   options
	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand builds the covdash command tree. Reports, configuration and
// generated files are accessed through fs.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs, logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "covdash",
		Short: "Normalize coverage reports into one table",
		Long: `covdash reads coverage.py JSON, Vitest json-summary and Go coverage profiles
from files or URLs, normalizes them to per-file statistics and prints them as a
table, JSON or YAML. It can also write an HTML dashboard and an SVG badge.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.opts.configFile, "config", "", "YAML configuration file")
	pf.StringVar(&a.opts.envFile, "env-file", ".env", "dotenv file loaded when present")
	pf.StringVarP(&a.opts.format, "format", "f", "", "output format: table, json or yaml")
	pf.StringVarP(&a.opts.sort, "sort", "s", "", "row order: path, coverage or -coverage")
	pf.StringVar(&a.opts.pathPrefix, "path-prefix", "", "prefix stripped from json-summary file keys")
	pf.StringVar(&a.opts.srcRoot, "src", "", "source root holding go.mod for Go profiles")
	pf.StringVar(&a.opts.title, "title", "", "table title")
	pf.StringVar(&a.opts.base, "base", "", "base report to compare against (line-based formats)")
	pf.StringArrayVarP(&a.opts.exclude, "exclude", "e", nil, "regex of file paths to exclude, repeatable")
	pf.StringVar(&a.opts.htmlPath, "html", "", "write an HTML dashboard to this path, - for stdout")
	pf.StringVar(&a.opts.badgePath, "badge", "", "write an SVG badge to this path, - for stdout")
	pf.StringVar(&a.opts.badgeLabel, "badge-label", "", "left-hand text of the badge")
	pf.Float64Var(&a.opts.failUnder, "fail-under", 0, "exit non-zero when total coverage is below this percentage")
	pf.BoolVar(&a.opts.open, "open", false, "open the HTML dashboard in a browser")
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		a.reportCommand(parser.FormatPython, "python SOURCE", "Show a coverage.py JSON report"),
		a.reportCommand(parser.FormatVitest, "vitest SOURCE", "Show a Vitest json-summary report"),
		a.reportCommand(parser.FormatGo, "go SOURCE", "Show a Go coverage profile"),
		a.reportCommand(parser.FormatUnknown, "auto SOURCE", "Detect the report format and show it"),
	)
	return rootCmd
}

func (a *app) reportCommand(format parser.Format, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, format, args[0])
		},
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	zc := zap.NewProductionConfig()
	if a.opts.verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	overrides := map[string]any{}
	for flag, key := range flagToKey {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}

	cfg, err := config.Load(config.LoadOptions{
		Fs:        a.fs,
		File:      a.opts.configFile,
		EnvFile:   a.opts.envFile,
		Overrides: overrides,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug("configuration loaded",
		zap.String("config", a.opts.configFile),
		zap.String("format", cfg.Output.Format),
		zap.String("sort", cfg.Output.Sort))
	return nil
}
