package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/course-plan/internal/config"
	"github.com/pfrederiksen/course-plan/internal/curriculum"
	"github.com/pfrederiksen/course-plan/internal/logger"
	"github.com/pfrederiksen/course-plan/internal/scraper"
	"github.com/pfrederiksen/course-plan/internal/storage"
	"github.com/pfrederiksen/course-plan/internal/table"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var version = "dev"

var (
	flagConfig    string
	flagCacheFile string
	flagOutput    string
	flagFormat    string
	flagRefresh   bool
	flagVerbose   bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course-plan <url>",
		Short: "Convert a LiU program plan page into a course table",
		Long: `A CLI tool that downloads a university program plan page once, caches it,
and writes every course offering (term, period, block, specialization and
field of study) as a tab-separated table.`,
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runConvert,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "Optional YAML config file")
	cmd.Flags().StringVar(&flagCacheFile, "cache-file", config.DefaultCacheFile, "Cached copy of the page")
	cmd.Flags().StringVar(&flagOutput, "output", config.DefaultOutputFile, "Output table")
	cmd.Flags().StringVar(&flagFormat, "format", string(table.FormatTSV), "Output format: tsv or json")
	cmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Download the page even if a cached copy exists")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging and print metrics")

	return cmd
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("cache-file") {
		cfg.Cache.File = flagCacheFile
	}
	if flags.Changed("output") {
		cfg.Output.File = flagOutput
	}
	if flags.Changed("format") {
		cfg.Output.Format = flagFormat
	}
	if flagVerbose {
		cfg.Log.Level = string(logger.LevelDebug)
	}
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runConvert is the main command logic
func runConvert(cmd *cobra.Command, args []string) error {
	url := strings.TrimSpace(args[0])
	if url == "" {
		return fmt.Errorf("url must not be empty")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log := logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(log)

	cache, err := storage.New(cfg.Cache.File)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}

	sc := scraper.New(
		scraper.WithUserAgent(cfg.Scraper.UserAgent),
		scraper.WithTimeout(cfg.Scraper.Timeout),
	)

	if err := log.Phase("download", func() error {
		_, err := scraper.EnsureCached(cmd.Context(), sc, cache, url, flagRefresh)
		return err
	}); err != nil {
		return fmt.Errorf("downloading page: %w", err)
	}

	var doc *goquery.Document
	if err := log.Phase("parse", func() error {
		doc, err = scraper.LoadCached(cache)
		return err
	}); err != nil {
		return fmt.Errorf("parsing %s: %w", cache.Path(), err)
	}

	var fields curriculum.FieldOfStudyMap
	if err := log.Phase("resolve", func() error {
		fields, err = curriculum.ResolveFieldsOfStudy(doc)
		return err
	}); err != nil {
		return fmt.Errorf("resolving fields of study: %w", err)
	}
	log.Debug("Resolved fields of study", logger.Fields{"count": fields.Len(), "codes": fields.Codes()})

	var catalog *curriculum.Catalog
	if err := log.Phase("extract", func() error {
		catalog, err = curriculum.Extract(doc, fields,
			curriculum.WithCourseURLBase(cfg.Catalog.CourseURLBase),
			curriculum.WithLogger(log),
		)
		return err
	}); err != nil {
		return fmt.Errorf("extracting course plan: %w", err)
	}

	if err := log.Phase("write", func() error {
		return table.WriteFile(cfg.Output.File, table.Format(cfg.Output.Format), catalog)
	}); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	log.Info("Wrote course table", logger.Fields{
		"path":     cfg.Output.File,
		"courses":  catalog.Len(),
		"variants": catalog.VariantCount(),
	})
	log.Debug("Metrics", logger.Fields{"metrics": log.Metrics().GetSnapshot()})

	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		reportError(err)
		os.Exit(ExitError)
	}
}

// reportError logs a failed run through the default logger
func reportError(err error) {
	logger.Error("Run failed", nil, err)
}
