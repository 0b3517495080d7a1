package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/saft/internal/buildinfo"
	"github.com/cleared-dev/saft/internal/config"
	"github.com/cleared-dev/saft/internal/exports"
	"github.com/cleared-dev/saft/internal/generator"
	"github.com/cleared-dev/saft/internal/model"
	"github.com/cleared-dev/saft/internal/snapshot"
	"github.com/cleared-dev/saft/internal/store"
)

// ErrChecksFailed is returned when a validation report contains failures.
var ErrChecksFailed = errors.New("checks failed")

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	verbose    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "saft",
		Short:   "Generate and validate SAF-T audit files",
		Version: buildinfo.Summary(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", config.FileName, "path to "+config.FileName)
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose development logging")

	rootCmd.AddCommand(
		newInitCommand(),
		newGenerateCommand(g),
		newValidateCommand(),
		newCheckInvoiceCommand(g),
		newExportsCommand(g),
		newDBCommand(g),
	)

	return rootCmd
}

// newLogger returns a development logger when verbose, otherwise a
// production logger that only reports warnings and errors.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// loadConfig reads the config file if present, applies environment
// overrides and resolves relative storage paths against the file's directory.
func (g *globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.Default()
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := filepath.Dir(g.configPath)
	cfg.Storage.DataDir = resolve(base, cfg.Storage.DataDir)
	cfg.Storage.ExportsDir = resolve(base, cfg.Storage.ExportsDir)
	return cfg, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// tenantSource is what the CLI needs from a storage backend.
type tenantSource interface {
	generator.Source
	Invoice(ctx context.Context, tenantID, invoiceID string) (model.Invoice, []model.InvoiceLine, error)
}

// backend opens the configured storage. The returned close func is never nil.
func backend(ctx context.Context, cfg *config.Config) (tenantSource, exports.Sink, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := store.NewPool(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, func() {}, err
		}
		s := store.New(pool)
		return s, s, pool.Close, nil
	default:
		return snapshot.NewDir(cfg.Storage.DataDir), exports.NewFileSink(cfg.Storage.ExportsDir), func() {}, nil
	}
}

func parseDay(flag, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", flag, value)
	}
	return t, nil
}
