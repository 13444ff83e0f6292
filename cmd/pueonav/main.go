package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/pueo/pueonav"
	"github.com/pueo/pueonav/internal/config"
	"github.com/pueo/pueonav/internal/runindex"
	"github.com/pueo/pueonav/internal/version"
	"github.com/pueo/pueonav/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const longHelp = `
Navigate PUEO detector runs from the command line.

Runs are read from the data root named by PUEO<v>_ROOT_DATA, PUEO_MC_DATA
(simulation), PUEO_ROOT_DATA or --data-root. Blinding files, the HiCal
track and the cross-run index caches live in the calibration directory
(PUEO_CALIB_DIR or --calib-dir).

Settings are layered: defaults, then $HOME/.pueonav/config.toml, then
PUEONAV_* environment variables, then flags.
`

var exampleUsage = strings.TrimSpace(`
  pueonav show --run 1234 --event 61234567
  pueonav runmap event 61234567
  pueonav replay --playlist candidates.txt --bookmark ~/.pueonav/replay.json
  pueonav minbias --run 1234 --count 20
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the resolved configuration to subcommands.
type app struct {
	cfg     config.Config
	cfgPath string

	zl     zerolog.Logger
	logger log.Logger
	reg    *runindex.Registry

	metrics *http.Server
}

func main() {
	a := newApp()
	if err := a.rootCmd().Execute(); err != nil {
		a.zl.Error().Err(err).Msg("pueonav")
		os.Exit(1)
	}
}

func newApp() *app {
	return &app{cfg: config.DefaultConfig(), zl: pueonav.Logger()}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pueonav",
		Short:         "Navigate PUEO detector runs",
		Long:          strings.TrimSpace(longHelp),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.pueonav/config.toml)")
	f.StringVar(&a.cfg.DataRoot, "data-root", a.cfg.DataRoot, "data root (overrides the PUEO*_ROOT_DATA chain)")
	f.StringVar(&a.cfg.CalibDir, "calib-dir", a.cfg.CalibDir, "calibration directory (overrides PUEO_CALIB_DIR)")
	f.IntVar(&a.cfg.Version, "data-version", a.cfg.Version, "data directory selector: -1 default, 0 simulated, >0 epoch")
	f.BoolVar(&a.cfg.Decimated, "decimated", a.cfg.Decimated, "navigate the decimated header store")
	f.StringVar(&a.cfg.Blinding, "blinding", a.cfg.Blinding, "comma separated blinding behaviours: vpol,hpol,polarity")
	f.StringVar(&a.cfg.MetricsAddr, "metrics-addr", a.cfg.MetricsAddr, "serve prometheus metrics on this address")
	f.BoolVar(&a.cfg.Quiet, "quiet", a.cfg.Quiet, "only log errors")

	root.AddCommand(
		a.showCmd(),
		a.runmapCmd(),
		a.replayCmd(),
		a.minbiasCmd(),
		a.watchCmd(),
		a.convertCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if err := config.Load(&a.cfg, a.cfgPath, changed); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.zl = a.zl.Level(a.cfg.Level())
	a.logger = pueonav.NewLogger(a.zl)
	a.zl.Debug().Interface("config", a.cfg).Msg("configuration")

	a.reg = a.registry()

	if a.cfg.MetricsAddr != "" {
		a.serveMetrics()
	}
	return nil
}

// registry builds the cross-run index shared by every Dataset the command
// opens. An explicit data root applies to all versions.
func (a *app) registry() *runindex.Registry {
	opts := []runindex.Option{runindex.WithLogger(a.logger)}
	if a.cfg.DataRoot != "" {
		root := a.cfg.DataRoot
		opts = append(opts, runindex.WithDataDir(func(int) (string, error) { return root, nil }))
	}
	if a.cfg.CalibDir != "" {
		opts = append(opts, runindex.WithCacheDir(a.cfg.CalibDir))
	}
	return runindex.NewRegistry(opts...)
}

func (a *app) options() pueonav.Options {
	opts := a.cfg.DatasetOptions(a.logger)
	opts.Registry = a.reg
	return opts
}

// indexVersion is the version whose cross-run tables a command queries.
func (a *app) indexVersion() int {
	if a.cfg.Version == version.Unknown {
		return version.Default
	}
	return a.cfg.Version
}

func (a *app) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metrics = &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.zl.Error().Err(err).Str("addr", a.cfg.MetricsAddr).Msg("metrics server failed")
		}
	}()
	a.zl.Info().Str("addr", a.cfg.MetricsAddr).Msg("metrics server listening")
}

func (a *app) teardown() error {
	if a.metrics == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.metrics.Shutdown(ctx)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
