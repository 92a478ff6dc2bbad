package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/roadwatch/camsnap/internal/clock/system"
	"github.com/roadwatch/camsnap/internal/fetcher/lta"
	"github.com/roadwatch/camsnap/internal/logging"
	"github.com/roadwatch/camsnap/internal/ops"
	"github.com/roadwatch/camsnap/internal/poller"
	"github.com/roadwatch/camsnap/internal/report"
	"github.com/roadwatch/camsnap/internal/storage"
	"github.com/roadwatch/camsnap/pkg/config"
)

// newPollCmd creates the 'poll' subcommand, which executes one full
// collection run to completion.
func newPollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run the camera collection loop",
		Long: `Loads the camera registry, then polls every camera on the configured
interval until the run duration elapses. Images are fetched only inside the
daily active window. SIGINT/SIGTERM end the run gracefully with a final
summary.`,
		RunE: runPoll,
	}

	flags := cmd.Flags()
	flags.String("camera-csv", "", "path to the camera registry CSV")
	flags.String("output-dir", "", "directory to store downloaded images")
	flags.Float64("interval-minutes", 0, "polling interval in minutes")
	flags.Float64("duration-days", 0, "total run duration in days (fractional allowed)")
	flags.String("active-start", "", "daily start of the active window, HH:MM")
	flags.String("active-end", "", "daily end of the active window, HH:MM (24:00 allowed)")
	flags.String("api-key", "", "upstream API account key")

	bind := map[string]string{
		"poll.camera_csv":       "camera-csv",
		"poll.output_dir":       "output-dir",
		"poll.interval_minutes": "interval-minutes",
		"poll.duration_days":    "duration-days",
		"poll.active_start":     "active-start",
		"poll.active_end":       "active-end",
		"api.key":               "api-key",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func runPoll(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(viper.GetBool("log.development"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if config.ReadErr != nil {
		return fmt.Errorf("read config file: %w", config.ReadErr)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Info("using config file", zap.String("path", used))
	}

	cfg, err := poller.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cameras, err := poller.LoadRegistry(cfg.CameraCSV, logger)
	if err != nil {
		return err
	}
	logger.Info("camera registry loaded",
		zap.String("path", cfg.CameraCSV),
		zap.Int("cameras", len(cameras)),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mirror, closeMirror, err := buildMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeMirror()

	sink, err := poller.NewFileSystemSink(cfg.OutputRoot, mirror, cfg.Mirror.Prefix, logger)
	if err != nil {
		return err
	}

	clk := system.New()
	fetcher := lta.NewClient(lta.Config{
		DirectoryURL: cfg.DirectoryURL,
		APIKey:       cfg.APIKey,
		Timeout:      cfg.FetchTimeout,
		DownloadRPS:  cfg.DownloadRPS,
		DirectoryTTL: cfg.Interval / 2,
	}, clk, logger)

	reporters := []poller.Reporter{report.NewLogReporter(logger)}
	if cfg.ReportTopic != "" {
		pr, err := report.NewPubSubReporter(ctx, cfg.ReportProject, cfg.ReportTopic, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := pr.Close(); cerr != nil {
				logger.Warn("close cycle reporter", zap.Error(cerr))
			}
		}()
		reporters = append(reporters, pr)
	}

	if cfg.OpsListenAddr != "" {
		srv := ops.NewServer(cfg.OpsListenAddr, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				logger.Warn("ops listener shutdown", zap.Error(serr))
			}
		}()
	}

	scheduler := poller.NewScheduler(
		poller.SchedulerConfig{
			Interval:    cfg.Interval,
			Duration:    cfg.Duration,
			Concurrency: cfg.Concurrency,
		},
		cameras,
		cfg.Window,
		fetcher,
		sink,
		clk,
		reporters,
		logger,
	)

	scheduler.Run(ctx)
	return nil
}

// buildMirror resolves the configured mirror provider. The returned closer
// is a no-op unless the provider holds a connection.
func buildMirror(ctx context.Context, cfg poller.Config, logger *zap.Logger) (storage.Provider, func(), error) {
	noop := func() {}
	if !cfg.Mirror.Enabled() {
		return nil, noop, nil
	}
	switch cfg.Mirror.Provider {
	case poller.MirrorS3:
		p, err := storage.NewS3Provider(ctx, cfg.Mirror.Bucket, cfg.Mirror.Profile, cfg.Mirror.Region)
		if err != nil {
			return nil, noop, err
		}
		return p, noop, nil
	case poller.MirrorGCS:
		p, err := storage.NewGCSProvider(ctx, cfg.Mirror.Bucket, logger)
		if err != nil {
			return nil, noop, err
		}
		return p, func() {
			if cerr := p.Close(); cerr != nil {
				logger.Warn("close GCS mirror", zap.Error(cerr))
			}
		}, nil
	default:
		return nil, noop, fmt.Errorf("unknown mirror provider %q", cfg.Mirror.Provider)
	}
}
