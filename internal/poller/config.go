package poller

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Mirror provider names accepted by MirrorConfig.Provider.
const (
	MirrorNone = "none"
	MirrorS3   = "s3"
	MirrorGCS  = "gcs"
)

// MirrorConfig selects and parameterizes the optional remote object store.
type MirrorConfig struct {
	Provider string
	Bucket   string
	Prefix   string
	Region   string
	Profile  string
}

// Enabled reports whether a remote mirror is configured.
func (m MirrorConfig) Enabled() bool {
	return m.Provider != "" && m.Provider != MirrorNone
}

// Config is the fully-resolved configuration for one run. It is built once
// from Viper at startup and never mutated afterwards; everything the loop
// needs travels through this value and the Scheduler's own state.
type Config struct {
	CameraCSV  string
	OutputRoot string

	Interval time.Duration
	Duration time.Duration
	Window   Window

	APIKey       string
	DirectoryURL string
	FetchTimeout time.Duration
	DownloadRPS  float64
	Concurrency  int

	Mirror MirrorConfig

	ReportTopic   string
	ReportProject string

	OpsListenAddr string
}

// LoadConfig materializes a Config from Viper. All values may come from the
// config file, CAMSNAP_* environment variables, or CLI flags.
func LoadConfig(v *viper.Viper) (Config, error) {
	window, err := NewWindow(
		v.GetString("poll.active_start"),
		v.GetString("poll.active_end"),
		v.GetString("poll.timezone"),
	)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		CameraCSV:     v.GetString("poll.camera_csv"),
		OutputRoot:    v.GetString("poll.output_dir"),
		Interval:      time.Duration(v.GetFloat64("poll.interval_minutes") * float64(time.Minute)),
		Duration:      time.Duration(v.GetFloat64("poll.duration_days") * 24 * float64(time.Hour)),
		Window:        window,
		APIKey:        v.GetString("api.key"),
		DirectoryURL:  v.GetString("api.directory_url"),
		FetchTimeout:  v.GetDuration("api.timeout"),
		DownloadRPS:   v.GetFloat64("api.download_rps"),
		Concurrency:   v.GetInt("poll.concurrency"),
		ReportTopic:   v.GetString("report.topic"),
		ReportProject: v.GetString("report.project_id"),
		OpsListenAddr: v.GetString("ops.listen_addr"),
		Mirror: MirrorConfig{
			Provider: v.GetString("mirror.provider"),
			Bucket:   v.GetString("mirror.bucket"),
			Prefix:   v.GetString("mirror.prefix"),
			Region:   v.GetString("mirror.region"),
			Profile:  v.GetString("mirror.profile"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate enforces every startup rule. Any violation keeps the process out
// of the polling loop entirely.
func (c Config) Validate() error {
	if c.CameraCSV == "" {
		return fmt.Errorf("poll.camera_csv must be set")
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("poll.output_dir must be set")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("poll.interval_minutes must be > 0")
	}
	if c.Duration <= 0 {
		return fmt.Errorf("poll.duration_days must be > 0")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api.key must be set (or CAMSNAP_API_KEY exported)")
	}
	if c.DirectoryURL == "" {
		return fmt.Errorf("api.directory_url must be set")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0")
	}
	if c.DownloadRPS < 0 {
		return fmt.Errorf("api.download_rps must be >= 0")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("poll.concurrency must be > 0")
	}
	switch c.Mirror.Provider {
	case "", MirrorNone:
	case MirrorS3, MirrorGCS:
		if c.Mirror.Bucket == "" {
			return fmt.Errorf("mirror.bucket must be set when mirror.provider is %q", c.Mirror.Provider)
		}
	default:
		return fmt.Errorf("mirror.provider must be one of none, s3, gcs; got %q", c.Mirror.Provider)
	}
	if c.ReportTopic != "" && c.ReportProject == "" {
		return fmt.Errorf("report.project_id must be set when report.topic is set")
	}
	return nil
}

// Deadline computes the run deadline from a start instant.
func (c Config) Deadline(start time.Time) time.Time {
	return start.Add(c.Duration)
}
