// Package config initializes the application's configuration. It uses Viper
// to read settings from a config file, environment variables, and CLI
// flags, providing a unified configuration surface.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/roadwatch/camsnap/internal/fetcher/lta"
)

// ReadErr holds a config-file parse failure, if any. cobra.OnInitialize
// runs before a logger exists, so commands check this once logging is up.
var ReadErr error

// InitConfig sets defaults, search paths, and env binding. Call once at
// startup before any configuration value is read.
func InitConfig() {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/camsnap/")
	viper.AddConfigPath("$HOME/.camsnap")

	viper.SetDefault("poll.camera_csv", "reference/camera_info.csv")
	viper.SetDefault("poll.output_dir", "data/images")
	viper.SetDefault("poll.interval_minutes", 5.0)
	viper.SetDefault("poll.duration_days", 7.0)
	viper.SetDefault("poll.active_start", "05:00")
	viper.SetDefault("poll.active_end", "24:00")
	viper.SetDefault("poll.timezone", "Asia/Singapore")
	viper.SetDefault("poll.concurrency", 4)

	viper.SetDefault("api.directory_url", lta.DefaultDirectoryURL)
	viper.SetDefault("api.timeout", "30s")
	viper.SetDefault("api.download_rps", 8.0)

	viper.SetDefault("mirror.provider", "none")
	viper.SetDefault("mirror.prefix", "")

	viper.SetDefault("report.topic", "")
	viper.SetDefault("ops.listen_addr", "")
	viper.SetDefault("log.development", false)

	// e.g. CAMSNAP_API_KEY, CAMSNAP_MIRROR_BUCKET.
	viper.SetEnvPrefix("CAMSNAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; defaults and env cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			ReadErr = err
		}
	}
}
