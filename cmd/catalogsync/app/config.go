package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
)

// Config holds the application configuration loaded from flags, environment
// variables, .env files and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Run target
	ProjectID      string
	EntryGroupName string
	StorageType    string
	BucketPrefix   string
	Include        []string
	Exclude        []string
	Location       string
	DryRun         bool
	Timeout        time.Duration
	MetricsFile    string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"config":           "config",
	"verbose":          "verbose",
	"quiet":            "quiet",
	"no-color":         "no_color",
	"format":           "format",
	"log-level":        "log_level",
	"type":             "storage_type",
	"project-id":       "project_id",
	"entry-group-name": "entry_group_name",
	"bucket-prefix":    "bucket_prefix",
	"include":          "include",
	"exclude":          "exclude",
	"location":         "location",
	"dry-run":          "dry_run",
	"timeout":          "timeout",
	"metrics-file":     "metrics_file",
}

// newViper returns a viper instance reading the environment. .env files are
// loaded first so their values are visible as environment variables.
func newViper() *viper.Viper {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("timeout", constants.CommandTimeout)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
	return v
}

// LoadConfig reads the config file into v and builds a Config. Precedence,
// highest first:
//  1. Command-line flags (bound by the command being run)
//  2. Environment variables
//  3. .env files
//  4. Config file (--config, or ~/.catalogsync.yaml, or ./.catalogsync.yaml)
//  5. Defaults
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".catalogsync")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config file", "failed to read config", err)
		}
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		ProjectID:      v.GetString("project_id"),
		EntryGroupName: v.GetString("entry_group_name"),
		StorageType:    v.GetString("storage_type"),
		BucketPrefix:   v.GetString("bucket_prefix"),
		Include:        v.GetStringSlice("include"),
		Exclude:        v.GetStringSlice("exclude"),
		Location:       v.GetString("location"),
		DryRun:         v.GetBool("dry_run"),
		Timeout:        v.GetDuration("timeout"),
		MetricsFile:    v.GetString("metrics_file"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}, nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
