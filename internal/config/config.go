// Package config provides configuration management for odooctl using
// Viper, loading from a plain key=value configuration file, environment
// variables with the ODOOCTL_ prefix, and command-line flags.
//
// Resolution order (highest to lowest):
//  1. Command-line flags bound by the cmd package
//  2. ODOOCTL_* environment variables
//  3. Config file: --config flag, then ODOOCTL_CONFIG_FILE, then
//     ./odooctl.conf, then ~/.odooctl/odooctl.conf
//  4. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	cerrors "github.com/egeskov-group/odooctl/internal/errors"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "odooctl.conf"

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "ODOOCTL"

// Config holds the resolved odooctl configuration.
type Config struct {
	LogLevel    string
	LogFormat   string
	Debug       bool
	Author      string
	License     string
	OdooVersion string
	CommandsDir string
	Deploy      DeployConfig
}

// DeployConfig holds defaults for remote instance operations.
type DeployConfig struct {
	User        string
	Server      string
	Database    string
	RemotePath  string
	LogPath     string
	ServiceConf string
	// AllowedEnvironments are the keywords a server name must contain
	// before a deploy is accepted without --force.
	AllowedEnvironments []string
}

// SetDefaults registers the built-in defaults on the global viper.
func SetDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("debug", false)
	viper.SetDefault("author", "egeskov-group.dk")
	viper.SetDefault("license", "OPL-1")
	viper.SetDefault("odoo_version", "17.0")
	viper.SetDefault("commands_dir", defaultCommandsDir())
	viper.SetDefault("deploy_remote_path", "~/src/custom")
	viper.SetDefault("deploy_log_path", "logs/odoo.log")
	viper.SetDefault("deploy_service_conf", ".config/odoo/odoo.conf")
	viper.SetDefault("deploy_allowed_environments", "test,dev,dev2,upgrade")
}

// Load builds a Config from the global viper state.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:    viper.GetString("log_level"),
		LogFormat:   viper.GetString("log_format"),
		Debug:       viper.GetBool("debug"),
		Author:      viper.GetString("author"),
		License:     viper.GetString("license"),
		OdooVersion: viper.GetString("odoo_version"),
		CommandsDir: expandHome(viper.GetString("commands_dir")),
		Deploy: DeployConfig{
			User:        viper.GetString("deploy_user"),
			Server:      viper.GetString("deploy_server"),
			Database:    viper.GetString("deploy_database"),
			RemotePath:  viper.GetString("deploy_remote_path"),
			LogPath:     viper.GetString("deploy_log_path"),
			ServiceConf: viper.GetString("deploy_service_conf"),
		},
	}

	allowed := viper.GetString("deploy_allowed_environments")
	for _, keyword := range strings.Split(allowed, ",") {
		keyword = strings.TrimSpace(keyword)
		if keyword != "" {
			cfg.Deploy.AllowedEnvironments = append(cfg.Deploy.AllowedEnvironments, keyword)
		}
	}

	if cfg.Debug && cfg.LogLevel != "debug" {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// Init wires the global viper to the key=value config file and the
// environment. Missing config files are not an error.
func Init(cfgFile string) error {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("env")
	} else if envConfigFile := os.Getenv(EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
		viper.SetConfigType("env")
	} else {
		viper.SetConfigName("odooctl")
		viper.SetConfigType("env")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".odooctl"))
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cerrors.Wrap(err, cerrors.CodeConfigInvalid, "config", "reading config")
		}
	}

	return nil
}

// FileUsed returns the path of the loaded config file, if any.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// Generate writes a key=value config file seeded with the current
// resolved values. Existing files are not overwritten unless force is
// set.
func Generate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return cerrors.New(cerrors.CodeConfigWrite, "config",
				"config file %s already exists", path).
				WithSuggestions("pass --force to overwrite it")
		}
	}

	cfg, err := Load()
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("# odooctl configuration\n")
	b.WriteString("# Values can be overridden with ODOOCTL_<KEY> environment variables.\n\n")
	for _, entry := range []struct{ key, value string }{
		{"LOG_LEVEL", cfg.LogLevel},
		{"LOG_FORMAT", cfg.LogFormat},
		{"DEBUG", fmt.Sprintf("%t", cfg.Debug)},
		{"AUTHOR", cfg.Author},
		{"LICENSE", cfg.License},
		{"ODOO_VERSION", cfg.OdooVersion},
		{"COMMANDS_DIR", cfg.CommandsDir},
		{"DEPLOY_USER", cfg.Deploy.User},
		{"DEPLOY_SERVER", cfg.Deploy.Server},
		{"DEPLOY_DATABASE", cfg.Deploy.Database},
		{"DEPLOY_REMOTE_PATH", cfg.Deploy.RemotePath},
		{"DEPLOY_LOG_PATH", cfg.Deploy.LogPath},
		{"DEPLOY_SERVICE_CONF", cfg.Deploy.ServiceConf},
		{"DEPLOY_ALLOWED_ENVIRONMENTS", strings.Join(cfg.Deploy.AllowedEnvironments, ",")},
	} {
		fmt.Fprintf(&b, "%s=%s\n", entry.key, entry.value)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return cerrors.Wrap(err, cerrors.CodeConfigWrite, "config", "writing config file %s", path)
	}
	return nil
}

// Environ returns the ODOOCTL_* variables present in the process
// environment, sorted by name.
func Environ() []string {
	var vars []string
	for _, entry := range os.Environ() {
		if strings.HasPrefix(entry, EnvPrefix+"_") {
			vars = append(vars, entry)
		}
	}
	sort.Strings(vars)
	return vars
}

func defaultCommandsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "commands"
	}
	return filepath.Join(home, ".odooctl", "commands")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
