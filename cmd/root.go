// Package cmd provides the odooctl command-line interface.
//
// Built-in command groups are declared in this package and registered
// in init(). Additional command groups are discovered at startup from
// plugin descriptor files in the commands directory and attached to
// the root before execution, so discovered groups dispatch exactly
// like built-ins.
//
// Configuration resolution (highest to lowest): command-line flags,
// ODOOCTL_* environment variables, the key=value config file
// (--config flag, ODOOCTL_CONFIG_FILE, ./odooctl.conf,
// ~/.odooctl/odooctl.conf), built-in defaults.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/egeskov-group/odooctl/internal/config"
	cerrors "github.com/egeskov-group/odooctl/internal/errors"
	"github.com/egeskov-group/odooctl/internal/logging"
	"github.com/egeskov-group/odooctl/internal/plugins"
	"github.com/egeskov-group/odooctl/internal/registry"
	"github.com/egeskov-group/odooctl/internal/scaffolding"
)

var (
	cfgFile string

	appConfig    *config.Config
	appLogger    logging.Logger = logging.NopLogger{}
	pluginLoader *plugins.Loader
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "odooctl",
	Short: "Scaffolding and deployment automation for Odoo modules",
	Long: `odooctl scaffolds Odoo modules and automates deployments to remote
instances.

Key features:
  • Module, model, controller, data and view scaffolding
  • Idempotent merging of view partials into existing XML view files
  • Deploy, restart and log streaming against remote instances over SSH
  • Extra command groups discovered from plugin descriptor files

Quick start:
  odooctl scaffold module my_module --depends base,web
  odooctl scaffold view my_module my.model --form --list
  odooctl odoo deploy my_module --user jane --server dev2.example.com`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./odooctl.conf, can also use ODOOCTL_CONFIG_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// Execute loads configuration, discovers plugin command groups and runs
// the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := setup(ctx, os.Args[1:]); err != nil {
		printError(err)
		return err
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		return err
	}
	return nil
}

// setup resolves configuration and attaches discovered plugin groups.
// Plugins must be attached before cobra parses the command line, so
// the config flags are pre-scanned from argv.
func setup(ctx context.Context, args []string) error {
	if path := flagValue(args, "--config"); path != "" {
		cfgFile = path
	}
	if err := config.Init(cfgFile); err != nil {
		return err
	}
	if level := flagValue(args, "--log-level"); level != "" {
		viper.Set("log_level", level)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appConfig = cfg

	appLogger = logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})

	pluginLoader = plugins.NewLoader(cfg.CommandsDir, registry.New(), appLogger)
	if err := pluginLoader.Discover(ctx); err != nil {
		// A broken commands directory should not take the whole CLI
		// down; built-in commands still work.
		appLogger.Warn(ctx, err, "plugin discovery failed")
	}
	attachGroups(pluginLoader.Registry())

	return nil
}

// attachGroups converts discovered command groups into cobra commands
// on the root.
func attachGroups(reg *registry.Registry) {
	for _, group := range reg.Groups() {
		rootCmd.AddCommand(groupCommand(group))
	}
}

func groupCommand(group *registry.Group) *cobra.Command {
	groupCmd := &cobra.Command{
		Use:   group.Name,
		Short: group.Help,
	}
	for _, sub := range group.Subgroups() {
		groupCmd.AddCommand(groupCommand(sub))
	}
	for _, cmd := range group.Commands() {
		cmd := cmd
		groupCmd.AddCommand(&cobra.Command{
			Use:   cmd.Name,
			Short: cmd.Help,
			RunE: func(c *cobra.Command, args []string) error {
				return plugins.Run(c.Context(), cmd, appConfig, args)
			},
		})
	}
	return groupCmd
}

// newRenderer builds a template renderer honoring plugin template
// override directories.
func newRenderer() *scaffolding.Renderer {
	if pluginLoader == nil {
		return scaffolding.NewRenderer()
	}
	return scaffolding.NewRenderer(pluginLoader.TemplateDirs()...)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	for _, suggestion := range cerrors.Suggestions(err) {
		fmt.Fprintf(os.Stderr, "  hint: %s\n", suggestion)
	}
}

// flagValue extracts "--name value" or "--name=value" from argv without
// full flag parsing.
func flagValue(args []string, name string) string {
	for i, arg := range args {
		if arg == name && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, name+"=") {
			return strings.TrimPrefix(arg, name+"=")
		}
	}
	return ""
}
