package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/egeskov-group/odooctl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage odooctl configuration",
	Long: `Manage the odooctl key=value configuration file and inspect the
resolved settings.

Examples:
  odooctl config generate                 # Write odooctl.conf with defaults
  odooctl config generate -o my.conf      # Write to a custom path
  odooctl config show                     # Show resolved configuration
  odooctl config env                      # Show ODOOCTL_* environment overrides`,
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a config file with the current settings",
	RunE:  runConfigGenerate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE:  runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "Show ODOOCTL_* environment variables in effect",
	RunE:  runConfigEnv,
}

var (
	configOutput string
	configForce  bool
	configFormat string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGenerateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEnvCmd)

	configGenerateCmd.Flags().StringVarP(&configOutput, "output", "o", config.DefaultFileName, "Path to output the config file")
	configGenerateCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configShowCmd.Flags().StringVar(&configFormat, "format", "text", "Output format (text, json)")
}

func runConfigGenerate(cmd *cobra.Command, args []string) error {
	if err := config.Generate(configOutput, configForce); err != nil {
		return err
	}
	fmt.Printf("Config file written to %s\n", configOutput)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch configFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	case "text":
		if used := config.FileUsed(); used != "" {
			fmt.Printf("Config file: %s\n\n", used)
		}
		fmt.Printf("log_level:                   %s\n", cfg.LogLevel)
		fmt.Printf("log_format:                  %s\n", cfg.LogFormat)
		fmt.Printf("debug:                       %t\n", cfg.Debug)
		fmt.Printf("author:                      %s\n", cfg.Author)
		fmt.Printf("license:                     %s\n", cfg.License)
		fmt.Printf("odoo_version:                %s\n", cfg.OdooVersion)
		fmt.Printf("commands_dir:                %s\n", cfg.CommandsDir)
		fmt.Printf("deploy_user:                 %s\n", cfg.Deploy.User)
		fmt.Printf("deploy_server:               %s\n", cfg.Deploy.Server)
		fmt.Printf("deploy_database:             %s\n", cfg.Deploy.Database)
		fmt.Printf("deploy_remote_path:          %s\n", cfg.Deploy.RemotePath)
		fmt.Printf("deploy_log_path:             %s\n", cfg.Deploy.LogPath)
		fmt.Printf("deploy_service_conf:         %s\n", cfg.Deploy.ServiceConf)
		fmt.Printf("deploy_allowed_environments: %s\n", strings.Join(cfg.Deploy.AllowedEnvironments, ","))
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", configFormat)
	}
}

func runConfigEnv(cmd *cobra.Command, args []string) error {
	vars := config.Environ()
	if len(vars) == 0 {
		fmt.Println("No ODOOCTL_* environment variables set")
		return nil
	}
	for _, entry := range vars {
		fmt.Println(entry)
	}
	return nil
}
