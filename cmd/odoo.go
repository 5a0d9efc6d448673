package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egeskov-group/odooctl/internal/remote"
)

var odooCmd = &cobra.Command{
	Use:   "odoo",
	Short: "Interact with modules on a remote Odoo instance",
}

var odooDeployCmd = &cobra.Command{
	Use:   "deploy MODULES",
	Short: "Deploy one or more modules to a remote instance",
	Long: `Deploy one or more Odoo modules to a remote instance: the module
files are copied over scp, the instance service is restarted, and the
modules are installed or upgraded through odoo-bin shell.

MODULES is a comma-separated list of module paths, or "all" to deploy
every module in the current directory.

Deploys are refused unless the server name contains one of the allowed
environment keywords (see deploy_allowed_environments); pass --force
to override.`,
	Args: cobra.ExactArgs(1),
	RunE: runOdooDeploy,
}

var odooLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Stream live logs from a remote instance",
	Long: `Stream the instance log file over SSH, optionally filtered by a
search term. Blocks until interrupted with Ctrl+C.`,
	RunE: runOdooLogs,
}

var odooRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart a service on a remote instance",
	RunE:  runOdooRestart,
}

var (
	odooUser     string
	odooServer   string
	odooDatabase string
	odooRemote   string
	odooVerbose  bool
	odooForce    bool
	odooWatch    bool

	odooLogPath string
	odooSearch  string

	odooService string
)

func init() {
	rootCmd.AddCommand(odooCmd)
	odooCmd.AddCommand(odooDeployCmd)
	odooCmd.AddCommand(odooLogsCmd)
	odooCmd.AddCommand(odooRestartCmd)

	for _, cmd := range []*cobra.Command{odooDeployCmd, odooLogsCmd, odooRestartCmd} {
		cmd.Flags().StringVar(&odooUser, "user", "", "Remote user (defaults to deploy_user)")
		cmd.Flags().StringVar(&odooServer, "server", "", "Remote server (defaults to deploy_server)")
	}

	odooDeployCmd.Flags().StringVar(&odooDatabase, "database", "", "Database name (defaults to the remote user)")
	odooDeployCmd.Flags().StringVar(&odooRemote, "remote", "", "Remote module directory (defaults to deploy_remote_path)")
	odooDeployCmd.Flags().BoolVar(&odooVerbose, "verbose", false, "Show transfer output")
	odooDeployCmd.Flags().BoolVar(&odooForce, "force", false, "Skip the environment guard")
	odooDeployCmd.Flags().MarkHidden("force")
	odooDeployCmd.Flags().BoolVar(&odooWatch, "watch", false, "Redeploy when module files change")

	odooLogsCmd.Flags().StringVar(&odooLogPath, "remote", "", "Remote log file path (defaults to deploy_log_path)")
	odooLogsCmd.Flags().StringVar(&odooSearch, "search", "", "Filter logs by a search term")

	odooRestartCmd.Flags().StringVar(&odooService, "service", "", "Service to restart (defaults to the database service)")
}

func remoteClient() (*remote.Client, error) {
	user := odooUser
	if user == "" {
		user = appConfig.Deploy.User
	}
	server := odooServer
	if server == "" {
		server = appConfig.Deploy.Server
	}
	if user == "" || server == "" {
		return nil, fmt.Errorf("remote user and server are required (flags or deploy_user/deploy_server config)")
	}
	return remote.NewClient(user, server, &remote.ExecRunner{Quiet: !odooVerbose}, appLogger)
}

func runOdooDeploy(cmd *cobra.Command, args []string) error {
	client, err := remoteClient()
	if err != nil {
		return err
	}

	remotePath := odooRemote
	if remotePath == "" {
		remotePath = appConfig.Deploy.RemotePath
	}
	database := odooDatabase
	if database == "" {
		database = appConfig.Deploy.Database
	}

	opts := remote.DeployOptions{
		Modules:     args[0],
		Database:    database,
		RemotePath:  remotePath,
		ServiceConf: appConfig.Deploy.ServiceConf,
		Force:       odooForce,
	}

	deployer := remote.NewDeployer(client, newRenderer(), appConfig.Deploy.AllowedEnvironments, appLogger)
	if err := deployer.Deploy(cmd.Context(), opts); err != nil {
		return err
	}
	fmt.Printf("Modules deployed successfully on %s@%s!\n", client.User, client.Host)

	if odooWatch {
		fmt.Println("Watching for changes. Press Ctrl+C to exit")
		return deployer.Watch(cmd.Context(), opts)
	}
	return nil
}

func runOdooLogs(cmd *cobra.Command, args []string) error {
	client, err := remoteClient()
	if err != nil {
		return err
	}

	logPath := odooLogPath
	if logPath == "" {
		logPath = appConfig.Deploy.LogPath
	}

	fmt.Printf("Streaming logs from %s@%s:%s\n", client.User, client.Host, logPath)
	if odooSearch != "" {
		fmt.Printf("Filtering for: %s\n", odooSearch)
	}
	fmt.Println("Press Ctrl+C to exit")

	return client.TailLogs(cmd.Context(), logPath, odooSearch)
}

func runOdooRestart(cmd *cobra.Command, args []string) error {
	client, err := remoteClient()
	if err != nil {
		return err
	}

	service := odooService
	if service == "" {
		database := appConfig.Deploy.Database
		if database == "" {
			database = client.User
		}
		service = database + ".service"
	}

	if err := client.RestartService(cmd.Context(), service); err != nil {
		return err
	}
	fmt.Printf("Successfully restarted %s on %s\n", service, client.Host)
	return nil
}
