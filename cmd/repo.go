package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Repository management commands",
}

var repoInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runGit(cmd, "init"); err != nil {
			return err
		}
		fmt.Println("Repository initialized!")
		return nil
	},
}

var repoCloneCmd = &cobra.Command{
	Use:   "clone URL",
	Short: "Clone a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Cloning repository from %s\n", args[0])
		return runGit(cmd, "clone", args[0])
	},
}

func init() {
	rootCmd.AddCommand(repoCmd)
	repoCmd.AddCommand(repoInitCmd)
	repoCmd.AddCommand(repoCloneCmd)
}

func runGit(cmd *cobra.Command, args ...string) error {
	git := exec.CommandContext(cmd.Context(), "git", args...)
	git.Stdin = os.Stdin
	git.Stdout = os.Stdout
	git.Stderr = os.Stderr
	return git.Run()
}
