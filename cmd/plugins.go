package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egeskov-group/odooctl/internal/registry"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect discovered plugin command groups",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered plugin command groups and skipped descriptors",
	RunE:  runPluginsList,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	pluginsCmd.AddCommand(pluginsListCmd)
}

func runPluginsList(cmd *cobra.Command, args []string) error {
	if pluginLoader == nil {
		fmt.Println("No plugin commands directory configured")
		return nil
	}

	groups := pluginLoader.Registry().Groups()
	if len(groups) == 0 {
		fmt.Println("No plugin command groups discovered")
	} else {
		fmt.Printf("Discovered %d command group(s):\n", len(groups))
		for _, group := range groups {
			printGroup(group, "  ")
		}
	}

	skipped := pluginLoader.Skipped()
	if len(skipped) > 0 {
		fmt.Printf("\nSkipped %d descriptor(s):\n", len(skipped))
		for _, file := range skipped {
			fmt.Printf("  %s: %v\n", file.Path, file.Err)
		}
	}
	return nil
}

func printGroup(group *registry.Group, indent string) {
	fmt.Printf("%s%s", indent, group.Name)
	if group.Help != "" {
		fmt.Printf(" - %s", group.Help)
	}
	fmt.Println()
	for _, sub := range group.Subgroups() {
		printGroup(sub, indent+"  ")
	}
	for _, cmd := range group.Commands() {
		fmt.Printf("%s  %s", indent, cmd.Name)
		if cmd.Help != "" {
			fmt.Printf(" - %s", cmd.Help)
		}
		fmt.Println()
	}
}
