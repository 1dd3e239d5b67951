// cmd/agentbench/list_tools.go
package agentbench

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentbench/agentbench/internal/tools"
)

// listToolsCmd implements 'list tools', which enumerates the tools exposed to
// every model during benchmark runs and chat sessions.
var listToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools available to models",
	Long:  `The 'tools' subcommand lists every tool the agent exposes to models, with its description.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, d := range tools.DefaultRegistry().Descriptors() {
			fmt.Printf("%-20s %s\n", d.Name, d.Description)
		}
	},
}

func init() {
	listCmd.AddCommand(listToolsCmd)
}
