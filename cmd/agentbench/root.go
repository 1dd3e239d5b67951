// cmd/agentbench/root.go
package agentbench

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cfgFile stores the config file path shared by every subcommand.
var cfgFile string

// rootCmd is the base Cobra command for the agentbench application.
// All subcommands are attached to this root to form the complete CLI.
var rootCmd = &cobra.Command{
	Use:   "agentbench",
	Short: "Benchmark local LLM backends against a fixed agent evaluation suite",
	Long: `agentbench runs a fixed suite of instruction, hallucination, reasoning, and
tool-calling prompts against every configured model, scores the answers, and
reports which model to prefer.`,
}

// Execute runs the root Cobra command and all registered subcommands.
// It prints any returned error and exits the process with a non-zero
// status code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.json", "config file listing hosts and their models")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}
