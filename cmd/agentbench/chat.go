// cmd/agentbench/chat.go
package agentbench

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentbench/agentbench/internal/chat"
	"github.com/agentbench/agentbench/internal/config"
	"github.com/agentbench/agentbench/internal/tools"
)

var (
	chatTimeout     time.Duration
	chatTemperature float64
)

// chatCmd represents the 'chat' command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive agent session",
	Long: `The 'chat' command starts an interactive session with a configured model.
The model has the same tools available as the benchmark and tool calls are
resolved transparently during the conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts, err := config.LoadHosts(viper.GetString("config"))
		if err != nil {
			return err
		}
		cfg := config.Config{
			Hosts:          hosts,
			RequestTimeout: chatTimeout,
			Temperature:    chatTemperature,
		}
		return chat.Start(cfg, tools.DefaultRegistry())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().DurationVar(&chatTimeout, "timeout", 2*time.Minute, "per-request timeout")
	chatCmd.Flags().Float64Var(&chatTemperature, "temperature", 0, "sampling temperature")
}
