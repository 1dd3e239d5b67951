// cmd/agentbench/list_models.go
package agentbench

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentbench/agentbench/internal/config"
	"github.com/agentbench/agentbench/internal/models"
)

// listModelsCmd implements 'list models', which queries every configured host
// for the models it actually serves.
var listModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available on each configured host",
	Long:  `The 'models' subcommand queries each host in the config file and lists the models it serves, flagging configured models that are missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts, err := config.LoadHosts(viper.GetString("config"))
		if err != nil {
			return err
		}
		fmt.Print(models.Render(models.Inventory(cmd.Context(), hosts)))
		return nil
	},
}

func init() {
	listCmd.AddCommand(listModelsCmd)
}
