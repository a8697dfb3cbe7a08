package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the scoring service is reachable",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := setup()

		if !newClient(config, logger).Health(cmd.Context()) {
			fmt.Fprintf(cmd.OutOrStdout(), "backend at %s is unhealthy\n", config.APIURL)
			os.Exit(1)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "backend at %s is healthy\n", config.APIURL)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the runtime config exposed by the scoring service",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := setup()

		runtime, err := newClient(config, logger).Config(cmd.Context())
		if err != nil {
			logger.Fatal("getting backend config", zap.Error(err), zap.String("backend", config.APIURL))
		}

		// do not bother error since the map was just decoded from json
		pretty, _ := json.MarshalIndent(runtime.Raw, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}
