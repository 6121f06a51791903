package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coffeestats/coffee-trade-etl/internal/api"
	"github.com/coffeestats/coffee-trade-etl/internal/config"
)

var startCmd = &cobra.Command{Use: "start", Short: "Use to start coffeetrade services"}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "runs the pipeline once and serves its tables",
	Long:  "Runs the pipeline with the run flags, writes its artifacts and serves the aggregate tables over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("starting coffeetrade api server")
		res, err := executeRun(cmd.Context(), config.GetConfig(), runOpts)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		api.StartAPIServer(res)
	},
}

func init() {
	apiCmd.Flags().AddFlagSet(runCmd.Flags())
	rootCmd.AddCommand(startCmd)
	startCmd.AddCommand(apiCmd)
}
