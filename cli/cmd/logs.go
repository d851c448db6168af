package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skydock-systems/skydock-stack/cli/internal/client"
	"github.com/skydock-systems/skydock-stack/cli/pkg/output"
)

var logsCmd = &cobra.Command{
	Use:   "logs [deployment-id]",
	Short: "Show build logs for a deployment",
	Long: `Print the persisted build logs for a deployment.

With --follow, subscribe to the live feed instead and stream lines as the
build produces them, until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deploymentID := args[0]
		follow, _ := cmd.Flags().GetBool("follow")
		logsClient := client.NewLogsClient(cfg.CollectorURL)

		if follow {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return logsClient.Follow(ctx, deploymentID, func(line string) {
				fmt.Println(line)
			})
		}

		logs, err := logsClient.Fetch(deploymentID)
		if err != nil {
			return fmt.Errorf("failed to fetch logs: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(logs)
		}

		for _, record := range logs {
			fmt.Println(record.Line)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "stream the live log feed")
	rootCmd.AddCommand(logsCmd)
}
