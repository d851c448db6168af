package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skydock-systems/skydock-stack/cli/internal/client"
	"github.com/skydock-systems/skydock-stack/cli/pkg/output"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [project-id]",
	Short: "Trigger a deployment",
	Long:  "Queue a new build for a project and print the deployment id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient := client.NewAPIClient(cfg.APIURL)
		deployment, err := apiClient.CreateDeployment(args[0])
		if err != nil {
			return fmt.Errorf("failed to create deployment: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(deployment)
		}

		output.Success("Deployment queued")
		fmt.Printf("  ID:     %s\n", deployment.ID)
		fmt.Printf("  Status: %s\n", deployment.Status)
		output.Info("Follow the build with: skyctl logs --follow %s", deployment.ID)
		return nil
	},
}

var deploymentStatusCmd = &cobra.Command{
	Use:   "status [deployment-id]",
	Short: "Show a deployment's status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient := client.NewAPIClient(cfg.APIURL)
		deployment, err := apiClient.GetDeployment(args[0])
		if err != nil {
			return fmt.Errorf("failed to get deployment: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(deployment)
		}

		fmt.Printf("ID:      %s\n", deployment.ID)
		fmt.Printf("Project: %s\n", deployment.ProjectID)
		fmt.Printf("Status:  %s\n", deployment.Status)
		fmt.Printf("Updated: %s\n", deployment.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	deployCmd.AddCommand(deploymentStatusCmd)
	rootCmd.AddCommand(deployCmd)
}
