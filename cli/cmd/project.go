package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skydock-systems/skydock-stack/cli/internal/client"
	"github.com/skydock-systems/skydock-stack/cli/pkg/output"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project management commands",
	Long:  "Create and inspect Skydock projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new project",
	Long:  "Register a git repository as a Skydock project and claim a subdomain for it",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		repoURL, _ := cmd.Flags().GetString("repo")

		apiClient := client.NewAPIClient(cfg.APIURL)
		project, err := apiClient.CreateProject(name, repoURL)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(project)
		}

		output.Success("Project created")
		fmt.Printf("  ID:        %s\n", project.ID)
		fmt.Printf("  Name:      %s\n", project.Name)
		fmt.Printf("  Subdomain: %s\n", project.Subdomain)
		return nil
	},
}

var projectGetCmd = &cobra.Command{
	Use:   "get [project-id]",
	Short: "Get project details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient := client.NewAPIClient(cfg.APIURL)
		project, err := apiClient.GetProject(args[0])
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(project)
		}

		fmt.Printf("ID:        %s\n", project.ID)
		fmt.Printf("Name:      %s\n", project.Name)
		fmt.Printf("Repo:      %s\n", project.RepoURL)
		fmt.Printf("Subdomain: %s\n", project.Subdomain)
		fmt.Printf("Created:   %s\n", project.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var projectDeploymentsCmd = &cobra.Command{
	Use:   "deployments [project-id]",
	Short: "List a project's deployments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient := client.NewAPIClient(cfg.APIURL)
		deployments, err := apiClient.ListDeployments(args[0])
		if err != nil {
			return fmt.Errorf("failed to list deployments: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(deployments)
		}

		table := output.NewTable([]string{"ID", "STATUS", "CREATED"})
		for _, d := range deployments {
			table.AddRow([]string{d.ID, d.Status, d.CreatedAt.Format("2006-01-02 15:04:05")})
		}
		table.Render()
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().String("name", "", "project name")
	projectCreateCmd.Flags().String("repo", "", "git repository URL")
	projectCreateCmd.MarkFlagRequired("name")
	projectCreateCmd.MarkFlagRequired("repo")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectGetCmd)
	projectCmd.AddCommand(projectDeploymentsCmd)
	rootCmd.AddCommand(projectCmd)
}
