package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ConfigCmd manages the global client configuration.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage client configuration",
	}

	cmd.AddCommand(configSetCmd())
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configClearCmd())

	return cmd
}

func configSetCmd() *cobra.Command {
	var apiURL, studentID string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save the API URL and student id",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadGlobalConfig()
			if err != nil {
				return err
			}
			if cfg == nil {
				cfg = &GlobalConfig{}
			}
			if cmd.Flags().Changed("url") {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("id") {
				cfg.StudentID = studentID
			}
			if err := SaveGlobalConfig(cfg); err != nil {
				return err
			}

			path, _ := GetConfigPath()
			fmt.Printf("Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "url", "", "API base URL")
	cmd.Flags().StringVar(&studentID, "id", "", "Student id sent with every request")

	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadGlobalConfig()
			if err != nil {
				return err
			}
			if cfg == nil {
				fmt.Println("No configuration saved.")
				return nil
			}
			output, _ := json.MarshalIndent(cfg, "", "  ")
			fmt.Println(string(output))
			return nil
		},
	}
}

func configClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return DeleteGlobalConfig()
		},
	}
}
