package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/aula/internal/cli"
	"github.com/cloo-solutions/aula/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aulad",
		Short: "Aula tutor daemon and admin CLI",
		Long:  "Aula daemon for running the tutor API server, ingesting the corpus and inspecting the index and interaction log",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IngestCmd())
	rootCmd.AddCommand(admin.IndexCmd())
	rootCmd.AddCommand(admin.InteractionsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
