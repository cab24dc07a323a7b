package main

import (
	"os"

	"github.com/spf13/cobra"

	"kurologin/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kurologin",
		Short: "Kuro phone-number login broker",
		Long:  `A web service that brokers phone-number logins against the Kuro game-account API: it handles the anti-bot challenge, triggers the SMS code, and exchanges the submitted code for an authenticated session.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
