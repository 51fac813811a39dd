// Package cmd wires the cobra CLI surface over internal/pipeline.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/livingstonekit-alt/feather-front/cmd/serve"
)

// RootCommand creates and returns the root command.
func RootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "featherfront",
		Short: "feather-front continuous audio-analysis pipeline",
	}

	if err := setupFlags(rootCmd); err != nil {
		fmt.Println("error setting up flags:", err)
	}

	rootCmd.AddCommand(serve.Command())

	return rootCmd
}

// Execute runs the root command against os.Args, the single entry point
// called from main.go.
func Execute() error {
	return RootCommand().Execute()
}

// setupFlags defines persistent flags shared by every subcommand.
func setupFlags(rootCmd *cobra.Command) error {
	rootCmd.PersistentFlags().Bool("debug", viper.GetBool("debug"), "Enable debug-level logging")
	rootCmd.PersistentFlags().Bool("log-json", viper.GetBool("log-json"), "Emit logs as JSON instead of text")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
