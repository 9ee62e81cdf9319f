package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var envFile string

	ctx := newCommandContext(&envFile)

	rootCmd := &cobra.Command{
		Use:           "bible-podcast",
		Short:         "Build and publish the weekday Bible reading plan podcast",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.loadEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading configuration")

	rootCmd.AddCommand(newBuildAudioCommand(ctx))
	rootCmd.AddCommand(newBuildFeedCommand(ctx))
	rootCmd.AddCommand(newScheduleCommand(ctx))
	rootCmd.AddCommand(newImportTodoistCommand(ctx))
	rootCmd.AddCommand(newCompareVoicesCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))

	return rootCmd
}
