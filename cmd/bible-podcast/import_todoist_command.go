package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bible-reading-plan/internal/config"
	"bible-reading-plan/internal/readings"
	"bible-reading-plan/internal/todoist"
)

func newImportTodoistCommand(ctx *commandContext) *cobra.Command {
	var start string
	var baseURL string

	cmd := &cobra.Command{
		Use:   "import-todoist",
		Short: "Create a to-do task for every scheduled reading",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := config.ResolveCredentials()
			if creds.TodoistProjectID == "" {
				return errors.New("TODOIST_PROJECT_ID is not set")
			}
			client, err := todoist.New(creds.TodoistAPIToken, baseURL)
			if err != nil {
				return err
			}
			loc, err := config.Location()
			if err != nil {
				return err
			}
			first, err := config.ParseDate(start, loc)
			if err != nil {
				return err
			}
			if first.Weekday() != time.Monday {
				ctx.logger.Printf("warning: start date %s is a %s, not a Monday", start, first.Weekday())
			}

			schedule, err := readings.LoadPlan(config.ReadingsFile(), first)
			if err != nil {
				return err
			}
			for _, sr := range schedule {
				task, err := client.AddReading(cmd.Context(), creds.TodoistProjectID, sr.Reading.Raw(), sr.DueDate)
				if err != nil {
					return fmt.Errorf("add task for %s: %w", sr.Key(), err)
				}
				ctx.logger.Printf("added %s: %s", sr.Key(), task.Content)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d readings\n", len(schedule))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Due date of the first reading (YYYY-MM-DD)")
	cmd.Flags().StringVar(&baseURL, "api-url", todoist.DefaultBaseURL, "To-do service API root")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}
