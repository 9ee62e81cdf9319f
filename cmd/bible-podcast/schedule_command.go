package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bible-reading-plan/internal/fileutil"
	"bible-reading-plan/internal/readings"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var weekFrom, weekTo int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the reading plan with build status",
		RunE: func(cmd *cobra.Command, args []string) error {
			buildDir, _, schedule, err := ctx.plan()
			if err != nil {
				return err
			}
			asm, _, err := ctx.assembler(buildDir)
			if err != nil {
				return err
			}
			rows, err := scheduleRows(selectWeeks(schedule, weekFrom, weekTo), asm.AudioPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Date", "Reading", "Chapters", "Audio"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&weekFrom, "week-from", 0, "First week to show")
	cmd.Flags().IntVar(&weekTo, "week-to", 0, "Last week to show")

	return cmd
}

func scheduleRows(schedule []readings.ScheduledReading, audioPath func(readings.ScheduledReading) string) ([][]string, error) {
	rows := make([][]string, 0, len(schedule))
	for _, sr := range schedule {
		chapters, err := sr.Reading.ToChapters()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sr.Key(), err)
		}
		audio := "-"
		if path := audioPath(sr); fileutil.Exists(path) {
			audio = humanize.Bytes(uint64(fileutil.Size(path)))
		}
		rows = append(rows, []string{
			sr.Key(),
			sr.DueDate.Format("Mon 2006-01-02"),
			sr.Reading.Raw(),
			strconv.Itoa(len(chapters)),
			audio,
		})
	}
	return rows, nil
}
