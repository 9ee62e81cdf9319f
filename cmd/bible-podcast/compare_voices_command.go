package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bible-reading-plan/internal/config"
	"bible-reading-plan/internal/fileutil"
	"bible-reading-plan/internal/tts"
)

func newCompareVoicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "compare-voices",
		Short: "Synthesize the same intro with each candidate voice",
		RunE: func(cmd *cobra.Command, args []string) error {
			buildDir, err := config.ResolveBuildDir()
			if err != nil {
				return err
			}
			outDir := filepath.Join(buildDir, "voice_samples")
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			client, err := tts.NewGoogle(cmd.Context(), config.TTSLanguage(), "")
			if err != nil {
				return fmt.Errorf("connect speech service: %w", err)
			}
			defer client.Close()

			failed := 0
			for _, candidate := range tts.Candidates {
				data, err := client.WithVoice(candidate.Name).Synthesize(cmd.Context(), tts.SampleText, false)
				if err != nil {
					failed++
					ctx.logger.Printf("voice %s: %v", candidate.Name, err)
					continue
				}
				dst := filepath.Join(outDir, candidate.Label+".mp3")
				if err := fileutil.WriteAtomic(dst, data, 0o644); err != nil {
					failed++
					ctx.logger.Printf("write %s: %v", dst, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", candidate.Name, dst)
			}
			if failed == len(tts.Candidates) {
				return fmt.Errorf("no voice samples were produced")
			}
			return nil
		},
	}
}
