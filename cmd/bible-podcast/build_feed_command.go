package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"bible-reading-plan/internal/config"
	"bible-reading-plan/internal/feed"
	"bible-reading-plan/internal/fileutil"
)

func newBuildFeedCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build-feed",
		Short: "Write the podcast RSS feed for episodes due so far",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := config.ResolveCredentials()
			if creds.GCSBucket == "" {
				return feed.ErrMissingBucket
			}
			buildDir, loc, schedule, err := ctx.plan()
			if err != nil {
				return err
			}
			meta, err := config.ResolveFeedMetadata()
			if err != nil {
				return err
			}
			asm, speech, err := ctx.assembler(buildDir)
			if err != nil {
				return err
			}
			defer speech.Close()

			logo := meta.Logo
			if !fileutil.Exists(logo) {
				ctx.logger.Printf("logo %s not found; feed will have no artwork", logo)
				logo = ""
			}

			publisher := &feed.Publisher{
				Bucket: creds.GCSBucket,
				Channel: feed.Channel{
					Title:       meta.Title,
					Description: meta.Description,
					Language:    meta.Language,
					Author:      meta.Author,
				},
				Assembler: asm,
				Location:  loc,
				LogoFile:  logo,
				Logger:    ctx.logger,
			}

			if output == "" {
				output = filepath.Join(buildDir, "podcast.xml")
			}
			count, err := publisher.Write(cmd.Context(), schedule, time.Now().In(loc), output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d episodes to %s\n", count, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Feed destination (defaults to <build>/podcast.xml)")

	return cmd
}
