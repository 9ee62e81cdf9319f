package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bible-reading-plan/internal/config"
	"bible-reading-plan/internal/episode"
	"bible-reading-plan/internal/fileutil"
	"bible-reading-plan/internal/readings"
)

var errBuildLocked = errors.New("another build is running in this build directory")

func newBuildAudioCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var workers int
	var weekFrom, weekTo int

	cmd := &cobra.Command{
		Use:   "build-audio",
		Short: "Build every scheduled episode, reusing cached audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			buildDir, _, schedule, err := ctx.plan()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = config.Workers()
			}

			lock := flock.New(filepath.Join(buildDir, ".build.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire build lock: %w", err)
			}
			if !ok {
				return errBuildLocked
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					ctx.logger.Printf("release build lock: %v", err)
				}
			}()

			asm, speech, err := ctx.assembler(buildDir)
			if err != nil {
				return err
			}
			defer speech.Close()

			selected := selectWeeks(schedule, weekFrom, weekTo)
			progress := newProgress(cmd.OutOrStdout(), ctx)
			if err := buildAll(cmd, asm, selected, force, workers, progress); err != nil {
				return err
			}

			var total int64
			for _, sr := range selected {
				total += fileutil.Size(asm.AudioPath(sr))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d generated, %d cached (%s of audio)\n",
				progress.generated, progress.cached, humanize.Bytes(uint64(total)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rebuild episodes even when cached audio exists")
	cmd.Flags().IntVar(&workers, "workers", 1, "Episodes built at once (defaults to BRP_WORKERS)")
	cmd.Flags().IntVar(&weekFrom, "week-from", 0, "First week to build")
	cmd.Flags().IntVar(&weekTo, "week-to", 0, "Last week to build")

	return cmd
}

func buildAll(cmd *cobra.Command, asm *episode.Assembler, schedule []readings.ScheduledReading, force bool, workers int, progress *progress) error {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)
	for _, sr := range schedule {
		sr := sr
		g.Go(func() error {
			result, err := asm.Build(gctx, sr, force)
			if err != nil {
				return err
			}
			progress.record(sr, result)
			return nil
		})
	}
	err := g.Wait()
	progress.finish()
	return err
}

// selectWeeks keeps entries whose week lies in [from, to]. Zero leaves that
// side open.
func selectWeeks(schedule []readings.ScheduledReading, from, to int) []readings.ScheduledReading {
	if from <= 0 && to <= 0 {
		return schedule
	}
	var out []readings.ScheduledReading
	for _, sr := range schedule {
		if from > 0 && sr.Week < from {
			continue
		}
		if to > 0 && sr.Week > to {
			continue
		}
		out = append(out, sr)
	}
	return out
}

// progress prints one marker per episode on a terminal and logs otherwise.
type progress struct {
	mu        sync.Mutex
	out       io.Writer
	terminal  bool
	ctx       *commandContext
	generated int
	cached    int
}

func newProgress(out io.Writer, ctx *commandContext) *progress {
	return &progress{out: out, terminal: isTerminal(out), ctx: ctx}
}

func (p *progress) record(sr readings.ScheduledReading, result episode.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if result == episode.Generated {
		p.generated++
	} else {
		p.cached++
	}
	if !p.terminal {
		p.ctx.logger.Printf("%s %s", sr.Key(), result)
		return
	}
	marker := "."
	if result == episode.Generated {
		marker = "*"
	}
	fmt.Fprint(p.out, marker)
}

func (p *progress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.terminal && p.generated+p.cached > 0 {
		fmt.Fprintln(p.out)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
