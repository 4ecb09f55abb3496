package commands

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/capo/internal/printer"
	"github.com/dyluth/capo/internal/session"
	"github.com/dyluth/capo/internal/sheet"
	"github.com/dyluth/capo/internal/watch"
	"github.com/dyluth/capo/pkg/songstore"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch SONG_ID",
	Short: "Re-render a song whenever its transpose offset changes",
	Long: `Show a song and re-render it each time its stored offset changes,
for example when a bandmate runs 'capo transpose' against the same store.

With the redis backend changes arrive as Pub/Sub events. With the sqlite
backend the offset is polled every --interval.

Press Ctrl-C to stop.

Example:
  capo watch 8f14e4`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", watch.DefaultPollInterval, "Poll interval for the sqlite backend")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, backend, err := connect(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	songID, err := resolveSong(ctx, backend, args[0])
	if err != nil {
		return err
	}

	// Subscribe before loading so no change between the two is missed
	var sub *songstore.Subscription
	if client, ok := backend.(*songstore.Client); ok {
		if sub, err = client.SubscribeTransposeEvents(ctx); err != nil {
			return err
		}
		defer sub.Close()
	}

	sess := session.New(backend, backend)
	view, err := sess.Open(ctx, songID)
	if err != nil {
		if errors.Is(err, session.ErrNothingToRender) {
			return nothingToRender(songID)
		}
		return err
	}

	out := cmd.OutOrStdout()
	opts := sheet.Options{Color: cfg.UseColor(), ShowArtist: cfg.ShowArtist()}
	sheet.FormatSheet(out, view, opts)

	onChange := func(offset int) error {
		next, err := sess.Observe(songID, offset)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		printer.Step("Transposed to %+d\n", next.Offset)
		sheet.FormatSheet(out, next, opts)
		return nil
	}

	if sub != nil {
		return watch.Follow(ctx, sub, songID, onChange)
	}
	return watch.Poll(ctx, backend, songID, view.Offset, watchInterval, onChange)
}
