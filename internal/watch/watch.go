// Package watch follows transpose offset changes for a single song.
package watch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dyluth/capo/pkg/songstore"
)

// DefaultPollInterval is used by Poll when no interval is given.
const DefaultPollInterval = 500 * time.Millisecond

// EventSource delivers transpose events, as songstore.Subscription does.
type EventSource interface {
	Events() <-chan *songstore.TransposeEvent
	Errors() <-chan error
}

// OffsetReader reads the stored offset of a song.
type OffsetReader interface {
	GetOffset(ctx context.Context, songID string) (int, error)
}

// ChangeFunc is called with each new offset. Returning an error stops the watch.
type ChangeFunc func(offset int) error

// Follow calls onChange for every event about songID until ctx is done or
// the source closes. Consecutive events with the same offset are collapsed.
// Malformed-message errors from the source are logged and skipped.
func Follow(ctx context.Context, source EventSource, songID string, onChange ChangeFunc) error {
	last := 0
	seen := false

	events := source.Events()
	errs := source.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.SongID != songID {
				continue
			}
			if seen && event.Offset == last {
				continue
			}
			last, seen = event.Offset, true
			if err := onChange(event.Offset); err != nil {
				return err
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("[WARN] Skipping transpose event: %v", err)
		}
	}
}

// Poll reads the offset of songID every interval and calls onChange when it
// differs from initial or from the previous reading. Used where the store has
// no notification channel.
func Poll(ctx context.Context, reader OffsetReader, songID string, initial int, interval time.Duration, onChange ChangeFunc) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := initial
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			offset, err := reader.GetOffset(ctx, songID)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to poll transpose offset: %w", err)
			}
			if offset == last {
				continue
			}
			last = offset
			if err := onChange(offset); err != nil {
				return err
			}
		}
	}
}
