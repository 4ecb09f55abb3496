package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MinShortIDLength is the minimum length of a song ID prefix.
const MinShortIDLength = 6

// SongLookup is the subset of a song store needed to resolve IDs.
type SongLookup interface {
	SongExists(ctx context.Context, songID string) (bool, error)
	ScanSongIDs(ctx context.Context, prefix string) ([]string, error)
}

// ResolveSongID resolves a song ID or unique ID prefix to a full song ID.
//
// Resolution order:
//  1. An ID that exists exactly is returned as-is
//  2. A well-formed UUID that does not exist is not found (no prefix scan)
//  3. Prefixes shorter than MinShortIDLength are rejected
//  4. Otherwise the prefix must match exactly one stored song
func ResolveSongID(ctx context.Context, lookup SongLookup, shortID string) (string, error) {
	shortID = strings.TrimSpace(shortID)

	exists, err := lookup.SongExists(ctx, shortID)
	if err != nil {
		return "", fmt.Errorf("failed to verify song existence: %w", err)
	}
	if exists {
		return shortID, nil
	}

	if _, err := uuid.Parse(shortID); err == nil {
		return "", &NotFoundError{ShortID: shortID}
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	matches, err := lookup.ScanSongIDs(ctx, shortID)
	if err != nil {
		return "", fmt.Errorf("failed to search for song: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no song matched the ID or prefix.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no songs found matching '%s'", e.ShortID)
}

// AmbiguousError indicates several songs share the prefix.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d songs", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError lists up to 10 matching IDs for the user.
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: ambiguous short ID '%s' matches %d songs:\n", err.ShortID, len(err.Matches))

	shown := min(len(err.Matches), 10)
	for _, id := range err.Matches[:shown] {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	if len(err.Matches) > shown {
		fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-shown)
	}

	b.WriteString("\nUse a longer prefix to uniquely identify the song.")
	return b.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	var target *AmbiguousError
	return errors.As(err, &target)
}
