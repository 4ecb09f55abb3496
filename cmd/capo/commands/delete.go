package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/capo/internal/printer"
	"github.com/dyluth/capo/pkg/chords"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete SONG_ID",
	Short: "Remove a song from the store",
	Long: `Remove a song from the store.

The song's stored transpose offset is kept; uploading a song again
creates a new ID.

Example:
  capo delete 8f14e4`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, backend, err := connect(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	songID, err := resolveSong(ctx, backend, args[0])
	if err != nil {
		return err
	}

	if err := backend.DeleteSong(ctx, songID); err != nil {
		if errors.Is(err, chords.ErrSongNotFound) {
			return printer.Error(
				fmt.Sprintf("song with ID '%s' not found", songID),
				"The song was resolved but had already been removed.",
				nil,
			)
		}
		return fmt.Errorf("failed to delete song: %w", err)
	}

	printer.Success("Deleted song %s\n", songID)
	return nil
}
