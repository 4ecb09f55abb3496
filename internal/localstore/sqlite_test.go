package localstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/capo/pkg/chords"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a client backed by a fresh database file
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "test_capo.sqlite3")
	client, err := NewDBClient(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, dbPath
}

func newTestSong(title string, createdAtMs int64) *chords.Song {
	return &chords.Song{
		ID:          uuid.New().String(),
		Title:       title,
		Artist:      "Traditional",
		Key:         "D",
		BPM:         100,
		Genres:      []string{"folk"},
		Lyrics:      chords.ParseUpload("Oh Shenandoah\nI long to hear you", "D-0,G-3\nA-2"),
		CreatedAtMs: createdAtMs,
	}
}

func TestNewDBClient(t *testing.T) {
	client, dbPath := setupTestDB(t)
	require.NotNil(t, client.DB)

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
	assert.NoError(t, client.Ping(context.Background()))
}

func TestNilClient(t *testing.T) {
	var c *DBClient
	assert.NoError(t, c.Close())
	_, err := c.GetSong(context.Background(), "x")
	assert.ErrorContains(t, err, errDBClientNil)
}

func TestSaveAndGetSong(t *testing.T) {
	client, _ := setupTestDB(t)
	ctx := context.Background()

	song := newTestSong("Shenandoah", 10)
	require.NoError(t, client.SaveSong(ctx, song))

	got, err := client.GetSong(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shenandoah", got.Title)
	assert.Equal(t, "D", got.Key)
	assert.Equal(t, []string{"folk"}, got.Genres)
	require.Len(t, got.Lyrics, 2)
	assert.Equal(t, song.Lyrics[0].Chords, got.Lyrics[0].Chords)

	t.Run("save replaces existing row", func(t *testing.T) {
		song.Title = "Shenandoah (live)"
		require.NoError(t, client.SaveSong(ctx, song))
		got, err := client.GetSong(ctx, song.ID)
		require.NoError(t, err)
		assert.Equal(t, "Shenandoah (live)", got.Title)
	})

	t.Run("missing song wraps ErrSongNotFound", func(t *testing.T) {
		_, err := client.GetSong(ctx, "missing")
		assert.ErrorIs(t, err, chords.ErrSongNotFound)
	})

	t.Run("rejects invalid song", func(t *testing.T) {
		assert.ErrorContains(t, client.SaveSong(ctx, &chords.Song{ID: "x"}), "invalid song")
	})
}

func TestMalformedRowIsLoadedPartially(t *testing.T) {
	client, _ := setupTestDB(t)
	ctx := context.Background()

	row := SongRow{ID: "raw", Title: "Raw", Genres: "oops", Lyrics: `[{"line_number": 2, "text": "kept"}, {"bad": true}]`}
	require.NoError(t, client.DB.Create(&row).Error)

	got, err := client.GetSong(ctx, "raw")
	require.NoError(t, err)
	assert.Empty(t, got.Genres)
	require.Len(t, got.Lyrics, 1)
	assert.Equal(t, "kept", got.Lyrics[0].Text)
}

func TestDeleteSong(t *testing.T) {
	client, _ := setupTestDB(t)
	ctx := context.Background()

	song := newTestSong("Gone", 1)
	require.NoError(t, client.SaveSong(ctx, song))
	require.NoError(t, client.SetOffset(ctx, song.ID, -2))

	require.NoError(t, client.DeleteSong(ctx, song.ID))
	exists, err := client.SongExists(ctx, song.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	offset, err := client.GetOffset(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, -2, offset)

	assert.ErrorIs(t, client.DeleteSong(ctx, song.ID), chords.ErrSongNotFound)
}

func TestListAndScan(t *testing.T) {
	client, _ := setupTestDB(t)
	ctx := context.Background()

	second := newTestSong("Second", 200)
	second.ID = "bbbbbb01"
	first := newTestSong("First", 100)
	first.ID = "aaaaaa01"
	third := newTestSong("Third", 300)
	third.ID = "aaaaaa02"
	for _, s := range []*chords.Song{second, first, third} {
		require.NoError(t, client.SaveSong(ctx, s))
	}

	songs, err := client.ListSongs(ctx)
	require.NoError(t, err)
	require.Len(t, songs, 3)
	assert.Equal(t, []string{"First", "Second", "Third"}, []string{songs[0].Title, songs[1].Title, songs[2].Title})

	ids, err := client.ScanSongIDs(ctx, "aaaaaa")
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaaaa01", "aaaaaa02"}, ids)
}

func TestOffsets(t *testing.T) {
	client, _ := setupTestDB(t)
	ctx := context.Background()

	offset, err := client.GetOffset(ctx, "none")
	require.NoError(t, err)
	assert.Equal(t, 0, offset)

	require.NoError(t, client.SetOffset(ctx, "s", 4))
	require.NoError(t, client.SetOffset(ctx, "s", -20))

	offset, err = client.GetOffset(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, -11, offset)
}
