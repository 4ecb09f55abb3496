package songstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/capo/pkg/chords"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a test client connected to a miniredis instance
func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(&redis.Options{Addr: mr.Addr()}, "test-ns")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func newTestSong(title string) *chords.Song {
	return &chords.Song{
		ID:     uuid.New().String(),
		Title:  title,
		Artist: "John Newton",
		Key:    "G",
		BPM:    72,
		Genres: []string{"hymn"},
		Lyrics: chords.ParseUpload("Amazing grace\nhow sweet the sound", "G-0,C-8\nG-4"),
	}
}

func TestNewClient(t *testing.T) {
	t.Run("creates client successfully", func(t *testing.T) {
		client, _ := setupTestClient(t)
		assert.Equal(t, "test-ns", client.Namespace())
	})

	t.Run("rejects empty namespace", func(t *testing.T) {
		_, err := NewClient(&redis.Options{Addr: "localhost:6379"}, "")
		assert.ErrorContains(t, err, "namespace cannot be empty")
	})
}

func TestPing(t *testing.T) {
	client, _ := setupTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestSaveAndGetSong(t *testing.T) {
	client, mr := setupTestClient(t)
	ctx := context.Background()

	t.Run("round-trips a song", func(t *testing.T) {
		song := newTestSong("Amazing Grace")
		require.NoError(t, client.SaveSong(ctx, song))

		assert.True(t, mr.Exists(SongKey("test-ns", song.ID)))

		got, err := client.GetSong(ctx, song.ID)
		require.NoError(t, err)
		assert.Equal(t, song.Title, got.Title)
		assert.Equal(t, song.Artist, got.Artist)
		assert.Equal(t, 72, got.BPM)
		assert.Equal(t, []string{"hymn"}, got.Genres)
		require.Len(t, got.Lyrics, 2)
		assert.Equal(t, song.Lyrics[0].Chords, got.Lyrics[0].Chords)
	})

	t.Run("rejects invalid song", func(t *testing.T) {
		err := client.SaveSong(ctx, &chords.Song{ID: "x"})
		assert.ErrorContains(t, err, "invalid song")
	})

	t.Run("replaces stored fields", func(t *testing.T) {
		song := newTestSong("First")
		require.NoError(t, client.SaveSong(ctx, song))

		song.Title = "Second"
		song.Lyrics = song.Lyrics[:1]
		require.NoError(t, client.SaveSong(ctx, song))

		got, err := client.GetSong(ctx, song.ID)
		require.NoError(t, err)
		assert.Equal(t, "Second", got.Title)
		assert.Len(t, got.Lyrics, 1)
	})

	t.Run("missing song is not found", func(t *testing.T) {
		_, err := client.GetSong(ctx, uuid.New().String())
		assert.True(t, IsNotFound(err))
	})

	t.Run("skips malformed lyric records", func(t *testing.T) {
		id := uuid.New().String()
		mr.HSet(SongKey("test-ns", id), "id", id, "title", "Broken", "bpm", "fast",
			"lyrics", `[{"line_number": 1, "text": "ok"}, {"text": "bad"}]`)

		got, err := client.GetSong(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, got.BPM)
		require.Len(t, got.Lyrics, 1)
		assert.Equal(t, "ok", got.Lyrics[0].Text)
	})
}

func TestDeleteSong(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	song := newTestSong("Doomed")
	require.NoError(t, client.SaveSong(ctx, song))
	require.NoError(t, client.SetOffset(ctx, song.ID, 3))

	require.NoError(t, client.DeleteSong(ctx, song.ID))

	exists, err := client.SongExists(ctx, song.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Offset outlives the song
	offset, err := client.GetOffset(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, offset)

	assert.True(t, IsNotFound(client.DeleteSong(ctx, song.ID)))
}

func TestScanSongIDs(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	a := newTestSong("A")
	a.ID = "abc12345-0000-0000-0000-000000000001"
	b := newTestSong("B")
	b.ID = "abc12399-0000-0000-0000-000000000002"
	c := newTestSong("C")
	c.ID = "ffff0000-0000-0000-0000-000000000003"
	for _, s := range []*chords.Song{a, b, c} {
		require.NoError(t, client.SaveSong(ctx, s))
	}

	ids, err := client.ScanSongIDs(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, ids)

	ids, err = client.ScanSongIDs(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids)

	ids, err = client.ScanSongIDs(ctx, "*")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListSongs(t *testing.T) {
	client, mr := setupTestClient(t)
	ctx := context.Background()

	older := newTestSong("Older")
	older.CreatedAtMs = 1000
	newer := newTestSong("Newer")
	newer.CreatedAtMs = 2000
	require.NoError(t, client.SaveSong(ctx, newer))
	require.NoError(t, client.SaveSong(ctx, older))

	// Hash without an id field is skipped
	mr.HSet(SongKey("test-ns", "corrupt"), "title", "no id")

	songs, err := client.ListSongs(ctx)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "Older", songs[0].Title)
	assert.Equal(t, "Newer", songs[1].Title)
}

func TestOffsets(t *testing.T) {
	client, mr := setupTestClient(t)
	ctx := context.Background()

	t.Run("absent offset is zero", func(t *testing.T) {
		offset, err := client.GetOffset(ctx, "never-set")
		require.NoError(t, err)
		assert.Equal(t, 0, offset)
	})

	t.Run("stores offset", func(t *testing.T) {
		require.NoError(t, client.SetOffset(ctx, "song-1", -4))
		offset, err := client.GetOffset(ctx, "song-1")
		require.NoError(t, err)
		assert.Equal(t, -4, offset)
	})

	t.Run("clamps on write", func(t *testing.T) {
		require.NoError(t, client.SetOffset(ctx, "song-2", 30))
		got, err := mr.Get(TransposeKey("test-ns", "song-2"))
		require.NoError(t, err)
		assert.Equal(t, "11", got)
	})

	t.Run("clamps and tolerates bad stored values", func(t *testing.T) {
		require.NoError(t, mr.Set(TransposeKey("test-ns", "song-3"), "-99"))
		offset, err := client.GetOffset(ctx, "song-3")
		require.NoError(t, err)
		assert.Equal(t, -11, offset)

		require.NoError(t, mr.Set(TransposeKey("test-ns", "song-4"), "up"))
		offset, err = client.GetOffset(ctx, "song-4")
		require.NoError(t, err)
		assert.Equal(t, 0, offset)
	})
}

func TestSubscribeTransposeEvents(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	sub, err := client.SubscribeTransposeEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, client.SetOffset(ctx, "song-9", 5))

	select {
	case event := <-sub.Events():
		assert.Equal(t, "song-9", event.SongID)
		assert.Equal(t, 5, event.Offset)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for transpose event")
	}
}

func TestSubscriptionClose(t *testing.T) {
	client, _ := setupTestClient(t)

	sub, err := client.SubscribeTransposeEvents(context.Background())
	require.NoError(t, err)

	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "events channel should be closed")
	case <-time.After(1 * time.Second):
		t.Fatal("events channel not closed after Close")
	}
}
