// Package testutil holds shared fixtures for tests that need a song store.
package testutil

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/capo/pkg/chords"
	"github.com/dyluth/capo/pkg/songstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// RedisEnvironment is an isolated miniredis-backed song store.
type RedisEnvironment struct {
	T         *testing.T
	Redis     *miniredis.Miniredis
	Client    *songstore.Client
	Namespace string
}

// SetupRedis starts miniredis and connects a store client in namespace.
// Both are closed when the test ends.
func SetupRedis(t *testing.T, namespace string) *RedisEnvironment {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := songstore.NewClient(&redis.Options{Addr: mr.Addr()}, namespace)
	require.NoError(t, err, "Failed to create song store client")
	t.Cleanup(func() { client.Close() })

	return &RedisEnvironment{T: t, Redis: mr, Client: client, Namespace: namespace}
}

// NewClient opens another client on the same server, as a second device would.
func (env *RedisEnvironment) NewClient() *songstore.Client {
	env.T.Helper()
	client, err := songstore.NewClient(&redis.Options{Addr: env.Redis.Addr()}, env.Namespace)
	require.NoError(env.T, err)
	env.T.Cleanup(func() { client.Close() })
	return client
}

// SaveSong stores song and fails the test on error.
func (env *RedisEnvironment) SaveSong(song *chords.Song) {
	env.T.Helper()
	require.NoError(env.T, env.Client.SaveSong(context.Background(), song), "Failed to save song")
}

// GraceSong returns a two-line song in G with one flat chord.
func GraceSong(id string) *chords.Song {
	return &chords.Song{
		ID:          id,
		Title:       "Amazing Grace",
		Artist:      "John Newton",
		Key:         "G",
		BPM:         72,
		Genres:      []string{"hymn"},
		Lyrics:      chords.ParseUpload("Amazing grace how sweet\nthe sound", "G-0,C-8,G-14\nBb-4"),
		CreatedAtMs: 1700000000000,
	}
}
