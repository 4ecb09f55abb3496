// Package songstore provides the Redis-backed song and transpose-offset store
// for capo.
//
// # Overview
//
// Songs are stored as Redis hashes; the lyric lines of a song are kept as a
// single JSON-encoded field decoded permissively by chords.DecodeLines. The
// transpose offset of a song is an independent string key so that it survives
// deletion of the song itself.
//
// # Namespacing
//
// All keys and Pub/Sub channels are namespaced so that several capo libraries
// can share one Redis server.
//
//	Songs:            capo:{namespace}:song:{song_id}
//	Transpose offset: capo:{namespace}:transpose:{song_id}
//	Transpose events: capo:{namespace}:transpose_events
//
// # Usage Example
//
//	client, err := songstore.NewClient(&redis.Options{Addr: "localhost:6379"}, "default")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	song, err := client.GetSong(ctx, id)
//	if songstore.IsNotFound(err) {
//		// nothing to render
//	}
//
//	offset, err := client.GetOffset(ctx, id) // 0 when never set
//
// The offset is keyed by song ID only, so every user of the same store sees
// the same offset for a song.
package songstore
