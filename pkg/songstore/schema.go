package songstore

import "fmt"

// SongKey returns the Redis key for a song hash.
// Pattern: capo:{namespace}:song:{song_id}
func SongKey(namespace, songID string) string {
	return fmt.Sprintf("capo:%s:song:%s", namespace, songID)
}

// SongKeyPrefix returns the key prefix shared by all songs in a namespace.
func SongKeyPrefix(namespace string) string {
	return fmt.Sprintf("capo:%s:song:", namespace)
}

// TransposeKey returns the Redis key holding a song's transpose offset.
// Pattern: capo:{namespace}:transpose:{song_id}
func TransposeKey(namespace, songID string) string {
	return fmt.Sprintf("capo:%s:transpose:%s", namespace, songID)
}

// TransposeEventsChannel returns the Pub/Sub channel for offset changes.
// Pattern: capo:{namespace}:transpose_events
func TransposeEventsChannel(namespace string) string {
	return fmt.Sprintf("capo:%s:transpose_events", namespace)
}
