package songstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dyluth/capo/pkg/chords"
	"github.com/redis/go-redis/v9"
)

// Client provides namespace-scoped Redis operations for songs and transpose offsets.
// The client is safe for concurrent use.
type Client struct {
	rdb       *redis.Client
	namespace string
}

// TransposeEvent is published whenever a song's transpose offset is written.
type TransposeEvent struct {
	SongID string `json:"song_id"`
	Offset int    `json:"offset"`
}

// NewClient creates a store client for the given namespace.
// Returns an error if namespace is empty.
func NewClient(redisOpts *redis.Options, namespace string) (*Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &Client{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Namespace returns the key namespace of this client.
func (c *Client) Namespace() string {
	return c.namespace
}

// SaveSong validates a song and replaces any stored copy with the same ID.
func (c *Client) SaveSong(ctx context.Context, s *chords.Song) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid song: %w", err)
	}

	hash, err := SongToHash(s)
	if err != nil {
		return fmt.Errorf("failed to serialize song: %w", err)
	}

	key := SongKey(c.namespace, s.ID)
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, hash)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write song to Redis: %w", err)
	}

	return nil
}

// GetSong retrieves a song by ID.
// Returns an error wrapping chords.ErrSongNotFound if the song doesn't exist.
func (c *Client) GetSong(ctx context.Context, songID string) (*chords.Song, error) {
	hashData, err := c.rdb.HGetAll(ctx, SongKey(c.namespace, songID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read song from Redis: %w", err)
	}

	// HGetAll returns an empty map for missing keys
	if len(hashData) == 0 {
		return nil, fmt.Errorf("%w: %s", chords.ErrSongNotFound, songID)
	}

	song, err := HashToSong(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize song: %w", err)
	}

	return song, nil
}

// SongExists checks if a song exists without fetching it.
func (c *Client) SongExists(ctx context.Context, songID string) (bool, error) {
	exists, err := c.rdb.Exists(ctx, SongKey(c.namespace, songID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check song existence: %w", err)
	}
	return exists > 0, nil
}

// DeleteSong removes a song. The persisted transpose offset is left in place.
// Returns an error wrapping chords.ErrSongNotFound if nothing was deleted.
func (c *Client) DeleteSong(ctx context.Context, songID string) error {
	n, err := c.rdb.Del(ctx, SongKey(c.namespace, songID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", chords.ErrSongNotFound, songID)
	}
	return nil
}

// ScanSongIDs returns the IDs of all songs whose ID starts with prefix.
// Uses SCAN so large libraries don't block the server.
func (c *Client) ScanSongIDs(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := SongKeyPrefix(c.namespace)
	iter := c.rdb.Scan(ctx, 0, keyPrefix+escapeGlob(prefix)+"*", 0).Iterator()

	var ids []string
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan songs: %w", err)
	}

	sort.Strings(ids)
	return ids, nil
}

// ListSongs returns every song in the namespace, oldest upload first.
// Songs that fail to load are skipped with a warning.
func (c *Client) ListSongs(ctx context.Context) ([]*chords.Song, error) {
	ids, err := c.ScanSongIDs(ctx, "")
	if err != nil {
		return nil, err
	}

	songs := make([]*chords.Song, 0, len(ids))
	for _, id := range ids {
		song, err := c.GetSong(ctx, id)
		if err != nil {
			log.Printf("[WARN] Skipping unreadable song %s: %v", id, err)
			continue
		}
		songs = append(songs, song)
	}

	sort.SliceStable(songs, func(i, j int) bool {
		return songs[i].CreatedAtMs < songs[j].CreatedAtMs
	})
	return songs, nil
}

// GetOffset returns the persisted transpose offset for a song, or 0 if none is stored.
func (c *Client) GetOffset(ctx context.Context, songID string) (int, error) {
	raw, err := c.rdb.Get(ctx, TransposeKey(c.namespace, songID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read transpose offset: %w", err)
	}
	return parseOffset(songID, raw), nil
}

// SetOffset persists a song's transpose offset, clamped to
// [chords.MinOffset, chords.MaxOffset], and publishes a TransposeEvent.
func (c *Client) SetOffset(ctx context.Context, songID string, offset int) error {
	offset = chords.ClampOffset(offset)

	if err := c.rdb.Set(ctx, TransposeKey(c.namespace, songID), strconv.Itoa(offset), 0).Err(); err != nil {
		return fmt.Errorf("failed to write transpose offset: %w", err)
	}

	eventJSON, err := json.Marshal(TransposeEvent{SongID: songID, Offset: offset})
	if err != nil {
		return fmt.Errorf("failed to marshal transpose event: %w", err)
	}
	if err := c.rdb.Publish(ctx, TransposeEventsChannel(c.namespace), eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish transpose event: %w", err)
	}

	return nil
}

// Subscription is an active Pub/Sub subscription to transpose events.
// Caller must call Close() when done.
type Subscription struct {
	events <-chan *TransposeEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of transpose events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *TransposeEvent {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors.
// Malformed messages are reported here and skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeTransposeEvents subscribes to offset changes in this namespace.
// The subscription is confirmed with Redis before returning, so events
// published after this call are delivered (at-most-once).
func (c *Client) SubscribeTransposeEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, TransposeEventsChannel(c.namespace))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to transpose events: %w", err)
	}

	eventsChan := make(chan *TransposeEvent, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event TransposeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal transpose event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound reports whether err means the requested song does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, chords.ErrSongNotFound) || errors.Is(err, redis.Nil)
}

// escapeGlob escapes SCAN pattern metacharacters in a literal prefix.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
