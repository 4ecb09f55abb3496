// Package session ties a song's persisted transpose offset to the chord
// engine. It keeps the untransposed song of every open song in memory and
// re-derives transposed, rendered views from it whenever the offset changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/dyluth/capo/pkg/chords"
)

// ErrNothingToRender is returned by Open when the song provider has no song
// for the requested ID.
var ErrNothingToRender = errors.New("nothing to render")

// ErrNotLoaded is returned by operations that need an open song.
var ErrNotLoaded = errors.New("song is not loaded")

// SongProvider loads and stores songs. GetSong must return an error wrapping
// chords.ErrSongNotFound for unknown IDs.
type SongProvider interface {
	GetSong(ctx context.Context, songID string) (*chords.Song, error)
	SaveSong(ctx context.Context, s *chords.Song) error
}

// TransposeStore persists the transpose offset of a song. GetOffset returns 0
// for songs that have never been transposed.
type TransposeStore interface {
	GetOffset(ctx context.Context, songID string) (int, error)
	SetOffset(ctx context.Context, songID string, offset int) error
}

// State is the lifecycle state of a song within a session.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoaded   State = "loaded"
)

// View is an immutable snapshot of an open song at one offset. Song.Key and
// every chord are transposed; every line has its ChordLine rendered. Views
// handed out earlier stay valid after the offset changes.
type View struct {
	Song   *chords.Song
	Offset int
}

type openSong struct {
	base *chords.Song // untransposed, as loaded
	view *View
}

// Session tracks the songs a caller has open. It is safe for concurrent use;
// store I/O happens outside the internal lock.
type Session struct {
	songs   SongProvider
	offsets TransposeStore

	mu   sync.Mutex
	open map[string]*openSong
}

// New creates a session backed by the given collaborators.
func New(songs SongProvider, offsets TransposeStore) *Session {
	return &Session{
		songs:   songs,
		offsets: offsets,
		open:    make(map[string]*openSong),
	}
}

// Open loads a song and its persisted offset (Unloaded -> Loaded). Opening an
// already open song reloads it from the provider.
func (s *Session) Open(ctx context.Context, songID string) (*View, error) {
	song, err := s.songs.GetSong(ctx, songID)
	if err != nil {
		if errors.Is(err, chords.ErrSongNotFound) {
			return nil, fmt.Errorf("%w: song %s", ErrNothingToRender, songID)
		}
		return nil, fmt.Errorf("failed to load song: %w", err)
	}
	if song == nil {
		return nil, fmt.Errorf("%w: song %s", ErrNothingToRender, songID)
	}

	offset, err := s.CurrentOffset(ctx, songID)
	if err != nil {
		return nil, err
	}

	view := buildView(song, offset)

	s.mu.Lock()
	s.open[songID] = &openSong{base: song.Clone(), view: view}
	s.mu.Unlock()

	log.Printf("[DEBUG] Opened song %s at offset %d", songID, offset)
	return view, nil
}

// Save persists a song through the provider. If the song is open, its view
// is rebuilt from the saved copy at the current offset.
func (s *Session) Save(ctx context.Context, song *chords.Song) error {
	if err := s.songs.SaveSong(ctx, song); err != nil {
		return fmt.Errorf("failed to save song: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.open[song.ID]; ok {
		o.base = song.Clone()
		o.view = buildView(o.base, o.view.Offset)
	}
	return nil
}

// Close discards the in-memory state of a song (Loaded -> Unloaded).
// The persisted offset is kept.
func (s *Session) Close(songID string) {
	s.mu.Lock()
	delete(s.open, songID)
	s.mu.Unlock()
}

// State reports whether a song is open in this session.
func (s *Session) State(songID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.open[songID]; ok {
		return StateLoaded
	}
	return StateUnloaded
}

// View returns the current snapshot of an open song.
func (s *Session) View(songID string) (*View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.open[songID]
	if !ok {
		return nil, false
	}
	return o.view, true
}

// CurrentOffset reads the persisted offset of a song, 0 if none is stored.
func (s *Session) CurrentOffset(ctx context.Context, songID string) (int, error) {
	offset, err := s.offsets.GetOffset(ctx, songID)
	if err != nil {
		return 0, fmt.Errorf("failed to read transpose offset: %w", err)
	}
	return chords.ClampOffset(offset), nil
}

// SetOffset clamps newOffset to [chords.MinOffset, chords.MaxOffset]. When the
// clamped value differs from the current one it is written to the store and,
// if the song is open, the view is rebuilt from the untransposed chords.
// For songs that are not open only the stored offset changes and the returned
// view is nil.
func (s *Session) SetOffset(ctx context.Context, songID string, newOffset int) (*View, error) {
	newOffset = chords.ClampOffset(newOffset)

	current, loaded := s.currentFor(songID)
	if !loaded {
		stored, err := s.CurrentOffset(ctx, songID)
		if err != nil {
			return nil, err
		}
		current = stored
	}

	if newOffset == current {
		view, _ := s.View(songID)
		return view, nil
	}

	if err := s.offsets.SetOffset(ctx, songID, newOffset); err != nil {
		return nil, fmt.Errorf("failed to write transpose offset: %w", err)
	}
	log.Printf("[DEBUG] Song %s offset %d -> %d", songID, current, newOffset)

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.open[songID]
	if !ok {
		return nil, nil
	}
	o.view = buildView(o.base, newOffset)
	return o.view, nil
}

// Observe rebuilds the view of an open song for an offset that was written
// elsewhere, such as by another process sharing the store. Nothing is written.
func (s *Session) Observe(songID string, offset int) (*View, error) {
	offset = chords.ClampOffset(offset)

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.open[songID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, songID)
	}
	if o.view.Offset != offset {
		o.view = buildView(o.base, offset)
	}
	return o.view, nil
}

// StepUp raises the offset of an open song by one semitone. At the upper
// bound it is a no-op.
func (s *Session) StepUp(ctx context.Context, songID string) (*View, error) {
	return s.step(ctx, songID, +1)
}

// StepDown lowers the offset of an open song by one semitone. At the lower
// bound it is a no-op.
func (s *Session) StepDown(ctx context.Context, songID string) (*View, error) {
	return s.step(ctx, songID, -1)
}

// Reset returns an open song to its original key.
func (s *Session) Reset(ctx context.Context, songID string) (*View, error) {
	if _, loaded := s.currentFor(songID); !loaded {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, songID)
	}
	return s.SetOffset(ctx, songID, 0)
}

func (s *Session) step(ctx context.Context, songID string, delta int) (*View, error) {
	current, loaded := s.currentFor(songID)
	if !loaded {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, songID)
	}

	next := current + delta
	if next < chords.MinOffset || next > chords.MaxOffset {
		view, _ := s.View(songID)
		return view, nil
	}
	return s.SetOffset(ctx, songID, next)
}

func (s *Session) currentFor(songID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.open[songID]
	if !ok {
		return 0, false
	}
	return o.view.Offset, true
}

// buildView derives a transposed, rendered snapshot from the base song.
// The offset is absolute: chords are always shifted from the base, never
// from a previous view.
func buildView(base *chords.Song, offset int) *View {
	song := base.Clone()
	if song.Key != "" {
		song.Key = chords.Transpose(song.Key, offset)
	}
	song.Lyrics = chords.RenderLines(chords.TransposeLines(base.Lyrics, offset))
	return &View{Song: song, Offset: offset}
}
