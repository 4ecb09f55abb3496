// Package localstore is the offline SQLite backend for capo. It stores the
// same songs and transpose offsets as the Redis store, without events.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dyluth/capo/pkg/chords"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "capo.sqlite3"

const errDBClientNil = "db client is nil"

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// SongRow is the persisted form of a song. Lyrics use the chords line document format.
type SongRow struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Title       string `gorm:"index:idx_song_meta,priority:1"`
	Artist      string `gorm:"index:idx_song_meta,priority:2"`
	MusicKey    string
	BPM         int
	Genres      string // JSON array
	Lyrics      string // JSON line documents
	CreatedAtMs int64 `gorm:"index:idx_created"`
}

// OffsetRow holds the transpose offset of one song, keyed by song ID only.
type OffsetRow struct {
	SongID string `gorm:"primaryKey;type:varchar(36)"`
	Offset int
}

func (SongRow) TableName() string   { return "songs" }
func (OffsetRow) TableName() string { return "transpose_offsets" }

// NewDBClient opens (and migrates) the database at path.
func NewDBClient(dbPath string) (*DBClient, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=busy_timeout(5000)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&SongRow{}, &OffsetRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DBClient) Ping(ctx context.Context) error {
	if c == nil || c.db == nil {
		return errors.New(errDBClientNil)
	}
	return c.db.PingContext(ctx)
}

// SaveSong validates a song and inserts or replaces it.
func (c *DBClient) SaveSong(ctx context.Context, s *chords.Song) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid song: %w", err)
	}

	row, err := toRow(s)
	if err != nil {
		return err
	}

	err = c.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("saving song: %w", err)
	}
	return nil
}

// GetSong returns an error wrapping chords.ErrSongNotFound when no row matches.
func (c *DBClient) GetSong(ctx context.Context, songID string) (*chords.Song, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var row SongRow
	err := c.DB.WithContext(ctx).Where("id = ?", songID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", chords.ErrSongNotFound, songID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return fromRow(&row), nil
}

func (c *DBClient) SongExists(ctx context.Context, songID string) (bool, error) {
	if c == nil || c.DB == nil {
		return false, errors.New(errDBClientNil)
	}
	var n int64
	if err := c.DB.WithContext(ctx).Model(&SongRow{}).Where("id = ?", songID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("counting songs: %w", err)
	}
	return n > 0, nil
}

// DeleteSong removes a song row. The transpose offset row is kept.
func (c *DBClient) DeleteSong(ctx context.Context, songID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	res := c.DB.WithContext(ctx).Where("id = ?", songID).Delete(&SongRow{})
	if res.Error != nil {
		return fmt.Errorf("deleting song: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", chords.ErrSongNotFound, songID)
	}
	return nil
}

func (c *DBClient) ScanSongIDs(ctx context.Context, prefix string) ([]string, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var all []string
	if err := c.DB.WithContext(ctx).Model(&SongRow{}).Pluck("id", &all).Error; err != nil {
		return nil, fmt.Errorf("listing song ids: %w", err)
	}

	ids := make([]string, 0, len(all))
	for _, id := range all {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ListSongs returns all songs, oldest upload first.
func (c *DBClient) ListSongs(ctx context.Context) ([]*chords.Song, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []SongRow
	if err := c.DB.WithContext(ctx).Order("created_at_ms, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}

	songs := make([]*chords.Song, 0, len(rows))
	for i := range rows {
		songs = append(songs, fromRow(&rows[i]))
	}
	return songs, nil
}

// GetOffset returns the stored offset for a song, 0 when absent.
func (c *DBClient) GetOffset(ctx context.Context, songID string) (int, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var row OffsetRow
	err := c.DB.WithContext(ctx).Where("song_id = ?", songID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying transpose offset: %w", err)
	}
	return chords.ClampOffset(row.Offset), nil
}

// SetOffset upserts a song's offset, clamped to the allowed range.
func (c *DBClient) SetOffset(ctx context.Context, songID string, offset int) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	row := OffsetRow{SongID: songID, Offset: chords.ClampOffset(offset)}
	err := c.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving transpose offset: %w", err)
	}
	return nil
}

func toRow(s *chords.Song) (*SongRow, error) {
	genres := s.Genres
	if genres == nil {
		genres = []string{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return nil, fmt.Errorf("marshal genres: %w", err)
	}
	lyrics, err := chords.EncodeLines(s.Lyrics)
	if err != nil {
		return nil, err
	}
	return &SongRow{
		ID:          s.ID,
		Title:       s.Title,
		Artist:      s.Artist,
		MusicKey:    s.Key,
		BPM:         s.BPM,
		Genres:      string(genresJSON),
		Lyrics:      lyrics,
		CreatedAtMs: s.CreatedAtMs,
	}, nil
}

func fromRow(row *SongRow) *chords.Song {
	genres := []string{}
	if row.Genres != "" {
		if err := json.Unmarshal([]byte(row.Genres), &genres); err != nil {
			log.Printf("[WARN] Song %s: ignoring malformed genres column: %v", row.ID, err)
			genres = []string{}
		}
	}

	lyrics, skipped := chords.DecodeLines(row.Lyrics)
	if skipped > 0 {
		log.Printf("[WARN] Song %s: skipped %d malformed lyric record(s)", row.ID, skipped)
	}

	return &chords.Song{
		ID:          row.ID,
		Title:       row.Title,
		Artist:      row.Artist,
		Key:         row.MusicKey,
		BPM:         row.BPM,
		Genres:      genres,
		Lyrics:      lyrics,
		CreatedAtMs: row.CreatedAtMs,
	}
}
