package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/capo/internal/config"
	"github.com/dyluth/capo/internal/printer"
	"github.com/dyluth/capo/pkg/chords"
)

//go:embed templates/*
var templatesFS embed.FS

// Paths created by Initialize, relative to the target directory.
const (
	ConfigFile        = config.DefaultPath
	SongsDir          = "songs"
	exampleLyricsFile = "amazing-grace.txt"
	exampleChordsFile = "amazing-grace.chords"
)

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes capo.yml and an example song into dir.
// If force is true, an existing capo.yml and songs/ example are overwritten.
func Initialize(dir string, force bool) error {
	if force {
		if err := handleForce(dir); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dir, SongsDir), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", SongsDir, err)
	}

	for _, file := range files {
		path := filepath.Join(dir, file.Path)
		if err := os.WriteFile(path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return validateCreatedFiles(dir)
}

func handleForce(dir string) error {
	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		printer.Warning("Overwriting existing %s...\n", ConfigFile)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", ConfigFile, err)
		}
	}
	return nil
}

func getTemplateFiles() ([]FileInfo, error) {
	templates := []struct {
		name string
		path string
	}{
		{"capo.yml.tmpl", ConfigFile},
		{"amazing-grace.txt.tmpl", filepath.Join(SongsDir, exampleLyricsFile)},
		{"amazing-grace.chords.tmpl", filepath.Join(SongsDir, exampleChordsFile)},
	}

	files := make([]FileInfo, 0, len(templates))
	for _, tmpl := range templates {
		content, err := templatesFS.ReadFile("templates/" + tmpl.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", tmpl.name, err)
		}
		files = append(files, FileInfo{Path: tmpl.path, Content: content, Permissions: 0644})
	}
	return files, nil
}

// validateCreatedFiles loads the written config and parses the example song.
func validateCreatedFiles(dir string) error {
	if _, err := config.Load(filepath.Join(dir, ConfigFile)); err != nil {
		return fmt.Errorf("created %s is invalid: %w", ConfigFile, err)
	}

	lyrics, err := os.ReadFile(filepath.Join(dir, SongsDir, exampleLyricsFile))
	if err != nil {
		return fmt.Errorf("failed to read example lyrics: %w", err)
	}
	chordText, err := os.ReadFile(filepath.Join(dir, SongsDir, exampleChordsFile))
	if err != nil {
		return fmt.Errorf("failed to read example chords: %w", err)
	}
	for _, line := range chords.ParseUpload(string(lyrics), string(chordText)) {
		if len(line.Chords) == 0 {
			return fmt.Errorf("example song line %d has no chords", line.LineNumber)
		}
	}
	return nil
}

// PrintSuccess prints the created files and next steps.
func PrintSuccess() {
	printer.Success("Initialized capo\n")
	printer.Info("\nCreated:\n")
	printer.Info("  %s\n", ConfigFile)
	printer.Info("  %s\n", filepath.Join(SongsDir, exampleLyricsFile))
	printer.Info("  %s\n", filepath.Join(SongsDir, exampleChordsFile))
	printer.Info("\nNext steps:\n")
	printer.Info("  1. Set store.backend in %s (redis or sqlite)\n", ConfigFile)
	printer.Info("  2. capo upload --title \"Amazing Grace\" --key G \\\n       --lyrics %s --chords %s\n",
		filepath.Join(SongsDir, exampleLyricsFile), filepath.Join(SongsDir, exampleChordsFile))
	printer.Info("  3. capo list\n")
}
