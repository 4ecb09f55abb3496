package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckExisting returns an error if dir already holds capo files.
func CheckExisting(dir string) error {
	var existing []string

	if _, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil {
		existing = append(existing, ConfigFile)
	}
	if info, err := os.Stat(filepath.Join(dir, SongsDir, exampleLyricsFile)); err == nil && !info.IsDir() {
		existing = append(existing, filepath.Join(SongsDir, exampleLyricsFile))
	}

	if len(existing) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("capo already initialized\n\nFound existing")
	if len(existing) == 1 {
		fmt.Fprintf(&b, ": %s\n", existing[0])
	} else {
		b.WriteString(" files:\n")
		for _, f := range existing {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	b.WriteString("\nUse 'capo init --force' to reinitialize (this will overwrite existing configuration)")
	return fmt.Errorf("%s", b.String())
}
