package commands

import (
	"fmt"

	"github.com/dyluth/capo/internal/scaffold"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create capo.yml and an example song",
	Long: `Initialize the current directory for capo.

Creates:
  • capo.yml - Store and display configuration
  • songs/amazing-grace.txt, songs/amazing-grace.chords - An example song to upload

Use --force to overwrite an existing capo.yml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite existing capo.yml and example song")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !forceInit {
		if err := scaffold.CheckExisting("."); err != nil {
			return err
		}
	}

	if err := scaffold.Initialize(".", forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess()
	return nil
}
