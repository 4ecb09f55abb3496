package commands

import (
	"fmt"

	"github.com/dyluth/capo/internal/config"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "capo",
	Short: "Capo - chord sheets that transpose",
	Long: `Capo stores lyric sheets with chord annotations and renders them as
monospace chord sheets, transposed to whatever key you need.

Each song remembers its own transpose offset, so every device reading the
same store sees the song in the same key.`,
	Version: version,
	// Unknown flags on the root command are an error, not a silent no-op
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command. Called once by main.main().
func Execute() error {
	// Cobra's own error and usage output is replaced by the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to capo.yml")
}
