package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alde/inkframe/internal/log"
)

var (
	verbose bool
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "inkframe",
	Short: "Render photos for e-ink and LCD picture frames",
	Long: `Inkframe renders photos into the exact bytes a picture-frame panel expects.

A photo is fitted to the panel, adjusted, stamped with its capture date,
reduced to the panel palette with one of fifteen dithering algorithms and
encoded as PNG or packed 4 bits per pixel.

Frames are described by built-in panel profiles, command line flags or a
frames file (TOML or YAML).`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetVerbose(verbose)
		if logFile != "" {
			if err := log.SetFile(logFile); err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a rotating file instead of stderr")
}
