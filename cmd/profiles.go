package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alde/inkframe/pkg/dither"
	"github.com/alde/inkframe/pkg/panel"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List built-in panel profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles := panel.ListProfiles()
		for _, key := range panel.ProfileNames() {
			p := profiles[key]
			c := p.Capabilities
			fmt.Printf("%s\n", key)
			fmt.Printf("  %s (%s %s)\n", p.Name, p.Manufacturer, p.Model)
			fmt.Printf("  %dx%d, %s", c.Width, c.Height, c.Output)
			if c.DefaultDithering != "" {
				fmt.Printf(", %s", c.DefaultDithering)
			}
			fmt.Println()
			if len(c.Colors) > 0 {
				fmt.Printf("  colours: %s\n", strings.Join(c.Colors, ", "))
			}
		}
		return nil
	},
}

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List dithering algorithms and their accepted names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := dither.Names()
		for a := dither.FloydSteinberg; a <= dither.Yliluoma2; a++ {
			fmt.Printf("%-20s %s\n", a, strings.Join(names[a], ", "))
		}
		fmt.Printf("%-20s %s\n", dither.Nearest, "(empty or unknown name)")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(algorithmsCmd)
}
