package cmd

import (
	"fmt"
	"log"
	"os"

	"glyphtone/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "glyphtone",
	Short: "Glyphtone turns keyboard performances into glyph-tagged audio.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting Glyphtone server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
