package cmd

import (
	"log"

	"glyphtone/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the composer HTTP server",
	Long:  `Starts the HTTP server that hosts the composer UI, the export pipeline and the payload inspection endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting Glyphtone server...")
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
