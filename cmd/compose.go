package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"glyphtone/config"
	"glyphtone/core/audio"
	"glyphtone/core/composer"
	"glyphtone/model"

	"github.com/spf13/cobra"
)

var (
	composeAudio  string
	composePerf   string
	composeOut    string
	composeTitle  string
	composeAlbum  string
	composeArtist string
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Export a tagged file without the server",
	Long:  `Runs one export on the command line: reads a performance document, rasterizes it against the audio file and writes "<base>_glyphed.ogg" to the output directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		data, err := os.ReadFile(composePerf)
		if err != nil {
			log.Fatalf("Failed to read performance document: %v", err)
		}
		var perf model.Performance
		if err := json.Unmarshal(data, &perf); err != nil {
			log.Fatalf("Invalid performance document: %v", err)
		}

		title := composeTitle
		if title == "" {
			title = perf.Name
		}

		proc := audio.NewFFmpegProcessor(cfg.FFmpegPath, cfg.AudioBitrate)
		comp := composer.New(proc, nil)

		result, err := comp.Compose(context.Background(), composer.Request{
			AudioPath:   composeAudio,
			OutputDir:   composeOut,
			Performance: &perf,
			Title:       title,
			Album:       composeAlbum,
			Artist:      composeArtist,
		})
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}

		fmt.Printf("Exported %s (%d frames, %.2fs)\n", result.OutputPath, result.FrameCount, result.Duration)
	},
}

func init() {
	rootCmd.AddCommand(composeCmd)

	composeCmd.Flags().StringVarP(&composeAudio, "audio", "a", "", "input audio file (required)")
	composeCmd.Flags().StringVarP(&composePerf, "performance", "p", "", "performance document JSON file (required)")
	composeCmd.Flags().StringVarP(&composeOut, "out", "o", ".", "output directory")
	composeCmd.Flags().StringVarP(&composeTitle, "title", "t", "", "title tag (defaults to the performance name)")
	composeCmd.Flags().StringVar(&composeAlbum, "album", "", "album tag")
	composeCmd.Flags().StringVar(&composeArtist, "artist", "", "artist tag")
	composeCmd.MarkFlagRequired("audio")
	composeCmd.MarkFlagRequired("performance")

	composeCmd.Example = `  # Export a tagged file next to the input
  glyphtone compose -a song.mp3 -p song.json

  # Export with explicit tags into a directory
  glyphtone compose -a song.ogg -p song.json -o exports -t "My Light Show" --artist "Me"`
}
