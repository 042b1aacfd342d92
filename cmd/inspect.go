package cmd

import (
	"fmt"
	"log"
	"os"

	"glyphtone/core/glyph"

	"github.com/spf13/cobra"
)

var inspectVerify bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <payload-file>",
	Short: "Decode a tag payload file",
	Long:  `Runs the inverse pipeline on a payload extracted from a tagged file (the AUTHOR field value) and prints what it carries.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read payload file: %v", err)
		}
		payload := string(data)

		csvText, err := glyph.DecodeTag(payload)
		if err != nil {
			log.Fatalf("Transform failed: %v", err)
		}
		matrix, err := glyph.DecodeCSV(csvText)
		if err != nil {
			log.Fatalf("Malformed matrix document: %v", err)
		}

		lit := 0
		for _, row := range matrix {
			for _, v := range row {
				if v > 0 {
					lit++
				}
			}
		}

		fmt.Printf("Frames:   %d (%.2fs at %d fps)\n", len(matrix), float64(len(matrix))/glyph.FrameRate, glyph.FrameRate)
		fmt.Printf("Zones:    %d\n", glyph.ZoneCount)
		fmt.Printf("Lit cells: %d\n", lit)

		if inspectVerify {
			reEncoded, err := glyph.EncodeCSV(matrix)
			if err != nil {
				log.Fatalf("Re-encode failed: %v", err)
			}
			rePayload, err := glyph.EncodeTag(reEncoded)
			if err != nil {
				log.Fatalf("Re-transform failed: %v", err)
			}
			if rePayload != payload {
				log.Fatal("Round trip mismatch: payload was not produced by this encoder")
			}
			fmt.Println("Round trip: OK")
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVarP(&inspectVerify, "verify", "v", false, "re-encode the matrix and compare against the input payload")

	inspectCmd.Example = `  # Summarize a payload
  glyphtone inspect payload.txt

  # Also verify the payload round trips byte for byte
  glyphtone inspect -v payload.txt`
}
