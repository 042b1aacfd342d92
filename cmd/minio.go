package cmd

import (
	"context"
	"fmt"
	"log"

	"glyphtone/config"
	"glyphtone/storage"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "List exports in object storage",
	Long:  `Connects to MinIO with the configured settings and lists the stored export objects, optionally filtered by prefix.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Connecting to MinIO...")

		cfg := config.Load()
		fmt.Printf("MinIO config: %s, bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		client := storage.GetMinioClient()
		objects := client.ListObjects(context.Background(), cfg.MinioBucket, minio.ListObjectsOptions{
			Prefix:    minioPrefix,
			Recursive: true,
		})

		var count int
		var total int64
		for object := range objects {
			if object.Err != nil {
				log.Fatalf("Failed to list objects: %v", object.Err)
			}
			fmt.Printf("  %10d  %s\n", object.Size, object.Key)
			count++
			total += object.Size
		}

		fmt.Printf("\n%d objects, %d bytes\n", count, total)
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "exports/", "filter objects by prefix")

	minioCmd.Example = `  # List all exported files
  glyphtone minio

  # List one export's objects
  glyphtone minio -p "exports/2f9c"`
}
