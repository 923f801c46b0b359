package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"drivemerge/internal/models"
)

var syncCmd = &cobra.Command{
	Use:   "sync <folder-url>",
	Short: "Sync a Drive folder and regenerate its merged output",
	Long: `Sync lists the folder recursively, downloads and extracts files that
were added or modified since the last run, marks vanished files as
deleted, and rewrites the merged chunk files from all active documents.

Per-file failures are reported and retried on the next run; they do not
fail the command.`,
	Example: `  drivemerge sync https://drive.google.com/drive/folders/1abc123def456
  drivemerge sync https://drive.google.com/drive/u/0/my-drive`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	folderURL := args[0]

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	service, err := apiClient.NewSyncService(ctx)
	if err != nil {
		return err
	}

	report, err := service.Run(ctx, folderURL)
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}

func printReport(r *models.SyncReport) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	fmt.Println()
	bold.Printf("Sync completed: %s\n", r.FolderName)
	fmt.Printf("  Run:         %s (%s)\n", r.RunID, r.Duration.Round(time.Millisecond))
	green.Printf("  Added:       %d\n", r.Added)
	green.Printf("  Modified:    %d\n", r.Modified)
	yellow.Printf("  Deleted:     %d\n", r.Deleted)
	fmt.Printf("  Unchanged:   %d\n", r.Unchanged)
	if r.Unsupported > 0 {
		yellow.Printf("  Unsupported: %d\n", r.Unsupported)
	}
	if r.Failed > 0 {
		red.Printf("  Failed:      %d (will retry next run)\n", r.Failed)
		for _, path := range r.FailedPaths {
			red.Printf("    - %s\n", path)
		}
	}
	fmt.Printf("  Output:      %d chunk(s), %s, %d active document(s)\n",
		len(r.Chunks), humanize.Bytes(uint64(r.TotalMergedBytes)), r.ActiveDocuments)
}
