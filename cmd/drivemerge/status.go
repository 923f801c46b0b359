package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracked folders and their last sync",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	folders, err := apiClient.States.List()
	if err != nil {
		return err
	}

	if len(folders) == 0 {
		fmt.Println("No folders synced yet. Run `drivemerge sync <folder-url>` first.")
		return nil
	}

	bold := color.New(color.Bold)
	for i, folderID := range folders {
		info, err := apiClient.LedgerInfo(folderID)
		if err != nil {
			color.Red("%s: %v", folderID, err)
			continue
		}

		if i > 0 {
			fmt.Println()
		}
		bold.Println(info.FolderName)
		fmt.Printf("  ID:        %s\n", info.FolderID)
		fmt.Printf("  Documents: %d active, %d deleted, %d total\n",
			info.Active, info.Deleted, info.Records)
		if info.LastRunAt.IsZero() {
			fmt.Println("  Last sync: never")
		} else {
			fmt.Printf("  Last sync: %s\n", info.LastRunAt.Format("2006-01-02 15:04:05"))
		}
	}

	fmt.Println()
	fmt.Printf("%d folder(s), state backend: %s\n",
		len(folders), strings.ToLower(cfg.Storage.StateBackend))
	return nil
}
