package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"drivemerge/internal/drive"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset <folder-url-or-id>",
	Short: "Drop a folder's ledger so the next sync starts fresh",
	Long: `Reset removes the persisted ledger for a folder. Cached text and
merged output stay on disk; the next sync treats every file in the
folder as newly added and rewrites the output.`,
	Args: cobra.ExactArgs(1),
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false,
		"Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	folderID := args[0]
	if strings.Contains(folderID, "/") {
		id, _, err := drive.ParseFolderURL(folderID)
		if err != nil {
			return err
		}
		folderID = id
	}

	info, err := apiClient.LedgerInfo(folderID)
	if err != nil {
		return err
	}

	if !resetForce {
		fmt.Printf("Reset %q (%d record(s))? [y/N]: ", info.FolderName, info.Records)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := apiClient.ResetFolder(folderID); err != nil {
		return err
	}

	fmt.Printf("Ledger for %q removed. The next sync rebuilds from scratch.\n", info.FolderName)
	return nil
}
