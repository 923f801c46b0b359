package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"drivemerge/internal/drive"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize access to Google Drive",
	Long: `Login runs the OAuth consent flow for read-only Drive access and
caches the resulting token. Visit the printed URL, approve access,
and paste the code back into the terminal.

Requires an OAuth client credentials file; set its location with
drive.credentials_file in the config or DRIVEMERGE_DRIVE_CREDENTIALS_FILE.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	err := drive.Authorize(cmd.Context(), &cfg.Drive, func(authURL string) (string, error) {
		fmt.Printf("Open this URL in your browser:\n\n  %s\n\nPaste the authorization code: ", authURL)
		code, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(code), nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Token saved to %s\n", cfg.Drive.TokenFile)
	return nil
}
