package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName    = "quaverd"
	appVersion = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Music player daemon speaking the MPD protocol",
	Long: `Quaverd is a music player daemon serving the MPD line protocol
over TCP. Clients manage a shared play queue, browse a tag database
built from the music directory, store playlists as m3u files, and wait
for change notifications with the idle command.`,
	Version: appVersion,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s v%s\n", appName, appVersion))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
