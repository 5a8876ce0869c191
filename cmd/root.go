package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "vidloop",
	Short: "Millisecond timestamp tables and loop playback for video files",
	Long: `vidloop works on timestamp files that mark intervals in a video with
millisecond precision. It prints and converts the tables, loops a single
interval in an external player, and serves an interactive looping session
over HTTP backed by mpv.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(loopCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger builds the logger the commands share. --debug raises the
// level so controller and player chatter becomes visible.
func newLogger() *logrus.Logger {
	log := logrus.New()
	if debugFlag {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
