package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vidloop/internal/config"
	"vidloop/internal/player"
	"vidloop/internal/probe"
	"vidloop/internal/timestamp"
)

var loopPlayer string

var loopCmd = &cobra.Command{
	Use:   "loop <video> <timestamps> <num>",
	Short: "Loop one timestamped interval in an external player",
	Long: `loop reads the legacy MM:SS-MM:SS-description line format, picks the
interval numbered num (1-based, as printed by list --legacy) and spawns
an external player that repeats it until closed.`,
	Args: cobra.ExactArgs(3),
	RunE: runLoop,
}

func init() {
	loopCmd.Flags().StringVar(&loopPlayer, "player", "", "Player binary (default from config)")
}

func runLoop(cmd *cobra.Command, args []string) error {
	video, path, numArg := args[0], args[1], args[2]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	binary := cfg.Player.LoopBinary
	if loopPlayer != "" {
		binary = loopPlayer
	}

	if _, err := os.Stat(video); err != nil {
		return fmt.Errorf("cannot access video file %s: %w", video, err)
	}

	log := newLogger()

	// Preflight: refuse to spawn a player over media ffprobe cannot read.
	duration, err := probe.Duration(cmd.Context(), video)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"video":    video,
		"duration": duration,
	}).Debug("video probed")

	list, err := timestamp.ReadLegacyFile(path)
	if err != nil {
		return err
	}

	iv, err := pickInterval(list, numArg)
	if err != nil {
		return err
	}

	fmt.Printf("Looping seconds %d to %d of %s\n",
		iv.Start.Seconds(), iv.End.Seconds(), filepath.Base(video))
	return player.SpawnLoop(cmd.Context(), binary, video, iv.Start, iv.End)
}

// pickInterval resolves a 1-based selection against the parsed list.
func pickInterval(list timestamp.List, arg string) (timestamp.Interval, error) {
	num, err := strconv.Atoi(arg)
	if err != nil || num < 1 || num > len(list) {
		return timestamp.Interval{}, errors.New("timestamp num is not valid")
	}
	return list[num-1], nil
}
