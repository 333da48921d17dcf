package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"feedplay/internal/config"
	"feedplay/internal/player"
)

func newWindowCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:     "window <position> <feed-length>",
		Short:   "Print the preload window for a position",
		Example: "  feedplayd window 4 10\n  feedplayd window 0 2 --size 5",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("position: %w", err)
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("feed length: %w", err)
			}
			if n < 0 || pos < 0 || (n > 0 && pos >= n) {
				return fmt.Errorf("position %d outside feed of length %d", pos, n)
			}
			fmt.Fprintln(cmd.OutOrStdout(), player.Window(pos, n, size))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", config.DefaultWindowSize, "Preload window size")
	return cmd
}
