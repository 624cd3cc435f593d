package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-2048/internal/core"
	"github.com/vovakirdan/tui-2048/internal/games/t2048"
	"github.com/vovakirdan/tui-2048/internal/platform/tui"
	"github.com/vovakirdan/tui-2048/internal/registry"
)

var flagLogFile string

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play 2048",
	Long: `Start playing 2048. The mode defaults to "2048" (manual play);
"2048_ai" starts with the solver in control.

Controls:
  Arrows/WASD  - Move tiles
  Space        - Toggle AI autoplay
  H            - Hint (solver's pick, board unchanged)
  +/-          - Smarter/dumber AI
  [/]          - Faster/slower AI
  P            - Pause
  R            - Restart
  Esc/Q        - Quit

Examples:
  t2048 play
  t2048 play 2048_ai --difficulty hard
  t2048 play --seed 42 --log-file ./t2048.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write debug logs to this file (the TUI owns the terminal)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	gameID := "2048"
	if len(args) > 0 {
		gameID = args[0]
	}

	// Check if mode exists
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown mode %q (run 't2048 list' to see available modes)", gameID)
	}

	if _, err := loadGameConfig(); err != nil {
		return err
	}

	logger, closeLog, err := tuiLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	t2048.SetLogger(logger)

	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	if err := tui.Run(game, store, logger, runtimeConfig()); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}

// runtimeConfig builds the runtime config from the terminal size and flags.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// tuiLogger returns a logger that does not write to the terminal the TUI is
// drawing on: a file when --log-file is set, otherwise nothing below error.
func tuiLogger() (*log.Logger, func(), error) {
	if flagLogFile == "" {
		logger := newLogger("t2048")
		logger.SetLevel(log.ErrorLevel)
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "t2048",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger, func() { f.Close() }, nil
}
