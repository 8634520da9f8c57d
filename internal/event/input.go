package event

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/input"
	"github.com/muesli/cancelreader"
)

// LaunchInput starts the input producer. It decodes r with the terminal
// input parser until a read fails and forwards every key press as
// UserInput. Other terminal events (mouse, focus, replies) are dropped.
func (s *Source) LaunchInput(r io.Reader) error {
	rd, err := input.NewReader(r, os.Getenv("TERM"), 0)
	if err != nil {
		return fmt.Errorf("open input reader: %w", err)
	}
	slog.Debug("input reader starting")
	go func() {
		defer slog.Debug("input reader stopped")
		defer rd.Close()
		for {
			events, err := rd.ReadEvents()
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, cancelreader.ErrCanceled) {
					slog.Error("input reader abort", slog.Any("error", err))
				}
				return
			}
			for _, ev := range events {
				if k, ok := ev.(input.KeyPressEvent); ok {
					s.send(UserInput{Key: k.Key()})
				}
			}
		}
	}()
	return nil
}
