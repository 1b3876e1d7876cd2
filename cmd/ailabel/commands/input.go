package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ailabeldev/ailabel/internal/driver"
)

// resolvePayload returns the single-item payload: the literal argument, or
// stdin when the argument is "-".
func resolvePayload(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", fmt.Errorf("no input provided on stdin")
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func newSink(jsonOut bool) driver.Sink {
	if jsonOut {
		return &driver.JSONSink{W: os.Stdout}
	}
	return &driver.PlainSink{W: os.Stdout}
}

// failedErr converts a per-item failure count into the command's exit-status
// error.
func failedErr(failed int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d item(s) failed", failed)
}
