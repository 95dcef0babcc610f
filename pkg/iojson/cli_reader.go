package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned when no file is given and stdin is a terminal.
var ErrNoInput = errors.New("no input provided (stdin is a terminal); use -f flag or pipe JSON input")

// FileReader decodes a T from the -f flag's file, or from stdin when the
// flag is empty.
type FileReader[T any] struct {
	fileFlagValue string

	// Stdin and IsTerminal default to os.Stdin and a terminal check on it.
	Stdin      io.Reader
	IsTerminal func() bool
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// SetFile sets the path the reader decodes from.
func (fr *FileReader[T]) SetFile(path string) { fr.fileFlagValue = path }

// File returns the configured path, empty when reading stdin.
func (fr *FileReader[T]) File() string { return fr.fileFlagValue }

func (fr *FileReader[T]) Read() (T, error) {
	var reader io.Reader
	var input T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if fr.stdinIsTerminal() {
			return input, ErrNoInput
		}
		reader = fr.stdin()
	}

	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}

func (fr *FileReader[T]) stdin() io.Reader {
	if fr.Stdin != nil {
		return fr.Stdin
	}
	return os.Stdin
}

func (fr *FileReader[T]) stdinIsTerminal() bool {
	if fr.IsTerminal != nil {
		return fr.IsTerminal()
	}
	if fr.Stdin != nil {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}
