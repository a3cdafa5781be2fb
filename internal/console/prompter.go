package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter is the only way the pipeline waits for a human decision.
type Prompter interface {
	// Choose shows question and returns the 1-based number of the picked
	// option. Invalid answers are re-prompted.
	Choose(question string, options ...string) (int, error)
	// Ask returns a trimmed free-text answer. Empty is a valid answer.
	Ask(question string) (string, error)
}

// ErrNoInput is returned when the input stream ends before an answer.
var ErrNoInput = errors.New("console: input closed")

// Terminal reads answers line by line from an input stream.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Choose(question string, options ...string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("console: no options to choose from")
	}
	var menu strings.Builder
	for i, o := range options {
		if i > 0 {
			menu.WriteString(", ")
		}
		fmt.Fprintf(&menu, "[%d] %s", i+1, o)
	}
	for {
		fmt.Fprintf(t.out, "%s %s: ", question, menu.String())
		line, err := t.readLine()
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 && n <= len(options) {
			return n, nil
		}
		fmt.Fprintf(t.out, "Invalid choice. Please enter a number from 1 to %d.\n", len(options))
	}
}

func (t *Terminal) Ask(question string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", question)
	return t.readLine()
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil {
		// A final line without a trailing newline still counts.
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
