package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputCancelled is returned when the context ends while waiting for a line.
var ErrInputCancelled = errors.New("input canceled")

type lineResult struct {
	err  error
	line string
}

// LineReader reads trimmed answer lines from an interactive stream and stops
// waiting when the caller's context ends. It is not safe for concurrent use.
type LineReader struct {
	in *bufio.Reader
	// pending holds a read abandoned by a canceled caller; the next ReadLine
	// receives its line instead of starting another read.
	pending chan lineResult
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	if r == nil {
		panic("reader cannot be nil")
	}
	return &LineReader{in: bufio.NewReader(r)}
}

// ReadLine returns the next line with surrounding whitespace removed. A final
// line without a newline is returned without error; io.EOF is reported only
// once nothing is left.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if r.pending == nil {
		ch := make(chan lineResult, 1)
		r.pending = ch
		go func() {
			line, err := r.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-r.pending:
		r.pending = nil
		if res.err != nil && (!errors.Is(res.err, io.EOF) || res.line == "") {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}

// Confirm prints a yes/no prompt to w and reads the answer. Anything other
// than a yes counts as no.
func (r *LineReader) Confirm(ctx context.Context, w io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(w, FormatPrompt(prompt+" (s/n)")); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := r.ReadLine(ctx)
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

// IsYes accepts Portuguese and English affirmatives.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	default:
		return false
	}
}
