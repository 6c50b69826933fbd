// Package input expands flag values that refer to stdin (-) or a file
// (@path) so long texts such as review content need not be quoted.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader expands flag values. Stdin can be consumed only once per command.
type Reader struct {
	Stdin     io.Reader
	stdinUsed bool
}

// NewReader returns a Reader over stdin
func NewReader(stdin io.Reader) *Reader {
	return &Reader{Stdin: stdin}
}

// Expand returns the text for v: all of stdin for "-", the file contents
// for "@path", and v itself otherwise. "@@x" is the literal "@x".
func (r *Reader) Expand(v string) (string, error) {
	switch {
	case v == "-":
		if r.stdinUsed {
			return "", fmt.Errorf("stdin already used by another flag")
		}
		r.stdinUsed = true
		data, err := io.ReadAll(r.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case strings.HasPrefix(v, "@@"):
		return v[1:], nil
	case strings.HasPrefix(v, "@"):
		path := strings.TrimPrefix(v, "@")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return v, nil
}

// ReadLine reads one line from stdin without its line ending
func (r *Reader) ReadLine() (string, error) {
	if r.stdinUsed {
		return "", fmt.Errorf("stdin already used by another flag")
	}
	r.stdinUsed = true
	line, err := bufio.NewReader(r.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
