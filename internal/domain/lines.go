package domain

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// scanLines calls fn for every line of r with its 1-based line number.
// Lines holding only whitespace are skipped. The first error from fn stops
// the scan and is wrapped in a FormatError naming path and line.
func scanLines(r io.Reader, path string, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(line); err != nil {
			return &FormatError{Path: path, Line: n, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", displayPath(path), err)
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "input"
	}
	return path
}
