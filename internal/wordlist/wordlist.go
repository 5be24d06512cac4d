// Package wordlist reads member lists with one entry per line.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineBytes bounds a single entry.
const maxLineBytes = 1 << 20

// Read returns the non-blank lines of r with line endings removed.
// Other whitespace is kept as part of the entry.
func Read(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var words []string
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bloomset: reading word list: %w", err)
	}
	return words, nil
}

// ReadFile reads the word list at path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bloomset: opening word list: %w", err)
	}
	defer f.Close()
	return Read(f)
}
