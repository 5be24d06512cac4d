package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kwertop/bloomset"
	"github.com/stretchr/testify/require"
)

func writeWords(t *testing.T, n int) string {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "word%05d\n", i)
	}
	sb.WriteString("level\nstressed\ndesserts\n")
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

func TestRunMemory(t *testing.T) {
	words := writeWords(t, 2000)
	textfile := filepath.Join(t.TempDir(), "bloomcheck.prom")
	logfile := filepath.Join(t.TempDir(), "bloomcheck.log")
	t.Setenv("BLOOMCHECK_LOG_FILE", logfile)
	var out bytes.Buffer
	err := run(context.Background(), []string{"--words", words, "--fp-rate", "0.05", "--metrics", textfile}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "out of 2000")
	require.Equal(t, "Expected probability: 0.05", lines[1])
	require.True(t, strings.HasPrefix(lines[2], "Actual probability: 0."))

	metrics, err := os.ReadFile(textfile)
	require.NoError(t, err)
	require.Contains(t, string(metrics), "bloomcheck_members 2003")
	require.Contains(t, string(metrics), "bloomcheck_queries_total 2000")

	logs, err := os.ReadFile(logfile)
	require.NoError(t, err)
	require.Contains(t, string(logs), "filter built")
}

func TestRunRandomRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	words := writeWords(t, 200)
	t.Setenv("BLOOMCHECK_LOG_FILE", filepath.Join(t.TempDir(), "bloomcheck.log"))
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--words", words,
		"--backend", "redis",
		"--redis-uri", "redis://" + mr.Addr(),
		"--mode", "random",
		"--samples", "500",
		"--hash", "xxh3",
	}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "out of 500")
	require.Empty(t, mr.Keys(), "filter should be dropped after the run")
}

func TestRunInvalidParameter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	t.Setenv("BLOOMCHECK_LOG_FILE", filepath.Join(t.TempDir(), "bloomcheck.log"))
	err := run(context.Background(), []string{"--words", path}, &bytes.Buffer{})
	require.True(t, errors.Is(err, bloomset.ErrInvalidParameter))
}

func TestRunMissingWords(t *testing.T) {
	t.Setenv("BLOOMCHECK_LOG_FILE", filepath.Join(t.TempDir(), "bloomcheck.log"))
	err := run(context.Background(), []string{"--words", filepath.Join(t.TempDir(), "none.txt")}, &bytes.Buffer{})
	require.Error(t, err)
}
