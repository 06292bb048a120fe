package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	now := time.Now()
	sameYear := time.Date(now.Year(), time.March, 15, 10, 30, 0, 0, time.Local)
	diffYear := time.Date(2020, time.December, 25, 8, 0, 0, 0, time.Local)

	assert.Equal(t, "Mar 15 10:30:00", formatTime(sameYear))
	assert.Equal(t, "Dec 25  2020", formatTime(diffYear))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	printTable(&buf, []string{"KIND", "COUNT"}, [][]string{
		{"cache_hit", "12"},
		{"fetch_ok", "3"},
	})

	want := "KIND       COUNT\n" +
		"cache_hit  12\n" +
		"fetch_ok   3\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintTable_NoRows(t *testing.T) {
	var buf bytes.Buffer

	printTable(&buf, []string{"A", "B"}, nil)

	assert.Equal(t, "A  B\n", buf.String())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer

	assert.NoError(t, printJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func discardTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
