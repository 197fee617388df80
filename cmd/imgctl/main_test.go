package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"image-browser/internal/history"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func setupCollection(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cover.png"), pngBytes(t, 4, 2))
	writeFile(t, filepath.Join(root, "book", "p1.png"), pngBytes(t, 3, 5))
	writeFile(t, filepath.Join(root, "book", "p2.png"), pngBytes(t, 3, 5))
	writeFile(t, filepath.Join(root, "book", "notes.txt"), []byte("not an image"))
	return root
}

func TestPrintUsage(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("printUsage panicked: %v", r)
		}
	}()

	printUsage()
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"scan", "scan"},
		{"HISTORY", "HISTORY"},
		{"with-dash_and_underscore", "with-dash_and_underscore"},
		{"cmd; rm -rf /", "cmd__rm_-rf__"},
		{"<b>", "_b_"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := sanitizeCommand(tt.input); got != tt.expected {
				t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"short", 0, "short"},
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"much too long", 8, "much ..."},
		{"abcdef", 2, "ab"},
		{"bücher/seite", 6, "büc..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
	}
}

func TestTerminalWidthNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	if got := terminalWidth(&buf); got != 0 {
		t.Errorf("terminalWidth(buffer) = %d, want 0", got)
	}
}

func TestRunScan(t *testing.T) {
	root := setupCollection(t)

	var out bytes.Buffer
	if err := runScan(context.Background(), &out, []string{"-v", "-probe", root}); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}

	output := out.String()
	for _, want := range []string{
		"3 images in 1 albums",
		"     2  book",
		"3x5",
		"book/p1.png",
		"Source key: " + history.MakeSourceKey([]string{"book/p1.png", "book/p2.png", "cover.png"}),
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "notes.txt") {
		t.Errorf("output lists a non-image file:\n%s", output)
	}
}

func TestRunScanFileList(t *testing.T) {
	root := setupCollection(t)
	manifest := filepath.Join(root, "files.txt")
	writeFile(t, manifest, []byte("# selection\nbook/p2.png\ncover.png\n"))

	var out bytes.Buffer
	if err := runScan(context.Background(), &out, []string{"-files", manifest, root}); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}
	if !strings.Contains(out.String(), "2 images in 1 albums") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunScanMissingRoot(t *testing.T) {
	var out bytes.Buffer
	err := runScan(context.Background(), &out, []string{filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Fatal("expected error for a missing root")
	}
}

func TestRunScanBadFlag(t *testing.T) {
	var out bytes.Buffer
	if err := runScan(context.Background(), &out, []string{"-nope"}); err == nil {
		t.Fatal("expected error for an unknown flag")
	}
}

func TestShowHistoryMissingDatabase(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	if err := showHistory(context.Background(), &out, dir, nil); err != nil {
		t.Fatalf("showHistory() error = %v", err)
	}
	if !strings.Contains(out.String(), "No history database") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "history.db")); err == nil {
		t.Error("showHistory created a database")
	}
}

func TestShowHistory(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := history.Open(ctx, filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("history.Open() error = %v", err)
	}
	key := history.MakeSourceKey([]string{"book/p1.png", "book/p2.png"})
	if _, err := store.Record(ctx, key, "book/p2.png", 1, time.Now()); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := showHistory(ctx, &out, dir, []string{key}); err != nil {
		t.Fatalf("showHistory() error = %v", err)
	}

	output := out.String()
	for _, want := range []string{
		"Remembered collections: 1",
		"Last viewed:  book/p2.png (index 1)",
		"Recent album: book",
		"book: book/p2.png (index 1)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	out.Reset()
	if err := showHistory(ctx, &out, dir, []string{"source:unknown"}); err != nil {
		t.Fatalf("showHistory() error = %v", err)
	}
	if !strings.Contains(out.String(), "nothing recorded") {
		t.Errorf("unexpected output: %q", out.String())
	}
}
