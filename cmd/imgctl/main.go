package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"image-browser/internal/album"
	"image-browser/internal/history"
	"image-browser/internal/media"
	"image-browser/internal/natsort"
	"image-browser/internal/source"
	"image-browser/internal/walker"

	"golang.org/x/term"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default media directory path
	defaultMediaDir = "/media"
	// Default database directory path
	defaultDatabaseDir = "/database"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	var err error
	switch command {
	case "scan":
		err = runScan(ctx, os.Stdout, os.Args[2:])
	case "history":
		err = showHistory(ctx, os.Stdout, envOr("DATABASE_DIR", defaultDatabaseDir), os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// sanitizeCommand returns a safe representation of a command string for display.
// Any character that is not alphanumeric, a hyphen, or an underscore becomes '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage() {
	fmt.Println("Image Browser Collection Tool")
	fmt.Println("")
	fmt.Println("Usage: imgctl <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  scan [-probe] [-files manifest] [-v] [dir]  - Scan a collection and summarize its albums")
	fmt.Println("  history [source-key]                        - Show remembered reading positions")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  MEDIA_DIR    - Directory scanned when none is given (default: %s)\n", defaultMediaDir)
	fmt.Printf("  DATABASE_DIR - Path to database directory (default: %s)\n", defaultDatabaseDir)
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func runScan(ctx context.Context, out io.Writer, args []string) error {
	flags := flag.NewFlagSet("scan", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	probe := flags.Bool("probe", false, "read image headers for width and height")
	fileList := flags.String("files", "", "scan the files named in this manifest instead of a directory")
	verbose := flags.Bool("v", false, "list every image")
	if err := flags.Parse(args); err != nil {
		return err
	}

	root := envOr("MEDIA_DIR", defaultMediaDir)
	if flags.NArg() > 0 {
		root = flags.Arg(0)
	}

	w := walker.New(walker.Options{ProbeDimensions: *probe})

	var (
		images []*media.ImageDescriptor
		err    error
	)
	if *fileList != "" {
		paths, readErr := source.ReadFileList(*fileList)
		if readErr != nil {
			return readErr
		}
		images, err = w.Collect(ctx, source.FileList(paths, root))
	} else {
		images, err = w.Walk(ctx, source.Dir(root))
	}
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	width := terminalWidth(out)
	if *verbose {
		for _, img := range images {
			fmt.Fprintln(out, truncate(formatImage(img), width))
		}
		fmt.Fprintln(out)
	}

	albums := album.Build(images)
	for _, a := range albums {
		fmt.Fprintln(out, truncate(fmt.Sprintf("%6d  %s", a.ImageCount, a.Path), width))
	}

	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.RelativePath
	}

	stats := w.LastStats()
	fmt.Fprintf(out, "%d images in %d albums (%d directories, %d skipped) in %v\n",
		len(images), len(albums), stats.Directories, stats.SkippedSubtrees, stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Source key: %s\n", history.MakeSourceKey(paths))
	return nil
}

func formatImage(img *media.ImageDescriptor) string {
	dims := "?"
	if img.HasDimensions() {
		dims = fmt.Sprintf("%dx%d", img.Width, img.Height)
	}
	return fmt.Sprintf("%-11s %-10s %s", dims, img.SourceKind, img.RelativePath)
}

// terminalWidth returns the column count of out, or 0 when out is not a
// terminal.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// truncate shortens s to width runes, marking the cut with "...". A
// non-positive width disables truncation.
func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func showHistory(ctx context.Context, out io.Writer, databaseDir string, args []string) error {
	dbPath := filepath.Join(databaseDir, "history.db")
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(out, "No history database at %s\n", dbPath)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	store, err := history.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history database (DATABASE_DIR=%s): %w", databaseDir, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Remembered collections: %d (keeps the %d most recent)\n", count, history.MaxSources)

	if len(args) == 0 {
		return nil
	}

	key := args[0]
	state, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if state.LastViewed == nil {
		fmt.Fprintf(out, "%s: nothing recorded\n", key)
		return nil
	}

	fmt.Fprintf(out, "%s\n", key)
	fmt.Fprintf(out, "  Last viewed:  %s (index %d) at %s\n",
		state.LastViewed.RelativePath, state.LastViewed.Index, state.LastViewed.ViewedAt.Format(time.RFC3339))
	if state.RecentAlbumPath != "" {
		fmt.Fprintf(out, "  Recent album: %s\n", state.RecentAlbumPath)
	}
	for _, path := range sortedAlbumPaths(state.Albums) {
		p := state.Albums[path]
		fmt.Fprintf(out, "  %s: %s (index %d)\n", path, p.RelativePath, p.Index)
	}
	return nil
}

func sortedAlbumPaths(albums map[string]history.Pointer) []string {
	paths := make([]string, 0, len(albums))
	for path := range albums {
		paths = append(paths, path)
	}
	natsort.Strings(paths)
	return paths
}
