package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/abrezinsky/hoopsboard/internal/browser"
	"github.com/abrezinsky/hoopsboard/internal/logger"
)

// crlfWriter turns \n into \r\n for terminals in raw mode
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// keyboard handles the single-key shortcuts of the running server
type keyboard struct {
	out            io.Writer
	log            *logger.SlogLogger
	stats          func() (pages, sockets int)
	open           func(url string) error
	leaderboardURL string
	adminURL       string
	quit           func()
}

func (k *keyboard) printHelp() {
	good.Fprintln(k.out, "\n  Keyboard shortcuts:")
	for _, line := range [][2]string{
		{"o", "Open the leaderboard in a browser"},
		{"a", "Open the admin page in a browser"},
		{"h", "Toggle HTTP request logging"},
		{"l", "Cycle log level (debug, info, warn, error)"},
		{"s", "Show mounted pages and open sockets"},
		{"q", "Quit server"},
		{"?", "Show this help"},
	} {
		key.Fprintf(k.out, "    %s", line[0])
		fmt.Fprintf(k.out, "      - %s\n", line[1])
	}
	fmt.Fprintln(k.out)
}

// start puts stdin into raw mode and reads shortcuts until ctx ends.
// The returned func restores the terminal.
func (k *keyboard) start(ctx context.Context) (func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	restore := func() { _ = term.Restore(fd, state) }

	go func() {
		buf := make([]byte, 1)
		for ctx.Err() == nil {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 && !k.handle(buf[0]) {
				return
			}
		}
	}()
	return restore, nil
}

// handle runs the shortcut for b and reports whether to keep reading
func (k *keyboard) handle(b byte) bool {
	open := k.open
	if open == nil {
		open = browser.Open
	}

	switch strings.ToLower(string(b)) {
	case "o":
		good.Fprintln(k.out, "Opening leaderboard in browser...")
		if err := open(k.leaderboardURL); err != nil {
			failure.Fprintf(k.out, "Error opening browser: %v\n", err)
		}
	case "a":
		good.Fprintln(k.out, "Opening admin page in browser...")
		if err := open(k.adminURL); err != nil {
			failure.Fprintf(k.out, "Error opening browser: %v\n", err)
		}
	case "h":
		if k.log.ToggleHTTPLogging() {
			good.Fprintln(k.out, "HTTP logging enabled")
		} else {
			warning.Fprintln(k.out, "HTTP logging disabled")
		}
	case "l":
		level := k.log.CycleLevel()
		good.Fprint(k.out, "Log level: ")
		accent.Fprintln(k.out, logger.LevelName(level))
	case "s":
		pages, sockets := k.stats()
		fmt.Fprintf(k.out, "Pages: %d  Sockets: %d\n", pages, sockets)
	case "?":
		k.printHelp()
	case "q", "\x03":
		warning.Fprintln(k.out, "Shutting down server...")
		k.quit()
		return false
	}
	return true
}

// bounce draws a ball bouncing across the bottom of the banner
func bounce(w io.Writer, width int) {
	const frames = 24
	heights := []int{0, 1, 2, 2, 1, 0}
	for f := 0; f < frames; f++ {
		col := f * (width - 2) / (frames - 1)
		rows := [3]string{}
		h := heights[f%len(heights)]
		for r := 0; r < 3; r++ {
			line := []rune(strings.Repeat(" ", width))
			if 2-r == h {
				line[col] = '●'
			}
			rows[r] = string(line)
		}
		for _, r := range rows {
			fmt.Fprintf(w, "\033[2K  %s\n", accent.Sprint(r))
		}
		if f < frames-1 {
			fmt.Fprint(w, "\033[3A")
		}
		time.Sleep(40 * time.Millisecond)
	}
	fmt.Fprint(w, "\033[3A\033[J")
}
