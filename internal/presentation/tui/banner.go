package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the slotfill banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"      _       _    __ _ _ _ ", "#818cf8"},
		{"  ___| | ___ | |_ / _(_) | |", "#a78bfa"},
		{" / __| |/ _ \\| __| |_| | | |", "#c084fc"},
		{" \\__ \\ | (_) | |_|  _| | | |", "#e879f9"},
		{" |___/_|\\___/ \\__|_| |_|_|_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  "+version).Faint())
	fmt.Fprintln(w)
}
