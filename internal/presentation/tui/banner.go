package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Blueprint ASCII banner and version to w.
// Colors degrade to plain text when w is not a color terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct{ text, color string }{
		{"  ___ _                    _     _   ", "#38bdf8"},
		{" | _ ) |_  _ ___ _ __ _ _(_)_ _| |_ ", "#22d3ee"},
		{" | _ \\ | || / -_) '_ \\ '_| | ' \\  _|", "#2dd4bf"},
		{" |___/_|\\_,_\\___| .__/_| |_|_||_\\__|", "#34d399"},
		{"                |_|                 ", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
