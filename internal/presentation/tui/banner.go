package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"      _ _                             _     ", "#818cf8"},
	{"   __| (_) __ _  __ _ _ __ __ _ _ __ | |__  ", "#a78bfa"},
	{"  / _` | |/ _` |/ _` | '__/ _` | '_ \\| '_ \\ ", "#c084fc"},
	{" | (_| | | (_| | (_| | | | (_| | |_) | | | |", "#e879f9"},
	{"  \\__,_|_|\\__,_|\\__, |_|  \\__,_| .__/|_| |_|", "#f472b6"},
	{"                |___/          |_|          ", "#fb7185"},
}

// PrintBanner writes the diagraph banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Error styles msg as an error line for the current terminal profile.
func Error(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String(msg).Foreground(p.Color("#f87171")).Bold().String()
}

// Faint styles msg as secondary text, e.g. answer candidates.
func Faint(msg string) string {
	return termenv.String(msg).Faint().String()
}
