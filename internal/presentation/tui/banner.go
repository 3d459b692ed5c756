package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`     _                             __ _`,
	`  __| |_ __ __ _ _ __ ___   __ _ / _| | _____      __`,
	` / _' | '__/ _' | '_ ' _ \ / _' | |_| |/ _ \ \ /\ / /`,
	`| (_| | | | (_| | | | | | | (_| |  _| | (_) \ V  V /`,
	` \__,_|_|  \__,_|_| |_| |_|\__,_|_| |_|\___/ \_/\_/`,
}

// Warm gradient, one color per line.
var bannerColors = []string{"#fb7185", "#f472b6", "#e879f9", "#c084fc", "#a78bfa"}

// PrintBanner writes the colored banner and version line to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, termenv.String("  短剧推广智能体 v"+version).Faint())
	fmt.Fprintln(w)
}
