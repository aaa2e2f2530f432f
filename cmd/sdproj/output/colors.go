// Package output writes sdproj results to the terminal and as JSON.
package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Palette used by Console. Added and Removed mark reference and property
// changes made by set, refs and upgrade.
var (
	ColorSuccess = color.New(color.FgGreen)
	ColorError   = color.New(color.FgRed)
	ColorWarning = color.New(color.FgYellow)
	ColorInfo    = color.New(color.FgCyan)
	ColorDebug   = color.New(color.FgHiBlack)
	ColorHeader  = color.New(color.Bold)
	ColorAdded   = color.New(color.FgGreen)
	ColorRemoved = color.New(color.FgRed)
)

// IsColorEnabled reports whether w is a terminal that accepts ANSI colors.
// NO_COLOR and TERM=dumb turn colors off.
func IsColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || !IsTerminal(w) {
		return false
	}
	termEnv := os.Getenv("TERM")
	return termEnv != "" && termEnv != "dumb"
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// DisableColors turns off colors for every printer in the palette
func DisableColors() {
	color.NoColor = true
}

// EnableColors turns colors back on
func EnableColors() {
	color.NoColor = false
}
