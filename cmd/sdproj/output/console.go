package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Verbosity levels
type Verbosity int

const (
	// VerbosityQuiet shows errors only
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal shows errors, warnings, and key operations (default)
	VerbosityNormal
	// VerbosityDetailed shows above + per-change details
	VerbosityDetailed
	// VerbosityDiagnostic shows above + debug output
	VerbosityDiagnostic
)

// ParseVerbosity parses quiet, normal, detailed or diagnostic (q, n, d, diag).
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "q", "quiet":
		return VerbosityQuiet, nil
	case "", "n", "normal":
		return VerbosityNormal, nil
	case "d", "detailed":
		return VerbosityDetailed, nil
	case "diag", "diagnostic":
		return VerbosityDiagnostic, nil
	}
	return VerbosityNormal, fmt.Errorf("invalid verbosity %q (quiet, normal, detailed, diagnostic)", s)
}

// Console provides output abstraction
type Console struct {
	out       io.Writer
	err       io.Writer
	verbosity Verbosity
	mu        sync.Mutex
	colors    bool
}

// NewConsole creates a new console
func NewConsole(out, err io.Writer, verbosity Verbosity) *Console {
	c := &Console{
		out:       out,
		err:       err,
		verbosity: verbosity,
		colors:    IsColorEnabled(out),
	}
	if !c.colors {
		DisableColors()
	}
	return c
}

// DefaultConsole creates a console with stdout/stderr and normal verbosity
func DefaultConsole() *Console {
	return NewConsole(os.Stdout, os.Stderr, VerbosityNormal)
}

// Out returns the output writer
func (c *Console) Out() io.Writer {
	return c.out
}

// SetVerbosity sets the verbosity level
func (c *Console) SetVerbosity(v Verbosity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbosity = v
}

// GetVerbosity returns the current verbosity level
func (c *Console) GetVerbosity() Verbosity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verbosity
}

// SetColors enables or disables color output
func (c *Console) SetColors(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colors = enabled
	if enabled {
		EnableColors()
	} else {
		DisableColors()
	}
}

// Println writes line to output
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted output
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

// Header writes a bold heading line
func (c *Console) Header(format string, a ...any) {
	c.write(c.out, VerbosityQuiet, ColorHeader, "", format, a...)
}

// Success writes success message (green)
func (c *Console) Success(format string, a ...any) {
	c.write(c.out, VerbosityNormal, ColorSuccess, "", format, a...)
}

// Error writes error message (red) to the error writer
func (c *Console) Error(format string, a ...any) {
	c.write(c.err, VerbosityQuiet, ColorError, "Error: ", format, a...)
}

// Warning writes warning message (yellow)
func (c *Console) Warning(format string, a ...any) {
	c.write(c.out, VerbosityNormal, ColorWarning, "Warning: ", format, a...)
}

// Info writes info message (cyan)
func (c *Console) Info(format string, a ...any) {
	c.write(c.out, VerbosityNormal, ColorInfo, "", format, a...)
}

// Added writes a "+ " line for something a command added (green)
func (c *Console) Added(format string, a ...any) {
	c.write(c.out, VerbosityNormal, ColorAdded, "  + ", format, a...)
}

// Removed writes a "- " line for something a command removed (red)
func (c *Console) Removed(format string, a ...any) {
	c.write(c.out, VerbosityNormal, ColorRemoved, "  - ", format, a...)
}

// Detail writes detailed message
func (c *Console) Detail(format string, a ...any) {
	c.write(c.out, VerbosityDetailed, nil, "", format, a...)
}

// Debug writes debug message (white)
func (c *Console) Debug(format string, a ...any) {
	c.write(c.out, VerbosityDiagnostic, ColorDebug, "[DEBUG] ", format, a...)
}

type colorPrinter interface {
	Fprintf(w io.Writer, format string, a ...any) (int, error)
}

func (c *Console) write(w io.Writer, min Verbosity, clr colorPrinter, prefix, format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verbosity < min {
		return
	}
	if c.colors && clr != nil {
		_, _ = clr.Fprintf(w, prefix+format+"\n", a...)
		return
	}
	fmt.Fprintf(w, prefix+format+"\n", a...)
}
