// Package color renders ANSI-colored terminal output. Colors are disabled
// when NO_COLOR is set, per the informal convention.
package color

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const reset = "\033[0m"

// Foreground colors and attributes.
const (
	FgRed    = 31
	FgGreen  = 32
	FgYellow = 33
	FgCyan   = 36
	FgWhite  = 37

	Bold = 1
	Dim  = 2
)

var disabled = os.Getenv("NO_COLOR") != ""

// Color is a reusable set of display attributes.
type Color struct {
	params []int
}

func New(attrs ...int) *Color {
	return &Color{params: attrs}
}

func (c *Color) format() string {
	if disabled || len(c.params) == 0 {
		return ""
	}

	parts := make([]string, len(c.params))
	for i, p := range c.params {
		parts[i] = strconv.Itoa(p)
	}
	return "\033[" + strings.Join(parts, ";") + "m"
}

func (c *Color) wrap(s string) string {
	prefix := c.format()
	if prefix == "" {
		return s
	}
	return prefix + s + reset
}

func (c *Color) Printf(format string, a ...interface{}) {
	fmt.Print(c.wrap(fmt.Sprintf(format, a...)))
}

func (c *Color) Fprintf(w io.Writer, format string, a ...interface{}) {
	fmt.Fprint(w, c.wrap(fmt.Sprintf(format, a...)))
}

func (c *Color) Sprintf(format string, a ...interface{}) string {
	return c.wrap(fmt.Sprintf(format, a...))
}
