package web

import (
	"io"
	"strconv"

	"github.com/a-h/templ"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

// writeEscaped writes each part HTML-escaped.
func writeEscaped(w io.Writer, parts ...string) {
	for _, part := range parts {
		_, _ = io.WriteString(w, templ.EscapeString(part))
	}
}

func formatClock(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	secs := seconds % 60
	pad := ""
	if secs < 10 {
		pad = "0"
	}
	return itoa(seconds/60) + ":" + pad + itoa(secs)
}
