package terminal

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// LineType classifies a terminal line
type LineType string

const (
	LineInput  LineType = "input"
	LineOutput LineType = "output"
	LineError  LineType = "error"
	LineInfo   LineType = "info"
)

// String returns the string representation of the line type
func (t LineType) String() string {
	return string(t)
}

// Line is one line of terminal output
type Line struct {
	Type      LineType  `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteLog writes lines as "[TYPE] content", one per line
func WriteLog(w io.Writer, lines []Line) error {
	for i, l := range lines {
		sep := "\n"
		if i == len(lines)-1 {
			sep = ""
		}
		if _, err := fmt.Fprintf(w, "[%s] %s%s", strings.ToUpper(l.Type.String()), l.Content, sep); err != nil {
			return fmt.Errorf("failed to write terminal log: %w", err)
		}
	}
	return nil
}
