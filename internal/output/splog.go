// Package output provides user-facing output and the styles used to
// render it.
package output

import (
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Splog provides structured logging and output
type Splog struct {
	writer  io.Writer
	verbose bool
	debug   *log.Logger
}

// NewSplog creates a new splog instance writing to stdout, with debug
// output mirrored to the rotated log file.
func NewSplog(verbose bool) *Splog {
	return &Splog{
		writer:  os.Stdout,
		verbose: verbose,
		debug: log.New(&lumberjack.Logger{
			Filename:   GetLogFilePath(),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		}, "", log.LstdFlags),
	}
}

// Info writes an info message
func (s *Splog) Info(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, format+"\n", args...)
	s.debug.Printf("INFO "+format, args...)
}

// Page writes pre-rendered output
func (s *Splog) Page(content string) {
	fmt.Fprint(s.writer, content)
}

// Newline writes a newline
func (s *Splog) Newline() {
	fmt.Fprintln(s.writer)
}

// Warn writes a warning message
func (s *Splog) Warn(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, "%s\n", "⚠️  "+StyleWarning.Render(fmt.Sprintf(format, args...)))
	s.debug.Printf("WARN "+format, args...)
}

// Error writes an error message
func (s *Splog) Error(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, "%s\n", StyleError.Render(fmt.Sprintf(format, args...)))
	s.debug.Printf("ERROR "+format, args...)
}

// Debug writes a debug message to the log file, and to the terminal in
// verbose mode.
func (s *Splog) Debug(format string, args ...interface{}) {
	s.debug.Printf("DEBUG "+format, args...)
	if s.verbose {
		fmt.Fprintf(s.writer, "%s\n", StyleDim.Render(fmt.Sprintf(format, args...)))
	}
}

// Tip writes a tip message
func (s *Splog) Tip(format string, args ...interface{}) {
	fmt.Fprintf(s.writer, "💡 "+format+"\n", args...)
}
