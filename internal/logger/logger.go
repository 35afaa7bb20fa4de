package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

var colorized = isatty.IsTerminal(os.Stdout.Fd())

func paint(color, s string) string {
	if !colorized {
		return s
	}
	return color + s + colorReset
}

func line(color, symbol, tag, msg string) {
	fmt.Printf("%s %s %s\n", paint(color, symbol), paint(colorGray, "["+tag+"]"), msg)
}

// Info logs a neutral progress message under the given tag.
func Info(tag, msg string) {
	line(colorCyan, "•", tag, msg)
}

// Success logs a completed-step message.
func Success(tag, msg string) {
	line(colorGreen, "✓", tag, msg)
}

// Warn logs a recoverable problem.
func Warn(tag, msg string) {
	line(colorYellow, "!", tag, msg)
}

// Error logs a failure. The caller decides whether it is fatal.
func Error(tag, msg string) {
	line(colorRed, "✗", tag, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println(paint(colorCyan, `
   ___   _ __                      __        __
  / _ | / / /  (_)__  ___    __ _ / /_______/ /_
 / __ |/ / _ \/ / _ \/ _ \  /  ' \  '_/ __/ __/
/_/ |_/_/_.__/_/\___/_//_/ /_/_/_/_/\_\\__/\__/`))
	fmt.Printf("  %s\n\n", paint(colorGray, "market price lookup "+version))
}

// Section prints a titled divider for grouped stats output.
func Section(title string) {
	fmt.Printf("\n%s\n", paint(colorCyan, "── "+title+" ──"))
}

// Stats prints one key/value stats line under a Section.
func Stats(key string, value interface{}) {
	fmt.Printf("  %s %v\n", paint(colorGray, key+":"), value)
}

// Server logs the listen address once the HTTP server is up.
func Server(addr string) {
	Success("Server", fmt.Sprintf("Listening on http://%s", addr))
}
