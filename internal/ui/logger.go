package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Console palette
var (
	clrDim    = color.New(color.FgHiBlack)
	clrSubtle = color.New(color.FgWhite)

	clrPrimary = color.New(color.FgMagenta, color.Bold)
	clrAccent  = color.New(color.FgCyan, color.Bold)

	clrSuccess = color.New(color.FgGreen)
	clrError   = color.New(color.FgRed)
	clrWarning = color.New(color.FgYellow)
	clrInfo    = color.New(color.FgBlue)

	badgePrimary = color.New(color.BgMagenta, color.FgWhite, color.Bold)
)

// Box-drawing characters
const (
	boxTopLeft     = "╭"
	boxTopRight    = "╮"
	boxBottomLeft  = "╰"
	boxBottomRight = "╯"
	boxHorizontal  = "─"
	boxVertical    = "│"
)

// Level orders log categories for filtering.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	logMu     sync.Mutex
	logOut    io.Writer = os.Stdout
	logLevel            = LevelInfo
	timestamp           = func() string { return time.Now().Format("15:04:05") }
)

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logOut = w
}

// SetLevel sets the minimum level by name; unknown names mean info.
func SetLevel(name string) {
	logMu.Lock()
	defer logMu.Unlock()
	logLevel = ParseLevel(name)
}

// ParseLevel maps debug/info/warn/error to a Level.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func categoryLevel(category string) Level {
	switch category {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LogStatus displays a status message with appropriate styling
func LogStatus(category, message string) {
	logMu.Lock()
	defer logMu.Unlock()

	if categoryLevel(category) < logLevel {
		return
	}

	ts := clrDim.Sprint(timestamp())

	var icon string
	var styledMsg string

	switch category {
	case "success":
		icon = clrSuccess.Sprint("✔")
		styledMsg = clrSuccess.Sprint(message)
	case "error":
		icon = clrError.Sprint("✖")
		styledMsg = clrError.Sprint(message)
	case "warn", "warning":
		icon = clrWarning.Sprint("⚠")
		styledMsg = clrWarning.Sprint(message)
	case "info":
		icon = clrInfo.Sprint("ℹ")
		styledMsg = clrSubtle.Sprint(message)
	case "debug":
		icon = clrDim.Sprint("·")
		styledMsg = clrDim.Sprint(message)
	default:
		icon = clrDim.Sprint("●")
		styledMsg = clrSubtle.Sprint(message)
	}

	fmt.Fprintf(logOut, "%s  %s  %s\n", ts, icon, styledMsg)
}

// LogRequest logs one served theme request.
func LogRequest(method, path string, status int, clientIP string, took time.Duration) {
	logMu.Lock()
	defer logMu.Unlock()

	if logLevel > LevelInfo {
		return
	}

	statusClr := clrSuccess
	switch {
	case status >= 500:
		statusClr = clrError
	case status >= 400:
		statusClr = clrWarning
	}

	fmt.Fprintf(logOut, "%s  %s  %s %s  %s  %s  %s\n",
		clrDim.Sprint(timestamp()),
		clrPrimary.Sprint("◆"),
		clrAccent.Sprintf("%-4s", method),
		clrSubtle.Sprintf("%-12s", path),
		statusClr.Sprintf("%d", status),
		clrDim.Sprintf("%-16s", clientIP),
		clrDim.Sprint(took.Round(time.Microsecond)))
}

// LogGroup starts a grouped block of messages
func LogGroup(title string) {
	logMu.Lock()
	defer logMu.Unlock()

	fill := 50 - VisibleWidth(title)
	if fill < 0 {
		fill = 0
	}
	fmt.Fprintln(logOut)
	fmt.Fprintf(logOut, "%s %s %s\n",
		clrDim.Sprint(boxTopLeft+strings.Repeat(boxHorizontal, 2)),
		clrPrimary.Sprint(title),
		clrDim.Sprint(strings.Repeat(boxHorizontal, fill)+boxTopRight))
}

// LogGroupItem logs an item within a group
func LogGroupItem(label, value string) {
	logMu.Lock()
	defer logMu.Unlock()

	fmt.Fprintf(logOut, "%s  %s %s\n",
		clrDim.Sprint(boxVertical),
		clrDim.Sprint(label+":"),
		clrAccent.Sprint(value))
}

// LogGroupEnd closes a grouped block
func LogGroupEnd() {
	logMu.Lock()
	defer logMu.Unlock()

	fmt.Fprintln(logOut, clrDim.Sprint(boxBottomLeft+strings.Repeat(boxHorizontal, 56)+boxBottomRight))
	fmt.Fprintln(logOut)
}

// LogGracefulShutdown notes that shutdown has begun.
func LogGracefulShutdown() {
	LogStatus("warning", "Shutting down gracefully...")
}
