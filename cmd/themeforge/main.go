package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"themeforge/internal/ui"
)

const version = "v1.0.0"

func main() {
	// Load .env file if it exists
	// We ignore the error because in production/docker we might rely on system env vars
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "derive":
		return runDerive(args[1:], stdout, stderr)
	case "check":
		return runCheck(args[1:], stdout, stderr)
	case "serve":
		return runServe(args[1:], stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, "themeforge", version)
		return 0
	case "help", "--help", "-h":
		usage(stdout)
		return 0
	default:
		ui.ErrorNote(stderr, fmt.Sprintf("unknown command %q", args[0]))
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n\n", ui.Heading("themeforge"), ui.Muted(version))
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s %s  derive a dark/light palette from a base color\n",
		ui.Command("themeforge derive"), ui.Option("<color> [--shade f] [--tint f] [--css|--json]"))
	fmt.Fprintf(w, "  %s %s  classify colors as dark or light\n",
		ui.Command("themeforge check"), ui.Option("<color>..."))
	fmt.Fprintf(w, "  %s %s  serve themes over HTTP\n",
		ui.Command("themeforge serve"), ui.Option("[--config file]"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.Muted("Colors are #rgb or #rrggbb; the leading # may be omitted."))
}

// normalizeArg adds the '#' that shells make awkward to type.
func normalizeArg(s string) string {
	if s != "" && s[0] != '#' {
		return "#" + s
	}
	return s
}
