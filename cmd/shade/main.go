package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	if cmd == "--version" {
		return runVersion(args)
	}

	switch cmd {
	// --- NOUNS ---
	case "system":
		return runSystemNoun(args)
	case "theme":
		return runThemeNoun(args)
	case "config":
		return runConfigNoun(args)

	// --- ROOT ALIASES ---
	case "start":
		return runStart(args)
	case "doctor":
		return runConfigCheck(args)
	case "version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: shade version [--json]")
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("shade %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}

	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	resolvedCommit := strings.TrimSpace(gitCommit)
	if resolvedCommit == "" || resolvedCommit == "unknown" {
		resolvedCommit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if resolvedCommit != "" {
		info.Commit = shortenCommit(resolvedCommit)
	}

	resolvedBuildTime := strings.TrimSpace(buildDate)
	if resolvedBuildTime == "" || resolvedBuildTime == "unknown" {
		resolvedBuildTime = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalizedBuildTime, ok := normalizeBuildTimeUTC(resolvedBuildTime); ok {
		info.BuildTime = normalizedBuildTime
	}

	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}

	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func printUsage() {
	fmt.Print(`shade - light/dark/system theme service

Usage:
  shade <noun> <action> [flags]

Core Resources (Nouns):
  system    Service lifecycle and live monitoring
  theme     Read and change a session's theme
  config    Configuration and integrity

System Commands:
  system start      Start the theme service in foreground
  system watch      Real-time theme picker TUI

Theme Commands:
  theme get         Show a session's preference, system signal and resolved theme
  theme set <t>     Select light, dark or system
  theme toggle      Cycle to the next theme
  theme system <r>  Report the system signal (light or dark)
  theme render      Print the server-rendered page for the configured defaults

Config Commands:
  config check      Validate syntax, theme options and integrity
  config lock       Authorize current state (update integrity hashes)
  config show       Print the resolved configuration

General:
  --version         Show version information
  version           Show version information
  help              Show this help message

Use 'shade <noun> help' for resource-specific flags.
`)
}

// --- NOUN DISPATCHERS ---

func runSystemNoun(args []string) int {
	if len(args) < 1 {
		printSystemNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSystemNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "start":
		if hasHelpFlag(actionArgs) {
			printSystemStartHelp()
			return 0
		}
		return runStart(actionArgs)
	case "watch":
		if hasHelpFlag(actionArgs) {
			printSystemWatchHelp()
			return 0
		}
		return runWatch(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", action)
		return 1
	}
}

func runThemeNoun(args []string) int {
	if len(args) < 1 {
		printThemeNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printThemeNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	if hasHelpFlag(actionArgs) {
		printThemeActionHelp(action)
		return 0
	}

	switch action {
	case "get":
		return runThemeGet(actionArgs)
	case "set":
		return runThemeSet(actionArgs)
	case "toggle":
		return runThemeToggle(actionArgs)
	case "system":
		return runThemeSystem(actionArgs)
	case "render":
		return runThemeRender(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown theme action: %s\n", action)
		return 1
	}
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "lock", "hash-update":
		if hasHelpFlag(actionArgs) {
			printConfigLockHelp()
			return 0
		}
		return runConfigHashUpdate(actionArgs)
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	case "show":
		if hasHelpFlag(actionArgs) {
			printConfigShowHelp()
			return 0
		}
		return runConfigShow(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printSystemNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: shade system <action>")
	fmt.Fprintln(w, "Actions: start, watch")
}

func printThemeNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: shade theme <action> [flags]")
	fmt.Fprintln(w, "Actions: get, set, toggle, system, render")
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: shade config <action> [flags]")
	fmt.Fprintln(w, "Actions: check, lock, show")
}

func printSystemStartHelp() {
	fmt.Println("Usage: shade system start [--config PATH] [--ephemeral]")
	fmt.Println("Start the theme service in the foreground.")
	fmt.Println("Without --config the standard locations are searched; built-in defaults are used if none exist.")
}

func printSystemWatchHelp() {
	fmt.Println("Usage: shade system watch [flags]")
	fmt.Println()
	fmt.Println("Real-time theme picker bound to one session.")
	fmt.Println("The terminal background is reported as the session's system signal.")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --api-url URL    Service URL (default: http://localhost:8080)")
	fmt.Println("  --api-key KEY    API Bearer Token (or SHADE_API_KEY env var)")
	fmt.Println("  --session ID     Session to bind (or SHADE_SESSION env var)")
	fmt.Println()
	fmt.Println("Keybindings:")
	fmt.Println("  t, space         Toggle theme")
	fmt.Println("  l / d / s        Select light, dark or system")
	fmt.Println("  ?                More help")
	fmt.Println("  q, Ctrl+C        Quit")
}

func printThemeActionHelp(action string) {
	switch action {
	case "set":
		fmt.Println("Usage: shade theme set <light|dark|system> [--api-url URL] [--api-key KEY] [--session ID] [--json]")
	case "system":
		fmt.Println("Usage: shade theme system <light|dark> [--api-url URL] [--api-key KEY] [--session ID] [--json]")
		fmt.Println("Only accepted when the service takes the system signal from its clients.")
	case "render":
		fmt.Println("Usage: shade theme render [--config PATH] [--out FILE]")
		fmt.Println("Render the page markup a first request would receive, without starting the service.")
	default:
		fmt.Printf("Usage: shade theme %s [--api-url URL] [--api-key KEY] [--session ID] [--json]\n", action)
	}
}

func printConfigLockHelp() {
	fmt.Println("Usage: shade config lock [--config PATH] [-v|--verbose] [--dry-run]")
	fmt.Println("Authorize current configuration state by regenerating integrity hashes.")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: shade config check [--config PATH] [--format human|json] [--strict] [--json]")
	fmt.Println("Validate configuration syntax, theme options, and integrity.")
}

func printConfigShowHelp() {
	fmt.Println("Usage: shade config show [--config PATH] [--json]")
	fmt.Println("Show the fully resolved configuration.")
}
