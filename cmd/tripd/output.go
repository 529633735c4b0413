package main

import (
	"fmt"
	"os"

	"github.com/tripd/tripd/internal/chat"
)

// Diagnostics go to stderr so piped transcripts stay clean; prompts and
// assistant replies go to stdout.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

// printPrompt draws the REPL prompt.
func printPrompt() {
	fmt.Print(colorize(colorBold, "> "))
}

// printReply renders the latest assistant message of the current chat,
// followed by any weather or destination cards.
func printReply(store *chat.Store) {
	c, ok := store.Get(store.CurrentID())
	if !ok || len(c.Messages) == 0 {
		return
	}
	last := c.Messages[len(c.Messages)-1]
	if last.Role != chat.RoleAssistant {
		return
	}

	fmt.Printf("\n%s\n", last.Content)
	if last.Weather != nil {
		printCard("天气", "%s %d°C %s 湿度%d%%",
			last.Weather.Location, last.Weather.Temperature, last.Weather.Condition, last.Weather.Humidity)
	}
	for _, d := range last.Destinations {
		printCard(d.Name, "%s（评分 %.1f）", d.Description, d.Rating)
	}
	printPrompt()
}

// printCard renders an attached card as an indented labelled line.
func printCard(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	fmt.Printf("  %s %s\n", colorize(colorBold, label+":"), val)
}
