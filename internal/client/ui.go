package client

import (
	"fmt"
	"time"
)

// ANSI escape sequences for the terminal UI.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiRed    = "\033[31m"

	ansiClearScreen = "\033[2J\033[H"
)

func formatChatLine(username, text string, ts time.Time, self bool) string {
	color := ansiCyan
	if self {
		color = ansiGreen
	}
	return fmt.Sprintf("%s[%s]%s %s%s%s: %s",
		ansiDim, ts.Format("15:04:05"), ansiReset,
		color+ansiBold, username, ansiReset,
		text)
}

func formatJoin(username string) string {
	return fmt.Sprintf("%s* %s joined the chat%s", ansiYellow, username, ansiReset)
}

func formatLeave(username string) string {
	return fmt.Sprintf("%s* %s left the chat%s", ansiYellow, username, ansiReset)
}

func formatSystem(text string) string {
	return fmt.Sprintf("%s* %s%s", ansiDim, text, ansiReset)
}

func formatError(text string) string {
	return fmt.Sprintf("%s! %s%s", ansiRed, text, ansiReset)
}
