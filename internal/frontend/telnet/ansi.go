// Package telnet serves the interactive calculator over Telnet: TCP
// accept loop, IAC filtering, line editing and ANSI styling.
package telnet

import "strings"

// ANSI escape codes used by the calculator screens.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"

	BrightWhite = "\033[97m"
)

// Colorize wraps text with the given ANSI codes and a reset suffix.
// Empty text is returned unchanged so blank lines stay blank.
//
// Postcondition: Returns codes + text + Reset, or "" for empty text.
func Colorize(text string, codes ...string) string {
	if text == "" || len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + Reset
}

// StripANSI removes all \033[...m sequences, e.g. for clients that asked for
// plain output.
func StripANSI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i+2:], 'm'); end >= 0 {
				i += end + 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
