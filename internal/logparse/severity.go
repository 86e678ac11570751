// Package logparse classifies receiver log lines by severity so the
// troubleshoot views can tint them.
package logparse

import (
	"regexp"
	"strconv"
	"strings"
)

// SeverityRegex matches common severity levels in log text.
var SeverityRegex = regexp.MustCompile(`(?i)\b(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|FATAL|CRITICAL|PANIC)\b`)

// kernelPrefix matches the "<N>" syslog priority dmesg -r prints.
var kernelPrefix = regexp.MustCompile(`^<([0-7])>`)

// fatalMarkers identify crash dumps and kernel faults regardless of any level keyword.
var fatalMarkers = []string{
	"Kernel panic",
	"Oops:",
	"segfault at",
	"Unable to handle kernel",
	"[ePyObject] (CallObject",
}

var errorMarkers = []string{
	"Traceback (most recent call last)",
	"Exception:",
	"Error:",
	"FAILED",
	"I/O error",
}

// NormalizeSeverity converts various severity level formats to consistent all caps short forms.
func NormalizeSeverity(severity string) string {
	normalized := strings.ToUpper(strings.TrimSpace(severity))

	switch normalized {
	case "TRACE", "TRAC", "TRC":
		return "TRACE"
	case "DEBUG", "DEBU", "DBG", "DEB":
		return "DEBUG"
	case "INFO", "INFORMATION", "INF", "NOTICE":
		return "INFO"
	case "WARN", "WARNING", "WRNG", "WRN":
		return "WARN"
	case "ERROR", "ERR", "ERRO":
		return "ERROR"
	case "FATAL", "FATL", "FTL", "CRITICAL", "CRIT", "CRT", "ALERT", "EMERG":
		return "FATAL"
	case "PANIC", "PNC":
		return "FATAL"
	default:
		if len(normalized) >= 4 {
			switch normalized[:4] {
			case "INFO":
				return "INFO"
			case "WARN":
				return "WARN"
			case "ERRO":
				return "ERROR"
			case "DEBU":
				return "DEBUG"
			case "TRAC":
				return "TRACE"
			case "FATA", "CRIT":
				return "FATAL"
			}
		}
		return "INFO"
	}
}

// KernelLevelToString converts a syslog priority (0 emerg .. 7 debug) to a severity.
func KernelLevelToString(level int) string {
	switch {
	case level <= 2:
		return "FATAL"
	case level == 3:
		return "ERROR"
	case level == 4:
		return "WARN"
	case level <= 6:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// ExtractSeverityFromText extracts severity level from log message text.
func ExtractSeverityFromText(message string) string {
	matches := SeverityRegex.FindStringSubmatch(message)
	if len(matches) > 1 {
		return NormalizeSeverity(matches[1])
	}
	return "INFO"
}

// Classify returns the severity of one log line. Kernel priority prefixes
// win, then crash markers, then level keywords. Anything else is INFO.
func Classify(line string) string {
	if m := kernelPrefix.FindStringSubmatch(line); m != nil {
		level, _ := strconv.Atoi(m[1])
		return KernelLevelToString(level)
	}
	for _, marker := range fatalMarkers {
		if strings.Contains(line, marker) {
			return "FATAL"
		}
	}
	for _, marker := range errorMarkers {
		if strings.Contains(line, marker) {
			return "ERROR"
		}
	}
	return ExtractSeverityFromText(line)
}
