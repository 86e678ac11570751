package model

import "time"

// Shared defaults used by both the daemon and TUI binaries.
const (
	DefaultCollectInterval      = 5 * time.Minute
	DefaultMemorySampleInterval = 10 * time.Second
	DefaultNetworkTimeout       = 5 * time.Second
	DefaultMemoryRows           = 25
	DefaultLanguage             = "en"
	DefaultRetentionDays        = 7
	DefaultHistoryLimit         = 60
)
