package model

import "time"

// Tuner is one frontend slot reported by the tuner enumeration.
type Tuner struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Label returns the slot letter used on screen (A, B, ...).
func (t Tuner) Label() string {
	if t.Slot < 26 {
		return string(rune('A' + t.Slot))
	}
	return string(rune('A'+t.Slot/26-1)) + string(rune('A'+t.Slot%26))
}

// Description is the text shown after "Tuner X:".
func (t Tuner) Description() string {
	if t.Type == "" {
		return t.Name
	}
	return t.Name + " (" + t.Type + ")"
}

// StorageDevice is a mounted block device.
type StorageDevice struct {
	Model      string `json:"model"`
	Bus        string `json:"bus"`
	Capacity   string `json:"capacity"`
	Mountpoint string `json:"mountpoint"`
	FreeMB     uint64 `json:"free_mb"`
}

// InterfaceInfo describes the IPv4 configuration of a network interface.
type InterfaceInfo struct {
	Name         string `json:"name"`
	Addr         string `json:"addr"`
	Netmask      string `json:"netmask"`
	HardwareAddr string `json:"hwaddr"`
}

// TransferStats are byte counters for one interface.
type TransferStats struct {
	RxBytes uint64 `json:"rx_bytes"`
	TxBytes uint64 `json:"tx_bytes"`
}

// Snapshot is a stored rendering of one panel.
type Snapshot struct {
	ID          string    `json:"id"`
	PanelID     string    `json:"panel_id"`
	Title       string    `json:"title"`
	State       string    `json:"state"`
	Lines       []string  `json:"lines"`
	CollectedAt time.Time `json:"collected_at"`
}

// PanelSummary is a listing row for stored panels.
type PanelSummary struct {
	PanelID     string    `json:"panel_id"`
	Title       string    `json:"title"`
	State       string    `json:"state"`
	Snapshots   int64     `json:"snapshots"`
	CollectedAt time.Time `json:"collected_at"`
}

// MemorySample is one point of the used-memory history.
type MemorySample struct {
	At          time.Time `json:"at"`
	TotalKB     int64     `json:"total_kb"`
	FreeKB      int64     `json:"free_kb"`
	UsedPercent float64   `json:"used_percent"`
}
