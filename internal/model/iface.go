package model

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by queries for a panel that has no stored snapshot.
var ErrNotFound = errors.New("not found")

// TunerLister enumerates the frontends of the box.
type TunerLister interface {
	Tuners(ctx context.Context) ([]Tuner, error)
	// Capabilities returns the frontend capability text, one line per
	// capability, headed by "DVB API version: X".
	Capabilities(ctx context.Context) (string, error)
}

// StorageLister enumerates mounted storage devices.
type StorageLister interface {
	Devices(ctx context.Context) ([]StorageDevice, error)
}

// NetworkQuerier answers questions about local network interfaces.
type NetworkQuerier interface {
	Interface(ctx context.Context, name string) (InterfaceInfo, bool)
	Interfaces(ctx context.Context) ([]InterfaceInfo, error)
	Transferred(ctx context.Context, name string) (TransferStats, error)
}

// SnapshotQuerier provides read-only queries on collected panels.
type SnapshotQuerier interface {
	ListPanels() ([]PanelSummary, error)
	LatestSnapshot(panelID string) (Snapshot, error)
	MemoryHistory(limit int) ([]MemorySample, error)
}

// SnapshotWriter persists collected panels and memory samples.
type SnapshotWriter interface {
	InsertSnapshot(s Snapshot) (string, error)
	InsertMemorySample(s MemorySample) error
	DeleteBefore(cutoff time.Time) (int64, error)
}

// ReadAPI is the unified read contract for read surfaces (HTTP and socket RPC).
type ReadAPI interface {
	SnapshotQuerier
}
