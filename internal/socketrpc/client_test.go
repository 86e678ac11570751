package socketrpc_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/socketrpc"
)

// mockQuerier is a minimal SnapshotQuerier for roundtrip testing.
type mockQuerier struct{}

func (m *mockQuerier) ListPanels() ([]model.PanelSummary, error) {
	return []model.PanelSummary{{PanelID: "about", Title: "About Information", State: "ready", Snapshots: 3}}, nil
}

func (m *mockQuerier) LatestSnapshot(panelID string) (model.Snapshot, error) {
	if panelID != "about" {
		return model.Snapshot{}, fmt.Errorf("lookup %s: %w", panelID, model.ErrNotFound)
	}
	return model.Snapshot{
		ID:          "id-1",
		PanelID:     "about",
		Title:       "About Information",
		State:       "ready",
		Lines:       []string{"Hardware: vusolo4k", "", "Uptime: 1 day"},
		CollectedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockQuerier) MemoryHistory(limit int) ([]model.MemorySample, error) {
	if limit < 0 {
		return nil, errors.New("boom")
	}
	out := make([]model.MemorySample, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, model.MemorySample{TotalKB: 512000, UsedPercent: float64(i)})
	}
	return out, nil
}

func startTestServer(t *testing.T) (string, *socketrpc.Server) {
	t.Helper()
	sockPath := filepath.Join(t.TempDir(), "test.sock")
	srv := socketrpc.NewServer(sockPath, &mockQuerier{})
	if err := srv.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	return sockPath, srv
}

func TestRoundtrip(t *testing.T) {
	sockPath, srv := startTestServer(t)
	defer srv.Stop()

	client, err := socketrpc.Dial(sockPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	var _ model.SnapshotQuerier = client

	t.Run("ListPanels", func(t *testing.T) {
		panels, err := client.ListPanels()
		if err != nil {
			t.Fatal(err)
		}
		if len(panels) != 1 || panels[0].Snapshots != 3 {
			t.Fatalf("unexpected panels: %+v", panels)
		}
	})

	t.Run("LatestSnapshot", func(t *testing.T) {
		snap, err := client.LatestSnapshot("about")
		if err != nil {
			t.Fatal(err)
		}
		if len(snap.Lines) != 3 || snap.Lines[1] != "" {
			t.Fatalf("lines = %q", snap.Lines)
		}
		if !snap.CollectedAt.Equal(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)) {
			t.Fatalf("collected at = %v", snap.CollectedAt)
		}
	})

	t.Run("LatestSnapshotNotFound", func(t *testing.T) {
		_, err := client.LatestSnapshot("missing")
		if !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("MemoryHistory", func(t *testing.T) {
		samples, err := client.MemoryHistory(4)
		if err != nil {
			t.Fatal(err)
		}
		if len(samples) != 4 || samples[3].UsedPercent != 3 {
			t.Fatalf("samples = %+v", samples)
		}
	})

	t.Run("ApplicationError", func(t *testing.T) {
		_, err := client.MemoryHistory(-1)
		var rpcErr *socketrpc.RPCError
		if !errors.As(err, &rpcErr) || rpcErr.Code != -32000 {
			t.Fatalf("err = %v, want application RPCError", err)
		}
	})
}

func TestStartRejectsLiveSocket(t *testing.T) {
	sockPath, srv := startTestServer(t)
	defer srv.Stop()

	second := socketrpc.NewServer(sockPath, &mockQuerier{})
	if err := second.Start(); err == nil {
		second.Stop()
		t.Fatal("expected error when another server is listening")
	}
}

func TestStopWithOpenClient(t *testing.T) {
	sockPath, srv := startTestServer(t)

	client, err := socketrpc.Dial(sockPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	if _, err := client.ListPanels(); err != nil {
		t.Fatalf("ListPanels: %v", err)
	}

	done := make(chan struct{})
	go func() {
		srv.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an open client connection")
	}

	if _, err := client.ListPanels(); err == nil {
		t.Fatal("expected error after server stopped")
	}
}
