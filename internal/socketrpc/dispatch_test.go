package socketrpc

import (
	"encoding/json"
	"testing"

	"github.com/tinytelemetry/boxinfo/internal/model"
)

type stubQuerier struct{ lastLimit int }

func (q *stubQuerier) ListPanels() ([]model.PanelSummary, error) { return nil, nil }
func (q *stubQuerier) LatestSnapshot(id string) (model.Snapshot, error) {
	return model.Snapshot{PanelID: id}, nil
}
func (q *stubQuerier) MemoryHistory(limit int) ([]model.MemorySample, error) {
	q.lastLimit = limit
	return []model.MemorySample{}, nil
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		params   string
		wantCode int
	}{
		{"list", "ListPanels", "", 0},
		{"snapshot", "LatestSnapshot", `{"PanelID":"dvb"}`, 0},
		{"snapshot missing id", "LatestSnapshot", `{}`, codeInvalidParams},
		{"snapshot bad params", "LatestSnapshot", `[1]`, codeInvalidParams},
		{"history no params", "MemoryHistory", "", 0},
		{"history null", "MemoryHistory", "null", 0},
		{"history bad", "MemoryHistory", `{"Limit":"x"}`, codeInvalidParams},
		{"unknown", "DropTables", "", codeMethodNotFound},
	}
	s := NewServer("", &stubQuerier{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{JSONRPC: "2.0", ID: 7, Method: tt.method}
			if tt.params != "" {
				req.Params = json.RawMessage(tt.params)
			}
			resp := s.dispatch(req)
			if resp.ID != 7 {
				t.Errorf("ID = %d, want 7", resp.ID)
			}
			code := 0
			if resp.Error != nil {
				code = resp.Error.Code
			}
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d (%v)", code, tt.wantCode, resp.Error)
			}
		})
	}
}

func TestDispatchPassesLimit(t *testing.T) {
	q := &stubQuerier{}
	s := NewServer("", q)
	resp := s.dispatch(Request{Method: "MemoryHistory", Params: json.RawMessage(`{"Limit":12}`)})
	if resp.Error != nil {
		t.Fatalf("error: %v", resp.Error)
	}
	if q.lastLimit != 12 {
		t.Errorf("limit = %d, want 12", q.lastLimit)
	}
	if string(resp.Result) != "[]" {
		t.Errorf("result = %s", resp.Result)
	}
}
