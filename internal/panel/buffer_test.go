package panel

import (
	"reflect"
	"testing"
)

func TestBufferSlots(t *testing.T) {
	b := NewBuffer()
	b.Append("a")
	s1 := b.Reserve()
	b.Append("b", "c")
	s2 := b.Reserve()

	b.Fill(s2, []string{"y"})
	if got := b.Lines(); !reflect.DeepEqual(got, []string{"a", "b", "c", "y"}) {
		t.Errorf("lines = %q", got)
	}
	b.Fill(s1, []string{"x1", "x2"})
	if got := b.Text(); got != "a\nx1\nx2\nb\nc\ny" {
		t.Errorf("text = %q", got)
	}
	if b.Len() != 6 {
		t.Errorf("len = %d, want 6", b.Len())
	}

	// filling a non-slot segment is ignored
	b.Fill(0, []string{"zzz"})
	b.Fill(99, []string{"zzz"})
	if b.Lines()[0] != "a" {
		t.Error("Fill overwrote a synchronous segment")
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"\n\n", nil},
		{"one", []string{"one"}},
		{"one\ntwo\n", []string{"one", "two"}},
		{"one\n\ntwo", []string{"one", "", "two"}},
	}
	for _, tt := range tests {
		if got := SplitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Collecting: "collecting", Ready: "ready", Failed: "failed", State(9): "unknown"} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
	if !Ready.Done() || !Failed.Done() || Collecting.Done() {
		t.Error("Done() mismatch")
	}
}
