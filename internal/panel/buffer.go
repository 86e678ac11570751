package panel

import "strings"

type segment struct {
	lines []string
	slot  bool
}

// Buffer is the ordered text of a panel. Synchronous lines are appended
// while the source runs; each asynchronous request reserves a slot that is
// filled when its result arrives, so output lands where the source placed
// it regardless of completion order.
type Buffer struct {
	segs []segment
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// Append adds lines after everything written so far.
func (b *Buffer) Append(lines ...string) {
	if len(lines) == 0 {
		return
	}
	if n := len(b.segs); n > 0 && !b.segs[n-1].slot {
		b.segs[n-1].lines = append(b.segs[n-1].lines, lines...)
		return
	}
	b.segs = append(b.segs, segment{lines: append([]string(nil), lines...)})
}

// Reserve opens an empty slot at the current end and returns its handle.
func (b *Buffer) Reserve() int {
	b.segs = append(b.segs, segment{slot: true})
	return len(b.segs) - 1
}

// Fill sets the lines of a reserved slot.
func (b *Buffer) Fill(slot int, lines []string) {
	if slot < 0 || slot >= len(b.segs) || !b.segs[slot].slot {
		return
	}
	b.segs[slot].lines = append([]string(nil), lines...)
}

// Lines returns a copy of all lines in order.
func (b *Buffer) Lines() []string {
	out := make([]string, 0, b.Len())
	for _, s := range b.segs {
		out = append(out, s.lines...)
	}
	return out
}

// Len returns the number of lines.
func (b *Buffer) Len() int {
	n := 0
	for _, s := range b.segs {
		n += len(s.lines)
	}
	return n
}

// Text joins the lines with newlines.
func (b *Buffer) Text() string {
	return strings.Join(b.Lines(), "\n")
}

// SplitLines splits command output into lines, dropping the final newline.
func SplitLines(output string) []string {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return nil
	}
	return strings.Split(output, "\n")
}
