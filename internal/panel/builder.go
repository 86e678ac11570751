package panel

import (
	"context"
	"fmt"
	"time"
)

// FormatFunc turns successful output into display lines.
type FormatFunc func(output string) []string

// FetchFunc performs an in-process request (typically HTTP) and returns
// its rendered text.
type FetchFunc func(ctx context.Context) (string, error)

// Translator localizes fixed UI strings.
type Translator interface {
	T(msg string) string
}

type identity struct{}

func (identity) T(msg string) string { return msg }

type job struct {
	req      Request
	slot     int
	format   FormatFunc
	failText string
	lenient  bool
}

func (j *job) failed(res Result) bool {
	if j.lenient && res.Err == nil {
		return false
	}
	return res.Failed()
}

// JobOption customizes an asynchronous request.
type JobOption func(*job)

// WithTimeout bounds the request. Zero means no timeout.
func WithTimeout(d time.Duration) JobOption {
	return func(j *job) { j.req.Timeout = d }
}

// WithFailureText replaces the generic error line shown when the request fails.
func WithFailureText(text string) JobOption {
	return func(j *job) { j.failText = text }
}

// IgnoreExitStatus formats the output even when the command exits non-zero.
// Errors starting or running the command still count as failures. Used for
// pipelines ending in grep, which exits 1 when nothing matched.
func IgnoreExitStatus() JobOption {
	return func(j *job) { j.lenient = true }
}

// WithTag labels the request for logs and tests.
func WithTag(tag string) JobOption {
	return func(j *job) { j.req.Tag = tag }
}

// Builder is handed to a Source while it opens. It writes synchronous lines
// into the panel's buffer and records asynchronous requests.
type Builder struct {
	buf  *Buffer
	tr   Translator
	jobs []*job
}

func newBuilder(buf *Buffer, tr Translator) *Builder {
	if tr == nil {
		tr = identity{}
	}
	return &Builder{buf: buf, tr: tr}
}

// T translates a fixed string.
func (b *Builder) T(msg string) string { return b.tr.T(msg) }

// Line appends one line.
func (b *Builder) Line(s string) { b.buf.Append(s) }

// Lines appends several lines.
func (b *Builder) Lines(lines ...string) { b.buf.Append(lines...) }

// Linef appends a formatted line.
func (b *Builder) Linef(format string, args ...any) { b.buf.Append(fmt.Sprintf(format, args...)) }

// Field appends a translated label followed by value.
func (b *Builder) Field(label, value string) { b.buf.Append(b.tr.T(label) + value) }

// Blank appends an empty line.
func (b *Builder) Blank() { b.buf.Append("") }

// Exec schedules a shell command. A nil format splits output into lines.
func (b *Builder) Exec(command string, format FormatFunc, opts ...JobOption) {
	b.add(Request{Command: command, Tag: command}, format, opts)
}

// Fetch schedules an in-process request. A nil format splits output into lines.
func (b *Builder) Fetch(tag string, fetch FetchFunc, format FormatFunc, opts ...JobOption) {
	b.add(Request{Fetch: fetch, Tag: tag}, format, opts)
}

func (b *Builder) add(req Request, format FormatFunc, opts []JobOption) {
	if format == nil {
		format = SplitLines
	}
	j := &job{req: req, format: format}
	for _, opt := range opts {
		opt(j)
	}
	j.slot = b.buf.Reserve()
	b.jobs = append(b.jobs, j)
}
