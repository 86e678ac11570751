// Package panel implements the information panel controller: a source is
// opened into a text buffer, its asynchronous requests are tracked until they
// complete, and the finished buffer is pushed to attached displays.
package panel

import (
	"sync"
)

// ErrorText is shown in place of the output of a failed request.
const ErrorText = "An error occurred - Please try again later"

// Source produces the content of one panel.
type Source interface {
	ID() string
	Title() string
	// Open writes the synchronous lines and schedules requests. It must not
	// call back into the controller.
	Open(b *Builder)
}

// Update is what a display receives when the panel changes.
type Update struct {
	PanelID string
	Title   string
	State   State
	Lines   []string
}

// Display receives panel updates. Show must not call Close.
type Display interface {
	Show(u Update)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(u Update)

func (f DisplayFunc) Show(u Update) { f(u) }

type attached struct {
	id int
	d  Display
}

// Option configures a Controller.
type Option func(*Controller)

// WithTranslator localizes labels and error lines.
func WithTranslator(tr Translator) Option {
	return func(c *Controller) {
		if tr != nil {
			c.tr = tr
		}
	}
}

// WithDisplay attaches a display at construction.
func WithDisplay(d Display) Option {
	return func(c *Controller) { c.Attach(d) }
}

// Controller drives one panel through Idle, Collecting, Ready and Failed.
//
// At most one collection phase runs at a time. Refresh during Collecting is
// coalesced: one new phase starts when the current one ends, however many
// refreshes arrived meanwhile.
type Controller struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	src      Source
	tr       Translator
	state    State
	buf      *Buffer
	pending  map[RequestID]*job
	nextID   RequestID
	failed   bool
	queued   bool
	closed   bool
	displays []attached
	nextDisp int
	// seq stamps updates in the order their state was reached; published
	// is the newest stamp handed to displays and is guarded by notifyMu.
	seq       uint64
	published uint64
}

// NewController returns an Idle controller for src.
func NewController(src Source, opts ...Option) *Controller {
	c := &Controller{
		src:     src,
		tr:      identity{},
		buf:     NewBuffer(),
		pending: make(map[RequestID]*job),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the source id.
func (c *Controller) ID() string { return c.src.ID() }

// Source returns the underlying source.
func (c *Controller) Source() Source { return c.src }

// Title returns the current source title.
func (c *Controller) Title() string { return c.src.Title() }

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Lines returns a copy of the buffer.
func (c *Controller) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Lines()
}

// Pending returns the number of outstanding requests.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Snapshot returns the current panel content.
func (c *Controller) Snapshot() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateLocked()
}

// Attach registers a display and returns the function that removes it.
func (c *Controller) Attach(d Display) (detach func()) {
	c.mu.Lock()
	c.nextDisp++
	id := c.nextDisp
	c.displays = append(c.displays, attached{id: id, d: d})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, a := range c.displays {
			if a.id == id {
				c.displays = append(c.displays[:i], c.displays[i+1:]...)
				return
			}
		}
	}
}

// Open starts a collection phase and returns the requests to dispatch.
// It is a no-op while Collecting.
func (c *Controller) Open() []Request {
	c.mu.Lock()
	if c.state == Collecting {
		c.mu.Unlock()
		return nil
	}
	reqs, u := c.beginLocked()
	seq := c.stampLocked()
	c.mu.Unlock()

	c.publish(u, seq)
	return reqs
}

// Refresh re-runs the source from Ready or Failed, replacing the buffer.
// From Idle it behaves like Open; during Collecting it is queued.
func (c *Controller) Refresh() []Request {
	c.mu.Lock()
	if c.state == Collecting {
		c.queued = true
		c.mu.Unlock()
		return nil
	}
	reqs, u := c.beginLocked()
	seq := c.stampLocked()
	c.mu.Unlock()

	c.publish(u, seq)
	return reqs
}

// OnCommandComplete records the result of request id. Stale or unknown ids
// are ignored. When the last request completes the panel becomes Ready (or
// Failed) and displays are notified; if a refresh was queued, the requests
// of the new phase are returned.
func (c *Controller) OnCommandComplete(id RequestID, res Result) []Request {
	c.mu.Lock()
	j, ok := c.pending[id]
	if !ok || c.closed {
		c.mu.Unlock()
		return nil
	}
	delete(c.pending, id)

	if j.failed(res) {
		c.failed = true
		text := j.failText
		if text == "" {
			text = c.tr.T(ErrorText)
		}
		c.buf.Fill(j.slot, []string{text})
	} else {
		c.buf.Fill(j.slot, j.format(res.Output))
	}

	if len(c.pending) > 0 {
		c.mu.Unlock()
		return nil
	}

	c.finishLocked()
	done := c.updateLocked()
	doneSeq := c.stampLocked()

	var next []Request
	var restarted *Update
	var restartSeq uint64
	if c.queued {
		var u Update
		next, u = c.beginLocked()
		restarted = &u
		restartSeq = c.stampLocked()
	}
	c.mu.Unlock()

	c.publish(done, doneSeq)
	if restarted != nil {
		c.publish(*restarted, restartSeq)
	}
	return next
}

// Close detaches every display and drops outstanding requests. Results that
// arrive afterwards are ignored and no display is called once Close returns.
// Running commands are not killed.
func (c *Controller) Close() {
	c.mu.Lock()
	c.displays = nil
	c.closed = true
	c.queued = false
	c.pending = make(map[RequestID]*job)
	c.state = Idle
	c.mu.Unlock()

	// wait out a publish that read the display list before it was cleared
	c.notifyMu.Lock()
	c.notifyMu.Unlock()
}

func (c *Controller) beginLocked() ([]Request, Update) {
	c.closed = false
	c.queued = false
	c.failed = false
	c.buf = NewBuffer()
	c.pending = make(map[RequestID]*job)

	b := newBuilder(c.buf, c.tr)
	c.src.Open(b)

	reqs := make([]Request, 0, len(b.jobs))
	for _, j := range b.jobs {
		c.nextID++
		j.req.ID = c.nextID
		j.req.PanelID = c.src.ID()
		c.pending[j.req.ID] = j
		reqs = append(reqs, j.req)
	}

	if len(reqs) == 0 {
		c.finishLocked()
	} else {
		c.state = Collecting
	}
	return reqs, c.updateLocked()
}

func (c *Controller) finishLocked() {
	if c.failed {
		c.state = Failed
	} else {
		c.state = Ready
	}
}

func (c *Controller) updateLocked() Update {
	return Update{
		PanelID: c.src.ID(),
		Title:   c.src.Title(),
		State:   c.state,
		Lines:   c.buf.Lines(),
	}
}

func (c *Controller) stampLocked() uint64 {
	c.seq++
	return c.seq
}

// publish hands u to the displays unless a newer update already went out.
// Completions delivered from several goroutines may reach here out of order.
func (c *Controller) publish(u Update, seq uint64) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	if seq <= c.published {
		return
	}
	c.published = seq

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	displays := make([]Display, len(c.displays))
	for i, a := range c.displays {
		displays[i] = a.d
	}
	c.mu.Unlock()

	for _, d := range displays {
		d.Show(u)
	}
}
