package panel

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/tinytelemetry/boxinfo/internal/console"
)

type fakeSource struct {
	id    string
	title string
	open  func(b *Builder)
	opens int
}

func (s *fakeSource) ID() string    { return s.id }
func (s *fakeSource) Title() string { return s.title }
func (s *fakeSource) Open(b *Builder) {
	s.opens++
	if s.open != nil {
		s.open(b)
	}
}

type recordingDisplay struct {
	mu      sync.Mutex
	updates []Update
}

func (d *recordingDisplay) Show(u Update) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updates = append(d.updates, u)
}

func (d *recordingDisplay) last() (Update, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.updates) == 0 {
		return Update{}, false
	}
	return d.updates[len(d.updates)-1], true
}

func (d *recordingDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.updates)
}

type upperTranslator struct{}

func (upperTranslator) T(msg string) string {
	if msg == ErrorText {
		return "FEHLER"
	}
	return msg
}

func ok(out string) console.Result { return console.Result{Output: out} }

func TestOpenWithoutRequestsIsReady(t *testing.T) {
	src := &fakeSource{id: "p", title: "P", open: func(b *Builder) {
		b.Field("Hardware: ", "vuduo4k")
		b.Blank()
	}}
	disp := &recordingDisplay{}
	c := NewController(src, WithDisplay(disp))

	if got := c.State(); got != Idle {
		t.Fatalf("initial state = %v, want idle", got)
	}
	if reqs := c.Open(); len(reqs) != 0 {
		t.Fatalf("Open returned %d requests, want 0", len(reqs))
	}
	if got := c.State(); got != Ready {
		t.Errorf("state = %v, want ready", got)
	}
	u, ok := disp.last()
	if !ok {
		t.Fatal("display was not updated")
	}
	if !reflect.DeepEqual(u.Lines, []string{"Hardware: vuduo4k", ""}) {
		t.Errorf("lines = %q", u.Lines)
	}
	if u.State != Ready || u.PanelID != "p" || u.Title != "P" {
		t.Errorf("update = %+v", u)
	}
}

func TestCompletionMovesToReady(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) {
		b.Line("header")
		b.Exec("df -mh", nil)
	}}
	disp := &recordingDisplay{}
	c := NewController(src, WithDisplay(disp))

	reqs := c.Open()
	if len(reqs) != 1 || reqs[0].Command != "df -mh" || reqs[0].PanelID != "p" {
		t.Fatalf("requests = %+v", reqs)
	}
	if got := c.State(); got != Collecting {
		t.Fatalf("state = %v, want collecting", got)
	}
	if c.Pending() != 1 {
		t.Errorf("pending = %d, want 1", c.Pending())
	}

	c.OnCommandComplete(reqs[0].ID, ok("a\nb\n"))

	if got := c.State(); got != Ready {
		t.Errorf("state = %v, want ready", got)
	}
	u, _ := disp.last()
	if !reflect.DeepEqual(u.Lines, []string{"header", "a", "b"}) {
		t.Errorf("lines = %q", u.Lines)
	}
	if u.State != Ready {
		t.Errorf("pushed state = %v, want ready", u.State)
	}
}

func TestFailedCommandShowsErrorText(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) {
		b.Line("before")
		b.Exec("dmesg", nil)
		b.Line("after")
	}}
	c := NewController(src)
	reqs := c.Open()

	c.OnCommandComplete(reqs[0].ID, console.Result{Output: "raw garbage", ExitStatus: 1})

	if got := c.State(); got != Failed {
		t.Errorf("state = %v, want failed", got)
	}
	want := []string{"before", ErrorText, "after"}
	if got := c.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestFailureTextIsTranslatedOrOverridden(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) {
		b.Exec("a", nil)
		b.Exec("b", nil, WithFailureText("Requires internet connection"))
	}}
	c := NewController(src, WithTranslator(upperTranslator{}))
	reqs := c.Open()
	for _, r := range reqs {
		c.OnCommandComplete(r.ID, console.Result{ExitStatus: 2})
	}
	want := []string{"FEHLER", "Requires internet connection"}
	if got := c.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestResultsLandInSourceOrder(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) {
		b.Exec("first", nil)
		b.Line("middle")
		b.Exec("second", func(out string) []string { return []string{"2:" + out} })
	}}
	c := NewController(src)
	reqs := c.Open()

	c.OnCommandComplete(reqs[1].ID, ok("y"))
	if got := c.State(); got != Collecting {
		t.Errorf("state after one of two = %v, want collecting", got)
	}
	c.OnCommandComplete(reqs[0].ID, ok("x\n"))

	want := []string{"x", "middle", "2:y"}
	if got := c.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestRefreshReplacesBuffer(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) {
		b.Line("Flash")
		b.Exec("df -mh /", nil)
	}}
	c := NewController(src)

	first := c.Open()
	c.OnCommandComplete(first[0].ID, ok("/dev/root 100M 50M\n"))
	before := c.Lines()

	second := c.Refresh()
	if len(second) != len(first) || second[0].Command != first[0].Command {
		t.Fatalf("refresh requests = %+v, want same command set as %+v", second, first)
	}
	if second[0].ID == first[0].ID {
		t.Error("refresh reused a request id")
	}
	if got := c.Lines(); !reflect.DeepEqual(got, []string{"Flash"}) {
		t.Errorf("lines while collecting = %q, want only the synchronous part", got)
	}
	c.OnCommandComplete(second[0].ID, ok("/dev/root 100M 50M\n"))

	if got := c.Lines(); !reflect.DeepEqual(got, before) {
		t.Errorf("lines after refresh = %q, want %q (no duplication)", got, before)
	}
	if src.opens != 2 {
		t.Errorf("source opened %d times, want 2", src.opens)
	}
}

func TestRefreshFromFailedAndIdle(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) { b.Exec("x", nil) }}
	c := NewController(src)

	reqs := c.Refresh()
	if len(reqs) != 1 {
		t.Fatalf("Refresh from idle returned %d requests, want 1", len(reqs))
	}
	c.OnCommandComplete(reqs[0].ID, console.Result{ExitStatus: 1})
	if c.State() != Failed {
		t.Fatalf("state = %v, want failed", c.State())
	}

	reqs = c.Refresh()
	c.OnCommandComplete(reqs[0].ID, ok("fine"))
	if c.State() != Ready {
		t.Errorf("state = %v, want ready after successful refresh", c.State())
	}
	if got := c.Lines(); !reflect.DeepEqual(got, []string{"fine"}) {
		t.Errorf("lines = %q", got)
	}
}

func TestRefreshWhileCollectingIsCoalesced(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) { b.Exec("top -n 1", nil) }}
	c := NewController(src)

	reqs := c.Open()
	if again := c.Open(); again != nil {
		t.Errorf("Open while collecting returned %d requests, want none", len(again))
	}
	if r := c.Refresh(); r != nil {
		t.Errorf("Refresh while collecting returned requests")
	}
	if r := c.Refresh(); r != nil {
		t.Errorf("second Refresh while collecting returned requests")
	}

	next := c.OnCommandComplete(reqs[0].ID, ok("1"))
	if len(next) != 1 {
		t.Fatalf("queued refresh produced %d requests, want exactly 1", len(next))
	}
	if c.State() != Collecting {
		t.Errorf("state = %v, want collecting for the queued phase", c.State())
	}
	if src.opens != 2 {
		t.Errorf("opens = %d, want 2", src.opens)
	}

	// the old id is stale now
	if r := c.OnCommandComplete(reqs[0].ID, ok("stale")); r != nil {
		t.Error("stale completion returned requests")
	}
	c.OnCommandComplete(next[0].ID, ok("2"))
	if got := c.Lines(); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("lines = %q, want [2]", got)
	}
	if c.State() != Ready {
		t.Errorf("state = %v, want ready", c.State())
	}
}

func TestCloseDropsLateCompletions(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) { b.Exec("ethtool eth0", nil) }}
	disp := &recordingDisplay{}
	c := NewController(src, WithDisplay(disp))

	reqs := c.Open()
	pushed := disp.count()
	c.Close()

	if r := c.OnCommandComplete(reqs[0].ID, ok("Speed: 100Mb/s")); r != nil {
		t.Error("completion after Close returned requests")
	}
	if disp.count() != pushed {
		t.Errorf("display called %d times after Close", disp.count()-pushed)
	}
	if c.State() != Idle {
		t.Errorf("state after Close = %v, want idle", c.State())
	}
	if c.Pending() != 0 {
		t.Errorf("pending after Close = %d, want 0", c.Pending())
	}
}

func TestReopenAfterClose(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) { b.Line("x") }}
	c := NewController(src)
	c.Open()
	c.Close()

	disp := &recordingDisplay{}
	c.Attach(disp)
	c.Open()
	if c.State() != Ready {
		t.Errorf("state = %v, want ready", c.State())
	}
	if disp.count() == 0 {
		t.Error("display attached after reopen got no update")
	}
}

func TestDetachStopsUpdates(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) { b.Line("x") }}
	c := NewController(src)
	a, b := &recordingDisplay{}, &recordingDisplay{}
	detachA := c.Attach(a)
	c.Attach(b)

	c.Open()
	detachA()
	c.Refresh()

	if a.count() != 1 {
		t.Errorf("detached display got %d updates, want 1", a.count())
	}
	if b.count() != 2 {
		t.Errorf("attached display got %d updates, want 2", b.count())
	}
}

func TestDisplayMayReadController(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) { b.Line("x") }}
	c := NewController(src)
	var seen []string
	c.Attach(DisplayFunc(func(Update) { seen = c.Lines() }))
	c.Open()
	if !reflect.DeepEqual(seen, []string{"x"}) {
		t.Errorf("seen = %q", seen)
	}
}

func TestIgnoreExitStatusFormatsOutput(t *testing.T) {
	src := &fakeSource{id: "p", title: "P", open: func(b *Builder) {
		b.Exec("df -mh | grep -v '^Filesystem'", nil, IgnoreExitStatus())
		b.Exec("missing-binary", nil, IgnoreExitStatus())
	}}
	c := NewController(src)
	reqs := c.Open()
	c.OnCommandComplete(reqs[0].ID, console.Result{Output: "", ExitStatus: 1})
	c.OnCommandComplete(reqs[1].ID, console.Result{ExitStatus: -1, Err: errors.New("exec: not found")})

	if c.State() != Failed {
		t.Errorf("State = %v, want Failed (start error still fails)", c.State())
	}
	lines := c.Lines()
	if len(lines) != 1 || lines[0] != ErrorText {
		t.Errorf("Lines = %q, want only the error line", lines)
	}
}

func TestOlderUpdateIsNotPublishedAfterNewer(t *testing.T) {
	disp := &recordingDisplay{}
	c := NewController(&fakeSource{id: "p"}, WithDisplay(disp))

	c.publish(Update{PanelID: "p", State: Collecting}, 2)
	c.publish(Update{PanelID: "p", State: Ready}, 1)

	if disp.count() != 1 {
		t.Fatalf("display called %d times, want 1", disp.count())
	}
	if u, _ := disp.last(); u.State != Collecting {
		t.Errorf("last state = %v, want collecting", u.State)
	}
}

func TestConcurrentCompletionsEndOnFinalState(t *testing.T) {
	src := &fakeSource{id: "p", open: func(b *Builder) {
		b.Exec("dmesg", nil)
		b.Exec("ifconfig", nil)
		b.Exec("df -h", nil)
	}}
	disp := &recordingDisplay{}
	c := NewController(src, WithDisplay(disp))

	var wg sync.WaitGroup
	var run func(reqs []Request)
	run = func(reqs []Request) {
		for _, r := range reqs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				run(c.OnCommandComplete(r.ID, ok("out")))
			}()
		}
	}
	for range 50 {
		run(c.Refresh())
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(c.Refresh())
		}()
	}
	wg.Wait()

	final := c.Snapshot()
	if final.State != Ready {
		t.Fatalf("final state = %v, want ready", final.State)
	}
	last, _ := disp.last()
	if last.State != final.State || !reflect.DeepEqual(last.Lines, final.Lines) {
		t.Errorf("display ended on %v %q, controller is %v %q", last.State, last.Lines, final.State, final.Lines)
	}
}
