package about

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tinytelemetry/boxinfo/internal/panel"
)

const (
	autoInstallLog = "/home/root/autoinstall.log"
	homeCrashLog   = "/home/root/logs/enigma2_crash.log"
	tmpCrashLog    = "/tmp/enigma2_crash.log"
	crashLogGlob   = "/mnt/hdd/*.log"
	debugLogGlob   = "/home/root/logs/enigma2_debug_*.log"
	debugTailLines = 2500
)

// ErrNotLogfile is returned when removal is requested for a system command view.
var ErrNotLogfile = errors.New("about: current view is not a logfile")

type troubleshootView struct {
	title   string
	command string
	// file is set for views that show a file: read directly, removable
	// when it is a logfile
	file string
	// tail keeps only the last lines of file when positive
	tail int
}

// Troubleshoot is the "Troubleshoot" pane. It pages through system
// command outputs followed by crash and debug logfiles, newest first.
type Troubleshoot struct {
	env *Env

	mu       sync.Mutex
	views    []troubleshootView
	commands int
	current  int
}

func NewTroubleshoot(env *Env) *Troubleshoot {
	p := &Troubleshoot{env: env}
	p.rebuild()
	return p
}

func (p *Troubleshoot) ID() string { return "troubleshoot" }

// Title names the current view, e.g. "Troubleshoot - dmesg".
func (p *Troubleshoot) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return "Troubleshoot - " + p.views[p.current].title
}

func (p *Troubleshoot) Next() {
	p.mu.Lock()
	p.current = (p.current + 1) % len(p.views)
	p.mu.Unlock()
}

func (p *Troubleshoot) Prev() {
	p.mu.Lock()
	p.current = (p.current + len(p.views) - 1) % len(p.views)
	p.mu.Unlock()
}

func (p *Troubleshoot) Current() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, len(p.views)
}

// IsLogfile reports whether the current view is a removable logfile.
func (p *Troubleshoot) IsLogfile() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current >= p.commands
}

func (p *Troubleshoot) Open(b *panel.Builder) {
	p.mu.Lock()
	view := p.views[p.current]
	p.mu.Unlock()

	if view.file != "" {
		data, err := p.env.FS.ReadFile(view.file)
		if err != nil {
			b.Line(b.T("Logfile does not exist anymore"))
			return
		}
		lines := panel.SplitLines(string(data))
		if view.tail > 0 && len(lines) > view.tail {
			lines = lines[len(lines)-view.tail:]
		}
		b.Lines(lines...)
		return
	}
	b.Exec(view.command, nil)
}

// RemoveCurrent deletes the logfile of the current view and rebuilds the
// view list.
func (p *Troubleshoot) RemoveCurrent() error {
	p.mu.Lock()
	if p.current < p.commands {
		p.mu.Unlock()
		return ErrNotLogfile
	}
	file := p.views[p.current].file
	p.mu.Unlock()

	err := p.env.FS.Remove(file)
	p.rebuild()
	if err != nil {
		return fmt.Errorf("about: removing %s: %w", file, err)
	}
	return nil
}

// RemoveAll deletes every crash logfile and rebuilds the view list.
// Debug logs are kept.
func (p *Troubleshoot) RemoveAll() error {
	var errs []error
	for _, f := range p.crashLogs() {
		if err := p.env.FS.Remove(f); err != nil {
			errs = append(errs, err)
		}
	}
	p.rebuild()
	return errors.Join(errs...)
}

func (p *Troubleshoot) crashLogs() []string {
	fs := p.env.FS
	files := fs.GlobByMTime(crashLogGlob)
	for _, f := range []string{homeCrashLog, tmpCrashLog} {
		if fs.IsFile(f) {
			files = append(files, f)
		}
	}
	return files
}

func (p *Troubleshoot) rebuild() {
	fs := p.env.FS
	views := []troubleshootView{
		{title: "dmesg", command: "dmesg"},
		{title: "ifconfig", command: "ifconfig"},
		{title: "df", command: "df -h"},
		{title: "top", command: "top -n 1"},
		{title: "ps", command: "ps -l"},
		{title: "messages", file: "/var/volatile/log/messages"},
	}
	if fs.IsFile(autoInstallLog) {
		views = append(views, troubleshootView{title: autoInstallLog, file: autoInstallLog})
	}
	commands := len(views)

	crash := p.crashLogs()
	for i := range crash {
		f := crash[len(crash)-1-i]
		views = append(views, troubleshootView{
			title: fmt.Sprintf("logfile %s (%d/%d)", f, i+1, len(crash)),
			file:  f,
		})
	}
	debug := fs.GlobByMTime(debugLogGlob)
	for i := range debug {
		f := debug[len(debug)-1-i]
		views = append(views, troubleshootView{
			title: fmt.Sprintf("debug log %s (%d/%d)", f, i+1, len(debug)),
			file:  f,
			tail:  debugTailLines,
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = views
	p.commands = commands
	p.current = min(p.current, len(views)-1)
}
