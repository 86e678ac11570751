package about

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tinytelemetry/boxinfo/internal/console"
	"github.com/tinytelemetry/boxinfo/internal/geo"
	"github.com/tinytelemetry/boxinfo/internal/github"
	"github.com/tinytelemetry/boxinfo/internal/hw"
	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/panel"
	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

func writeSyntheticFile(t *testing.T, root, path, content string) {
	t.Helper()
	fullPath := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}
}

// fakeRunner answers commands from a table; unknown commands exit 127.
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]console.Result
	ran     []string
}

func newFakeRunner(results map[string]console.Result) *fakeRunner {
	if results == nil {
		results = map[string]console.Result{}
	}
	return &fakeRunner{results: results}
}

func (r *fakeRunner) Run(_ context.Context, command string) console.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ran = append(r.ran, command)
	if res, ok := r.results[command]; ok {
		return res
	}
	return console.Result{ExitStatus: 127}
}

func (r *fakeRunner) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ran...)
}

type fakeTuners struct {
	tuners []model.Tuner
	caps   string
}

func (f fakeTuners) Tuners(context.Context) ([]model.Tuner, error) { return f.tuners, nil }
func (f fakeTuners) Capabilities(context.Context) (string, error)  { return f.caps, nil }

type fakeStorage struct{ devs []model.StorageDevice }

func (f fakeStorage) Devices(context.Context) ([]model.StorageDevice, error) { return f.devs, nil }

type fakeNetwork struct {
	ifaces []model.InterfaceInfo
	stats  map[string]model.TransferStats
}

func (f fakeNetwork) Interface(_ context.Context, name string) (model.InterfaceInfo, bool) {
	for _, i := range f.ifaces {
		if i.Name == name {
			return i, true
		}
	}
	return model.InterfaceInfo{}, false
}

func (f fakeNetwork) Interfaces(context.Context) ([]model.InterfaceInfo, error) { return f.ifaces, nil }

func (f fakeNetwork) Transferred(_ context.Context, name string) (model.TransferStats, error) {
	s, ok := f.stats[name]
	if !ok {
		return model.TransferStats{}, os.ErrNotExist
	}
	return s, nil
}

type fakeGeo struct {
	data geo.Data
	err  error
}

func (f fakeGeo) Lookup(context.Context, bool) (geo.Data, error) { return f.data, f.err }

type fakeGitHub struct {
	mu      sync.Mutex
	commits []github.Commit
	raw     string
	err     error
	calls   []string
}

func (f *fakeGitHub) Commits(_ context.Context, owner, repo, branch string) ([]github.Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, owner+"/"+repo+"@"+branch)
	return f.commits, f.err
}

func (f *fakeGitHub) RawFile(_ context.Context, owner, repo, ref, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "raw "+repo+"/"+path)
	return f.raw, f.err
}

// identityTr satisfies panel.Translator for helpers taking one.
type identityTr struct{}

func (identityTr) T(s string) string { return s }

func newTestEnv(t *testing.T, root string) *Env {
	t.Helper()
	fs := sysfs.New(root)
	branding, err := hw.LoadBranding(fs, "")
	if err != nil {
		t.Fatalf("LoadBranding: %v", err)
	}
	return &Env{FS: fs, Box: hw.NewBox(fs, branding)}
}

// collect runs src through one full collection phase.
func collect(t *testing.T, src panel.Source, runner console.Runner) (panel.State, []string) {
	t.Helper()
	c := panel.NewController(src)
	state := panel.Collect(context.Background(), c, runner)
	return state, c.Lines()
}

func assertLines(t *testing.T, lines []string, want ...string) {
	t.Helper()
	for _, w := range want {
		found := false
		for _, l := range lines {
			if l == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing line %q in:\n%s", w, strings.Join(lines, "\n"))
		}
	}
}

func assertNoPrefix(t *testing.T, lines []string, prefixes ...string) {
	t.Helper()
	for _, p := range prefixes {
		for _, l := range lines {
			if strings.HasPrefix(l, p) {
				t.Errorf("unexpected line %q", l)
			}
		}
	}
}
