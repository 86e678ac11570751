package about

import (
	"context"
	"strings"
	"sync"

	"github.com/tinytelemetry/boxinfo/internal/github"
	"github.com/tinytelemetry/boxinfo/internal/panel"
)

const githubOwner = "OpenVisionE2"

// CommitLogDateFormat is the timestamp layout of commit log entries.
const CommitLogDateFormat = "01/02/06 15:04:05"

type project struct {
	repo   string
	branch string
	title  string
}

// Commits is the "Latest Commits" pane. It pages through the image's
// source repositories; each log is fetched once and then served from cache.
type Commits struct {
	env *Env

	mu       sync.Mutex
	projects []project
	current  int
	cache    map[string][]string
}

// NewCommits returns the commit log panel. The Enigma2 branch is taken
// from the Enigma version and the OE repository from the image version.
func NewCommits(env *Env) *Commits {
	brand := env.branding()
	version := env.FS.ReadOr("/etc/openvision/visionversion", brand.Get("visionversion"))
	return &Commits{
		env: env,
		projects: []project{
			{"enigma2-openvision", EnigmaBranch(brand.Get("enigmaversion")), "Enigma2 - Vision"},
			{oeRepo(version), "", "OE - Vision"},
			{"enigma2-plugins", "", "Enigma2 plugins"},
			{"alliance-plugins", "", "Alliance plugins"},
			{"OpenWebif", "", "Open WebIF"},
			{"openvision-core-plugin", "", "Vision core plugin"},
			{"BackupSuite", "", "Backup Suite plugin"},
			{"OctEtFHD-skin", "", "OctEtFHD skin"},
		},
		cache: make(map[string][]string),
	}
}

func (p *Commits) ID() string    { return "commits" }
func (p *Commits) Title() string { return "Latest Commits" }

// Next selects the following project, wrapping around.
func (p *Commits) Next() {
	p.mu.Lock()
	p.current = (p.current + 1) % len(p.projects)
	p.mu.Unlock()
}

// Prev selects the previous project, wrapping around.
func (p *Commits) Prev() {
	p.mu.Lock()
	p.current = (p.current + len(p.projects) - 1) % len(p.projects)
	p.mu.Unlock()
}

func (p *Commits) Current() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, len(p.projects)
}

// Project returns the title of the selected project.
func (p *Commits) Project() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.projects[p.current].title
}

func (p *Commits) Open(b *panel.Builder) {
	p.mu.Lock()
	proj := p.projects[p.current]
	cached, ok := p.cache[proj.title]
	p.mu.Unlock()

	if ok {
		b.Lines(cached...)
		return
	}

	header := []string{strings.Repeat("-", 80), proj.repo, strings.Repeat("-", 80)}
	b.Lines(header...)
	if p.env.GitHub == nil {
		b.Line(b.T("Currently the commit log cannot be retrieved - please try later again"))
		return
	}

	var commits []github.Commit
	b.Fetch("commits "+proj.repo, func(ctx context.Context) (string, error) {
		list, err := p.env.GitHub.Commits(ctx, githubOwner, proj.repo, proj.branch)
		commits = list
		return "", err
	}, func(string) []string {
		body := CommitLog(commits)
		p.mu.Lock()
		p.cache[proj.title] = append(append([]string{}, header...), body...)
		p.mu.Unlock()
		return body
	}, panel.WithFailureText(b.T("Currently the commit log cannot be retrieved - please try later again")))
}

// CommitLog renders "date author", the message and a blank line per commit.
func CommitLog(commits []github.Commit) []string {
	var out []string
	for _, c := range commits {
		out = append(out, c.Date.Format(CommitLogDateFormat)+" "+c.Author)
		out = append(out, strings.Split(strings.TrimRight(c.Message, "\n"), "\n")...)
		out = append(out, "")
	}
	return out
}

// EnigmaBranch is the branch encoded after the date in the Enigma version
// ("2021-03-15-develop" gives "develop"), or "".
func EnigmaBranch(enigmaVersion string) string {
	parts := strings.Split(enigmaVersion, "-")
	if len(parts) <= 3 {
		return ""
	}
	return strings.Join(parts[3:], "-")
}
