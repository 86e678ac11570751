// Package about implements the diagnostic panels of the box: each panel
// is a panel.Source that reads small OS files synchronously and schedules
// shell commands or network fetches whose results fill the pane later.
package about

import (
	"context"

	"github.com/tinytelemetry/boxinfo/internal/console"
	"github.com/tinytelemetry/boxinfo/internal/geo"
	"github.com/tinytelemetry/boxinfo/internal/github"
	"github.com/tinytelemetry/boxinfo/internal/hw"
	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/panel"
	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

// GeoLocator resolves the public address of the box.
type GeoLocator interface {
	Lookup(ctx context.Context, useCache bool) (geo.Data, error)
}

// CommitFetcher lists recent commits and reads raw repository files.
type CommitFetcher interface {
	Commits(ctx context.Context, owner, repo, branch string) ([]github.Commit, error)
	RawFile(ctx context.Context, owner, repo, ref, path string) (string, error)
}

// TranslationInfo describes the active translation.
type TranslationInfo interface {
	TranslatorInfo() string
	TranslatorName() string
}

// Env carries the collaborators every panel reads from. Nil collaborators
// are tolerated; the lines depending on them are omitted.
type Env struct {
	FS           sysfs.FS
	Box          *hw.Box
	Tuners       model.TunerLister
	Storage      model.StorageLister
	Network      model.NetworkQuerier
	Geo          GeoLocator
	GitHub       CommitFetcher
	Translations TranslationInfo
	Runner       console.Runner

	// UpdateCheck enables the latest-revision lookup on the vision panel.
	UpdateCheck bool
	// MemoryRows is the number of meminfo rows in the left column.
	MemoryRows int
}

func (e *Env) box() *hw.Box {
	if e.Box == nil {
		return hw.NewBox(e.FS, nil)
	}
	return e.Box
}

func (e *Env) branding() *hw.Branding { return e.box().Branding() }

// Cycler is implemented by panels that page through several views.
type Cycler interface {
	Next()
	Prev()
	// Current returns the zero-based position and the number of views.
	Current() (int, int)
}

// Panels returns every panel in menu order.
func Panels(env *Env) []panel.Source {
	return []panel.Source{
		NewAbout(env),
		NewVision(env),
		NewDVB(env),
		NewGeolocation(env),
		NewDevices(env),
		NewNetwork(env),
		NewSystemMemory(env),
		NewMemory(env),
		NewCommits(env),
		NewTroubleshoot(env),
		NewTranslation(env),
		NewBenchmark(env),
	}
}

// Find returns the panel with the given id.
func Find(panels []panel.Source, id string) (panel.Source, bool) {
	for _, p := range panels {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

func yesNo(b panel.Translator, v bool) string {
	if v {
		return b.T("Yes")
	}
	return b.T("No")
}
