package config

import (
	"fmt"

	"github.com/tinytelemetry/boxinfo/internal/about"
	"github.com/tinytelemetry/boxinfo/internal/console"
	"github.com/tinytelemetry/boxinfo/internal/geo"
	"github.com/tinytelemetry/boxinfo/internal/github"
	"github.com/tinytelemetry/boxinfo/internal/hw"
	"github.com/tinytelemetry/boxinfo/internal/i18n"
	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

// Env wires the panel collaborators described by c. The translator is
// returned separately for the controllers.
func (c Config) Env() (*about.Env, *i18n.Translator, error) {
	fs := sysfs.New(c.Root)

	branding, err := hw.LoadBranding(fs, c.BrandingFile)
	if err != nil {
		return nil, nil, err
	}

	tr, err := i18n.New(c.Language)
	if err != nil {
		return nil, nil, fmt.Errorf("loading language %q: %w", c.Language, err)
	}

	gh, err := github.NewClient(github.Config{Token: c.GitHubToken, Timeout: c.NetworkTimeout})
	if err != nil {
		return nil, nil, err
	}

	env := &about.Env{
		FS:           fs,
		Box:          hw.NewBox(fs, branding),
		Tuners:       hw.NewTuners(fs),
		Storage:      hw.NewStorage(fs),
		Network:      hw.NewNetwork(),
		Geo:          geo.New(geo.Config{Timeout: c.NetworkTimeout, CachePath: c.GeoCachePath}),
		GitHub:       gh,
		Translations: tr,
		Runner:       console.Shell{},
		UpdateCheck:  c.UpdateCheck,
		MemoryRows:   c.MemoryRows,
	}
	return env, tr, nil
}
