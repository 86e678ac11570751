package about

import (
	"context"
	"strconv"

	"github.com/tinytelemetry/boxinfo/internal/geo"
	"github.com/tinytelemetry/boxinfo/internal/panel"
)

// Geolocation is the "Geolocation Information" pane. The whole pane is the
// result of one lookup; without a connection it shows a single notice.
type Geolocation struct {
	env *Env
}

func NewGeolocation(env *Env) *Geolocation { return &Geolocation{env: env} }

func (p *Geolocation) ID() string    { return "geolocation" }
func (p *Geolocation) Title() string { return "Geolocation Information" }

func (p *Geolocation) Open(b *panel.Builder) {
	offline := b.T("Requires internet connection")
	if p.env.Geo == nil {
		b.Line(offline)
		return
	}

	// written by the fetch, read by the formatter after it returns
	var data geo.Data
	b.Fetch("geolocation", func(ctx context.Context) (string, error) {
		d, err := p.env.Geo.Lookup(ctx, true)
		data = d
		return "", err
	}, func(string) []string {
		return geolocationLines(b, data)
	}, panel.WithFailureText(offline))
}

func geolocationLines(b panel.Translator, d geo.Data) []string {
	field := func(label, v string) []string {
		if v == "" {
			return nil
		}
		return []string{b.T(label) + v}
	}
	var out []string
	out = append(out, b.T("Geolocation information"), "")
	out = append(out, field("Continent: ", d.Continent)...)
	out = append(out, field("Country: ", d.Country)...)
	out = append(out, field("State: ", d.RegionName)...)
	out = append(out, field("City: ", d.City)...)
	out = append(out, "")
	out = append(out, field("Timezone: ", d.Timezone)...)
	out = append(out, field("Currency: ", d.Currency)...)
	out = append(out, "")
	out = append(out, b.T("Latitude: ")+formatCoordinate(d.Lat))
	out = append(out, b.T("Longitude: ")+formatCoordinate(d.Lon))
	return out
}

// formatCoordinate prints the shortest exact decimal, always with a fraction.
func formatCoordinate(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	for _, c := range s {
		if c == '.' {
			return s
		}
	}
	return s + ".0"
}
