package about

import (
	"context"
	"strings"

	"github.com/tinytelemetry/boxinfo/internal/panel"
)

// DVB is the "DVB Information" pane: frontend capabilities by delivery system.
type DVB struct {
	env *Env
}

func NewDVB(env *Env) *DVB { return &DVB{env: env} }

func (p *DVB) ID() string    { return "dvb" }
func (p *DVB) Title() string { return "DVB Information" }

func (p *DVB) Open(b *panel.Builder) {
	box := p.env.box()
	brand := box.Branding()

	b.Line(b.T("DVB information"))
	b.Blank()
	b.Field("DVB API: ", box.DVBAPI())

	var caps string
	if p.env.Tuners != nil {
		caps, _ = p.env.Tuners.Capabilities(context.Background())
	}
	first, _, _ := strings.Cut(caps, "\n")
	b.Field("DVB API version: ", strings.TrimSpace(strings.Replace(first, "DVB API version: ", "", 1)))

	has := func(markers ...string) string {
		for _, m := range markers {
			if strings.Contains(caps, m) {
				return b.T("Yes")
			}
		}
		return b.T("No")
	}

	b.Blank()
	b.Field("Transcoding: ", yesNo(b, brand.Bool("havetranscoding")))
	b.Field("MultiTranscoding: ", yesNo(b, brand.Bool("havemultitranscoding")))

	b.Blank()
	b.Field("DVB-C: ", has("DVBC", "DVB-C"))
	b.Field("DVB-S: ", has("DVBS", "DVB-S"))
	b.Field("DVB-T: ", has("DVBT", "DVB-T"))

	b.Blank()
	b.Field("Multistream: ", has("MULTISTREAM"))

	b.Blank()
	b.Field("ANNEX-A: ", has("ANNEX_A", "ANNEX-A"))
	b.Field("ANNEX-B: ", has("ANNEX_B", "ANNEX-B"))
	b.Field("ANNEX-C: ", has("ANNEX_C", "ANNEX-C"))
}
