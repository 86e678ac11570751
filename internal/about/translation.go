package about

import "github.com/tinytelemetry/boxinfo/internal/panel"

// Translation is the "Translations" pane crediting the active translation.
type Translation struct {
	env *Env
}

func NewTranslation(env *Env) *Translation { return &Translation{env: env} }

func (p *Translation) ID() string    { return "translation" }
func (p *Translation) Title() string { return "Translations" }

func (p *Translation) Open(b *panel.Builder) {
	info, name := "(N/A)", ""
	if t := p.env.Translations; t != nil {
		info, name = t.TranslatorInfo(), t.TranslatorName()
	}
	b.Lines(panel.SplitLines(info)...)
	if name != "" {
		b.Blank()
		b.Field("Translator: ", name)
	}
}
