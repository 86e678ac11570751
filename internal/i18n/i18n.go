// Package i18n localizes the fixed strings of the information panels.
// Translations ship as YAML files embedded in the binary and are served
// through a golang.org/x/text message catalog.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// translatorInfoKey is the message translators fill with free-form credits.
const translatorInfoKey = "TRANSLATOR_INFO"

type localeFile struct {
	Language string            `yaml:"language"`
	Header   map[string]string `yaml:"header"`
	Messages map[string]string `yaml:"messages"`
}

// Translator renders fixed strings in one language.
type Translator struct {
	mu      sync.Mutex // message.Printer is not safe for concurrent use
	tag     language.Tag
	printer *message.Printer
	header  map[string]string
	info    string
}

// New returns a translator for lang using the embedded locales.
func New(lang string) (*Translator, error) {
	return Load(locales, lang)
}

// Load builds a translator from the locales/*.yaml files in fsys. Unknown
// languages fall back to the closest available one, then English.
func Load(fsys fs.FS, lang string) (*Translator, error) {
	files, err := readLocales(fsys)
	if err != nil {
		return nil, err
	}

	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	tags := make([]language.Tag, 0, len(files))
	for _, f := range files {
		tag, err := language.Parse(f.Language)
		if err != nil {
			return nil, fmt.Errorf("i18n: locale %q: %w", f.Language, err)
		}
		tags = append(tags, tag)
		for key, msg := range f.Messages {
			if err := builder.SetString(tag, escape(key), escape(msg)); err != nil {
				return nil, fmt.Errorf("i18n: locale %q key %q: %w", f.Language, key, err)
			}
		}
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("i18n: no locales found")
	}

	requested, err := language.Parse(lang)
	if err != nil {
		requested = language.English
	}
	_, idx, _ := language.NewMatcher(tags).Match(requested)
	chosen := files[idx]

	return &Translator{
		tag:     tags[idx],
		printer: message.NewPrinter(tags[idx], message.Catalog(builder)),
		header:  chosen.Header,
		info:    chosen.Messages[translatorInfoKey],
	}, nil
}

// T translates msg; untranslated strings are returned unchanged.
func (t *Translator) T(msg string) string {
	if t == nil {
		return msg
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.printer.Sprintf(escape(msg))
}

// Language returns the BCP 47 tag in use.
func (t *Translator) Language() string { return t.tag.String() }

// Header returns a translation header field such as "Last-Translator".
func (t *Translator) Header(key string) string { return t.header[key] }

// TranslatorInfo returns the translator credits, or "(N/A)".
func (t *Translator) TranslatorInfo() string {
	if t.info == "" || t.info == translatorInfoKey {
		return "(N/A)"
	}
	return t.info
}

// TranslatorName is the Language-Team header, or Last-Translator when the
// team is not set.
func (t *Translator) TranslatorName() string {
	if name := t.header["Language-Team"]; name != "" && name != "none" {
		return name
	}
	return t.header["Last-Translator"]
}

// Languages lists the embedded locale tags, sorted.
func Languages() []string {
	files, err := readLocales(locales)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Language)
	}
	sort.Strings(out)
	return out
}

func readLocales(fsys fs.FS) ([]localeFile, error) {
	entries, err := fs.ReadDir(fsys, "locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: reading locales: %w", err)
	}
	var files []localeFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: reading %s: %w", e.Name(), err)
		}
		var f localeFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("i18n: parsing %s: %w", e.Name(), err)
		}
		if f.Language == "" {
			f.Language = strings.TrimSuffix(e.Name(), ".yaml")
		}
		files = append(files, f)
	}
	// The first tag is the matcher's default.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Language == "en" && files[j].Language != "en"
	})
	return files, nil
}

// escape keeps literal percent signs out of the printf machinery.
func escape(s string) string { return strings.ReplaceAll(s, "%", "%%") }
