package hw

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

const imageVersionPath = "/etc/image-version"

// Branding holds the image build metadata: the key=value pairs of
// /etc/image-version, overlaid with an optional YAML override file.
// Keys are case-insensitive.
type Branding struct {
	values map[string]string
}

// NewBranding returns branding backed by values.
func NewBranding(values map[string]string) *Branding {
	b := &Branding{values: make(map[string]string, len(values))}
	for k, v := range values {
		b.values[strings.ToLower(k)] = v
	}
	return b
}

// LoadBranding reads /etc/image-version under root and applies the YAML
// overrides at overridePath (a host path; empty or missing is fine).
func LoadBranding(root sysfs.FS, overridePath string) (*Branding, error) {
	b := NewBranding(nil)
	if data, err := root.ReadFile(imageVersionPath); err == nil {
		b.parseImageVersion(string(data))
	}

	if overridePath == "" {
		return b, nil
	}
	data, err := os.ReadFile(overridePath)
	if errors.Is(err, fs.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hw: reading branding overrides: %w", err)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("hw: parsing branding overrides %s: %w", overridePath, err)
	}
	for k, v := range overrides {
		b.values[strings.ToLower(k)] = v
	}
	return b, nil
}

func (b *Branding) parseImageVersion(text string) {
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		b.values[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
}

// Get returns the value for key, or "".
func (b *Branding) Get(key string) string {
	if b == nil {
		return ""
	}
	return b.values[strings.ToLower(key)]
}

// GetOr returns the value for key, or fallback when it is unset.
func (b *Branding) GetOr(key, fallback string) string {
	if v := b.Get(key); v != "" {
		return v
	}
	return fallback
}

// Bool reports whether key is set to "True" (any case) or "1".
func (b *Branding) Bool(key string) bool {
	v := strings.ToLower(b.Get(key))
	return v == "true" || v == "1" || v == "yes"
}
