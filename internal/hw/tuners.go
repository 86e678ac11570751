// Package hw provides the host-backed implementations of the hardware
// collaborators the information panels consume: tuner enumeration,
// storage devices, network interfaces and image branding.
package hw

import (
	"bufio"
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

const nimSocketsPath = "/proc/bus/nim_sockets"

// dvbAPIVersionPath is exported by the box's dvb core driver.
const dvbAPIVersionPath = "/proc/stb/frontend/dvbapi"

type nimSocket struct {
	tuner  model.Tuner
	modes  []string
	fields map[string]string
}

// Tuners reads the frontend list from /proc/bus/nim_sockets.
type Tuners struct {
	fs sysfs.FS
}

// NewTuners returns a tuner lister reading under fs.
func NewTuners(fs sysfs.FS) *Tuners { return &Tuners{fs: fs} }

// Tuners returns the frontends ordered by slot.
func (t *Tuners) Tuners(ctx context.Context) ([]model.Tuner, error) {
	sockets, err := t.sockets()
	if err != nil {
		return nil, err
	}
	out := make([]model.Tuner, 0, len(sockets))
	for _, s := range sockets {
		out = append(out, s.tuner)
	}
	return out, nil
}

// Capabilities renders the capability text of every frontend, headed by
// the DVB API version line.
func (t *Tuners) Capabilities(ctx context.Context) (string, error) {
	sockets, err := t.sockets()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "DVB API version: %s\n", t.fs.ReadOr(dvbAPIVersionPath, "unknown"))
	for _, s := range sockets {
		caps := append([]string{}, s.modes...)
		if s.tuner.Type != "" && !slices.Contains(caps, s.tuner.Type) {
			caps = append([]string{s.tuner.Type}, caps...)
		}
		if strings.EqualFold(s.fields["Multistream"], "yes") {
			caps = append(caps, "MULTISTREAM")
		}
		if annex := s.fields["Annex"]; annex != "" {
			for _, a := range strings.Split(annex, ",") {
				caps = append(caps, "ANNEX_"+strings.ToUpper(strings.TrimSpace(a)))
			}
		}
		fmt.Fprintf(&b, "Frontend %d: %s\n", s.tuner.Slot, strings.Join(caps, " "))
	}
	return b.String(), nil
}

func (t *Tuners) sockets() ([]nimSocket, error) {
	data, err := t.fs.ReadFile(nimSocketsPath)
	if err != nil {
		return nil, fmt.Errorf("hw: reading nim sockets: %w", err)
	}
	return parseNimSockets(string(data)), nil
}

func parseNimSockets(text string) []nimSocket {
	var (
		out []nimSocket
		cur *nimSocket
	)
	flush := func() {
		if cur != nil {
			if cur.tuner.Type == "" && len(cur.modes) > 0 {
				cur.tuner.Type = strings.Join(cur.modes, "/")
			}
			out = append(out, *cur)
		}
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "NIM Socket ") {
			flush()
			slot, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(trimmed, "NIM Socket "), ":"))
			if err != nil {
				cur = nil
				continue
			}
			cur = &nimSocket{tuner: model.Tuner{Slot: slot}, fields: map[string]string{}}
			continue
		}
		if cur == nil {
			continue
		}
		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch {
		case key == "Type":
			cur.tuner.Type = value
		case key == "Name":
			cur.tuner.Name = value
		case strings.HasPrefix(key, "Mode "):
			cur.modes = append(cur.modes, value)
		default:
			cur.fields[key] = value
		}
	}
	flush()

	sort.SliceStable(out, func(i, j int) bool { return out[i].tuner.Slot < out[j].tuner.Slot })
	return out
}

// CompressTuners renders one line per run of consecutive tuners with the
// same description: "Tuner A-B: desc" or "Tuner A: desc".
func CompressTuners(tuners []model.Tuner) []string {
	var out []string
	for i := 0; i < len(tuners); {
		j := i
		for j+1 < len(tuners) && tuners[j+1].Description() == tuners[i].Description() {
			j++
		}
		if i == j {
			out = append(out, fmt.Sprintf("Tuner %s: %s", tuners[i].Label(), tuners[i].Description()))
		} else {
			out = append(out, fmt.Sprintf("Tuner %s-%s: %s", tuners[i].Label(), tuners[j].Label(), tuners[i].Description()))
		}
		i = j + 1
	}
	return out
}

// ListTuners renders one "Tuner X: desc" line per tuner.
func ListTuners(tuners []model.Tuner) []string {
	out := make([]string, 0, len(tuners))
	for _, t := range tuners {
		out = append(out, fmt.Sprintf("Tuner %s: %s", t.Label(), t.Description()))
	}
	return out
}
