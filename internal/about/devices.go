package about

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tinytelemetry/boxinfo/internal/hw"
	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/panel"
)

const networkMountsCommand = "df -mh | grep -v '^Filesystem'"

// Devices is the "Device Information" pane: tuners, local storage and
// mounted network shares.
type Devices struct {
	env *Env
}

func NewDevices(env *Env) *Devices { return &Devices{env: env} }

func (p *Devices) ID() string    { return "devices" }
func (p *Devices) Title() string { return "Device Information" }

func (p *Devices) Open(b *panel.Builder) {
	ctx := context.Background()

	b.Line(b.T("Detected tuners:"))
	var tuners []string
	if p.env.Tuners != nil {
		if list, err := p.env.Tuners.Tuners(ctx); err == nil {
			tuners = hw.CompressTuners(list)
		}
	}
	if len(tuners) == 0 {
		tuners = []string{b.T("none")}
	}
	b.Lines(tuners...)

	b.Blank()
	b.Line(b.T("Detected devices:"))
	var devs []model.StorageDevice
	if p.env.Storage != nil {
		devs, _ = p.env.Storage.Devices(ctx)
	}
	lines := StorageLines(b, devs)
	if len(lines) == 0 {
		lines = []string{b.T("none")}
	}
	b.Lines(lines...)

	b.Blank()
	b.Line(b.T("Network servers:"))
	fs := p.env.FS
	mounts := func(out string) []string {
		lines := NetworkMounts(b, out)
		for _, entry := range fs.List("/media/autofs") {
			lines = append(lines, " /media/autofs/"+entry+" ")
		}
		if len(lines) == 0 {
			return []string{b.T("none")}
		}
		return lines
	}
	b.Exec(networkMountsCommand, mounts, panel.IgnoreExitStatus())
}

// StorageLines renders one "<device>      Free: <n><unit>" line per device.
// Generic card-reader slots without media are skipped.
func StorageLines(b panel.Translator, devs []model.StorageDevice) []string {
	var out []string
	for _, d := range devs {
		name := hw.DeviceName(d)
		if d.FreeMB == 0 && strings.Contains(name, "Generic(STORAGE") {
			continue
		}
		out = append(out, fmt.Sprintf("%s      %s", name, FreeSpace(b, d.FreeMB)))
	}
	return out
}

// FreeSpace renders free megabytes with TB/GB/MB at 1024 thresholds,
// rounded to two decimals; zero is "full".
func FreeSpace(b panel.Translator, freeMB uint64) string {
	free := float64(freeMB)
	switch {
	case free/1024/1024 >= 1:
		return b.T("Free: ") + round2(free/1024/1024) + b.T("TB")
	case freeMB >= 1024:
		return b.T("Free: ") + round2(free/1024) + b.T("GB")
	case freeMB >= 1:
		return b.T("Free: ") + strconv.FormatUint(freeMB, 10) + b.T("MB")
	default:
		return b.T("Free: ") + b.T("full")
	}
}

func round2(v float64) string {
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// NetworkMounts picks the CIFS/NFS shares on 192.* hosts out of df output.
func NetworkMounts(b panel.Translator, dfOutput string) []string {
	// df wraps long filesystem names onto their own line
	dfOutput = strings.ReplaceAll(dfOutput, "\n                        ", " ")
	var out []string
	for _, line := range strings.Split(dfOutput, "\n") {
		parts := strings.Fields(line)
		if len(parts) < 4 {
			continue
		}
		if !strings.HasPrefix(parts[0], "192") && !strings.HasPrefix(parts[0], "//192") {
			continue
		}
		out = append(out, fmt.Sprintf("%s (%sB, %sB %s)", parts[0], parts[1], parts[3], b.T("free")))
	}
	return out
}
