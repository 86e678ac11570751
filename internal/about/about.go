package about

import (
	"context"
	"fmt"
	"strings"

	"github.com/tinytelemetry/boxinfo/internal/hw"
	"github.com/tinytelemetry/boxinfo/internal/panel"
)

const moduleLayoutCommand = `find /lib/modules/ -type f -name "openvision.ko" -exec modprobe --dump-modversions {} \; | grep "module_layout" | cut -c-11`

// About is the main "About Information" pane.
type About struct {
	env *Env
}

// NewAbout returns the main information panel.
func NewAbout(env *Env) *About { return &About{env: env} }

func (p *About) ID() string    { return "about" }
func (p *About) Title() string { return "About Information" }

func (p *About) Open(b *panel.Builder) {
	ctx := context.Background()
	box := p.env.box()
	brand := box.Branding()
	fs := p.env.FS
	cpu := box.CPU()

	boxModel := box.Model()
	b.Field("Hardware: ", boxModel)
	if platform := box.Platform(); platform != boxModel {
		b.Field("Platform: ", platform)
	}
	if proc := box.ProcModel(); proc != boxModel {
		b.Field("Proc model: ", proc)
	}
	if t := box.ProcType(); t != "unknown" {
		b.Field("Hardware type: ", t)
	}
	if serial := box.HWSerial(); serial != "unknown" {
		b.Field("Hardware serial: ", serial)
	} else {
		b.Field("Hardware serial: ", orUnknown(cpu.Serial))
	}
	if release, ok := fs.ReadString("/proc/stb/info/release"); ok {
		b.Field("Factory release: ", release)
	}
	b.Field("Brand/Meta: ", brand.GetOr("machinebrand", "unknown"))

	b.Blank()
	b.Field("CPU: ", cpu.String())
	b.Field("CPU brand: ", cpu.Brand())
	if soc := brand.Get("socfamily"); soc != "" {
		b.Field("SoC family: ", soc)
	}
	b.Field("CPU architecture: ", box.KernelArch(ctx))

	b.Blank()
	if id, ok := fs.ReadString("/proc/sys/kernel/random/boot_id"); ok {
		b.Field("Boot ID: ", id)
	}
	if id, ok := fs.ReadString("/proc/sys/kernel/random/uuid"); ok {
		b.Field("UUID: ", id)
	}

	if display := brand.Get("displaytype"); display != "" && !strings.HasPrefix(display, " ") {
		b.Blank()
		b.Field("Display type: ", display)
	}

	b.Blank()
	b.Field("Enigma2 version: ", EnigmaVersion(brand.Get("enigmaversion")))
	b.Field("Enigma2 revision: ", brand.GetOr("e2rev", "unknown"))
	b.Field("Last update: ", brand.GetOr("lastupdate", "unknown"))
	if ms, ok := fs.ReadString("/etc/openvision/mediaservice"); ok {
		b.Field("Media service: ", strings.ReplaceAll(ms, "enigma2-plugin-systemplugins-", ""))
	}

	b.Blank()
	b.Field("Drivers version: ", brand.GetOr("driverdate", "unknown"))
	b.Field("Kernel version: ", box.KernelVersion(ctx))
	layoutLabel := b.T("Kernel module layout: ")
	na := layoutLabel + b.T("N/A")
	b.Exec(moduleLayoutCommand, func(out string) []string {
		if layout := strings.TrimSpace(out); layout != "" {
			return []string{layoutLabel + layout}
		}
		return []string{na}
	}, panel.WithFailureText(na), panel.IgnoreExitStatus())

	b.Blank()
	b.Field("GStreamer version: ", strings.TrimSpace(strings.ReplaceAll(brand.GetOr("gstreamer", "unknown"), "GStreamer", "")))
	b.Field("FFmpeg version: ", brand.GetOr("ffmpeg", "unknown"))

	if fp := box.FPVersion(); fp != "unknown" {
		b.Blank()
		b.Field("Front processor version: ", fp)
	}

	b.Blank()
	b.Line(b.T("Detected NIMs:"))
	if p.env.Tuners != nil {
		if tuners, err := p.env.Tuners.Tuners(ctx); err == nil {
			b.Lines(hw.CompressTuners(tuners)...)
		}
	}

	b.Blank()
	b.Line(b.T("Detected HDD:"))
	b.Lines(p.hddLines(ctx, b)...)

	b.Blank()
	b.Line(b.T("Network Info:"))
	if p.env.Network != nil {
		if ifaces, err := p.env.Network.Interfaces(ctx); err == nil {
			for _, ifc := range ifaces {
				b.Line(ifc.Name + ": " + ifc.Addr)
			}
		}
	}

	b.Blank()
	b.Line(b.T("Uptime") + ": " + box.Uptime(ctx))
}

func (p *About) hddLines(ctx context.Context, b *panel.Builder) []string {
	if p.env.Storage == nil {
		return []string{b.T("none")}
	}
	devs, err := p.env.Storage.Devices(ctx)
	if err != nil || len(devs) == 0 {
		return []string{b.T("none")}
	}
	var out []string
	for _, d := range devs {
		free, unit := float64(d.FreeMB), "M"
		if d.FreeMB > 1024 {
			free, unit = free/1024.0, "G"
		}
		out = append(out, d.Model, fmt.Sprintf("(%s, %.1f %sB %s)", d.Capacity, free, unit, b.T("free")))
	}
	return out
}

// EnigmaVersion renders "2021-03-15-develop" as "2021-03-15 (develop)".
// A second suffix is shown first: "2021-03-15-dev-x" gives "2021-03-15 (x-dev)".
func EnigmaVersion(v string) string {
	if v == "" {
		return "unknown"
	}
	parts := strings.Split(v, "-")
	if len(parts) <= 3 {
		return v
	}
	date := strings.Join(parts[:3], "-")
	rest := parts[3:]
	if len(rest) == 2 {
		return fmt.Sprintf("%s (%s-%s)", date, rest[1], rest[0])
	}
	return fmt.Sprintf("%s (%s)", date, strings.Join(rest, "-"))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
