package about

import (
	"context"
	"strings"

	"github.com/tinytelemetry/boxinfo/internal/panel"
)

const revisionConfPath = "meta-openvision/conf/distro/revision.conf"

// hiSiliconPackages are the vendor packages whose versions are listed on
// HiSilicon boxes, in display order.
var hiSiliconPackages = []struct{ pkg, label string }{
	{"grab", "Grab: "},
	{"hihalt", "Halt: "},
	{"libs", "Libs: "},
	{"partitions", "Partitions: "},
	{"reader", "Reader: "},
	{"showiframe", "Showiframe: "},
}

// Vision is the "Open Vision Information" pane: image, remote control and
// flash layout details.
type Vision struct {
	env *Env
}

func NewVision(env *Env) *Vision { return &Vision{env: env} }

func (p *Vision) ID() string    { return "vision" }
func (p *Vision) Title() string { return "Open Vision Information" }

func (p *Vision) Open(b *panel.Builder) {
	fs := p.env.FS
	brand := p.env.branding()
	box := p.env.box()

	b.Line(b.T("Open Vision information"))
	b.Blank()

	version := fs.ReadOr("/etc/openvision/visionversion", brand.Get("visionversion"))
	b.Field("Open Vision version: ", version)

	revision := fs.ReadOr("/etc/openvision/visionrevision", brand.Get("visionrevision"))
	revisionLine := func(latest string) []string {
		return []string{b.T("Open Vision revision: ") + revision + " " + b.T("(Latest revision on github: ") + latest + ")"}
	}
	if !p.env.UpdateCheck || p.env.GitHub == nil {
		b.Lines(revisionLine(b.T("Disabled in configuration"))...)
	} else {
		repo := oeRepo(version)
		offline := revisionLine(b.T("Requires internet connection"))[0]
		b.Fetch("revision", func(ctx context.Context) (string, error) {
			return p.env.GitHub.RawFile(ctx, githubOwner, repo, "develop", revisionConfPath)
		}, func(out string) []string {
			latest := ParseRevision(out)
			if latest == "" {
				return []string{offline}
			}
			return revisionLine(latest)
		}, panel.WithFailureText(offline))
	}

	if lang, ok := fs.ReadString("/etc/openvision/visionlanguage"); ok {
		b.Field("Open Vision language: ", lang)
	}
	b.Field("Open Vision module: ", brand.GetOr("visionmodule", "unknown"))

	multiboot := true
	if flag, ok := fs.ReadString("/etc/openvision/multiboot"); ok {
		multiboot = flag == "1"
	}
	b.Field("Soft multiboot: ", yesNo(b, multiboot))
	b.Field("Flash type: ", box.FlashType())

	b.Blank()
	switch rc := box.RCType(); {
	case rc != "unknown":
		b.Field("Factory RC type: ", rc)
	case fs.Exists("/usr/bin/remotecfg"):
		b.Field("RC type: ", b.T("Amlogic remote"))
	case fs.Exists("/usr/sbin/lircd"):
		b.Field("RC type: ", b.T("LIRC remote"))
	}
	b.Field("Open Vision RC type: ", brand.Get("rctype"))
	b.Field("Open Vision RC name: ", brand.Get("rcname"))
	b.Field("Open Vision RC ID number: ", brand.Get("rcidnum"))

	b.Blank()
	if brand.Bool("hisilicon") || fs.Exists("/proc/hisi") {
		b.Line(b.T("HiSilicon dedicated information"))
		for _, hp := range hiSiliconPackages {
			label, pkg := b.T(hp.label), hp.pkg
			b.Exec("opkg list-installed | grep -- -"+pkg+" | cut -f4 -d'-'", func(out string) []string {
				v := strings.TrimSpace(out)
				if v == "" || (pkg == "grab" && v == "r0") {
					return nil
				}
				return []string{label + v}
			}, panel.IgnoreExitStatus(), panel.WithTag("opkg "+pkg))
		}
		b.Blank()
	}

	b.Field("Image architecture: ", brand.Get("imagearch"))
	optional(b, "Image folder: ", brand.Get("imagefolder"))
	optional(b, "Image file system: ", brand.Get("imagefilesystem"))
	b.Field("Image: ", brand.Get("imagedistro"))
	b.Field("Feed URL: ", brand.Get("feedsurl"))
	b.Field("Compiled by: ", brand.Get("developername"))
	b.Field("Build date: ", brand.Get("builddate"))
	b.Field("OE: ", brand.Get("imagebuild"))

	b.Blank()
	optional(b, "FPU: ", brand.Get("imagefpu"))
	if brand.Get("imagearch") == "aarch64" {
		b.Field("MultiLib: ", yesNo(b, brand.Bool("havemultilib")))
	}

	b.Blank()
	optional(b, "MTD boot: ", brand.Get("machinemtdboot"))
	optional(b, "MTD root: ", brand.Get("machinemtdroot"))
	optional(b, "MTD kernel: ", brand.Get("machinemtdkernel"))
	optional(b, "Root file: ", brand.Get("machinerootfile"))
	optional(b, "Kernel file: ", brand.Get("machinekernelfile"))
	optional(b, "MKUBIFS: ", brand.Get("machinemkubifs"))
	optional(b, "UBINIZE: ", brand.Get("machineubinize"))

	b.Blank()
	if id, ok := fs.ReadString("/proc/device-tree/amlogic-dt-id"); ok {
		b.Field("Device id: ", id)
	}
	if id, ok := fs.ReadString("/proc/device-tree/le-dt-id"); ok {
		b.Field("Given device id: ", id)
	}
}

// ParseRevision extracts the revision number from revision.conf: the
// three characters after the first "r".
func ParseRevision(conf string) string {
	_, after, ok := strings.Cut(conf, "r")
	if !ok {
		return ""
	}
	if len(after) > 3 {
		after = after[:3]
	}
	return strings.TrimSpace(after)
}

func oeRepo(visionVersion string) string {
	if strings.HasPrefix(visionVersion, "10") {
		return "openvision-development-platform"
	}
	return "openvision-oe"
}

func optional(b *panel.Builder, label, value string) {
	if value != "" {
		b.Field(label, value)
	}
}
