package hw

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

// Box reads the identification of the set-top box from /proc/stb/info,
// /proc/cpuinfo and the image branding.
type Box struct {
	fs       sysfs.FS
	branding *Branding
	info     func(ctx context.Context) (*host.InfoStat, error)
	uptime   func(ctx context.Context) (uint64, error)
}

// NewBox returns a Box reading under fs.
func NewBox(fs sysfs.FS, branding *Branding) *Box {
	if branding == nil {
		branding = NewBranding(nil)
	}
	return &Box{
		fs:       fs,
		branding: branding,
		info:     host.InfoWithContext,
		uptime:   host.UptimeWithContext,
	}
}

// FS returns the filesystem the box is read from.
func (b *Box) FS() sysfs.FS { return b.fs }

// Branding returns the image build metadata.
func (b *Box) Branding() *Branding { return b.branding }

// Model is the box type, e.g. "vuultimo4k".
func (b *Box) Model() string {
	if v := b.branding.Get("box_type"); v != "" {
		return v
	}
	if v, ok := b.fs.ReadString("/proc/stb/info/vumodel"); ok {
		return "vu" + v
	}
	for _, p := range []string{"/proc/stb/info/boxtype", "/proc/stb/info/gbmodel", "/proc/stb/info/model"} {
		if v, ok := b.fs.ReadString(p); ok {
			return v
		}
	}
	return "unknown"
}

// Platform is the machine build the image was compiled for.
func (b *Box) Platform() string { return b.branding.GetOr("machinebuild", b.Model()) }

// ProcModel is the model name reported by the kernel driver.
func (b *Box) ProcModel() string {
	for _, p := range []string{"/proc/stb/info/hwmodel", "/proc/stb/info/boxtype", "/proc/stb/info/vumodel", "/proc/stb/info/model"} {
		if v, ok := b.fs.ReadString(p); ok {
			return v
		}
	}
	return b.branding.GetOr("machineprocmodel", b.Model())
}

// ProcType is the hardware type, or "unknown".
func (b *Box) ProcType() string { return b.fs.ReadOr("/proc/stb/info/type", "unknown") }

// HWSerial is the factory serial, or "unknown".
func (b *Box) HWSerial() string {
	for _, p := range []string{"/proc/stb/info/sn", "/proc/stb/info/serial"} {
		if v, ok := b.fs.ReadString(p); ok {
			return v
		}
	}
	return "unknown"
}

// RCType is the factory remote control type, or "unknown".
func (b *Box) RCType() string { return b.fs.ReadOr("/proc/stb/ir/rc/type", "unknown") }

// FPVersion is the front processor version, or "unknown".
func (b *Box) FPVersion() string { return b.fs.ReadOr("/proc/stb/fp/version", "unknown") }

// DVBAPI reports "New" when the multi-adapter device layout is present.
func (b *Box) DVBAPI() string {
	if b.fs.Exists("/dev/dvb/adapter0") {
		return "New"
	}
	return "Old"
}

// FlashType guesses the boot flash technology.
func (b *Box) FlashType() string {
	switch {
	case b.fs.Exists("/sys/block/mmcblk0"):
		return "eMMC"
	case b.fs.Exists("/proc/mtd"):
		return "NAND"
	default:
		return "unknown"
	}
}

// CPU parses /proc/cpuinfo.
func (b *Box) CPU() CPUInfo {
	data, err := b.fs.ReadFile("/proc/cpuinfo")
	if err != nil {
		return CPUInfo{}
	}
	return ParseCPUInfo(string(data))
}

// KernelVersion prefers the branding value over the running kernel's.
func (b *Box) KernelVersion(ctx context.Context) string {
	if v := b.branding.Get("kernelversion"); v != "" {
		return v
	}
	if info, err := b.info(ctx); err == nil && info.KernelVersion != "" {
		return info.KernelVersion
	}
	return "unknown"
}

// KernelArch is the native CPU architecture (uname -m).
func (b *Box) KernelArch(ctx context.Context) string {
	if info, err := b.info(ctx); err == nil && info.KernelArch != "" {
		return info.KernelArch
	}
	return b.branding.GetOr("imagearch", "unknown")
}

// Uptime renders the time since boot, e.g. "2 days 3 hours 5 minutes".
func (b *Box) Uptime(ctx context.Context) string {
	secs, err := b.uptime(ctx)
	if err != nil {
		if fields := strings.Fields(b.fs.ReadOr("/proc/uptime", "")); len(fields) > 0 {
			f, _ := strconv.ParseFloat(fields[0], 64)
			secs = uint64(f)
		}
	}
	return FormatUptime(time.Duration(secs) * time.Second)
}

// FormatUptime renders d in days, hours and minutes.
func FormatUptime(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	minutes := int(d/time.Minute) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	parts = append(parts, plural(minutes, "minute"))
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// CPUInfo is the subset of /proc/cpuinfo shown on the About pane.
type CPUInfo struct {
	Model    string
	Serial   string
	Cores    int
	MHz      string
	BogoMIPS string
}

var cpuBrands = []struct{ marker, brand string }{
	{"Broadcom", "Broadcom"},
	{"BMIPS", "Broadcom"},
	{"Brcm", "Broadcom"},
	{"Hisilicon", "HiSilicon"},
	{"hi37", "HiSilicon"},
	{"Amlogic", "Amlogic"},
	{"Meson", "Amlogic"},
	{"STi", "STMicroelectronics"},
	{"Sigma", "Sigma Designs"},
}

// Brand derives the vendor from the model string.
func (c CPUInfo) Brand() string {
	for _, b := range cpuBrands {
		if strings.Contains(strings.ToLower(c.Model), strings.ToLower(b.marker)) {
			return b.brand
		}
	}
	return "unknown"
}

// String renders "model, speed (cores)".
func (c CPUInfo) String() string {
	s := c.Model
	if s == "" {
		s = "unknown"
	}
	if c.MHz != "" {
		s += ", " + c.MHz + " MHz"
	}
	if c.Cores > 1 {
		s += fmt.Sprintf(" (%d cores)", c.Cores)
	}
	return s
}

// ParseCPUInfo extracts the model, serial, core count and clock.
func ParseCPUInfo(text string) CPUInfo {
	var c CPUInfo
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch strings.ToLower(k) {
		case "processor":
			if _, err := strconv.Atoi(v); err == nil {
				c.Cores++
			} else if c.Model == "" {
				c.Model = v
			}
		case "model name", "cpu model", "system type", "hardware":
			if c.Model == "" {
				c.Model = v
			}
		case "serial":
			c.Serial = v
		case "cpu mhz":
			if c.MHz == "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					c.MHz = strconv.Itoa(int(f + 0.5))
				}
			}
		case "bogomips":
			if c.BogoMIPS == "" {
				c.BogoMIPS = v
			}
		}
	}
	return c
}
