package about

import (
	"context"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tinytelemetry/boxinfo/internal/geo"
	"github.com/tinytelemetry/boxinfo/internal/panel"
)

// networkInterfaces are probed in order; the last one configured is the
// interface whose counters, speed and wireless status are shown.
var networkInterfaces = []string{"eth0", "eth1", "ra0", "wlan0", "wlan3"}

var wirelessInterfaces = []string{"ra0", "wlan0", "wlan3"}

// Network is the "Network Information" pane.
type Network struct {
	env *Env
}

func NewNetwork(env *Env) *Network { return &Network{env: env} }

func (p *Network) ID() string    { return "network" }
func (p *Network) Title() string { return "Network Information" }

func (p *Network) Open(b *panel.Builder) {
	ctx := context.Background()
	iface := "eth0"

	if p.env.Network != nil {
		for _, name := range networkInterfaces {
			info, ok := p.env.Network.Interface(ctx, name)
			if !ok || info.Addr == "" {
				continue
			}
			b.Line(b.T("IP:") + "\t" + info.Addr)
			if info.Netmask != "" {
				b.Line(b.T("Netmask:") + "\t" + info.Netmask)
			}
			if info.HardwareAddr != "" {
				b.Line(b.T("MAC:") + "\t" + info.HardwareAddr)
			}
			iface = name
		}

		if stats, err := p.env.Network.Transferred(ctx, iface); err == nil {
			b.Blank()
			b.Line(b.T("Bytes received:") + "\t" + byteCount(stats.RxBytes))
			b.Line(b.T("Bytes sent:") + "\t" + byteCount(stats.TxBytes))
		}
	}

	b.Blank()
	if p.env.Geo != nil {
		var data geo.Data
		b.Fetch("geolocation", func(ctx context.Context) (string, error) {
			d, err := p.env.Geo.Lookup(ctx, true)
			data = d
			return "", err
		}, func(string) []string {
			return ispLines(b, data)
		}, panel.WithFailureText(b.T("Requires internet connection")))
	}

	b.Blank()
	speedLabel, mbps := b.T("Speed:"), b.T("Mb/s")
	b.Exec("ethtool "+iface, func(out string) []string {
		if speed := EthtoolSpeed(out); speed != "" {
			return []string{speedLabel + "\t" + speed + mbps}
		}
		return nil
	}, panel.IgnoreExitStatus())

	if host, ok := p.env.FS.ReadString("/proc/sys/kernel/hostname"); ok {
		b.Line(b.T("Hostname:") + "\t" + host)
	}

	if slices.Contains(wirelessInterfaces, iface) {
		b.Blank()
		b.Exec("iwconfig "+iface, func(out string) []string {
			return WirelessLines(b, ParseIwconfig(out))
		}, panel.WithFailureText(b.T("Unknown")))
	}
}

func ispLines(b panel.Translator, d geo.Data) []string {
	var out []string
	if d.ISP != "" {
		if d.Org != "" {
			out = append(out, b.T("ISP: ")+d.ISP+" ("+d.Org+")")
		} else {
			out = append(out, b.T("ISP: ")+d.ISP)
		}
	}
	out = append(out, b.T("Mobile: ")+yesNo(b, d.Mobile))
	out = append(out, b.T("Proxy: ")+yesNo(b, d.Proxy))
	if d.Query != "" {
		out = append(out, b.T("Public IP: ")+d.Query)
	}
	return out
}

func byteCount(n uint64) string {
	return strconv.FormatUint(n, 10) + " (" + humanize.IBytes(n) + ")"
}

// EthtoolSpeed returns the numeric link speed from ethtool output
// ("Speed: 100Mb/s" gives "100"), or "".
func EthtoolSpeed(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Speed:") {
			continue
		}
		_, v, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		return strings.TrimSuffix(v, "Mb/s")
	}
	return ""
}

// WirelessStatus is the link state reported by iwconfig. Empty fields were
// not reported.
type WirelessStatus struct {
	AccessPoint string
	ESSID       string
	Quality     string
	Bitrate     string
	Signal      string
	Encryption  string
}

var (
	reESSID       = regexp.MustCompile(`ESSID:(?:"([^"]*)"|(\S+))`)
	reAccessPoint = regexp.MustCompile(`Access Point:\s*(\S+)`)
	reBitrate     = regexp.MustCompile(`Bit Rate[=:]\s*([\d.]+)`)
	reQuality     = regexp.MustCompile(`Link Quality[=:]\s*(\S+)`)
	reSignal      = regexp.MustCompile(`Signal level[=:]\s*(-?\d+(?:\s*dBm)?|\S+)`)
	reEncryption  = regexp.MustCompile(`Encryption key:\s*(\S+)`)
)

// ParseIwconfig extracts the link state from iwconfig output.
func ParseIwconfig(out string) WirelessStatus {
	var s WirelessStatus
	if m := reESSID.FindStringSubmatch(out); m != nil {
		s.ESSID = m[1] + m[2]
	}
	if m := reAccessPoint.FindStringSubmatch(out); m != nil {
		s.AccessPoint = m[1]
	}
	if m := reBitrate.FindStringSubmatch(out); m != nil {
		s.Bitrate = m[1]
	}
	if m := reQuality.FindStringSubmatch(out); m != nil {
		s.Quality = m[1]
	}
	if m := reSignal.FindStringSubmatch(out); m != nil {
		s.Signal = m[1]
	}
	if m := reEncryption.FindStringSubmatch(out); m != nil {
		s.Encryption = m[1]
	}
	return s
}

// WirelessLines renders the wireless status block.
func WirelessLines(b panel.Translator, s WirelessStatus) []string {
	unknown := b.T("Unknown")
	or := func(v string) string {
		if v == "" {
			return unknown
		}
		return v
	}

	accessPoint := or(s.AccessPoint)
	essid := or(s.ESSID)
	if s.ESSID == "off" {
		essid = b.T("No connection")
	}
	if s.AccessPoint == "Not-Associated" {
		accessPoint = b.T("Not-Associated")
		essid = b.T("No connection")
	}

	bitrate := unknown
	switch s.Bitrate {
	case "":
	case "0":
		bitrate = b.T("Unsupported")
	default:
		bitrate = s.Bitrate + " Mb/s"
	}

	encryption := unknown
	switch s.Encryption {
	case "":
	case "off":
		if s.AccessPoint == "Not-Associated" {
			encryption = b.T("Disabled")
		} else {
			encryption = b.T("Unsupported")
		}
	default:
		encryption = b.T("Enabled")
	}

	return []string{
		b.T("Accesspoint:") + "\t" + accessPoint,
		b.T("SSID:") + "\t" + essid,
		b.T("Link quality:") + "\t" + or(s.Quality),
		b.T("Bitrate:") + "\t" + bitrate,
		b.T("Signal strength:") + "\t" + or(s.Signal),
		b.T("Encryption:") + "\t" + encryption,
	}
}
