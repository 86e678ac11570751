package about

import (
	"testing"

	"github.com/tinytelemetry/boxinfo/internal/console"
	"github.com/tinytelemetry/boxinfo/internal/geo"
	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/panel"
)

const iwconfigAssociated = `wlan0     IEEE 802.11bgn  ESSID:"HomeNet"
          Mode:Managed  Frequency:2.437 GHz  Access Point: 00:11:22:33:44:55
          Bit Rate=72.2 Mb/s   Tx-Power=20 dBm
          Link Quality=60/70  Signal level=-50 dBm
          Encryption key:on
`

const iwconfigIdle = `wlan0     IEEE 802.11bgn  ESSID:off/any
          Mode:Managed  Access Point: Not-Associated   Tx-Power=20 dBm
          Encryption key:off
`

func TestParseIwconfig(t *testing.T) {
	s := ParseIwconfig(iwconfigAssociated)
	want := WirelessStatus{
		AccessPoint: "00:11:22:33:44:55",
		ESSID:       "HomeNet",
		Quality:     "60/70",
		Bitrate:     "72.2",
		Signal:      "-50 dBm",
		Encryption:  "on",
	}
	if s != want {
		t.Errorf("ParseIwconfig = %+v, want %+v", s, want)
	}
}

func TestWirelessLines(t *testing.T) {
	got := WirelessLines(identityTr{}, ParseIwconfig(iwconfigAssociated))
	want := []string{
		"Accesspoint:\t00:11:22:33:44:55",
		"SSID:\tHomeNet",
		"Link quality:\t60/70",
		"Bitrate:\t72.2 Mb/s",
		"Signal strength:\t-50 dBm",
		"Encryption:\tEnabled",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	got = WirelessLines(identityTr{}, ParseIwconfig(iwconfigIdle))
	want = []string{
		"Accesspoint:\tNot-Associated",
		"SSID:\tNo connection",
		"Link quality:\tUnknown",
		"Bitrate:\tUnknown",
		"Signal strength:\tUnknown",
		"Encryption:\tDisabled",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("idle line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWirelessLinesUnsupported(t *testing.T) {
	got := WirelessLines(identityTr{}, WirelessStatus{AccessPoint: "aa", ESSID: "off", Bitrate: "0", Encryption: "off"})
	if got[1] != "SSID:\tNo connection" || got[3] != "Bitrate:\tUnsupported" || got[5] != "Encryption:\tUnsupported" {
		t.Errorf("lines = %q", got)
	}
}

func TestEthtoolSpeed(t *testing.T) {
	out := "Settings for eth0:\n\tSupported ports: [ TP MII ]\n\tSpeed: 100Mb/s\n\tDuplex: Full\n"
	if got := EthtoolSpeed(out); got != "100" {
		t.Errorf("EthtoolSpeed = %q, want 100", got)
	}
	if got := EthtoolSpeed("no link"); got != "" {
		t.Errorf("EthtoolSpeed(no link) = %q, want empty", got)
	}
}

func TestNetworkPanel(t *testing.T) {
	root := t.TempDir()
	writeSyntheticFile(t, root, "proc/sys/kernel/hostname", "vusolo4k\n")
	env := newTestEnv(t, root)
	env.Network = fakeNetwork{
		ifaces: []model.InterfaceInfo{
			{Name: "eth0", Addr: "192.168.1.20", Netmask: "255.255.255.0", HardwareAddr: "00:1d:ec:01:02:03"},
			{Name: "wlan0", Addr: "192.168.1.21", Netmask: "255.255.255.0"},
		},
		stats: map[string]model.TransferStats{"wlan0": {RxBytes: 2048, TxBytes: 1048576}},
	}
	env.Geo = fakeGeo{data: geo.Data{ISP: "Telekom", Org: "DTAG", Query: "84.1.2.3"}}

	runner := newFakeRunner(map[string]console.Result{
		"ethtool wlan0":  {ExitStatus: 75},
		"iwconfig wlan0": {Output: iwconfigAssociated},
	})
	state, lines := collect(t, NewNetwork(env), runner)
	if state != panel.Ready {
		t.Errorf("state = %v, want Ready", state)
	}
	assertLines(t, lines,
		"IP:\t192.168.1.20",
		"Netmask:\t255.255.255.0",
		"MAC:\t00:1d:ec:01:02:03",
		"IP:\t192.168.1.21",
		"Bytes received:\t2048 (2.0 KiB)",
		"Bytes sent:\t1048576 (1.0 MiB)",
		"ISP: Telekom (DTAG)",
		"Mobile: No",
		"Proxy: No",
		"Public IP: 84.1.2.3",
		"Hostname:\tvusolo4k",
		"SSID:\tHomeNet",
	)
	assertNoPrefix(t, lines, "Speed:")
}

func TestNetworkPanelWiredSpeed(t *testing.T) {
	env := newTestEnv(t, t.TempDir())
	env.Network = fakeNetwork{ifaces: []model.InterfaceInfo{{Name: "eth0", Addr: "10.0.0.2"}}}
	runner := newFakeRunner(map[string]console.Result{"ethtool eth0": {Output: "\tSpeed: 1000Mb/s\n"}})

	_, lines := collect(t, NewNetwork(env), runner)
	assertLines(t, lines, "Speed:\t1000Mb/s")
	for _, c := range runner.commands() {
		if c == "iwconfig eth0" {
			t.Error("iwconfig should only run for wireless interfaces")
		}
	}
}
