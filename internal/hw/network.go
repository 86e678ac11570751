package hw

import (
	"context"
	"fmt"
	stdnet "net"
	"strings"

	"github.com/shirou/gopsutil/v4/net"

	"github.com/tinytelemetry/boxinfo/internal/model"
)

// Network answers interface queries through gopsutil.
type Network struct {
	interfaces func(ctx context.Context) (net.InterfaceStatList, error)
	counters   func(ctx context.Context, pernic bool) ([]net.IOCountersStat, error)
}

// NewNetwork returns a network querier for the running host.
func NewNetwork() *Network {
	return &Network{
		interfaces: net.InterfacesWithContext,
		counters:   net.IOCountersWithContext,
	}
}

// Interfaces returns every interface that has an IPv4 address, loopback excluded.
func (n *Network) Interfaces(ctx context.Context) ([]model.InterfaceInfo, error) {
	list, err := n.interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("hw: listing interfaces: %w", err)
	}
	var out []model.InterfaceInfo
	for _, ifc := range list {
		if isLoopback(ifc) {
			continue
		}
		if info, ok := toInterfaceInfo(ifc); ok {
			out = append(out, info)
		}
	}
	return out, nil
}

// Interface returns the IPv4 configuration of name. ok is false when the
// interface does not exist or has no IPv4 address.
func (n *Network) Interface(ctx context.Context, name string) (model.InterfaceInfo, bool) {
	list, err := n.interfaces(ctx)
	if err != nil {
		return model.InterfaceInfo{}, false
	}
	for _, ifc := range list {
		if ifc.Name == name {
			return toInterfaceInfo(ifc)
		}
	}
	return model.InterfaceInfo{}, false
}

// Transferred returns the byte counters of name.
func (n *Network) Transferred(ctx context.Context, name string) (model.TransferStats, error) {
	stats, err := n.counters(ctx, true)
	if err != nil {
		return model.TransferStats{}, fmt.Errorf("hw: reading counters: %w", err)
	}
	for _, s := range stats {
		if s.Name == name {
			return model.TransferStats{RxBytes: s.BytesRecv, TxBytes: s.BytesSent}, nil
		}
	}
	return model.TransferStats{}, fmt.Errorf("hw: no counters for %s", name)
}

func toInterfaceInfo(ifc net.InterfaceStat) (model.InterfaceInfo, bool) {
	for _, a := range ifc.Addrs {
		ip, ipnet, err := stdnet.ParseCIDR(a.Addr)
		if err != nil || ip.To4() == nil {
			continue
		}
		return model.InterfaceInfo{
			Name:         ifc.Name,
			Addr:         ip.String(),
			Netmask:      stdnet.IP(ipnet.Mask).String(),
			HardwareAddr: ifc.HardwareAddr,
		}, true
	}
	return model.InterfaceInfo{}, false
}

func isLoopback(ifc net.InterfaceStat) bool {
	for _, f := range ifc.Flags {
		if strings.EqualFold(f, "loopback") {
			return true
		}
	}
	return ifc.Name == "lo"
}
