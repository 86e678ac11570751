package hw

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/sysfs"
)

// Storage lists mounted block devices (internal disks, USB sticks, cards).
type Storage struct {
	fs         sysfs.FS
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// NewStorage returns a storage lister backed by gopsutil. Device metadata
// is read from /sys/block under fs.
func NewStorage(fs sysfs.FS) *Storage {
	return &Storage{
		fs:         fs,
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
	}
}

// Devices returns one entry per mounted disk partition, in mount order.
// Each physical device is reported once, with the free space of its
// first mounted partition.
func (s *Storage) Devices(ctx context.Context) ([]model.StorageDevice, error) {
	parts, err := s.partitions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("hw: listing partitions: %w", err)
	}

	seen := make(map[string]bool)
	var out []model.StorageDevice
	for _, p := range parts {
		dev := blockDevice(p.Device)
		if dev == "" || seen[dev] {
			continue
		}
		seen[dev] = true

		d := model.StorageDevice{
			Model:      s.deviceModel(dev),
			Bus:        s.deviceBus(dev),
			Mountpoint: p.Mountpoint,
		}
		if u, err := s.usage(ctx, p.Mountpoint); err == nil && u != nil {
			d.Capacity = humanize.Bytes(u.Total)
			d.FreeMB = u.Free / (1024 * 1024)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Storage) deviceModel(dev string) string {
	vendor, _ := s.fs.ReadString("/sys/block/" + dev + "/device/vendor")
	name, _ := s.fs.ReadString("/sys/block/" + dev + "/device/model")
	full := strings.TrimSpace(vendor + " " + name)
	if full == "" {
		return dev
	}
	return full
}

func (s *Storage) deviceBus(dev string) string {
	switch {
	case strings.HasPrefix(dev, "mmcblk"):
		return "SD/MMC"
	case s.fs.ReadOr("/sys/block/"+dev+"/removable", "0") == "1":
		return "External USB"
	default:
		return "Internal ATA"
	}
}

// blockDevice maps a partition device (/dev/sda1, /dev/mmcblk1p1) to its
// disk name. Non-disk devices return "".
func blockDevice(device string) string {
	name := path.Base(device)
	switch {
	case strings.HasPrefix(name, "sd"), strings.HasPrefix(name, "hd"):
		return strings.TrimRight(name, "0123456789")
	case strings.HasPrefix(name, "mmcblk"):
		if i := strings.Index(name, "p"); i > 0 {
			name = name[:i]
		}
		// mmcblk0 is the flash the image runs from.
		if name == "mmcblk0" {
			return ""
		}
		return name
	default:
		return ""
	}
}

// DeviceName is the label used on the Devices pane: model and bus, with
// "ATA" folded into "ATA Bus".
func DeviceName(d model.StorageDevice) string {
	name := d.Model + " (" + d.Bus + ")"
	if strings.Contains(name, "ATA") {
		name = strings.ReplaceAll(name, "ATA", "")
		name = strings.ReplaceAll(name, "Internal", "ATA Bus ")
	}
	return name
}
