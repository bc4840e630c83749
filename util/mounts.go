package util

import (
	"path/filepath"
	"strings"
)

// LiveMediaMounts are the mount points live distributions use for the
// medium they booted from.
var LiveMediaMounts = []string{
	"/run/archiso/bootmnt",
	"/run/initramfs/live",
	"/cdrom",
	"/live/image",
}

// Mount is one /proc/mounts entry.
type Mount struct {
	Device  string
	Point   string
	FSType  string
	Options []string
}

// ReadOnly reports whether the mount carries the "ro" option.
func (m Mount) ReadOnly() bool {
	for _, o := range m.Options {
		if o == "ro" {
			return true
		}
	}
	return false
}

// ReadMounts parses <procRoot>/mounts.
func ReadMounts(procRoot string) ([]Mount, error) {
	lines, err := ReadFileLines(filepath.Join(procRoot, "mounts"))
	if err != nil {
		return nil, err
	}
	var out []Mount
	for _, line := range lines {
		f := strings.Fields(line)
		if len(f) < 4 {
			continue
		}
		out = append(out, Mount{
			Device:  f[0],
			Point:   f[1],
			FSType:  f[2],
			Options: strings.Split(f[3], ","),
		})
	}
	return out, nil
}

// LiveMedia returns the mount of the boot medium, if the system was
// started from one of the known live layouts.
func LiveMedia(procRoot string) (Mount, bool) {
	mounts, err := ReadMounts(procRoot)
	if err != nil {
		return Mount{}, false
	}
	for _, m := range mounts {
		for _, p := range LiveMediaMounts {
			if m.Point == p {
				return m, true
			}
		}
	}
	return Mount{}, false
}

// ParentDisk strips a partition suffix: /dev/sdb1 -> /dev/sdb,
// /dev/nvme0n1p2 -> /dev/nvme0n1, /dev/mmcblk0p1 -> /dev/mmcblk0.
// Whole-disk names are returned unchanged.
func ParentDisk(dev string) string {
	base := filepath.Base(dev)
	if strings.HasPrefix(base, "nvme") || strings.HasPrefix(base, "mmcblk") {
		i := strings.LastIndex(dev, "p")
		if i > 0 && i < len(dev)-1 && isDigits(dev[i+1:]) && isDigits(dev[i-1:i]) {
			return dev[:i]
		}
		return dev
	}
	return strings.TrimRight(dev, "0123456789")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
