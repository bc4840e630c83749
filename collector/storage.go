package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jaypipes/ghw"

	"github.com/ftahirops/lapaudit/model"
	"github.com/ftahirops/lapaudit/util"
)

// blockDevice is the subset of a whole-disk description the storage
// probe needs, from either ghw or lsblk.
type blockDevice struct {
	Path       string // /dev/sda
	SizeBytes  uint64
	Removable  bool
	DriveType  string // HDD, SSD, ... or lsblk ROTA "1"/"0"
	Controller string // NVMe, SCSI, ... or lsblk TRAN
}

// StorageProbe picks the primary internal disk, skipping removable
// media and the live medium the auditor booted from, and asks
// smartctl for its health.
type StorageProbe struct {
	Env Env

	disks func(ctx context.Context) ([]blockDevice, error) // nil: ghw, then lsblk
}

func (p *StorageProbe) Name() model.Subsystem { return model.SubsystemStorage }

func (p *StorageProbe) Collect(ctx context.Context, raw *model.RawFacts) error {
	list := p.disks
	if list == nil {
		list = p.listDisks
	}
	devices, err := list(ctx)
	if err != nil {
		return err
	}

	var bootDisk string
	if m, ok := util.LiveMedia(p.Env.proc()); ok {
		bootDisk = util.ParentDisk(m.Device)
	}

	dev, ok := primaryDisk(devices, bootDisk)
	if !ok {
		return fmt.Errorf("%w: no internal disk found", ErrUnavailable)
	}
	raw.Disk = model.RawDisk{
		Device:     dev.Path,
		Controller: dev.Controller,
		DriveType:  dev.DriveType,
		SizeBytes:  strconv.FormatUint(dev.SizeBytes, 10),
	}

	smart, err := querySMARTHealth(ctx, p.Env.Runner, dev.Path)
	raw.Disk.SMART = smart
	return err
}

func (p *StorageProbe) listDisks(ctx context.Context) ([]blockDevice, error) {
	info, err := ghw.Block(ghw.WithChroot(p.Env.Root), ghw.WithDisableWarnings())
	if err == nil && len(info.Disks) > 0 {
		out := make([]blockDevice, 0, len(info.Disks))
		for _, d := range info.Disks {
			out = append(out, blockDevice{
				Path:       "/dev/" + d.Name,
				SizeBytes:  d.SizeBytes,
				Removable:  d.IsRemovable,
				DriveType:  d.DriveType.String(),
				Controller: d.StorageController.String(),
			})
		}
		return out, nil
	}

	out, lerr := capture(ctx, p.Env.Runner, "lsblk", "-d", "-b", "-n", "-p", "-P", "-o", "NAME,TYPE,RM,ROTA,TRAN,SIZE")
	if lerr != nil {
		return nil, fmt.Errorf("%w: ghw: %v; %v", ErrUnavailable, err, lerr)
	}
	return parseLsblkPairs(out), nil
}

// parseLsblkPairs parses `lsblk -P` output (KEY="value" pairs per line),
// keeping disk-type rows only.
func parseLsblkPairs(out string) []blockDevice {
	var devices []blockDevice
	for _, line := range splitLines(out) {
		kv := parsePairs(line)
		if kv["TYPE"] != "disk" || kv["NAME"] == "" {
			continue
		}
		devices = append(devices, blockDevice{
			Path:       kv["NAME"],
			SizeBytes:  util.ParseUint64(kv["SIZE"]),
			Removable:  kv["RM"] == "1",
			DriveType:  kv["ROTA"],
			Controller: kv["TRAN"],
		})
	}
	return devices
}

// parsePairs splits `KEY="value" KEY2="value 2"`.
func parsePairs(line string) map[string]string {
	kv := make(map[string]string)
	for line != "" {
		eq := strings.Index(line, `="`)
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(line[:eq])
		rest := line[eq+2:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			break
		}
		kv[key] = rest[:end]
		line = strings.TrimSpace(rest[end+1:])
	}
	return kv
}

// primaryDisk returns the first fixed, non-virtual disk that is not the
// boot medium.
func primaryDisk(devices []blockDevice, bootDisk string) (blockDevice, bool) {
	for _, d := range devices {
		if d.Removable || d.Path == bootDisk || d.SizeBytes == 0 {
			continue
		}
		if isPseudoDisk(d) {
			continue
		}
		return d, true
	}
	return blockDevice{}, false
}

func isPseudoDisk(d blockDevice) bool {
	name := strings.TrimPrefix(d.Path, "/dev/")
	for _, prefix := range []string{"loop", "ram", "zram", "sr", "fd", "dm-", "md"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	switch strings.ToLower(d.DriveType) {
	case "virtual", "odd", "fdd":
		return true
	}
	switch strings.ToLower(d.Controller) {
	case "usb", "loop":
		return true
	}
	return false
}
