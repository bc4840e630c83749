//go:build linux

package ledger

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/ftahirops/lapaudit/util"
)

// PrepareDir makes dir writable when it lives on the read-only live
// medium, by remounting that medium read-write in place. Other mounts
// are left alone; a read-only one surfaces as an Append error.
func PrepareDir(dir, procRoot string, logger *slog.Logger) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("ledger: resolve %s: %w", dir, err)
	}
	mounts, err := util.ReadMounts(procRoot)
	if err != nil {
		return fmt.Errorf("ledger: read mounts: %w", err)
	}
	m, ok := mountFor(mounts, abs)
	if !ok || !m.ReadOnly() || !isLiveMedia(m) {
		return nil
	}
	if err := unix.Mount(m.Device, m.Point, "", unix.MS_REMOUNT, ""); err != nil {
		return fmt.Errorf("ledger: remount %s read-write: %w", m.Point, err)
	}
	logger.Info("remounted boot medium read-write", "mount", m.Point, "device", m.Device)
	return nil
}

// SyncMedia flushes all filesystem buffers, so the ledger survives the
// operator pulling the stick right after the run.
func SyncMedia() {
	unix.Sync()
}
