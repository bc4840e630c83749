//go:build !linux

package ledger

import "log/slog"

// PrepareDir is a no-op off Linux; live-medium remounting is Linux only.
func PrepareDir(dir, procRoot string, logger *slog.Logger) error { return nil }

// SyncMedia is a no-op off Linux; Append already syncs the ledger file.
func SyncMedia() {}
