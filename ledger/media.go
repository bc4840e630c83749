package ledger

import (
	"path/filepath"
	"strings"

	"github.com/ftahirops/lapaudit/util"
)

// ResolveDir picks the ledger directory: dir when set, else the mount
// point of the live medium the machine booted from, else the working
// directory.
func ResolveDir(dir, procRoot string) string {
	if dir != "" {
		return dir
	}
	if m, ok := util.LiveMedia(procRoot); ok {
		return m.Point
	}
	return "."
}

// mountFor returns the mount holding path: the entry with the longest
// mount point that is a prefix of path.
func mountFor(mounts []util.Mount, path string) (util.Mount, bool) {
	path = filepath.Clean(path)
	var best util.Mount
	found := false
	for _, m := range mounts {
		if !under(path, m.Point) {
			continue
		}
		if !found || len(m.Point) >= len(best.Point) {
			best, found = m, true
		}
	}
	return best, found
}

func under(path, point string) bool {
	if point == "/" {
		return strings.HasPrefix(path, "/")
	}
	return path == point || strings.HasPrefix(path, point+"/")
}

func isLiveMedia(m util.Mount) bool {
	for _, p := range util.LiveMediaMounts {
		if m.Point == p {
			return true
		}
	}
	return false
}
