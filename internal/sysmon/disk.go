// Package sysmon samples host resource usage. Samplers are pure value
// sources; thresholds and pass/fail live in internal/checks.
package sysmon

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DiskSampler reports used capacity of a filesystem as a whole percentage.
type DiskSampler interface {
	Usage(path string) (int, error)
}

// StatfsDisk samples via statfs(2), matching what df prints for Use%:
// used/(used+avail) rounded up, so a filesystem at 80.1% reports 81.
type StatfsDisk struct{}

func (StatfsDisk) Usage(path string) (int, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	used := st.Blocks - st.Bfree
	total := used + st.Bavail
	if total == 0 {
		return 0, nil
	}
	pct := (used*100 + total - 1) / total
	return int(pct), nil
}
