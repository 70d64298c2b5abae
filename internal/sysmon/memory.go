package sysmon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MemorySampler reports used memory as a whole percentage of total.
type MemorySampler interface {
	Usage() (int, error)
}

// ProcMeminfo samples from /proc/meminfo. Used memory is MemTotal minus
// MemAvailable (the kernel's reclaimable-aware estimate, same as free(1));
// the percentage is rounded to the nearest integer so a host at exactly the
// threshold still passes.
type ProcMeminfo struct {
	Path string
}

func (m ProcMeminfo) Usage() (int, error) {
	path := m.Path
	if path == "" {
		path = "/proc/meminfo"
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parseMeminfo(f)
}

func parseMeminfo(r io.Reader) (int, error) {
	var totalKB, availKB int64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			totalKB = meminfoValue(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			availKB = meminfoValue(line)
		}
		if totalKB > 0 && availKB > 0 {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read meminfo: %w", err)
	}
	if totalKB <= 0 {
		return 0, fmt.Errorf("meminfo: MemTotal missing")
	}
	used := totalKB - availKB
	pct := (used*100 + totalKB/2) / totalKB
	return int(pct), nil
}

func meminfoValue(line string) int64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	n, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
