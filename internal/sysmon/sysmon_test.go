package sysmon

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMeminfo_RoundsToNearest(t *testing.T) {
	cases := []struct {
		name  string
		total int64
		avail int64
		want  int
	}{
		{"half used", 1000, 500, 50},
		{"exactly 80", 1000, 200, 80},
		{"rounds down", 1000, 196, 80}, // 80.4
		{"rounds up", 1000, 194, 81},   // 80.6
		{"all free", 1000, 1000, 0},
		{"none free", 1000, 0, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := strings.NewReader(
				"MemTotal:       " + itoa(tc.total) + " kB\n" +
					"MemFree:          1234 kB\n" +
					"MemAvailable:   " + itoa(tc.avail) + " kB\n")
			got, err := parseMeminfo(in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseMeminfo_MissingTotal(t *testing.T) {
	_, err := parseMeminfo(strings.NewReader("MemFree: 10 kB\n"))
	require.Error(t, err)
}

func TestProcMeminfo_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meminfo")
	content := "MemTotal:       4000 kB\nMemAvailable:   1000 kB\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	pct, err := ProcMeminfo{Path: path}.Usage()
	require.NoError(t, err)
	require.Equal(t, 75, pct)
}

func TestStatfsDisk_ReturnsPercentage(t *testing.T) {
	pct, err := StatfsDisk{}.Usage(t.TempDir())
	require.NoError(t, err)
	require.GreaterOrEqual(t, pct, 0)
	require.LessOrEqual(t, pct, 100)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
