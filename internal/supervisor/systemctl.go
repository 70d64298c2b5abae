package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Systemctl shells out to systemctl. `is-active` exits non-zero for any
// inactive state, so that exit code is a result, not an error; only failures
// to run the binary at all are surfaced.
type Systemctl struct {
	// Bin overrides the systemctl path, for tests.
	Bin string
}

func (s Systemctl) bin() string {
	if s.Bin != "" {
		return s.Bin
	}
	return "systemctl"
}

func (s Systemctl) IsActive(ctx context.Context, unit string) (bool, error) {
	out, err := exec.CommandContext(ctx, s.bin(), "is-active", unit).Output()
	state := strings.TrimSpace(string(out))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("systemctl is-active %s: %w", unit, err)
	}
	return state == "active", nil
}

func (s Systemctl) Restart(ctx context.Context, unit string) error {
	if out, err := exec.CommandContext(ctx, s.bin(), "restart", unit).CombinedOutput(); err != nil {
		return fmt.Errorf("systemctl restart %s: %w: %s", unit, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (s Systemctl) Reload(ctx context.Context, unit string) error {
	if out, err := exec.CommandContext(ctx, s.bin(), "reload", unit).CombinedOutput(); err != nil {
		return fmt.Errorf("systemctl reload %s: %w: %s", unit, err, strings.TrimSpace(string(out)))
	}
	return nil
}
