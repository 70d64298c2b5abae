package supervisor

import (
	"context"
	"sync"
)

// Fake is an in-memory supervisor for unit tests.
type Fake struct {
	mu sync.Mutex

	Active map[string]bool
	// RestartHeals makes Restart/Reload mark the unit active, simulating a
	// remediation that works. When false the unit stays as configured.
	RestartHeals bool
	// Err, when set, is returned from every call.
	Err error

	Restarts []string
	Reloads  []string
}

func NewFake() *Fake {
	return &Fake{Active: map[string]bool{}, RestartHeals: true}
}

func (f *Fake) IsActive(_ context.Context, unit string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	return f.Active[unit], nil
}

func (f *Fake) Restart(_ context.Context, unit string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Restarts = append(f.Restarts, unit)
	if f.RestartHeals {
		f.Active[unit] = true
	}
	return nil
}

func (f *Fake) Reload(_ context.Context, unit string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Reloads = append(f.Reloads, unit)
	if f.RestartHeals {
		f.Active[unit] = true
	}
	return nil
}
