// Package supervisor is a narrow client for the process supervisor. Keep the
// interface small and focused on what the watchdog actually needs so it stays
// mockable.
package supervisor

import "context"

type Supervisor interface {
	// IsActive reports whether the named unit is in the active/running
	// state. A single point-in-time query, no retries.
	IsActive(ctx context.Context, unit string) (bool, error)

	// Restart issues a full restart of the named unit.
	Restart(ctx context.Context, unit string) error

	// Reload asks the named unit to reload its configuration without
	// dropping connections (what the reverse proxy wants).
	Reload(ctx context.Context, unit string) error
}
