// Package checks holds the point-in-time health checks a monitoring pass is
// made of. Every check returns a typed Result instead of branching on tool
// output, and logs its observation to the operations log whether it passed
// or not.
package checks

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/churchmap/watchdog/internal/config"
	"github.com/churchmap/watchdog/internal/oplog"
	"github.com/churchmap/watchdog/internal/supervisor"
	"github.com/churchmap/watchdog/internal/sysmon"
)

// Result is the transient outcome of one check within a single pass.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

type Checker struct {
	Log  *zap.Logger
	Ops  *oplog.Log
	Cfg  config.ChecksCfg
	Sup  supervisor.Supervisor
	Disk sysmon.DiskSampler
	Mem  sysmon.MemorySampler
	HTTP *http.Client
}

// Service queries the supervisor for the unit's active state. Supervisor
// errors count as a failed check: an unanswerable supervisor is itself an
// issue worth remediating.
func (c *Checker) Service(ctx context.Context, unit string) Result {
	active, err := c.Sup.IsActive(ctx, unit)
	if err != nil {
		c.Log.Warn("service status query failed", zap.String("unit", unit), zap.Error(err))
		c.Ops.Append("✗ %s status unknown: %v", unit, err)
		return Result{Name: "service:" + unit, Passed: false, Detail: err.Error()}
	}
	if active {
		c.Ops.Append("✓ %s is running", unit)
	} else {
		c.Ops.Append("✗ %s is not running", unit)
	}
	return Result{Name: "service:" + unit, Passed: active, Detail: stateWord(active)}
}

// DiskUsage fails strictly above the threshold; the boundary value passes.
func (c *Checker) DiskUsage() Result {
	pct, err := c.Disk.Usage(c.Cfg.DiskPath)
	if err != nil {
		c.Log.Warn("disk sample failed", zap.Error(err))
		c.Ops.Append("✗ Disk usage unknown: %v", err)
		return Result{Name: "disk", Passed: false, Detail: err.Error()}
	}
	detail := fmt.Sprintf("%d%%", pct)
	if pct > c.Cfg.DiskThreshold {
		c.Ops.Append("⚠ Disk usage high: %s", detail)
		return Result{Name: "disk", Passed: false, Detail: detail}
	}
	c.Ops.Append("✓ Disk usage: %s", detail)
	return Result{Name: "disk", Passed: true, Detail: detail}
}

// MemoryUsage fails strictly above the threshold; the boundary value passes.
func (c *Checker) MemoryUsage() Result {
	pct, err := c.Mem.Usage()
	if err != nil {
		c.Log.Warn("memory sample failed", zap.Error(err))
		c.Ops.Append("✗ Memory usage unknown: %v", err)
		return Result{Name: "memory", Passed: false, Detail: err.Error()}
	}
	detail := fmt.Sprintf("%d%%", pct)
	if pct > c.Cfg.MemThreshold {
		c.Ops.Append("⚠ Memory usage high: %s", detail)
		return Result{Name: "memory", Passed: false, Detail: detail}
	}
	c.Ops.Append("✓ Memory usage: %s", detail)
	return Result{Name: "memory", Passed: true, Detail: detail}
}

// AppHealth probes the application endpoint. Only an exact 200 passes;
// connection failures and timeouts report code 0, the way the old shell
// check logged 000.
func (c *Checker) AppHealth(ctx context.Context) Result {
	code := c.probe(ctx, c.Cfg.HealthURL)
	detail := fmt.Sprintf("HTTP %d", code)
	if code == http.StatusOK {
		c.Ops.Append("✓ Application responding (%s)", detail)
		return Result{Name: "app", Passed: true, Detail: detail}
	}
	c.Ops.Append("✗ Application not responding (%s)", detail)
	return Result{Name: "app", Passed: false, Detail: detail}
}

func stateWord(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
