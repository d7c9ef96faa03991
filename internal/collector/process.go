// Host process collector: counts processes by state and lists the busiest.
// Uses gopsutil for cross-platform process listing.
package collector

import (
	"context"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/Guliveer/vitalis/analyst/internal/models"
)

// DefaultTopProcesses is the number of processes listed when none is configured.
const DefaultTopProcesses = 10

// statusAliases maps raw gopsutil status strings to a small display set.
var statusAliases = map[string]string{
	"running":               "running",
	"waking":                "running",
	"sleeping":              "sleeping",
	"sleep":                 "sleeping",
	"disk-sleep":            "sleeping",
	"uninterruptible-sleep": "sleeping",
	"wait":                  "sleeping",
	"wake-kill":             "sleeping",
	"lock":                  "sleeping",
	"idle":                  "idle",
	"parked":                "idle",
	"idle-interrupt":        "idle",
	"stopped":               "stopped",
	"tracing-stop":          "stopped",
	"suspended":             "stopped",
	"zombie":                "zombie",
	"dead":                  "zombie",
}

// normalizeStatus maps a raw status to a display value. An empty status,
// common on Windows, is inferred from CPU activity.
func normalizeStatus(raw string, cpuPct float64) string {
	if raw != "" {
		key := strings.ToLower(strings.TrimSpace(raw))
		if mapped, ok := statusAliases[key]; ok {
			return mapped
		}
		return key
	}
	if cpuPct > 0 {
		return "running"
	}
	return "idle"
}

// ProcessesResult summarises the host's processes.
type ProcessesResult struct {
	Total    int                  `json:"total" yaml:"total"`
	ByStatus map[string]int       `json:"by_status" yaml:"by_status"`
	Top      []models.ProcessInfo `json:"top" yaml:"top"`
}

// ProcessCollector collects process counts and the top N processes by CPU.
type ProcessCollector struct {
	topN int
}

// NewProcessCollector creates a process collector listing the top N processes.
func NewProcessCollector(topN int) *ProcessCollector {
	if topN < 0 {
		topN = DefaultTopProcesses
	}
	return &ProcessCollector{topN: topN}
}

// Name returns the category name.
func (c *ProcessCollector) Name() string { return "processes" }

// Collect lists all processes. Per-process read errors are ignored so a
// single inaccessible process does not fail the category.
func (c *ProcessCollector) Collect(ctx context.Context) (any, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]models.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		name, _ := p.NameWithContext(ctx)
		cpuPct, _ := p.CPUPercentWithContext(ctx)
		memPct, _ := p.MemoryPercentWithContext(ctx)
		status, _ := p.StatusWithContext(ctx)

		rawStatus := ""
		if len(status) > 0 {
			rawStatus = status[0]
		}

		infos = append(infos, models.ProcessInfo{
			PID:    p.Pid,
			Name:   name,
			CPU:    cpuPct,
			Memory: float64(memPct),
			Status: normalizeStatus(rawStatus, cpuPct),
		})
	}

	return summarizeProcesses(infos, c.topN), nil
}

// IsAvailable returns true; process listing is available on all platforms.
func (c *ProcessCollector) IsAvailable() bool { return true }

func summarizeProcesses(infos []models.ProcessInfo, topN int) ProcessesResult {
	result := ProcessesResult{
		Total:    len(infos),
		ByStatus: make(map[string]int),
	}
	for _, info := range infos {
		result.ByStatus[info.Status]++
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].CPU > infos[j].CPU
	})
	if len(infos) > topN {
		infos = infos[:topN]
	}
	result.Top = infos
	return result
}
