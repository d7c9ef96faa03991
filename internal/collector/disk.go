// Disk usage collector: gathers per-mount usage for local storage.
// Uses gopsutil for cross-platform disk metrics.
package collector

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/analyst/internal/models"
)

// ignoredFSTypes lists virtual and remote filesystems that do not represent
// local storage devices.
var ignoredFSTypes = map[string]bool{
	"autofs":      true,
	"binfmt_misc": true,
	"bpf":         true,
	"cgroup":      true,
	"cgroup2":     true,
	"configfs":    true,
	"debugfs":     true,
	"devfs":       true,
	"devtmpfs":    true,
	"efivarfs":    true,
	"fusectl":     true,
	"hugetlbfs":   true,
	"mqueue":      true,
	"nsfs":        true,
	"nullfs":      true,
	"overlay":     true,
	"proc":        true,
	"procfs":      true,
	"pstore":      true,
	"ramfs":       true,
	"securityfs":  true,
	"squashfs":    true,
	"sysfs":       true,
	"tmpfs":       true,
	"tracefs":     true,

	"9p":            true,
	"ceph":          true,
	"cifs":          true,
	"davfs2":        true,
	"fuse.rclone":   true,
	"fuse.s3fs":     true,
	"fuse.snapfuse": true,
	"fuse.sshfs":    true,
	"glusterfs":     true,
	"lustre":        true,
	"nfs":           true,
	"nfs4":          true,
	"smbfs":         true,
}

// systemMountPrefixes are OS-internal mount points, mostly macOS volumes.
var systemMountPrefixes = []string{
	"/System/Volumes/",
	"/private/var/vm",
}

func isSystemMount(mount string) bool {
	for _, prefix := range systemMountPrefixes {
		if strings.HasPrefix(mount, prefix) {
			return true
		}
	}
	return false
}

// DiskCollector collects disk usage per mount point.
type DiskCollector struct {
	logger *zap.Logger
}

// NewDiskCollector creates a new disk collector.
func NewDiskCollector(logger *zap.Logger) *DiskCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiskCollector{logger: logger}
}

// Name returns the category name.
func (c *DiskCollector) Name() string { return "disk" }

// Collect gathers usage for every local mounted partition.
// Partitions that cannot be stat'ed are skipped.
func (c *DiskCollector) Collect(ctx context.Context) (any, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}

	results := make([]models.DiskInfo, 0, len(partitions))
	for _, p := range partitions {
		if ignoredFSTypes[p.Fstype] || isSystemMount(p.Mountpoint) {
			continue
		}

		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			c.logger.Debug("Skipping inaccessible partition",
				zap.String("mount", p.Mountpoint),
				zap.Error(err))
			continue
		}
		// Some virtual mounts report 0 size.
		if usage.Total == 0 {
			continue
		}
		results = append(results, models.DiskInfo{
			Mount:       p.Mountpoint,
			Fs:          p.Fstype,
			Total:       usage.Total,
			Used:        usage.Used,
			Free:        usage.Free,
			UsedPercent: usage.UsedPercent,
		})
	}

	return results, nil
}

// IsAvailable returns true; disk metrics are available on all platforms.
func (c *DiskCollector) IsAvailable() bool { return true }
