package scheduler

import (
	"github.com/shirou/gopsutil/v3/disk"
)

// VolumeUsage is the capacity of the filesystem holding a path.
type VolumeUsage struct {
	Total       uint64
	Free        uint64
	UsedPercent float64
}

// VolumeReporter looks up the capacity of the volume holding path.
type VolumeReporter interface {
	Usage(path string) (VolumeUsage, error)
}

// DiskUsageReporter reads volume capacity from the operating system.
type DiskUsageReporter struct{}

// NewDiskUsageReporter creates a DiskUsageReporter.
func NewDiskUsageReporter() *DiskUsageReporter {
	return &DiskUsageReporter{}
}

// Usage implements VolumeReporter.
func (DiskUsageReporter) Usage(path string) (VolumeUsage, error) {
	stat, err := disk.Usage(path)
	if err != nil {
		return VolumeUsage{}, err
	}
	return VolumeUsage{Total: stat.Total, Free: stat.Free, UsedPercent: stat.UsedPercent}, nil
}
