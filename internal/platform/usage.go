package platform

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// Usage is the free/total byte count of the filesystem holding a path.
type Usage struct {
	Free  uint64
	Total uint64
}

func StorageUsage(ctx context.Context, path string) (Usage, error) {
	stat, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return Usage{}, fmt.Errorf("disk usage %s: %w", path, err)
	}
	return Usage{Free: stat.Free, Total: stat.Total}, nil
}

// FreeBytes adapts StorageUsage to the capture writer's space check.
func FreeBytes(path string) (uint64, error) {
	usage, err := StorageUsage(context.Background(), path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
