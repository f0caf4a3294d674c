package source

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sync/errgroup"
)

// Disk field names and group prefixes.
const (
	FieldRead  = "read"
	FieldWrite = "write"

	// MountPrefix starts the group of each mounted partition.
	MountPrefix = "mount:"

	usageConcurrency = 4
)

type diskBackend struct {
	counters   func(ctx context.Context) (map[string]disk.IOCountersStat, error)
	partitions func(ctx context.Context) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
	now        func() time.Time
}

// DiskSource reports aggregate and per-partition throughput plus
// per-partition space usage.
type DiskSource struct {
	backend diskBackend
	rates   *RateTracker
}

// NewDiskSource creates a disk source backed by gopsutil.
func NewDiskSource() *DiskSource {
	return newDiskSource(diskBackend{
		counters: func(ctx context.Context) (map[string]disk.IOCountersStat, error) {
			return disk.IOCountersWithContext(ctx)
		},
		partitions: func(ctx context.Context) ([]disk.PartitionStat, error) {
			return disk.PartitionsWithContext(ctx, false)
		},
		usage: disk.UsageWithContext,
		now:   time.Now,
	})
}

func newDiskSource(b diskBackend) *DiskSource {
	if b.now == nil {
		b.now = time.Now
	}
	return &DiskSource{backend: b, rates: NewRateTracker(NoiseFloor)}
}

// Kind implements Source.
func (s *DiskSource) Kind() Kind { return KindDisk }

type partitionUsage struct {
	part  disk.PartitionStat
	usage *disk.UsageStat
}

// Sample implements Source.
func (s *DiskSource) Sample(ctx context.Context) (Sample, error) {
	now := s.backend.now()
	counters, ioErr := s.backend.counters(ctx)
	parts, partErr := s.backend.partitions(ctx)
	if ctx.Err() != nil {
		return Sample{}, ctx.Err()
	}
	if ioErr != nil && partErr != nil {
		return Sample{}, unavailable("disk counters: %v; partitions: %v", ioErr, partErr)
	}

	sample := Sample{Kind: KindDisk, Timestamp: now}

	keep := make(map[string]bool)
	if ioErr == nil {
		var read, write uint64
		for _, name := range wholeDevices(counters) {
			read += counters[name].ReadBytes
			write += counters[name].WriteBytes
		}
		s.addRate(&sample, "", FieldRead, "total.read", read, now, keep)
		s.addRate(&sample, "", FieldWrite, "total.write", write, now, keep)
	} else {
		sample.Missing("", FieldRead, "B/s")
		sample.Missing("", FieldWrite, "B/s")
	}

	if partErr == nil {
		for _, pu := range s.partitionUsage(ctx, parts) {
			group := MountPrefix + pu.part.Mountpoint
			sample.Add(group, FieldUsed, float64(pu.usage.Used), "B")
			sample.Add(group, FieldTotal, float64(pu.usage.Total), "B")
			sample.Add(group, FieldPercent, pu.usage.UsedPercent, "%")

			dev := filepath.Base(pu.part.Device)
			if c, ok := counters[dev]; ok && ioErr == nil {
				s.addRate(&sample, group, FieldRead, dev+".read", c.ReadBytes, now, keep)
				s.addRate(&sample, group, FieldWrite, dev+".write", c.WriteBytes, now, keep)
			}
		}
	}

	s.rates.Forget(keep)
	sample.Normalize()
	return sample, nil
}

func (s *DiskSource) addRate(sample *Sample, group, name, key string, value uint64, now time.Time, keep map[string]bool) {
	keep[key] = true
	if rate, ok := s.rates.Rate(key, value, now); ok {
		sample.Add(group, name, rate, "B/s")
	} else {
		sample.Missing(group, name, "B/s")
	}
}

// partitionUsage queries each mount concurrently. Mounts that cannot be read
// (permissions, vanished media) are left out.
func (s *DiskSource) partitionUsage(ctx context.Context, parts []disk.PartitionStat) []partitionUsage {
	results := make([]*disk.UsageStat, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(usageConcurrency)
	for i, p := range parts {
		g.Go(func() error {
			u, err := s.backend.usage(gctx, p.Mountpoint)
			if err == nil && u != nil && u.Total > 0 {
				results[i] = u
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []partitionUsage
	seen := make(map[string]bool)
	for i, u := range results {
		if u == nil || seen[parts[i].Mountpoint] {
			continue
		}
		seen[parts[i].Mountpoint] = true
		out = append(out, partitionUsage{part: parts[i], usage: u})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].part.Mountpoint < out[j].part.Mountpoint
	})
	return out
}

// wholeDevices filters out partitions whose parent device is also listed
// (sda1 when sda is present) so totals are not counted twice.
func wholeDevices(counters map[string]disk.IOCountersStat) []string {
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		child := false
		for _, other := range names {
			if partitionOf(name, other) {
				child = true
				break
			}
		}
		if !child {
			out = append(out, name)
		}
	}
	return out
}

// partitionOf reports whether name is a partition of parent: sda1 of sda, or
// nvme0n1p1 of nvme0n1. Siblings such as dm-10 and dm-1 are not.
func partitionOf(name, parent string) bool {
	if parent == "" || len(name) <= len(parent) || !strings.HasPrefix(name, parent) {
		return false
	}
	suffix := name[len(parent):]
	if endsInDigit(parent) {
		if suffix[0] != 'p' {
			return false
		}
		suffix = suffix[1:]
	}
	return allDigits(suffix)
}

func endsInDigit(s string) bool {
	c := s[len(s)-1]
	return c >= '0' && c <= '9'
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// MountLabel strips the group prefix from a partition group.
func MountLabel(group string) string {
	return strings.TrimPrefix(group, MountPrefix)
}
