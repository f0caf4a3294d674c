package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"
)

// Memory field names and groups.
const (
	FieldUsed      = "used"
	FieldTotal     = "total"
	FieldAvailable = "available"
	FieldPercent   = "percent"

	GroupRAM  = "ram"
	GroupSwap = "swap"

	// TopProcessPrefix starts the group of each top memory process.
	TopProcessPrefix = "top:"

	// DefaultTopProcesses is how many processes the memory panel lists.
	DefaultTopProcesses = 5
)

// ProcessMemory is one process's resident memory.
type ProcessMemory struct {
	PID  int32
	Name string
	RSS  uint64
}

type memoryBackend struct {
	virtual   func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	swap      func(ctx context.Context) (*mem.SwapMemoryStat, error)
	processes func(ctx context.Context) ([]ProcessMemory, error)
	now       func() time.Time
}

// MemorySource reports RAM, swap and the largest processes by resident size.
type MemorySource struct {
	backend memoryBackend
	topN    int
}

// NewMemorySource creates a memory source backed by gopsutil.
func NewMemorySource() *MemorySource {
	return newMemorySource(memoryBackend{
		virtual:   mem.VirtualMemoryWithContext,
		swap:      mem.SwapMemoryWithContext,
		processes: listProcessMemory,
		now:       time.Now,
	}, DefaultTopProcesses)
}

func newMemorySource(b memoryBackend, topN int) *MemorySource {
	if b.now == nil {
		b.now = time.Now
	}
	return &MemorySource{backend: b, topN: topN}
}

// Kind implements Source.
func (s *MemorySource) Kind() Kind { return KindMemory }

// Sample implements Source. RAM, swap and the process scan run concurrently;
// only a RAM failure makes the whole sample unavailable.
func (s *MemorySource) Sample(ctx context.Context) (Sample, error) {
	var (
		vm      *mem.VirtualMemoryStat
		sw      *mem.SwapMemoryStat
		procs   []ProcessMemory
		swapErr error
		procErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vm, err = s.backend.virtual(gctx)
		return err
	})
	g.Go(func() error {
		sw, swapErr = s.backend.swap(gctx)
		return nil
	})
	if s.topN > 0 && s.backend.processes != nil {
		g.Go(func() error {
			procs, procErr = s.backend.processes(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return Sample{}, ctx.Err()
		}
		return Sample{}, unavailable("virtual memory: %v", err)
	}
	if vm == nil || vm.Total == 0 {
		return Sample{}, unavailable("virtual memory: no total reported")
	}

	sample := Sample{Kind: KindMemory, Timestamp: s.backend.now()}
	sample.Add(GroupRAM, FieldUsed, float64(vm.Used), "B")
	sample.Add(GroupRAM, FieldTotal, float64(vm.Total), "B")
	sample.Add(GroupRAM, FieldAvailable, float64(vm.Available), "B")
	sample.Add(GroupRAM, FieldPercent, vm.UsedPercent, "%")

	if swapErr == nil && sw != nil {
		sample.Add(GroupSwap, FieldUsed, float64(sw.Used), "B")
		sample.Add(GroupSwap, FieldTotal, float64(sw.Total), "B")
		sample.Add(GroupSwap, FieldPercent, sw.UsedPercent, "%")
	} else {
		sample.Missing(GroupSwap, FieldUsed, "B")
		sample.Missing(GroupSwap, FieldTotal, "B")
		sample.Missing(GroupSwap, FieldPercent, "%")
	}

	if procErr == nil {
		for _, p := range topByRSS(procs, s.topN) {
			group := fmt.Sprintf("%s%s (%d)", TopProcessPrefix, p.Name, p.PID)
			sample.Add(group, FieldPercent, float64(p.RSS)/float64(vm.Total)*100, "%")
		}
	}

	sample.Normalize()
	return sample, nil
}

// ProcessLabel strips the group prefix from a top-process group.
func ProcessLabel(group string) string {
	return strings.TrimPrefix(group, TopProcessPrefix)
}

func topByRSS(procs []ProcessMemory, n int) []ProcessMemory {
	sorted := make([]ProcessMemory, len(procs))
	copy(sorted, procs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RSS > sorted[j].RSS
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// listProcessMemory reads resident size for every visible process. Processes
// that exit or deny access mid-scan are skipped.
func listProcessMemory(ctx context.Context) ([]ProcessMemory, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ProcessMemory, 0, len(procs))
	for _, p := range procs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		info, err := p.MemoryInfoWithContext(ctx)
		if err != nil || info == nil {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		out = append(out, ProcessMemory{PID: p.Pid, Name: name, RSS: info.RSS})
	}
	return out, nil
}
