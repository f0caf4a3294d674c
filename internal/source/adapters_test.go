package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	now := time.Unix(1_700_000_000, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestCPUSource(t *testing.T) {
	src := newCPUSource(cpuBackend{
		percent: func(context.Context) ([]float64, error) { return []float64{20, 40}, nil },
		info: func(context.Context) ([]cpu.InfoStat, error) {
			return []cpu.InfoStat{
				{ModelName: "Ryzen 7", Mhz: 3600},
				{ModelName: "Ryzen 7", Mhz: 3400},
			}, nil
		},
		load: func(context.Context) (*load.AvgStat, error) {
			return &load.AvgStat{Load1: 1.5, Load5: 1, Load15: 0.5}, nil
		},
	})

	s, err := src.Sample(context.Background())
	require.NoError(t, err)

	assert.Equal(t, KindCPU, s.Kind)
	assert.Equal(t, StatusOK, s.Status)
	assert.Equal(t, "Ryzen 7 [2 cores]", s.Info)

	usage, _ := s.Value("", FieldUsage)
	assert.Equal(t, 30.0, usage)
	freq, _ := s.Value(CoreGroup(1), FieldFreq)
	assert.Equal(t, 3400.0, freq)
	load1, _ := s.Value("", FieldLoad1)
	assert.Equal(t, 1.5, load1)
}

func TestCPUSource_Partial(t *testing.T) {
	src := newCPUSource(cpuBackend{
		percent: func(context.Context) ([]float64, error) { return []float64{10, 10, 10, 10}, nil },
		info: func(context.Context) ([]cpu.InfoStat, error) {
			return []cpu.InfoStat{{ModelName: "Apple M2", Mhz: 3500}}, nil
		},
		load: func(context.Context) (*load.AvgStat, error) { return nil, errors.New("not implemented") },
	})

	s, err := src.Sample(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, s.Status)
	freq, ok := s.Value(CoreGroup(3), FieldFreq)
	assert.True(t, ok, "single package frequency applies to every core")
	assert.Equal(t, 3500.0, freq)
	_, ok = s.Value("", FieldLoad5)
	assert.False(t, ok)
}

func TestCPUSource_Unavailable(t *testing.T) {
	src := newCPUSource(cpuBackend{
		percent: func(context.Context) ([]float64, error) { return nil, errors.New("permission denied") },
		info:    func(context.Context) ([]cpu.InfoStat, error) { return nil, nil },
		load:    func(context.Context) (*load.AvgStat, error) { return nil, nil },
	})

	_, err := src.Sample(context.Background())
	assert.True(t, IsUnavailable(err))
}

func TestMemorySource(t *testing.T) {
	src := newMemorySource(memoryBackend{
		virtual: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 1000, Used: 400, Available: 600, UsedPercent: 40}, nil
		},
		swap: func(context.Context) (*mem.SwapMemoryStat, error) {
			return &mem.SwapMemoryStat{Total: 200, Used: 50, UsedPercent: 25}, nil
		},
		processes: func(context.Context) ([]ProcessMemory, error) {
			return []ProcessMemory{
				{PID: 1, Name: "init", RSS: 10},
				{PID: 2, Name: "postgres", RSS: 300},
				{PID: 3, Name: "chrome", RSS: 200},
			}, nil
		},
	}, 2)

	s, err := src.Sample(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusOK, s.Status)
	pct, _ := s.Value(GroupRAM, FieldPercent)
	assert.Equal(t, 40.0, pct)
	swap, _ := s.Value(GroupSwap, FieldUsed)
	assert.Equal(t, 50.0, swap)

	top := s.GroupsWithPrefix(TopProcessPrefix)
	require.Len(t, top, 2)
	assert.Contains(t, top, "top:postgres (2)")
	assert.Contains(t, top, "top:chrome (3)")
	assert.Equal(t, "postgres (2)", ProcessLabel("top:postgres (2)"))

	procPct, _ := s.Value("top:postgres (2)", FieldPercent)
	assert.Equal(t, 30.0, procPct)
}

func TestMemorySource_SwapFailureIsPartial(t *testing.T) {
	src := newMemorySource(memoryBackend{
		virtual: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 1000, Used: 400, UsedPercent: 40}, nil
		},
		swap: func(context.Context) (*mem.SwapMemoryStat, error) { return nil, errors.New("no swap") },
	}, 0)

	s, err := src.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, s.Status)
}

func TestMemorySource_VirtualFailureIsUnavailable(t *testing.T) {
	src := newMemorySource(memoryBackend{
		virtual: func(context.Context) (*mem.VirtualMemoryStat, error) { return nil, errors.New("boom") },
		swap:    func(context.Context) (*mem.SwapMemoryStat, error) { return &mem.SwapMemoryStat{}, nil },
	}, 0)

	_, err := src.Sample(context.Background())
	assert.True(t, IsUnavailable(err))
}

func TestDiskSource(t *testing.T) {
	reads := uint64(0)
	src := newDiskSource(diskBackend{
		counters: func(context.Context) (map[string]disk.IOCountersStat, error) {
			reads += 4 * 1024 * 1024
			return map[string]disk.IOCountersStat{
				"sda":  {Name: "sda", ReadBytes: reads, WriteBytes: 0},
				"sda1": {Name: "sda1", ReadBytes: reads, WriteBytes: 0},
			}, nil
		},
		partitions: func(context.Context) ([]disk.PartitionStat, error) {
			return []disk.PartitionStat{
				{Device: "/dev/sda1", Mountpoint: "/"},
				{Device: "/dev/sdb1", Mountpoint: "/secret"},
			}, nil
		},
		usage: func(_ context.Context, path string) (*disk.UsageStat, error) {
			if path == "/secret" {
				return nil, errors.New("permission denied")
			}
			return &disk.UsageStat{Total: 100, Used: 25, UsedPercent: 25}, nil
		},
		now: stepClock(time.Second),
	})

	first, err := src.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, first.Status, "rates need two readings")
	assert.Equal(t, []string{"mount:/"}, first.GroupsWithPrefix(MountPrefix), "unreadable mounts are skipped")

	second, err := src.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusOK, second.Status)

	read, ok := second.Value("", FieldRead)
	require.True(t, ok)
	assert.InDelta(t, 4*1024*1024, read, 0.001, "partition counters are not double counted")

	write, _ := second.Value("", FieldWrite)
	assert.Equal(t, 0.0, write)

	partRead, ok := second.Value("mount:/", FieldRead)
	assert.True(t, ok)
	assert.InDelta(t, 4*1024*1024, partRead, 0.001)

	used, _ := second.Value("mount:/", FieldPercent)
	assert.Equal(t, 25.0, used)
	assert.Equal(t, "/", MountLabel("mount:/"))
}

func TestDiskSource_BothFail(t *testing.T) {
	src := newDiskSource(diskBackend{
		counters:   func(context.Context) (map[string]disk.IOCountersStat, error) { return nil, errors.New("a") },
		partitions: func(context.Context) ([]disk.PartitionStat, error) { return nil, errors.New("b") },
		usage:      func(context.Context, string) (*disk.UsageStat, error) { return nil, nil },
	})

	_, err := src.Sample(context.Background())
	assert.True(t, IsUnavailable(err))
}

func TestWholeDevices(t *testing.T) {
	counters := map[string]disk.IOCountersStat{
		"nvme0n1":   {},
		"nvme0n1p1": {},
		"nvme0n1p2": {},
		"sdb":       {},
	}
	assert.Equal(t, []string{"nvme0n1", "sdb"}, wholeDevices(counters))
}

func TestWholeDevices_KeepsSiblings(t *testing.T) {
	counters := map[string]disk.IOCountersStat{
		"dm-1":      {},
		"dm-10":     {},
		"loop1":     {},
		"loop12":    {},
		"mmcblk0":   {},
		"mmcblk0p1": {},
		"sda":       {},
		"sda1":      {},
		"sdaa":      {},
	}
	assert.Equal(t, []string{"dm-1", "dm-10", "loop1", "loop12", "mmcblk0", "sda", "sdaa"}, wholeDevices(counters))
}

func TestPartitionOf(t *testing.T) {
	tests := []struct {
		name, parent string
		want         bool
	}{
		{"sda1", "sda", true},
		{"sda12", "sda", true},
		{"nvme0n1p2", "nvme0n1", true},
		{"nvme0n10", "nvme0n1", false},
		{"sdaa", "sda", false},
		{"dm-10", "dm-1", false},
		{"loop12", "loop1", false},
		{"sda", "sda", false},
		{"sdap", "sda", false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.parent, func(t *testing.T) {
			assert.Equal(t, tt.want, partitionOf(tt.name, tt.parent))
		})
	}
}

func TestNetworkSource(t *testing.T) {
	recv := uint64(0)
	src := newNetworkSource(networkBackend{
		counters: func(context.Context) ([]net.IOCountersStat, error) {
			recv += 2 * 1024 * 1024
			return []net.IOCountersStat{{Name: "all", BytesRecv: recv, BytesSent: 100}}, nil
		},
		now: stepClock(2 * time.Second),
	})

	first, err := src.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, first.Status)
	total, _ := first.Value("", FieldRecv)
	assert.Equal(t, float64(2*1024*1024), total)

	second, err := src.Sample(context.Background())
	require.NoError(t, err)
	down, ok := second.Value("", FieldDownload)
	require.True(t, ok)
	assert.InDelta(t, 1024*1024, down, 0.001)
	up, _ := second.Value("", FieldUpload)
	assert.Equal(t, 0.0, up)
}

func TestTemperatureSource(t *testing.T) {
	tests := []struct {
		name       string
		temps      []host.TemperatureStat
		err        error
		wantErr    bool
		wantStatus Status
		wantMax    float64
	}{
		{
			name:    "no sensors",
			wantErr: true,
		},
		{
			name:    "only zero readings",
			temps:   []host.TemperatureStat{{SensorKey: "acpitz", Temperature: 0}},
			wantErr: true,
		},
		{
			name: "readings",
			temps: []host.TemperatureStat{
				{SensorKey: "coretemp_core1", Temperature: 55},
				{SensorKey: "coretemp_core0", Temperature: 61},
			},
			wantStatus: StatusOK,
			wantMax:    61,
		},
		{
			name:       "readings with warnings",
			temps:      []host.TemperatureStat{{SensorKey: "nvme", Temperature: 40}},
			err:        errors.New("could not read hwmon3"),
			wantStatus: StatusPartial,
			wantMax:    40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTemperatureSource(temperatureBackend{
				sensors: func(context.Context) ([]host.TemperatureStat, error) { return tt.temps, tt.err },
			})

			s, err := src.Sample(context.Background())
			if tt.wantErr {
				assert.True(t, IsUnavailable(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, s.Status)
			hottest, _ := s.Value("", FieldMax)
			assert.Equal(t, tt.wantMax, hottest)
		})
	}
}

func TestTemperatureSource_SortedSensors(t *testing.T) {
	src := newTemperatureSource(temperatureBackend{
		sensors: func(context.Context) ([]host.TemperatureStat, error) {
			return []host.TemperatureStat{
				{SensorKey: "b", Temperature: 1},
				{SensorKey: "a", Temperature: 2},
			}, nil
		},
	})

	s, err := src.Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sensor:a", "sensor:b"}, s.Groups())
	assert.Equal(t, "a", SensorLabel("sensor:a"))
}
