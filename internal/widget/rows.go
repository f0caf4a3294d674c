package widget

import (
	"fmt"
	"strings"

	"github.com/ground-control/groundcontrol/internal/source"
)

// row is one labelled reading on a panel.
type row struct {
	label string
	field source.Field
	// extra is shown after the value in numeric mode, e.g. "of 16 GiB".
	extra string
	// gauge marks percentage rows that can be drawn as bars.
	gauge bool
}

// series names a field plotted in plot mode.
type series struct {
	label string
	group string
	name  string
	unit  string
	scale *Scale
}

func field(s source.Sample, group, name string) source.Field {
	if f, ok := s.Get(group, name); ok {
		return f
	}
	return source.Field{Group: group, Name: name}
}

// rowsFor lists the readings of a sample in display order.
func rowsFor(s source.Sample) []row {
	switch s.Kind {
	case source.KindCPU:
		return cpuRows(s)
	case source.KindMemory:
		return memoryRows(s)
	case source.KindDisk:
		return diskRows(s)
	case source.KindNetwork:
		return networkRows(s)
	case source.KindTemperature:
		return temperatureRows(s)
	case source.KindGPU:
		return gpuRows(s)
	default:
		return nil
	}
}

func cpuRows(s source.Sample) []row {
	rows := []row{{label: "Total", field: field(s, "", source.FieldUsage), gauge: true}}

	if f := field(s, "", source.FieldLoad1); f.OK {
		l5 := field(s, "", source.FieldLoad5)
		l15 := field(s, "", source.FieldLoad15)
		rows = append(rows, row{
			label: "Load",
			field: f,
			extra: strings.TrimSpace(fmt.Sprintf("%s %s", FormatField(l5), FormatField(l15))),
		})
	} else {
		rows = append(rows, row{label: "Load", field: f})
	}

	for i, g := range s.GroupsWithPrefix("core") {
		r := row{label: fmt.Sprintf("C%d", i), field: field(s, g, source.FieldUsage), gauge: true}
		if freq := field(s, g, source.FieldFreq); freq.OK {
			r.extra = FormatField(freq)
		}
		rows = append(rows, r)
	}
	return rows
}

func memoryRows(s source.Sample) []row {
	rows := []row{
		{label: "RAM", field: field(s, source.GroupRAM, source.FieldPercent), gauge: true,
			extra: usedOf(s, source.GroupRAM)},
		{label: "Swap", field: field(s, source.GroupSwap, source.FieldPercent), gauge: true,
			extra: usedOf(s, source.GroupSwap)},
	}
	for _, g := range s.GroupsWithPrefix(source.TopProcessPrefix) {
		rows = append(rows, row{label: source.ProcessLabel(g), field: field(s, g, source.FieldPercent), gauge: true})
	}
	return rows
}

func usedOf(s source.Sample, group string) string {
	used := field(s, group, source.FieldUsed)
	total := field(s, group, source.FieldTotal)
	if !used.OK || !total.OK {
		return ""
	}
	return FormatField(used) + " / " + FormatField(total)
}

func diskRows(s source.Sample) []row {
	rows := []row{
		{label: "Read", field: field(s, "", source.FieldRead)},
		{label: "Write", field: field(s, "", source.FieldWrite)},
	}
	for _, g := range s.GroupsWithPrefix(source.MountPrefix) {
		rows = append(rows, row{
			label: source.MountLabel(g),
			field: field(s, g, source.FieldPercent),
			gauge: true,
			extra: usedOf(s, g),
		})
	}
	return rows
}

func networkRows(s source.Sample) []row {
	return []row{
		{label: "Down", field: field(s, "", source.FieldDownload),
			extra: totalOf(field(s, "", source.FieldRecv))},
		{label: "Up", field: field(s, "", source.FieldUpload),
			extra: totalOf(field(s, "", source.FieldSent))},
	}
}

func totalOf(f source.Field) string {
	if !f.OK {
		return ""
	}
	return "total " + FormatField(f)
}

func temperatureRows(s source.Sample) []row {
	rows := []row{{label: "Max", field: field(s, "", source.FieldMax)}}
	for _, g := range s.GroupsWithPrefix(source.SensorPrefix) {
		rows = append(rows, row{label: source.SensorLabel(g), field: field(s, g, source.FieldTemp)})
	}
	return rows
}

func gpuRows(s source.Sample) []row {
	var rows []row
	for _, g := range s.GroupsWithPrefix(source.GPUPrefix) {
		label := strings.ToUpper(g[:1]) + g[1:]
		rows = append(rows, row{label: label, field: field(s, g, source.FieldUtil), gauge: true})

		used := field(s, g, source.FieldMemUsed)
		total := field(s, g, source.FieldMemTotal)
		mem := row{label: "  mem", field: used}
		if used.OK && total.OK && total.Value > 0 {
			mem.field = source.Field{Group: g, Name: "mem_percent", Value: used.Value / total.Value * 100, Unit: "%", OK: true}
			mem.gauge = true
			mem.extra = FormatField(used) + " / " + FormatField(total)
		}
		rows = append(rows, mem,
			row{label: "  temp", field: field(s, g, source.FieldTemp)},
			row{label: "  power", field: field(s, g, source.FieldPower)},
		)
	}
	return rows
}

// seriesFor lists the plotted fields for a kind.
func seriesFor(kind source.Kind, latest source.Sample) []series {
	pct := PercentScale
	switch kind {
	case source.KindCPU:
		return []series{{label: "Total", name: source.FieldUsage, unit: "%", scale: &pct}}
	case source.KindMemory:
		return []series{{label: "RAM", group: source.GroupRAM, name: source.FieldPercent, unit: "%", scale: &pct}}
	case source.KindDisk:
		return []series{
			{label: "Read", name: source.FieldRead, unit: "B/s"},
			{label: "Write", name: source.FieldWrite, unit: "B/s"},
		}
	case source.KindNetwork:
		return []series{
			{label: "Down", name: source.FieldDownload, unit: "B/s"},
			{label: "Up", name: source.FieldUpload, unit: "B/s"},
		}
	case source.KindTemperature:
		return []series{{label: "Max", name: source.FieldMax, unit: "°C"}}
	case source.KindGPU:
		groups := latest.GroupsWithPrefix(source.GPUPrefix)
		if len(groups) == 0 {
			groups = []string{source.GPUGroup(0)}
		}
		out := make([]series, 0, len(groups))
		for _, g := range groups {
			out = append(out, series{label: strings.ToUpper(g[:1]) + g[1:], group: g, name: source.FieldUtil, unit: "%", scale: &pct})
		}
		return out
	default:
		return nil
	}
}
