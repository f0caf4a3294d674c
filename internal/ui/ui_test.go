package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHeader(t *testing.T) {
	out := RenderHeader(HeaderInfo{Version: "v1.2.0", Tagline: "system telemetry"})

	assert.Contains(t, out, "ground control")
	assert.Contains(t, out, "v1.2.0")
	assert.Contains(t, out, "system telemetry")
	assert.Contains(t, out, strings.Repeat("━", HeaderWidth))
}

func TestRenderDoctorReport(t *testing.T) {
	out := RenderDoctorReport([]DoctorCheckRow{
		{Status: "pass", Category: "TERMINAL", Message: "Terminal is 120x40"},
		{Status: "warn", Category: "SOURCES", Message: "GPU: not available", Suggestion: "hide it"},
		{Status: "pass", Category: "TERMINAL", Message: "True color supported", Suggestion: "not shown"},
		{Status: "fail", Category: "CONFIG", Message: "Config is not valid JSON"},
	})

	assert.Contains(t, out, SymbolFail)
	assert.Contains(t, out, "hide it")
	assert.NotContains(t, out, "not shown", "suggestions only appear for problems")

	terminal := strings.Index(out, "TERMINAL")
	sources := strings.Index(out, "SOURCES")
	config := strings.Index(out, "CONFIG")
	assert.True(t, terminal < sources && sources < config, "categories keep first-seen order")
	assert.Less(t, strings.Index(out, "True color"), sources, "rows are grouped under their category")

	assert.Equal(t, "No checks to display\n", RenderDoctorReport(nil))
}

func TestRenderSimpleTable(t *testing.T) {
	out := RenderSimpleTable(
		[]TableColumn{{Title: "Widget", Width: 12}, {Title: "Mode", Width: 8}},
		[][]string{{"CPU", "gauge"}, {"Disk", "plot"}},
	)

	assert.Contains(t, out, "Widget")
	assert.Contains(t, out, "gauge")
	assert.Contains(t, out, "Disk")
	assert.Empty(t, RenderSimpleTable(nil, nil))
}

func TestDisableColors(t *testing.T) {
	assert.NotPanics(t, DisableColors)
}
