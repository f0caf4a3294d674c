package widget

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/ground-control/groundcontrol/internal/layout"
	"github.com/ground-control/groundcontrol/internal/source"
)

// Render draws the panel into a card of exactly rect.Width x rect.Height
// cells. Lines are joined with "\n". The result is reused until the
// rectangle, the panel state or its data change.
func (m *Model) Render(rect layout.Rect) string {
	state := m.State()
	c := m.cache
	if c.valid && c.rect == rect && c.version == m.version && c.state == state {
		return c.out
	}
	out := m.draw(rect)
	m.draws++
	m.cache = drawCache{valid: true, rect: rect, version: m.version, state: state, out: out}
	return out
}

// Draws returns how many times the card was actually drawn.
func (m *Model) Draws() int { return m.draws }

func (m *Model) draw(rect layout.Rect) string {
	w, h := rect.Width, rect.Height
	if w <= 0 || h <= 0 {
		return ""
	}

	title := m.spec.Kind.Title()
	state := m.State()

	if h == 1 {
		return fit(titleStyle.Render(title)+" "+m.headline(state), w)
	}

	lines := make([]string, 0, h)
	lines = append(lines, cardTop(title, m.badge(state), w))

	bodyH := h - 2
	bodyW := innerWidth(w)
	var body []string
	switch state {
	case StateWaiting:
		body = centered(mutedStyle.Render("waiting for data…"), "", bodyW, bodyH)
	case StateUnavailable:
		body = centered(sentinelStyle.Render(source.SentinelText), m.reason(), bodyW, bodyH)
	default:
		body = m.renderBody(bodyW, bodyH)
	}

	for i := 0; i < bodyH; i++ {
		content := ""
		if i < len(body) {
			content = body[i]
		}
		lines = append(lines, cardLine(content, w))
	}
	lines = append(lines, cardBottom(w))
	return strings.Join(lines, "\n")
}

// badge is the short text in the top border: mode, plus PARTIAL when some
// fields are missing.
func (m *Model) badge(state State) string {
	if state != StateLive {
		return ""
	}
	if m.latest.Status == source.StatusPartial {
		return "partial"
	}
	return m.spec.Mode.String()
}

// headline is the one-line summary used when only a single row fits.
func (m *Model) headline(state State) string {
	switch state {
	case StateWaiting:
		return "…"
	case StateUnavailable:
		return source.SentinelText
	}
	rows := rowsFor(m.latest)
	if len(rows) == 0 {
		return source.SentinelText
	}
	return FormatField(rows[0].field)
}

func (m *Model) reason() string {
	if m.Stale() {
		return "no data"
	}
	if m.latest.Err == nil {
		return ""
	}
	msg := m.latest.Err.Error()
	msg = strings.TrimPrefix(msg, source.ErrUnavailable.Error()+": ")
	return msg
}

// centered puts a headline and an optional detail line in the middle of
// the body.
func centered(head, detail string, w, h int) []string {
	if h <= 0 {
		return nil
	}
	out := make([]string, h)
	mid := (h - 1) / 2
	if detail != "" && h >= 3 {
		mid = (h - 2) / 2
	}
	out[mid] = center(head, w)
	if detail != "" && mid+1 < h {
		out[mid+1] = center(mutedStyle.Render(ansi.Truncate(detail, w, "…")), w)
	}
	return out
}

func (m *Model) renderBody(w, h int) []string {
	if h <= 0 || w <= 0 {
		return nil
	}

	var lines []string
	if m.latest.Info != "" && h >= 4 {
		lines = append(lines, mutedStyle.Render(m.latest.Info))
		h--
	}

	switch m.spec.Mode {
	case ModePlot:
		lines = append(lines, m.renderPlot(w, h)...)
	case ModeGauge:
		lines = append(lines, renderRows(rowsFor(m.latest), w, h, true, m.peaks())...)
	default:
		lines = append(lines, renderRows(rowsFor(m.latest), w, h, false, nil)...)
	}
	return lines
}

// peaks returns the highest value in history per ungrouped rate field, used
// to scale rate rows when drawn as gauges.
func (m *Model) peaks() map[string]float64 {
	if m.buf == nil {
		return nil
	}
	out := make(map[string]float64)
	for _, name := range []string{source.FieldRead, source.FieldWrite, source.FieldDownload, source.FieldUpload, source.FieldMax} {
		for _, v := range m.buf.Series("", name) {
			out[name] = max(out[name], v)
		}
	}
	return out
}

// renderRows draws label/value rows. In gauge mode percentage rows get a
// bar; rate rows are scaled against their recent peak.
func renderRows(rows []row, w, h int, gauge bool, peaks map[string]float64) []string {
	labelW := 0
	for _, r := range rows {
		labelW = max(labelW, ansi.StringWidth(r.label))
	}
	labelW = min(labelW, max(w/3, 4))

	var out []string
	for _, r := range rows {
		if len(out) == h {
			break
		}
		label := labelStyle.Render(fit(r.label, labelW))
		value := FormatField(r.field)
		vStyle := valueStyle
		if !r.field.OK {
			vStyle = sentinelStyle
		} else if r.field.Unit == "%" {
			vStyle = MetricStyle(r.field.Value)
		}

		if gauge {
			pct, ok := gaugePercent(r, peaks)
			barW := w - labelW - 2 - ansi.StringWidth(value)
			if ok && barW >= 4 {
				out = append(out, label+" "+GradientBar(barW, pct)+" "+vStyle.Render(value))
				continue
			}
		}

		line := label + " " + vStyle.Render(value)
		if r.extra != "" && ansi.StringWidth(line)+2+ansi.StringWidth(r.extra) <= w {
			line += "  " + mutedStyle.Render(r.extra)
		}
		out = append(out, line)
	}
	return out
}

func gaugePercent(r row, peaks map[string]float64) (float64, bool) {
	if !r.field.OK {
		return 0, false
	}
	if r.gauge || r.field.Unit == "%" {
		return r.field.Value, true
	}
	if r.field.Group == "" {
		if peak := peaks[r.field.Name]; peak > 0 {
			return r.field.Value / peak * 100, true
		}
	}
	return 0, false
}

// renderPlot splits the body between the plotted series. Each section is a
// header line with the current value followed by the graph.
func (m *Model) renderPlot(w, h int) []string {
	defs := seriesFor(m.spec.Kind, m.latest)
	if len(defs) == 0 || h <= 0 {
		return nil
	}
	if maxDefs := max(h/2, 1); len(defs) > maxDefs {
		defs = defs[:maxDefs]
	}

	var out []string
	for i, d := range defs {
		sectionH := h / len(defs)
		if i < h%len(defs) {
			sectionH++
		}
		out = append(out, m.renderSeries(d, w, sectionH)...)
	}
	return out
}

func (m *Model) renderSeries(d series, w, h int) []string {
	current := FormatField(field(m.latest, d.group, d.name))
	header := labelStyle.Render(d.label) + " " + valueStyle.Render(current)
	if h <= 1 {
		return []string{header}
	}

	graphH := h - 1
	data := m.buf.Series(d.group, d.name)
	scale := AutoScale(data)
	if d.scale != nil {
		scale = *d.scale
	}
	format := func(v float64) string { return FormatValue(v, d.unit) }

	points := m.buf.Points(d.group, d.name)
	var graph []string
	if canChart(w, graphH) && len(points) >= 2 {
		graph = renderChart(points, w, graphH, m.window, scale, format, ColorGraph)
	} else {
		graph = Sparkline(data, w, graphH, scale, ColorGraph)
	}
	return append([]string{header}, graph...)
}
