package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// frame carries the shared geometry of one chart viewport.
type frame struct {
	width, height           int
	padding                 float64
	chartWidth, chartHeight float64
	minVal, maxVal          float64
	axisColor, gridColor    string
}

func newFrame(width, height int, values []float64, opts Opts) (*frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return nil, fmt.Errorf("svg: viewport too small")
	}
	minVal, maxVal := bounds(values)
	if minVal > 0 {
		minVal = 0
	}
	if maxVal < 0 {
		maxVal = 0
	}
	if almostEqual(maxVal, minVal) {
		maxVal = minVal + 1
	}
	return &frame{
		width: width, height: height, padding: padding,
		chartWidth: chartWidth, chartHeight: chartHeight,
		minVal: minVal, maxVal: maxVal,
		axisColor: fallback(opts.AxisColor, "#475569"),
		gridColor: fallback(opts.GridColor, "#cbd5f5"),
	}, nil
}

// y maps a data value onto the vertical pixel axis.
func (f *frame) y(value float64) float64 {
	scale := f.chartHeight / (f.maxVal - f.minVal)
	return f.padding + f.chartHeight - (value-f.minVal)*scale
}

// open writes the svg element with accessible title and description.
func (f *frame) open(b *strings.Builder, opts Opts, kind string) {
	titleID := makeID(opts.Title, kind+"-title")
	descID := makeID(opts.Title, kind+"-desc")
	fmt.Fprintf(b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", f.width, f.height, titleID, descID)
	fmt.Fprintf(b, "<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Chart")))
	fmt.Fprintf(b, "<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Report data")))
}

// grid draws horizontal guides with tick labels.
func (f *frame) grid(b *strings.Builder, tickCount int) {
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		y := f.padding + f.chartHeight - ratio*f.chartHeight
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", f.padding, y, f.padding+f.chartWidth, y, f.gridColor)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", f.padding-6, y+4, f.axisColor, template.HTMLEscapeString(formatTick(value)))
	}
}

// axes draws the x and y axis lines.
func (f *frame) axes(b *strings.Builder) {
	fmt.Fprintf(b, "<g stroke=\"%s\">", f.axisColor)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, f.padding, f.padding, f.padding+f.chartHeight)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, f.padding+f.chartHeight, f.padding+f.chartWidth, f.padding+f.chartHeight)
	b.WriteString("</g>")
}

// xLabels writes evenly spaced labels under the x axis.
func (f *frame) xLabels(b *strings.Builder, labels []string) {
	step := 0.0
	if len(labels) > 1 {
		step = f.chartWidth / float64(len(labels)-1)
	}
	for i, label := range labels {
		x := f.padding
		if len(labels) > 1 {
			x += float64(i) * step
		} else {
			x += f.chartWidth / 2
		}
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, f.padding+f.chartHeight+14, f.axisColor, template.HTMLEscapeString(label))
	}
}

// legendRow writes a color swatch legend in the top-right corner.
func (f *frame) legendRow(b *strings.Builder, names []string, opts Opts) {
	x := f.padding + f.chartWidth - float64(len(names))*90
	for i, name := range names {
		fmt.Fprintf(b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", x, f.padding-14, opts.color(i))
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\">%s</text>", x+14, f.padding-5, f.axisColor, template.HTMLEscapeString(name))
		x += 90
	}
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return fmt.Sprintf("%s-%s", cleaned, suffix)
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	default:
		if almostEqual(v, math.Round(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	}
}
