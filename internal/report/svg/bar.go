package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders grouped vertical bars, one group per label.
func Bars(width, height int, series [][]float64, labels []string, opts Opts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	for _, s := range series {
		if len(s) != len(labels) {
			return "", fmt.Errorf("svg: labels length must match every series")
		}
	}
	var all []float64
	for _, s := range series {
		all = append(all, s...)
	}
	f, err := newFrame(width, height, all, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	f.open(&b, opts, "bar")
	f.grid(&b, opts.TickCount)
	f.axes(&b)

	groupWidth := f.chartWidth / float64(len(labels))
	barWidth := groupWidth * 0.7 / float64(len(series))
	baseline := f.y(0)
	for si, s := range series {
		for i, value := range s {
			x := f.padding + float64(i)*groupWidth + groupWidth*0.15 + float64(si)*barWidth
			top := f.y(value)
			y, h := top, baseline-top
			if value < 0 {
				y, h = baseline, top-baseline
			}
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\"></rect>", x, y, barWidth, h, opts.color(si))
		}
	}

	if len(series) > 1 {
		names := make([]string, len(series))
		for i := range series {
			names[i] = opts.legendLabel(i, fmt.Sprintf("Series %d", i+1))
		}
		f.legendRow(&b, names, opts)
	}

	// Group labels sit under the group centres, not the axis grid.
	for i, label := range labels {
		x := f.padding + float64(i)*groupWidth + groupWidth/2
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, f.padding+f.chartHeight+14, f.axisColor, template.HTMLEscapeString(label))
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// HBars renders a horizontal bar chart for top-N rankings. Values are
// expected non-negative; rows render top to bottom in slice order.
func HBars(width, height int, values []float64, labels []string, opts Opts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	f, err := newFrame(width, height, values, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	f.open(&b, opts, "hbar")

	labelGutter := f.chartWidth * 0.3
	plotWidth := f.chartWidth - labelGutter
	rowHeight := f.chartHeight / float64(len(values))
	scale := plotWidth / f.maxVal

	fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"1\"></line>",
		f.padding+labelGutter, f.padding, f.padding+labelGutter, f.padding+f.chartHeight, f.axisColor)

	for i, value := range values {
		y := f.padding + float64(i)*rowHeight
		barH := rowHeight * 0.7
		w := value * scale
		if w < 0 {
			w = 0
		}
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\"></rect>", f.padding+labelGutter, y, w, barH, opts.color(0))
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", f.padding+labelGutter-6, y+barH*0.7, f.axisColor, template.HTMLEscapeString(labels[i]))
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\">%s</text>", f.padding+labelGutter+w+4, y+barH*0.7, f.axisColor, template.HTMLEscapeString(formatTick(value)))
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
