package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Lines renders one or more series as an SVG line chart over shared
// x-axis labels.
func Lines(width, height int, series [][]float64, labels []string, opts Opts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
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
	f.open(&b, opts, "line")
	f.grid(&b, opts.TickCount)
	f.axes(&b)

	step := 0.0
	if len(labels) > 1 {
		step = f.chartWidth / float64(len(labels)-1)
	}
	x := func(i int) float64 {
		if len(labels) > 1 {
			return f.padding + float64(i)*step
		}
		return f.padding + f.chartWidth/2
	}

	for si, s := range series {
		var path strings.Builder
		for i, value := range s {
			cmd := " L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s%.2f %.2f", cmd, x(i), f.y(value))
		}
		fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path.String(), opts.color(si))
		if opts.ShowDots {
			for i, value := range s {
				fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"></circle>", x(i), f.y(value), opts.color(si))
			}
		}
	}

	if len(series) > 1 {
		names := make([]string, len(series))
		for i := range series {
			names[i] = opts.legendLabel(i, fmt.Sprintf("Series %d", i+1))
		}
		f.legendRow(&b, names, opts)
	}
	f.xLabels(&b, labels)
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// Line renders a single-series line chart.
func Line(width, height int, series []float64, labels []string, opts Opts) (template.HTML, error) {
	return Lines(width, height, [][]float64{series}, labels, opts)
}
