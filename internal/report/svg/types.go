package svg

// Opts customises the chart renderers. Zero values fall back to the
// palette defaults below.
type Opts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Colors      []string
	Legend      []string
	Padding     float64
	ShowDots    bool
	TickCount   int
}

// Defaults for the gallery charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 28.0
	DefaultTicks   = 6
)

var defaultPalette = []string{"#2563eb", "#f97316", "#16a34a", "#dc2626"}

func (o Opts) color(i int) string {
	if i < len(o.Colors) && o.Colors[i] != "" {
		return o.Colors[i]
	}
	return defaultPalette[i%len(defaultPalette)]
}

func (o Opts) legendLabel(idx int, name string) string {
	if idx < len(o.Legend) && o.Legend[idx] != "" {
		return o.Legend[idx]
	}
	return name
}
