package preview

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ibal-unist/picdump/internal/host"
)

// AssetsHost is where the rendered pages load echarts from. Empty uses the
// go-echarts default CDN.
var AssetsHost = ""

// CrossingScatter writes an HTML page plotting the transverse position of
// every crossing of plane z, coloured by crossing time.
func CrossingScatter(w io.Writer, title string, z float64, crossings []host.Crossing) error {
	data := make([]opts.ScatterData, 0, len(crossings))
	tMin, tMax := 0.0, 0.0
	for i, c := range crossings {
		data = append(data, opts.ScatterData{Value: []interface{}{c.X, c.Y, c.T}})
		if i == 0 || c.T < tMin {
			tMin = c.T
		}
		if i == 0 || c.T > tMax {
			tMax = c.T
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("z=%gm crossings=%d", z, len(crossings))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Dimension:  "2",
			Min:        float32(tMin),
			Max:        float32(tMax),
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("crossings", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render crossing scatter: %w", err)
	}
	return nil
}
