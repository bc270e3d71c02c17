package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Pie draws wedges counter-clockwise from twelve o'clock, each annotated with
// its share in percent and its label. It fills the whole data area, so the
// owning plot should hide its axes.
type Pie struct {
	Values []float64
	Labels []string
	Colors []color.Color
}

// Plot implements plot.Plotter.
func (pc *Pie) Plot(c draw.Canvas, plt *plot.Plot) {
	total := 0.0
	for _, v := range pc.Values {
		total += v
	}
	if total <= 0 {
		return
	}
	ctr := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	r := c.Max.X - c.Min.X
	if h := c.Max.Y - c.Min.Y; h < r {
		r = h
	}
	r = r / 2 * 0.78

	sty := plt.X.Tick.Label
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter

	at := func(angle float64, radius vg.Length) vg.Point {
		return vg.Point{
			X: ctr.X + radius*vg.Length(math.Cos(angle)),
			Y: ctr.Y + radius*vg.Length(math.Sin(angle)),
		}
	}
	start := math.Pi / 2
	for i, v := range pc.Values {
		if v <= 0 {
			continue
		}
		sweep := 2 * math.Pi * v / total
		steps := int(math.Ceil(sweep/(math.Pi/90))) + 1
		pts := make([]vg.Point, 0, steps+2)
		pts = append(pts, ctr)
		for s := 0; s <= steps; s++ {
			pts = append(pts, at(start+sweep*float64(s)/float64(steps), r))
		}
		c.FillPolygon(pc.color(i), pts)

		mid := start + sweep/2
		c.FillText(sty, at(mid, r*0.62), fmt.Sprintf("%.1f%%", 100*v/total))
		if i < len(pc.Labels) {
			c.FillText(sty, at(mid, r*1.14), pc.Labels[i])
		}
		start += sweep
	}
}

func (pc *Pie) color(i int) color.Color {
	if i < len(pc.Colors) {
		return pc.Colors[i]
	}
	return pick(set2, i)
}

// swatch is a legend thumbnail filled with one color.
type swatch struct{ color color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}
