// Package charts renders the descriptive chart battery with gonum/plot.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/glycoscope/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Formats lists the accepted image formats.
var Formats = []string{"png", "svg", "pdf", "jpg", "tif", "eps"}

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f string) bool {
	f = strings.ToLower(f)
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Options controls where and how charts are written.
type Options struct {
	OutputDir string
	// Format is the file extension, e.g. png, svg or pdf.
	Format string
	// WidthIn and HeightIn size a single-panel chart in inches.
	WidthIn  float64
	HeightIn float64
	// Viewer, when set, is a command run with the chart path after saving.
	Viewer string
	Logger *slog.Logger
}

func (o Options) format() string {
	if o.Format == "" {
		return "png"
	}
	return strings.ToLower(o.Format)
}

func (o Options) size(cols, rows float64) (vg.Length, vg.Length) {
	w, h := o.WidthIn, o.HeightIn
	if w <= 0 {
		w = 10
	}
	if h <= 0 {
		h = 6
	}
	return vg.Length(w*cols) * vg.Inch, vg.Length(h*rows) * vg.Inch
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Path returns the output file for a chart name.
func (o Options) Path(name string) string {
	return filepath.Join(o.OutputDir, name+"."+o.format())
}

func (o Options) save(p *plot.Plot, name string) (string, error) {
	w, h := o.size(1, 1)
	wt, err := p.WriterTo(w, h, o.format())
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return o.write(wt, name)
}

// saveGrid lays out plots[row][col] on one canvas sized cols x rows panels.
func (o Options) saveGrid(plots [][]*plot.Plot, name string) (string, error) {
	rows, cols := len(plots), len(plots[0])
	w, h := o.size(float64(cols), float64(rows))
	cw, err := draw.NewFormattedCanvas(w, h, o.format())
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	t := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter * 6, PadY: vg.Millimeter * 6,
		PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, t, draw.New(cw))
	for j := range plots {
		for i := range plots[j] {
			if plots[j][i] != nil {
				plots[j][i].Draw(canvases[j][i])
			}
		}
	}
	return o.write(cw, name)
}

func (o Options) write(wt io.WriterTo, name string) (string, error) {
	path := o.Path(name)
	if err := utils.EnsureDir(o.OutputDir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	o.logger().Debug("chart written", "chart", name, "path", path)
	o.show(path)
	return path, nil
}

// show hands the file to the configured viewer without waiting for it.
func (o Options) show(path string) {
	if o.Viewer == "" {
		return
	}
	fields := strings.Fields(o.Viewer)
	if len(fields) == 0 {
		return
	}
	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	if err := cmd.Start(); err != nil {
		o.logger().Warn("viewer failed", "viewer", o.Viewer, "path", path, "err", err)
		return
	}
	go func() { _ = cmd.Wait() }()
}

// Palettes.
var (
	diagnosedColors = []color.Color{
		color.RGBA{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff},
		color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	}
	bmiGroupColors = []color.Color{
		color.RGBA{R: 0x5a, G: 0xb4, B: 0xff, A: 0xff},
		color.RGBA{R: 0xff, G: 0x4c, B: 0x4c, A: 0xff},
	}
	set2 = []color.Color{
		color.RGBA{R: 0x66, G: 0xc2, B: 0xa5, A: 0xff},
		color.RGBA{R: 0xfc, G: 0x8d, B: 0x62, A: 0xff},
		color.RGBA{R: 0x8d, G: 0xa0, B: 0xcb, A: 0xff},
		color.RGBA{R: 0xe7, G: 0x8a, B: 0xc3, A: 0xff},
		color.RGBA{R: 0xa6, G: 0xd8, B: 0x54, A: 0xff},
		color.RGBA{R: 0xff, G: 0xd9, B: 0x2f, A: 0xff},
		color.RGBA{R: 0xe5, G: 0xc4, B: 0x94, A: 0xff},
		color.RGBA{R: 0xb3, G: 0xb3, B: 0xb3, A: 0xff},
	}
)

// DiagnosedOrder fixes the hue order of the 0/1 diagnosis flag.
var DiagnosedOrder = []string{"0", "1"}

// diagnosedPalette maps each diagnosis value to its colour: green for 0, red
// for 1. Other values use plotutil's defaults.
func diagnosedPalette(hues []string) []color.Color {
	pal := make([]color.Color, len(hues))
	for i, h := range hues {
		switch h {
		case "0":
			pal[i] = diagnosedColors[0]
		case "1":
			pal[i] = diagnosedColors[1]
		default:
			pal[i] = plotutil.Color(i + len(diagnosedColors))
		}
	}
	return pal
}

// pick returns the i-th palette entry, falling back to plotutil's defaults
// once the palette runs out.
func pick(pal []color.Color, i int) color.Color {
	if i < len(pal) {
		return pal[i]
	}
	return plotutil.Color(i)
}
