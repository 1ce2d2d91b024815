// Package chart renders the dashboard figures as PNG images with go-chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sort"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"launchdash/internal/launch"
)

// Default image size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 480
)

// ErrEmpty is returned when there is nothing to plot. Callers render a
// Placeholder instead.
var ErrEmpty = errors.New("chart: nothing to plot")

// Options sizes a rendered chart. Zero values fall back to the defaults.
type Options struct {
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

var palette = []drawing.Color{
	drawing.ColorFromHex("636efa"),
	drawing.ColorFromHex("ef553b"),
	drawing.ColorFromHex("00cc96"),
	drawing.ColorFromHex("ab63fa"),
	drawing.ColorFromHex("ffa15a"),
	drawing.ColorFromHex("19d3f3"),
	drawing.ColorFromHex("ff6692"),
	drawing.ColorFromHex("b6e880"),
}

func colorAt(i int) drawing.Color { return palette[i%len(palette)] }

// pointStyle draws markers only, no connecting line.
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

// titleBand is the strip above a pie reserved for its title. go-chart
// centres its pie title inside the plot box, so the title is drawn here
// instead and the pie is rendered into the remaining area.
const titleBand = 36

// Pie renders an outcome summary. Slices with a zero count are dropped since
// they have no area; a summary without any non-zero slice yields ErrEmpty.
func Pie(summary launch.OutcomeSummary, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	values := make([]gochart.Value, 0, len(summary.Slices))
	for i, slice := range summary.Slices {
		if slice.Count <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s (%d)", slice.Label, slice.Count),
			Value: float64(slice.Count),
			Style: gochart.Style{FillColor: colorAt(i), StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		})
	}
	if len(values) == 0 {
		return nil, ErrEmpty
	}

	img := newCanvas(opts.Width, opts.Height, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	drawCentred(img, summary.Title, 24, color.RGBA{R: 40, G: 40, B: 40, A: 255})
	body := image.Rect(0, titleBand, opts.Width, opts.Height)
	if body.Dy() <= 0 {
		body = img.Bounds()
	}

	// go-chart ignores the value style when there is a single value and
	// draws a grey box, so a lone slice is filled as a disc here.
	if len(values) == 1 {
		drawDisc(img, body, values[0])
	} else {
		pie := gochart.PieChart{
			Width:  body.Dx(),
			Height: body.Dy(),
			Background: gochart.Style{
				Padding: gochart.Box{Top: 8, Left: 16, Right: 16, Bottom: 16},
			},
			Values: values,
		}
		var buf bytes.Buffer
		if err := pie.Render(gochart.PNG, &buf); err != nil {
			return nil, fmt.Errorf("render pie chart: %w", err)
		}
		rendered, err := png.Decode(&buf)
		if err != nil {
			return nil, fmt.Errorf("decode pie chart: %w", err)
		}
		draw.Draw(img, body, rendered, rendered.Bounds().Min, draw.Src)
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode pie chart: %w", err)
	}
	return out.Bytes(), nil
}

// drawDisc fills a full circle in the value's colour with its label below
// the centre.
func drawDisc(img *image.RGBA, body image.Rectangle, v gochart.Value) {
	cx, cy := body.Min.X+body.Dx()/2, body.Min.Y+body.Dy()/2
	r := min(body.Dx(), body.Dy())/2 - 16
	if r < 1 {
		r = 1
	}
	fill := color.RGBA{R: v.Style.FillColor.R, G: v.Style.FillColor.G, B: v.Style.FillColor.B, A: 255}
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	drawCentred(img, v.Label, cy+r/2, color.RGBA{R: 255, G: 255, B: 255, A: 255})
}

// Scatter plots payload mass against mission outcome with one series per
// booster version category. An empty point set yields ErrEmpty.
func Scatter(points []launch.Point, title string, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	if len(points) == 0 {
		return nil, ErrEmpty
	}

	type xy struct{ xs, ys []float64 }
	groups := make(map[string]*xy)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		g, ok := groups[p.BoosterVersionCategory]
		if !ok {
			g = &xy{}
			groups[p.BoosterVersionCategory] = g
		}
		g.xs = append(g.xs, p.PayloadMassKg)
		g.ys = append(g.ys, float64(p.Class))
		lo = math.Min(lo, p.PayloadMassKg)
		hi = math.Max(hi, p.PayloadMassKg)
	}
	categories := make([]string, 0, len(groups))
	for name := range groups {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	series := make([]gochart.Series, 0, len(categories))
	for i, name := range categories {
		g := groups[name]
		label := name
		if label == "" {
			label = "unknown"
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    label,
			XValues: g.xs,
			YValues: g.ys,
			Style:   pointStyle(colorAt(i)),
		})
	}

	xMin, xMax := paddedRange(lo, hi)
	ch := gochart.Chart{
		Title:  title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Name:  launch.ColumnPayloadMass,
			Range: &gochart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: gochart.YAxis{
			Name:  launch.ColumnClass,
			Range: &gochart.ContinuousRange{Min: -0.25, Max: 1.25},
			Ticks: []gochart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render scatter chart: %w", err)
	}
	return buf.Bytes(), nil
}

// paddedRange widens [lo, hi] by 5% on each side, and to at least 1000 kg
// so a single payload value still has a usable axis.
func paddedRange(lo, hi float64) (float64, float64) {
	width := hi - lo
	if width < 1000 {
		mid := (lo + hi) / 2
		lo, hi, width = mid-500, mid+500, 1000
	}
	pad := width * 0.05
	lo -= pad
	hi += pad
	if lo < 0 {
		hi -= lo
		lo = 0
	}
	return lo, hi
}

// Placeholder renders a plain image carrying title and message, used when
// a query has no data or the selection is invalid.
func Placeholder(title, message string, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	img := newCanvas(opts.Width, opts.Height, color.RGBA{R: 250, G: 250, B: 250, A: 255})
	drawCentred(img, title, 32, color.RGBA{R: 40, G: 40, B: 40, A: 255})
	drawCentred(img, message, opts.Height/2, color.RGBA{R: 120, G: 120, B: 120, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

func newCanvas(width, height int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

// drawCentred writes text horizontally centred with its baseline at y.
func drawCentred(img *image.RGBA, text string, y int, col color.Color) {
	dr := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: basicfont.Face7x13}
	x := (img.Bounds().Dx() - dr.MeasureString(text).Ceil()) / 2
	if x < 4 {
		x = 4
	}
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
}
