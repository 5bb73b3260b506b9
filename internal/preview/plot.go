package preview

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	xdraw "golang.org/x/image/draw"

	"bvhgav/internal/gav"
)

// Options controls Render.
type Options struct {
	Width  vg.Length
	Height vg.Length

	// Supersample renders at this multiple of the output resolution and scales down.
	Supersample int

	// Joint is the index of the decoded joint whose rotation is plotted.
	Joint     int
	FrameTime float64
	Title     string
}

// DefaultOptions returns a 6x4 inch preview of the first joint at 30 fps.
func DefaultOptions() Options {
	return Options{
		Width:       6 * vg.Inch,
		Height:      4 * vg.Inch,
		Supersample: 2,
		FrameTime:   1.0 / 30,
	}
}

// Render plots the root translation and one joint's rotation as step curves,
// stacked vertically.
func Render(anim *gav.Animation, opts Options) (image.Image, error) {
	if opts.Joint < 0 || opts.Joint >= len(anim.JointRotations) {
		return nil, fmt.Errorf("preview: joint %d out of range (%d joints)", opts.Joint, len(anim.JointRotations))
	}
	if anim.Frames() == 0 {
		return nil, fmt.Errorf("preview: animation has no frames")
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}

	translation, err := translationPlot(anim, opts)
	if err != nil {
		return nil, err
	}
	rotation, err := rotationPlot(anim, opts)
	if err != nil {
		return nil, err
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(opts.Width, opts.Height),
		vgimg.UseDPI(vgimg.DefaultDPI*opts.Supersample),
	)
	dc := draw.New(canvas)
	half := (dc.Max.Y - dc.Min.Y) / 2
	translation.Draw(draw.Crop(dc, 0, 0, half, 0))
	rotation.Draw(draw.Crop(dc, 0, 0, 0, -half))

	img := canvas.Image()
	if opts.Supersample == 1 {
		return img, nil
	}
	return downsample(img, opts.Supersample), nil
}

func translationPlot(anim *gav.Animation, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "root translation"
	p.Add(plotter.NewGrid())

	for axis, name := range []string{"x", "y", "z"} {
		pts := make(plotter.XYs, len(anim.RootPositions))
		for f, pos := range anim.RootPositions {
			pts[f] = plotter.XY{X: float64(f) * opts.FrameTime, Y: float64(pos[axis])}
		}
		if err := addStep(p, pts, name, axis); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func rotationPlot(anim *gav.Animation, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = fmt.Sprintf("joint %d rotation", opts.Joint)
	p.Add(plotter.NewGrid())

	rotations := anim.JointRotations[opts.Joint]
	for c, name := range []string{"w", "x", "y", "z"} {
		pts := make(plotter.XYs, len(rotations))
		for f, q := range rotations {
			v := q.W
			if c > 0 {
				v = q.V[c-1]
			}
			pts[f] = plotter.XY{X: float64(f) * opts.FrameTime, Y: float64(v)}
		}
		if err := addStep(p, pts, name, c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// addStep adds a post-step line: each key holds its value until the next one.
// NaN samples, which compat decoding yields for zero vectors, are plotted as 0.
func addStep(p *plot.Plot, pts plotter.XYs, name string, color int) error {
	for i := range pts {
		if math.IsNaN(pts[i].Y) {
			pts[i].Y = 0
		}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("preview: %s curve: %w", name, err)
	}
	line.StepStyle = plotter.PostStep
	line.LineStyle.Color = plotutil.Color(color)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func downsample(src image.Image, factor int) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()/factor, b.Dy()/factor))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
