// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
// The image/draw core package implements only source-over-destination and source,
// this package covers the remaining operators and works directly on *image.NRGBA
// so that icons with partial transparency keep their straight (non-premultiplied) colors.
package imop

import (
	"image"
	"image/color"
	"math"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// factors returns the Porter-Duff fractions applied to the source and the backdrop.
type factors func(as, ab float64) (fa, fb float64)

var operators = map[string]factors{
	Clear:   func(as, ab float64) (float64, float64) { return 0, 0 },
	Copy:    func(as, ab float64) (float64, float64) { return 1, 0 },
	SrcOver: func(as, ab float64) (float64, float64) { return 1, 1 - as },
	DstOver: func(as, ab float64) (float64, float64) { return 1 - ab, 1 },
	SrcIn:   func(as, ab float64) (float64, float64) { return ab, 0 },
	DstIn:   func(as, ab float64) (float64, float64) { return 0, as },
	SrcOut:  func(as, ab float64) (float64, float64) { return 1 - ab, 0 },
	DstOut:  func(as, ab float64) (float64, float64) { return 0, 1 - as },
	SrcAtop: func(as, ab float64) (float64, float64) { return ab, 1 - as },
	DstAtop: func(as, ab float64) (float64, float64) { return 1 - ab, as },
	Xor:     func(as, ab float64) (float64, float64) { return 1 - ab, 1 - as },
}

// Composite holds the currently active composition operator.
type Composite struct {
	current string
}

// InitOp returns a Composite using source-over, the operator used for pasting icons.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates one of the supported operators. Unknown operators are ignored.
func (op *Composite) Set(cop string) {
	if _, ok := operators[cop]; ok {
		op.current = cop
	}
}

// Get returns the currently active operator.
func (op *Composite) Get() string {
	return op.current
}

// Draw composites src onto dst with src's origin placed at the point at.
// Only the overlapping region is touched, pixels outside src are left unchanged.
func (op *Composite) Draw(dst, src *image.NRGBA, at image.Point) {
	fn := operators[op.current]
	sb := src.Bounds()
	r := sb.Sub(sb.Min).Add(at).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s := src.NRGBAAt(x-at.X+sb.Min.X, y-at.Y+sb.Min.Y)
			d := dst.NRGBAAt(x, y)
			dst.SetNRGBA(x, y, compose(fn, s, d))
		}
	}
}

// compose applies the alpha composition formula
// co = cs*as*Fa + cb*ab*Fb, ao = as*Fa + ab*Fb
// and converts the premultiplied result back to straight alpha.
func compose(fn factors, s, d color.NRGBA) color.NRGBA {
	as := float64(s.A) / 255
	ab := float64(d.A) / 255
	fa, fb := fn(as, ab)

	ao := as*fa + ab*fb
	if ao <= 0 {
		return color.NRGBA{}
	}
	channel := func(cs, cb uint8) uint8 {
		co := float64(cs)/255*as*fa + float64(cb)/255*ab*fb
		return toByte(co / ao)
	}
	return color.NRGBA{
		R: channel(s.R, d.R),
		G: channel(s.G, d.G),
		B: channel(s.B, d.B),
		A: toByte(ao),
	}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
