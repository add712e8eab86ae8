package easel

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when vertices are written.
//
// The zero value means "none": a fill or stroke set to it is not painted.
type Color struct {
	R, G, B, A float64
}

// ColorNone is the unpainted color.
var ColorNone = Color{}

// ColorBlack and ColorWhite are convenience opaque colors.
var (
	ColorBlack = Color{0, 0, 0, 1}
	ColorWhite = Color{1, 1, 1, 1}
)

// Paintable reports whether the color produces visible output.
func (c Color) Paintable() bool {
	return c.A > 0
}

// premultiplied returns the color scaled by its own alpha and by alpha.
func (c Color) premultiplied(alpha float64) (r, g, b, a float32) {
	a64 := c.A * alpha
	return float32(c.R * a64), float32(c.G * a64), float32(c.B * a64), float32(a64)
}

func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp(c.R, 0, 1)*255 + 0.5),
		G: uint8(clamp(c.G, 0, 1)*255 + 0.5),
		B: uint8(clamp(c.B, 0, 1)*255 + 0.5),
		A: uint8(clamp(c.A, 0, 1)*255 + 0.5),
	}
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa". The leading '#' is optional.
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("easel: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("easel: invalid hex color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// Vec2 is a 2D vector used for positions, offsets and polyline points.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.X+r.Width, other.X+other.Width)
	maxY := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Inset grows the rectangle by d on every side (shrinks for negative d).
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Min returns the top-left corner as a two-element array.
func (r Rect) Min() [2]float64 {
	return [2]float64{r.X, r.Y}
}

// Max returns the bottom-right corner as a two-element array.
func (r Rect) Max() [2]float64 {
	return [2]float64{r.X + r.Width, r.Y + r.Height}
}

// rectFromPoints returns the bounding rectangle of pts. Empty input yields the zero Rect.
func rectFromPoints(pts []Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendErase                     // destination-out (punch transparent holes)
	BlendBelow                     // destination-over (draw behind existing content)
	BlendNone                      // opaque copy (skip blending)
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendNormal:
		return ebiten.BlendSourceOver
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendBelow:
		return ebiten.BlendDestinationOver
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// ShapeKind is the tag of the shape union. Geometry fields on Shape are
// interpreted according to it.
type ShapeKind uint8

const (
	ShapeGroup    ShapeKind = iota // container with no geometry of its own
	ShapeCircle                    // cx, cy, r
	ShapeEllipse                   // cx, cy, rx, ry
	ShapeRect                      // x, y, width, height, corner radius
	ShapePolyline                  // open list of points, stroke only
	ShapePath                      // move/line/quad/cubic/close commands

	numShapeKinds
)

var shapeKindNames = [numShapeKinds]string{"group", "circle", "ellipse", "rect", "polyline", "path"}

func (k ShapeKind) String() string {
	if k < numShapeKinds {
		return shapeKindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// StrokeAlignment positions the stroke relative to the geometric outline.
type StrokeAlignment uint8

const (
	StrokeCenter StrokeAlignment = iota // stroke straddles the outline
	StrokeInner                         // stroke lies inside the outline
	StrokeOuter                         // stroke lies outside the outline
)

// strokeOffset returns the signed distance from the outline to the middle of
// the stroke band.
func strokeOffset(align StrokeAlignment, width float64) float64 {
	switch align {
	case StrokeInner:
		return -width / 2
	case StrokeOuter:
		return width / 2
	default:
		return 0
	}
}

// PointerEvents controls which regions of a shape can be hit by picking.
type PointerEvents uint8

const (
	PointerEventsAuto          PointerEvents = iota // visible, painted fill or stroke
	PointerEventsNone                               // never hit
	PointerEventsFillOnly                           // fill region, regardless of paint or visibility
	PointerEventsStrokeOnly                         // stroke region, regardless of paint or visibility
	PointerEventsVisibleFill                        // visible and fill painted
	PointerEventsVisibleStroke                      // visible and stroke painted
	PointerEventsAll                                // fill or stroke region, regardless of paint or visibility
	PointerEventsVisible                            // visible, fill or stroke region regardless of paint
)

// EventType identifies a kind of interaction event.
type EventType uint8

const (
	EventPointerDown  EventType = iota // fires when a pointer button is pressed
	EventPointerUp                     // fires when a pointer button is released
	EventPointerMove                   // fires when the pointer moves (hover, no button)
	EventClick                         // fires on press then release over the same shape
	EventDragStart                     // fires when movement exceeds the drag dead zone
	EventDrag                          // fires each frame while dragging
	EventDragEnd                       // fires when the pointer is released after dragging
	EventPointerEnter                  // fires when the pointer enters a shape
	EventPointerLeave                  // fires when the pointer leaves a shape
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
