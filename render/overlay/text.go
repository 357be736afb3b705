// Package overlay rasterizes a glyph atlas and builds screen-space text quads for on-screen
// statistics.
package overlay

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const atlasSize = 512

// Vertex is one corner of a glyph quad in clip space.
type Vertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// Item is a run of text placed in pixels from the top-left corner of the screen.
type Item struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}

// Glyph locates one rasterized rune in the atlas.
type Glyph struct {
	// Rect is the glyph's pixel area in the atlas image.
	Rect image.Rectangle
	// Bearing is the offset of Rect's top-left corner from the pen on the baseline.
	Bearing image.Point
	Advance float32
}

// Atlas holds the printable ASCII glyphs of one face rasterized into a single alpha texture.
type Atlas struct {
	Image  *image.Alpha
	Glyphs map[rune]Glyph
	face   font.Face
}

// NewDefaultAtlas rasterizes the embedded Go Regular face.
func NewDefaultAtlas(size float64) (*Atlas, error) {
	return NewAtlas(goregular.TTF, size)
}

func LoadAtlas(fontPath string, size float64) (*Atlas, error) {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}
	return NewAtlas(data, size)
}

func NewAtlas(ttf []byte, size float64) (*Atlas, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}

	a := &Atlas{
		Image:  image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize)),
		Glyphs: make(map[rune]Glyph),
		face:   face,
	}
	packer := shelf{size: atlasSize, pad: glyphPadding}
	for r := rune(' '); r <= '~'; r++ {
		bounds, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		rect, ok := packer.place(bounds.Dx(), bounds.Dy())
		if !ok {
			return nil, fmt.Errorf("glyph %q does not fit a %dx%d atlas at size %.0f", r, atlasSize, atlasSize, size)
		}
		draw.Draw(a.Image, rect, mask, maskp, draw.Src)
		a.Glyphs[r] = Glyph{Rect: rect, Bearing: bounds.Min, Advance: float32(adv) / 64}
	}
	return a, nil
}

const glyphPadding = 2

// shelf packs rectangles left to right in rows of the height of their tallest member.
type shelf struct {
	size, pad    int
	x, y, height int
}

func (s *shelf) place(w, h int) (image.Rectangle, bool) {
	if s.x == 0 && s.y == 0 {
		s.x, s.y = s.pad, s.pad
	}
	if s.x+w+s.pad > s.size {
		s.x = s.pad
		s.y += s.height + s.pad
		s.height = 0
	}
	if w+2*s.pad > s.size || s.y+h+s.pad > s.size {
		return image.Rectangle{}, false
	}
	r := image.Rect(s.x, s.y, s.x+w, s.y+h)
	s.x += w + s.pad
	s.height = max(s.height, h)
	return r, true
}

// UV returns the normalized texture coordinates of g's top-left and bottom-right corners.
func (a *Atlas) UV(g Glyph) [2][2]float32 {
	size := a.Image.Bounds().Size()
	w, h := float32(size.X), float32(size.Y)
	return [2][2]float32{
		{float32(g.Rect.Min.X) / w, float32(g.Rect.Min.Y) / h},
		{float32(g.Rect.Max.X) / w, float32(g.Rect.Max.Y) / h},
	}
}

func (a *Atlas) LineHeight(scale float32) float32 {
	if a == nil {
		return 0
	}
	return float32(a.face.Metrics().Height.Ceil()) * scale
}

// layout advances a pen through text at scale and calls fn with every glyph found in the
// atlas and the pen position on its baseline, relative to the top-left of the text. It
// returns the width of the widest line and the number of lines.
func (a *Atlas) layout(text string, scale float32, fn func(g Glyph, pen [2]float32)) (float32, int) {
	ascent := float32(a.face.Metrics().Ascent.Ceil()) * scale
	lineHeight := a.LineHeight(scale)

	var x, width float32
	lines := 1
	for _, r := range text {
		if r == '\n' {
			width = max(width, x)
			x = 0
			lines++
			continue
		}
		g, ok := a.Glyphs[r]
		if !ok {
			continue
		}
		if fn != nil {
			fn(g, [2]float32{x, ascent + float32(lines-1)*lineHeight})
		}
		x += g.Advance * scale
	}
	return max(width, x), lines
}

// corners of a quad as (x, y) picks from its (min, max) pair, two triangles.
var quadCorners = [6][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 0}, {1, 1}, {0, 1}}

func appendQuad(dst []Vertex, pos, uv [2][2]float32, color [4]float32) []Vertex {
	for _, c := range quadCorners {
		dst = append(dst, Vertex{
			Pos:   [2]float32{pos[c[0]][0], pos[c[1]][1]},
			UV:    [2]float32{uv[c[0]][0], uv[c[1]][1]},
			Color: color,
		})
	}
	return dst
}

// BuildVertices lays out items as two triangles per glyph for a screen of the given size.
// Runes missing from the atlas are skipped.
func (a *Atlas) BuildVertices(items []Item, screenW, screenH int) []Vertex {
	if screenW <= 0 || screenH <= 0 {
		return nil
	}
	sw, sh := float32(screenW), float32(screenH)
	toClip := func(x, y float32) [2]float32 { return [2]float32{x/sw*2 - 1, 1 - y/sh*2} }

	vertices := make([]Vertex, 0, len(items)*6)
	for _, item := range items {
		a.layout(item.Text, item.Scale, func(g Glyph, pen [2]float32) {
			x := item.Position[0] + pen[0] + float32(g.Bearing.X)*item.Scale
			y := item.Position[1] + pen[1] + float32(g.Bearing.Y)*item.Scale
			size := g.Rect.Size()
			pos := [2][2]float32{
				toClip(x, y),
				toClip(x+float32(size.X)*item.Scale, y+float32(size.Y)*item.Scale),
			}
			vertices = appendQuad(vertices, pos, a.UV(g), item.Color)
		})
	}
	return vertices
}

// Measure returns the width of the longest line and the total height of text in pixels.
func (a *Atlas) Measure(text string, scale float32) (float32, float32) {
	if a == nil {
		return 0, 0
	}
	width, lines := a.layout(text, scale, nil)
	return width, a.LineHeight(scale) * float32(lines)
}
