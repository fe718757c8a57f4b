package ui2d

// Painter draws UI primitives in window points with the origin at the top
// left.
type Painter interface {
	DrawRect(x, y, w, h float32, c Color)
	DrawText(x, y float32, text string, c Color)
	MeasureText(text string) (w, h float32)
}

// DrawRectOutline draws a rectangle outline with p.
func DrawRectOutline(p Painter, x, y, w, h, thickness float32, c Color) {
	p.DrawRect(x, y, w, thickness, c)
	p.DrawRect(x, y+h-thickness, w, thickness, c)
	p.DrawRect(x, y+thickness, thickness, h-thickness*2, c)
	p.DrawRect(x+w-thickness, y+thickness, thickness, h-thickness*2, c)
}

// Rect is a simple rectangle.
type Rect struct {
	X, Y, W, H float32
}

// Contains checks if a point is inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}
