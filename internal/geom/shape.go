package geom

// Shape is any query region the spatial index can search.
// BoundingBox must fully contain the shape.
type Shape interface {
	BoundingBox() Rectangle
	Intersects(r Rectangle) bool
}

// Rectangle is an axis-aligned box anchored at its top-left corner.
type Rectangle struct {
	Position Vector2 `json:"position"`
	Size     Vector2 `json:"size"`
}

func Rect(x, y, w, h float64) Rectangle {
	return Rectangle{Position: Vector2{X: x, Y: y}, Size: Vector2{X: w, Y: h}}
}

func (r Rectangle) Left() float64   { return r.Position.X }
func (r Rectangle) Top() float64    { return r.Position.Y }
func (r Rectangle) Right() float64  { return r.Position.X + r.Size.X }
func (r Rectangle) Bottom() float64 { return r.Position.Y + r.Size.Y }

func (r Rectangle) Center() Vector2 {
	return r.Position.Add(r.Size.Div(2))
}

func (r Rectangle) BoundingBox() Rectangle { return r }

// Intersects reports strict overlap; rectangles that only share an edge do not intersect.
func (r Rectangle) Intersects(o Rectangle) bool {
	return r.Left() < o.Right() &&
		r.Right() > o.Left() &&
		r.Top() < o.Bottom() &&
		r.Bottom() > o.Top()
}

// Circle is a radius query around a center point.
type Circle struct {
	Center Vector2
	Radius float64
}

func (c Circle) BoundingBox() Rectangle {
	return Rect(c.Center.X-c.Radius, c.Center.Y-c.Radius, 2*c.Radius, 2*c.Radius)
}

// Intersects reports whether the closest point of r lies within the radius.
func (c Circle) Intersects(r Rectangle) bool {
	nx := clamp(c.Center.X, r.Left(), r.Right())
	ny := clamp(c.Center.Y, r.Top(), r.Bottom())
	dx := c.Center.X - nx
	dy := c.Center.Y - ny
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
