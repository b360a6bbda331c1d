package geom

import "math"

// Vector2 is a 2D point or direction in world pixels.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Vec(x, y float64) Vector2 { return Vector2{X: x, Y: y} }

func (v Vector2) Add(o Vector2) Vector2 { return Vector2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vector2) Mul(s float64) Vector2 { return Vector2{X: v.X * s, Y: v.Y * s} }
func (v Vector2) Div(s float64) Vector2 { return Vector2{X: v.X / s, Y: v.Y / s} }

func (v Vector2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalized returns the unit vector, or the zero vector for zero length.
func (v Vector2) Normalized() Vector2 {
	l := v.Length()
	if l == 0 {
		return Vector2{}
	}
	return Vector2{X: v.X / l, Y: v.Y / l}
}

func (v Vector2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Lerp moves v towards target by factor t (0..1).
func (v Vector2) Lerp(target Vector2, t float64) Vector2 {
	return Vector2{X: v.X + (target.X-v.X)*t, Y: v.Y + (target.Y-v.Y)*t}
}

// Rotate turns v counter-clockwise by rad radians (screen y grows downwards,
// so positive angles appear clockwise on screen).
func (v Vector2) Rotate(rad float64) Vector2 {
	sin, cos := math.Sincos(rad)
	return Vector2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

func Distance(a, b Vector2) float64 {
	return a.Sub(b).Length()
}

// Direction is the facing of an entity as sent by clients.
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
	DirectionUpLeft
	DirectionUpRight
	DirectionDownLeft
	DirectionDownRight
)

// Vector returns the unit vector for the facing.
func (d Direction) Vector() Vector2 {
	const diag = math.Sqrt2 / 2
	switch d {
	case DirectionUp:
		return Vector2{Y: -1}
	case DirectionDown:
		return Vector2{Y: 1}
	case DirectionLeft:
		return Vector2{X: -1}
	case DirectionUpLeft:
		return Vector2{X: -diag, Y: -diag}
	case DirectionUpRight:
		return Vector2{X: diag, Y: -diag}
	case DirectionDownLeft:
		return Vector2{X: -diag, Y: diag}
	case DirectionDownRight:
		return Vector2{X: diag, Y: diag}
	default:
		return Vector2{X: 1}
	}
}
