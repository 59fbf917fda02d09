package animation

import "strings"

type Shape string

const (
	Circle    Shape = "Circle"
	Square    Shape = "Square"
	Triangle  Shape = "Triangle"
	Rectangle Shape = "Rectangle"
	Line      Shape = "Line"
	Dot       Shape = "Dot"
	Star      Shape = "Star"
	Polygon   Shape = "Polygon"
)

var Shapes = []Shape{Circle, Square, Triangle, Rectangle, Line, Dot, Star, Polygon}

type Color string

const (
	Red       Color = "RED"
	Green     Color = "GREEN"
	Blue      Color = "BLUE"
	Yellow    Color = "YELLOW"
	Orange    Color = "ORANGE"
	Purple    Color = "PURPLE"
	Pink      Color = "PINK"
	White     Color = "WHITE"
	Black     Color = "BLACK"
	Gray      Color = "GRAY"
	LightGray Color = "LIGHT_GRAY"
	DarkGray  Color = "DARK_GRAY"
)

var Colors = []Color{Red, Green, Blue, Yellow, Orange, Purple, Pink, White, Black, Gray, LightGray, DarkGray}

const (
	DefaultShape = Circle
	DefaultColor = White

	// FallbackShape and FallbackColor describe the object drawn when the
	// upstream description could not be obtained.
	FallbackShape = Circle
	FallbackColor = Gray

	DefaultTransformShape = Square
	DefaultFlashColor     = Yellow
)

// ParseShape capitalizes name ("sQuArE" -> "Square") and checks it against the allow-list.
func ParseShape(name string) (Shape, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	s := Shape(strings.ToUpper(name[:1]) + strings.ToLower(name[1:]))
	for _, known := range Shapes {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// ParseColor upper-cases name and checks it against the allow-list.
func ParseColor(name string) (Color, bool) {
	c := Color(strings.ToUpper(strings.TrimSpace(name)))
	for _, known := range Colors {
		if c == known {
			return c, true
		}
	}
	return "", false
}

func shapeOr(name string, def Shape) Shape {
	if s, ok := ParseShape(name); ok {
		return s
	}
	return def
}

func colorOr(name string, def Color) Color {
	if c, ok := ParseColor(name); ok {
		return c
	}
	return def
}

// Direction is a straight compass shift.
type Direction string

const (
	Up        Direction = "UP"
	Down      Direction = "DOWN"
	Left      Direction = "LEFT"
	Right     Direction = "RIGHT"
	UpLeft    Direction = "UP_LEFT"
	UpRight   Direction = "UP_RIGHT"
	DownLeft  Direction = "DOWN_LEFT"
	DownRight Direction = "DOWN_RIGHT"
)

var directionVectors = map[Direction][2]float64{
	Up:        {0, 1},
	Down:      {0, -1},
	Left:      {-1, 0},
	Right:     {1, 0},
	UpLeft:    {-1, 1},
	UpRight:   {1, 1},
	DownLeft:  {-1, -1},
	DownRight: {1, -1},
}

// Vector returns the unit-grid vector of d, the same convention the engine uses for UP, UL, etc.
func (d Direction) Vector() (x, y float64) {
	v := directionVectors[d]
	return v[0], v[1]
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	case UpLeft:
		return DownRight
	case DownRight:
		return UpLeft
	case UpRight:
		return DownLeft
	case DownLeft:
		return UpRight
	}
	return d
}

// compound movements expand to an out-and-back oscillation around the origin.
var compoundDirections = map[string]Direction{
	"UP_AND_DOWN":     Up,
	"UP_THEN_DOWN":    Up,
	"LEFT_AND_RIGHT":  Left,
	"LEFT_THEN_RIGHT": Left,
}

// parseMovement resolves a raw direction into its primary direction and
// whether it is compound. ok is false for unrecognized values.
func parseMovement(raw string) (dir Direction, compound bool, ok bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if d, found := compoundDirections[raw]; found {
		return d, true, true
	}
	d := Direction(raw)
	if _, found := directionVectors[d]; found {
		return d, false, true
	}
	return "", false, false
}
