package animation

// ObjectDecl declares a renderable object: a text object when Text is set,
// a shape otherwise.
type ObjectDecl struct {
	Shape Shape
	Color Color
	Text  string
}

func (o ObjectDecl) IsText() bool {
	return o.Text != ""
}

// Program is the compiled, engine-independent animation.
type Program struct {
	Object  ObjectDecl
	Effects []Effect

	// UpstreamError is shown in place of the animation when set.
	UpstreamError string

	// Warnings lists steps the compiler dropped.
	Warnings []string
}

// Effect is one primitive action applied to the primary object.
type Effect interface {
	Name() string
}

// Appear is a creation-class effect.
type Appear struct {
	Style StepKind
}

type Shift struct {
	Direction Direction
	Distance  float64
}

type Wait struct {
	Seconds float64
}

type Rotate struct {
	Radians float64
}

type Scale struct {
	Factor float64
}

type SetColor struct {
	Color Color
}

// Transform morphs the primary object into Target, which is declared right before.
type Transform struct {
	Target ObjectDecl
}

type Indicate struct{}

type Flash struct {
	Color Color
}

// Group plays its members simultaneously with no stagger.
type Group struct {
	Members []Effect
}

func (Appear) Name() string    { return "appear" }
func (Shift) Name() string     { return "shift" }
func (Wait) Name() string      { return "wait" }
func (Rotate) Name() string    { return "rotate" }
func (Scale) Name() string     { return "scale" }
func (SetColor) Name() string  { return "set_color" }
func (Transform) Name() string { return "transform" }
func (Indicate) Name() string  { return "indicate" }
func (Flash) Name() string     { return "flash" }
func (Group) Name() string     { return "group" }

// IsCreation reports whether e is a creation-class effect.
func IsCreation(e Effect) bool {
	_, ok := e.(Appear)
	return ok
}
