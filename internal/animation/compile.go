package animation

import (
	"fmt"
	"math"
)

const (
	DefaultDistance     = 1.0
	DefaultAngleDegrees = 90.0
	DefaultScaleFactor  = 2.0

	// PhasePause separates the phases of a compound movement.
	PhasePause = 0.3
)

// Compile turns a normalized spec into a program. The result always holds
// exactly one creation effect and it is the first effect.
func Compile(spec Spec) Program {
	object := spec.Object()
	if object.Color == "" {
		object.Color = DefaultColor
	}
	if !object.IsText() && object.Shape == "" {
		object.Shape = DefaultShape
	}
	c := &compiler{
		object: object,
		prog: Program{
			Object:        object,
			UpstreamError: spec.UpstreamError,
		},
	}

	steps := spec.Steps
	if len(steps) == 0 {
		steps = []Step{{Kind: StepCreate}}
	}

	first := steps[0].Kind
	switch {
	case c.object.IsText() && first != StepWrite:
		c.appear(StepWrite)
	case !c.object.IsText() && (!first.IsCreation() || first == StepWrite):
		c.appear(StepCreate)
	}

	for i, step := range steps {
		c.step(step, fmt.Sprintf("step %d", i))
	}
	return c.prog
}

type compiler struct {
	object  ObjectDecl
	created bool
	prog    Program
}

func (c *compiler) emit(e ...Effect) {
	c.prog.Effects = append(c.prog.Effects, e...)
}

func (c *compiler) warn(format string, args ...any) {
	c.prog.Warnings = append(c.prog.Warnings, fmt.Sprintf(format, args...))
}

func (c *compiler) appear(style StepKind) {
	c.emit(Appear{Style: style})
	c.created = true
}

func (c *compiler) step(s Step, where string) {
	switch s.Kind {
	case StepCreate, StepFadeIn, StepGrowFromCenter:
		if c.created {
			c.warn("%s: object already created, %s ignored", where, s.Kind)
			return
		}
		c.appear(s.Kind)

	case StepWrite:
		if c.created || !c.object.IsText() {
			c.warn("%s: Write ignored", where)
			return
		}
		c.appear(StepWrite)

	case StepMove:
		c.move(s.Move, where)

	case StepRotate:
		c.emit(rotate(s.Rotate))

	case StepScale:
		c.emit(scale(s.Scale))

	case StepChangeColor:
		c.emit(setColor(s.ChangeColor))

	case StepTransformShape:
		c.emit(c.transform(s.Transform))

	case StepIndicate:
		c.emit(Indicate{})

	case StepFlash:
		color := DefaultFlashColor
		if s.Flash != nil {
			color = colorOr(s.Flash.FlashColor, DefaultFlashColor)
		}
		c.emit(Flash{Color: color})

	case StepGroup:
		var members []Effect
		for _, m := range s.Group {
			switch m.Kind {
			case StepRotate:
				members = append(members, rotate(m.Rotate))
			case StepScale:
				members = append(members, scale(m.Scale))
			case StepChangeColor:
				members = append(members, setColor(m.ChangeColor))
			}
		}
		if len(members) == 0 {
			c.warn("%s: group has no valid members", where)
			return
		}
		c.emit(Group{Members: members})

	default:
		c.warn("%s: unsupported step %q", where, s.Kind)
	}
}

// move emits a straight shift, or for compound directions three shifts
// (d, -2d, d) separated by pauses so the object ends where it started.
func (c *compiler) move(d *MoveDetails, where string) {
	raw := string(Right)
	distance := DefaultDistance
	if d != nil {
		if d.Direction != "" {
			raw = d.Direction
		}
		if d.Distance != nil {
			distance = *d.Distance
		}
	}

	dir, compound, ok := parseMovement(raw)
	if !ok {
		c.warn("%s: unknown movement direction %q, move skipped", where, raw)
		return
	}
	if !compound {
		c.emit(Shift{Direction: dir, Distance: distance})
		return
	}
	c.emit(
		Shift{Direction: dir, Distance: distance},
		Wait{Seconds: PhasePause},
		Shift{Direction: dir.Opposite(), Distance: 2 * distance},
		Wait{Seconds: PhasePause},
		Shift{Direction: dir, Distance: distance},
	)
}

func (c *compiler) transform(d *TransformDetails) Transform {
	target := ObjectDecl{Shape: DefaultTransformShape, Color: c.object.Color}
	if d != nil {
		target.Shape = shapeOr(d.TargetShape, DefaultTransformShape)
		if d.TargetColor != "" {
			target.Color = colorOr(d.TargetColor, c.object.Color)
		}
	}
	return Transform{Target: target}
}

func rotate(d *RotateDetails) Rotate {
	deg := DefaultAngleDegrees
	if d != nil && d.AngleDegrees != nil {
		deg = *d.AngleDegrees
	}
	return Rotate{Radians: deg * math.Pi / 180}
}

func scale(d *ScaleDetails) Scale {
	factor := DefaultScaleFactor
	if d != nil && d.Factor != nil {
		factor = *d.Factor
	}
	return Scale{Factor: factor}
}

func setColor(d *ChangeColorDetails) SetColor {
	if d == nil {
		return SetColor{Color: DefaultColor}
	}
	return SetColor{Color: colorOr(d.TargetColor, DefaultColor)}
}
