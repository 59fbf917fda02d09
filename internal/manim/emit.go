// Package manim serializes compiled animation programs into Manim Community
// scene files.
package manim

import (
	"fmt"
	"strconv"
	"strings"

	"manim-server/internal/animation"
)

const scenePrefix = "AdvancedScene_"

// SceneName derives the scene class name from a request identifier.
func SceneName(id string) string {
	return scenePrefix + id
}

const header = `from manim import Scene, Circle, Square, Triangle, Rectangle, Line, Dot, Star, Polygon
from manim import Create, FadeIn, GrowFromCenter, Write, Transform, Indicate, Flash, Rotate, AnimationGroup
from manim import RED, GREEN, BLUE, YELLOW, ORANGE, PURPLE, PINK, WHITE, BLACK, GRAY, LIGHT_GRAY, DARK_GRAY
from manim import UP, DOWN, LEFT, RIGHT, UL, UR, DL, DR
from manim import Text
`

const (
	shapeVar  = "main_shape_obj"
	textVar   = "main_text_obj"
	targetVar = "target_obj"
	indent    = "        "
)

var directionConstants = map[animation.Direction]string{
	animation.Up:        "UP",
	animation.Down:      "DOWN",
	animation.Left:      "LEFT",
	animation.Right:     "RIGHT",
	animation.UpLeft:    "UL",
	animation.UpRight:   "UR",
	animation.DownLeft:  "DL",
	animation.DownRight: "DR",
}

// Emit renders prog as the source of a scene class named sceneName.
// Each effect becomes an independent statement on the primary object.
func Emit(prog animation.Program, sceneName string) (string, error) {
	if sceneName == "" {
		return "", fmt.Errorf("scene name is required")
	}

	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "\n\nclass %s(Scene):\n    def construct(self):\n", sceneName)

	if prog.UpstreamError != "" {
		msg := quote("LLM Error: " + prog.UpstreamError)
		line(&b, "error_text = Text(%s, font_size=24, color=RED)", msg)
		line(&b, "self.play(Write(error_text))")
		line(&b, "self.wait(3)")
		return b.String(), nil
	}

	obj := shapeVar
	if prog.Object.IsText() {
		obj = textVar
	}
	decl := declaration(prog.Object)
	line(&b, "try:")
	line(&b, "    %s = %s", obj, decl)
	line(&b, "except Exception as e_obj_create:")
	line(&b, "    error_text = Text(%s + str(e_obj_create), font_size=24, color=RED)", quote("Object Creation Error: "))
	line(&b, "    self.play(Write(error_text))")
	line(&b, "    self.wait(2)")
	line(&b, "    return")
	b.WriteString("\n")

	if len(prog.Effects) == 0 {
		line(&b, "self.wait(1)")
	}
	for i, e := range prog.Effects {
		if err := writeEffect(&b, obj, e); err != nil {
			return "", fmt.Errorf("effect %d: %w", i, err)
		}
	}
	line(&b, "self.wait(1)")
	return b.String(), nil
}

func writeEffect(b *strings.Builder, obj string, e animation.Effect) error {
	if t, ok := e.(animation.Transform); ok {
		line(b, "%s = %s", targetVar, declaration(t.Target))
		line(b, "self.play(Transform(%s, %s))", obj, targetVar)
		return nil
	}
	if w, ok := e.(animation.Wait); ok {
		line(b, "self.wait(%s)", num(w.Seconds))
		return nil
	}
	anim, err := animationExpr(obj, e)
	if err != nil {
		return err
	}
	line(b, "self.play(%s)", anim)
	return nil
}

// animationExpr returns the expression passed to self.play for e.
func animationExpr(obj string, e animation.Effect) (string, error) {
	switch v := e.(type) {
	case animation.Appear:
		switch v.Style {
		case animation.StepCreate, animation.StepFadeIn, animation.StepGrowFromCenter, animation.StepWrite:
			return fmt.Sprintf("%s(%s)", v.Style, obj), nil
		}
		return "", fmt.Errorf("unknown creation style %q", v.Style)
	case animation.Shift:
		dir, ok := directionConstants[v.Direction]
		if !ok {
			return "", fmt.Errorf("unknown direction %q", v.Direction)
		}
		return fmt.Sprintf("%s.animate.shift(%s * %s)", obj, dir, num(v.Distance)), nil
	case animation.Rotate:
		return fmt.Sprintf("Rotate(%s, angle=%s)", obj, num(v.Radians)), nil
	case animation.Scale:
		return fmt.Sprintf("%s.animate.scale(%s)", obj, num(v.Factor)), nil
	case animation.SetColor:
		return fmt.Sprintf("%s.animate.set_color(%s)", obj, v.Color), nil
	case animation.Indicate:
		return fmt.Sprintf("Indicate(%s)", obj), nil
	case animation.Flash:
		return fmt.Sprintf("Flash(%s, color=%s)", obj, v.Color), nil
	case animation.Group:
		if len(v.Members) == 0 {
			return "", fmt.Errorf("empty animation group")
		}
		parts := make([]string, 0, len(v.Members)+1)
		for _, m := range v.Members {
			switch m.(type) {
			case animation.Group, animation.Transform, animation.Wait:
				return "", fmt.Errorf("%s cannot be grouped", m.Name())
			}
			expr, err := animationExpr(obj, m)
			if err != nil {
				return "", err
			}
			parts = append(parts, expr)
		}
		parts = append(parts, "lag_ratio=0")
		return fmt.Sprintf("AnimationGroup(%s)", strings.Join(parts, ", ")), nil
	}
	return "", fmt.Errorf("unsupported effect %T", e)
}

func declaration(o animation.ObjectDecl) string {
	if o.IsText() {
		return fmt.Sprintf("Text(%s, color=%s)", quote(o.Text), o.Color)
	}
	switch o.Shape {
	case animation.Polygon:
		return fmt.Sprintf("Polygon(*[[0, 1, 0], [-1, -0.5, 0], [1, -0.5, 0]], color=%s)", o.Color)
	case animation.Star:
		return fmt.Sprintf("Star(n=5, outer_radius=1, inner_radius=0.5, color=%s)", o.Color)
	}
	return fmt.Sprintf("%s(color=%s)", o.Shape, o.Color)
}

func line(b *strings.Builder, format string, args ...any) {
	b.WriteString(indent)
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// quote produces a Python string literal. Go escapes are a subset of Python's.
func quote(s string) string {
	return strconv.Quote(s)
}
