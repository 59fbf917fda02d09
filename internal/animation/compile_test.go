package animation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func countCreations(effects []Effect) int {
	n := 0
	for _, e := range effects {
		if IsCreation(e) {
			n++
		}
	}
	return n
}

func TestCompile_CreationInvariant(t *testing.T) {
	testCases := []struct {
		name  string
		spec  Spec
		first StepKind
	}{
		{
			name:  "Should inject Create before a non-creation first step",
			spec:  Spec{Shape: Square, Color: Red, Steps: []Step{{Kind: StepIndicate}, {Kind: StepCreate}}},
			first: StepCreate,
		},
		{
			name:  "Should keep the first FadeIn and drop later creations",
			spec:  Spec{Shape: Dot, Color: Red, Steps: []Step{{Kind: StepFadeIn}, {Kind: StepCreate}, {Kind: StepGrowFromCenter}}},
			first: StepFadeIn,
		},
		{
			name:  "Should inject Create when a shape starts with Write",
			spec:  Spec{Shape: Star, Color: Red, Steps: []Step{{Kind: StepWrite}}},
			first: StepCreate,
		},
		{
			name:  "Should inject Write for a text object",
			spec:  Spec{Text: "hi", Color: Green, Steps: []Step{{Kind: StepCreate}, {Kind: StepIndicate}}},
			first: StepWrite,
		},
		{
			name:  "Should keep an explicit Write for a text object",
			spec:  Spec{Text: "hi", Color: Green, Steps: []Step{{Kind: StepWrite}, {Kind: StepWrite}}},
			first: StepWrite,
		},
		{
			name:  "Should create the object for an empty step list",
			spec:  Spec{Shape: Circle, Color: White},
			first: StepCreate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prog := Compile(tc.spec)

			require.NotEmpty(t, prog.Effects)
			assert.Equal(t, 1, countCreations(prog.Effects))
			assert.Equal(t, Appear{Style: tc.first}, prog.Effects[0])
		})
	}
}

func TestCompile_EndToEnd(t *testing.T) {
	t.Run("Should compile create, move and color change in order", func(t *testing.T) {
		raw := rawFromJSON(t, `{"shape":"Square","color":"RED","animations":[
			{"type":"Create"},
			{"type":"Move","details":{"movement_details":{"direction":"UP","distance":2}}},
			{"type":"ChangeColor","details":{"color_change_details":{"target_color":"BLUE"}}}]}`)

		prog := Compile(Normalize(raw, nil))

		assert.Equal(t, ObjectDecl{Shape: Square, Color: Red}, prog.Object)
		assert.Equal(t, []Effect{
			Appear{Style: StepCreate},
			Shift{Direction: Up, Distance: 2},
			SetColor{Color: Blue},
		}, prog.Effects)
		assert.Empty(t, prog.UpstreamError)
	})

	t.Run("Should compile the fallback program with the error attached", func(t *testing.T) {
		prog := Compile(FallbackSpec("API request timed out."))

		assert.Equal(t, ObjectDecl{Shape: Circle, Color: Gray}, prog.Object)
		assert.Equal(t, []Effect{Appear{Style: StepCreate}}, prog.Effects)
		assert.Equal(t, "API request timed out.", prog.UpstreamError)
	})
}

func TestCompile_Move(t *testing.T) {
	for _, direction := range []string{"UP_AND_DOWN", "UP_THEN_DOWN", "LEFT_AND_RIGHT", "left_then_right"} {
		t.Run("Should expand "+direction+" into three shifts with zero net displacement", func(t *testing.T) {
			spec := Spec{Shape: Circle, Color: Red, Steps: []Step{
				{Kind: StepCreate},
				{Kind: StepMove, Move: &MoveDetails{Direction: direction, Distance: ptr(1.5)}},
			}}

			effects := Compile(spec).Effects[1:]

			require.Len(t, effects, 5)
			var sx, sy float64
			shifts, waits := 0, 0
			for _, e := range effects {
				switch v := e.(type) {
				case Shift:
					shifts++
					x, y := v.Direction.Vector()
					sx += x * v.Distance
					sy += y * v.Distance
				case Wait:
					waits++
					assert.InDelta(t, PhasePause, v.Seconds, 1e-9)
				}
			}
			assert.Equal(t, 3, shifts)
			assert.Equal(t, 2, waits)
			assert.InDelta(t, 0, sx, 1e-9)
			assert.InDelta(t, 0, sy, 1e-9)
			assert.IsType(t, Wait{}, effects[1])
			assert.IsType(t, Wait{}, effects[3])
			assert.Equal(t, 3.0, effects[2].(Shift).Distance)
		})
	}

	t.Run("Should drop unknown directions", func(t *testing.T) {
		spec := Spec{Shape: Circle, Color: Red, Steps: []Step{
			{Kind: StepCreate},
			{Kind: StepMove, Move: &MoveDetails{Direction: "SIDEWAYS"}},
		}}

		prog := Compile(spec)

		assert.Equal(t, []Effect{Appear{Style: StepCreate}}, prog.Effects)
		assert.Len(t, prog.Warnings, 1)
	})

	t.Run("Should default to moving right by one", func(t *testing.T) {
		spec := Spec{Shape: Circle, Color: Red, Steps: []Step{{Kind: StepCreate}, {Kind: StepMove}}}

		assert.Equal(t, Shift{Direction: Right, Distance: 1}, Compile(spec).Effects[1])
	})

	t.Run("Should accept diagonal directions", func(t *testing.T) {
		spec := Spec{Shape: Circle, Color: Red, Steps: []Step{
			{Kind: StepCreate},
			{Kind: StepMove, Move: &MoveDetails{Direction: "down_left", Distance: ptr(3)}},
		}}

		assert.Equal(t, Shift{Direction: DownLeft, Distance: 3}, Compile(spec).Effects[1])
	})
}

func TestCompile_Transformations(t *testing.T) {
	t.Run("Should convert degrees to radians with a 90 degree default", func(t *testing.T) {
		spec := Spec{Shape: Square, Color: Red, Steps: []Step{
			{Kind: StepRotate, Rotate: &RotateDetails{AngleDegrees: ptr(180)}},
			{Kind: StepRotate},
		}}

		effects := Compile(spec).Effects

		assert.InDelta(t, math.Pi, effects[1].(Rotate).Radians, 1e-9)
		assert.InDelta(t, math.Pi/2, effects[2].(Rotate).Radians, 1e-9)
	})

	t.Run("Should default scale factor to two", func(t *testing.T) {
		spec := Spec{Shape: Square, Color: Red, Steps: []Step{{Kind: StepScale}}}

		assert.Equal(t, Scale{Factor: 2}, Compile(spec).Effects[1])
	})

	t.Run("Should never emit an unrecognized color", func(t *testing.T) {
		spec := Spec{Shape: Square, Color: Red, Steps: []Step{
			{Kind: StepChangeColor, ChangeColor: &ChangeColorDetails{TargetColor: "MAUVE"}},
			{Kind: StepFlash, Flash: &FlashDetails{FlashColor: "MAUVE"}},
			{Kind: StepFlash},
		}}

		effects := Compile(spec).Effects

		assert.Equal(t, SetColor{Color: White}, effects[1])
		assert.Equal(t, Flash{Color: Yellow}, effects[2])
		assert.Equal(t, Flash{Color: Yellow}, effects[3])
	})

	t.Run("Should declare a default-shaped target for an invalid transform shape", func(t *testing.T) {
		spec := Spec{Shape: Triangle, Color: Blue, Steps: []Step{
			{Kind: StepCreate},
			{Kind: StepTransformShape, Transform: &TransformDetails{TargetShape: "Blob", TargetColor: "NOPE"}},
		}}

		effects := Compile(spec).Effects

		assert.Equal(t, Transform{Target: ObjectDecl{Shape: DefaultTransformShape, Color: Blue}}, effects[1])
	})

	t.Run("Should use the requested transform target", func(t *testing.T) {
		spec := Spec{Shape: Triangle, Color: Blue, Steps: []Step{
			{Kind: StepTransformShape, Transform: &TransformDetails{TargetShape: "square", TargetColor: "red"}},
		}}

		assert.Equal(t, Transform{Target: ObjectDecl{Shape: Square, Color: Red}}, Compile(spec).Effects[1])
	})
}

func TestCompile_Group(t *testing.T) {
	t.Run("Should emit one simultaneous effect for valid members", func(t *testing.T) {
		spec := Spec{Shape: Circle, Color: Yellow, Steps: []Step{
			{Kind: StepCreate},
			{Kind: StepGroup, Group: []Step{
				{Kind: StepRotate, Rotate: &RotateDetails{AngleDegrees: ptr(180)}},
				{Kind: StepScale, Scale: &ScaleDetails{Factor: ptr(2)}},
			}},
		}}

		effects := Compile(spec).Effects

		require.Len(t, effects, 2)
		group, ok := effects[1].(Group)
		require.True(t, ok)
		require.Len(t, group.Members, 2)
		assert.InDelta(t, math.Pi, group.Members[0].(Rotate).Radians, 1e-9)
		assert.Equal(t, Scale{Factor: 2}, group.Members[1])
	})

	t.Run("Should drop a group with only unsupported members", func(t *testing.T) {
		spec := Spec{Shape: Circle, Color: Yellow, Steps: []Step{
			{Kind: StepCreate},
			{Kind: StepGroup, Group: []Step{{Kind: StepIndicate}}},
			{Kind: StepGroup},
		}}

		prog := Compile(spec)

		assert.Equal(t, []Effect{Appear{Style: StepCreate}}, prog.Effects)
		assert.Len(t, prog.Warnings, 2)
	})
}
