package animation

// StepKind names an animation step as the completion service spells it.
type StepKind string

const (
	StepCreate         StepKind = "Create"
	StepFadeIn         StepKind = "FadeIn"
	StepGrowFromCenter StepKind = "GrowFromCenter"
	StepWrite          StepKind = "Write"
	StepMove           StepKind = "Move"
	StepRotate         StepKind = "Rotate"
	StepScale          StepKind = "Scale"
	StepChangeColor    StepKind = "ChangeColor"
	StepTransformShape StepKind = "TransformShape"
	StepIndicate       StepKind = "Indicate"
	StepFlash          StepKind = "Flash"
	StepGroup          StepKind = "AnimationGroup"
)

var stepKinds = map[string]StepKind{
	"Create":         StepCreate,
	"FadeIn":         StepFadeIn,
	"GrowFromCenter": StepGrowFromCenter,
	"Write":          StepWrite,
	"Move":           StepMove,
	"Rotate":         StepRotate,
	"Scale":          StepScale,
	"ChangeColor":    StepChangeColor,
	"TransformShape": StepTransformShape,
	"Indicate":       StepIndicate,
	"Flash":          StepFlash,
	"AnimationGroup": StepGroup,
	"Group":          StepGroup,
}

// IsCreation reports whether the step first makes the object visible.
func (k StepKind) IsCreation() bool {
	switch k {
	case StepCreate, StepFadeIn, StepGrowFromCenter, StepWrite:
		return true
	}
	return false
}

// Groupable reports whether k may appear inside an AnimationGroup.
func (k StepKind) Groupable() bool {
	switch k {
	case StepRotate, StepScale, StepChangeColor:
		return true
	}
	return false
}

// Step is one normalized animation step. Only the detail field matching
// Kind is populated; values inside it are still unvalidated.
type Step struct {
	Kind StepKind

	Move        *MoveDetails
	Rotate      *RotateDetails
	Scale       *ScaleDetails
	ChangeColor *ChangeColorDetails
	Transform   *TransformDetails
	Flash       *FlashDetails
	Group       []Step
}

type MoveDetails struct {
	Direction string   `mapstructure:"direction"`
	Distance  *float64 `mapstructure:"distance"`
}

type RotateDetails struct {
	AngleDegrees *float64 `mapstructure:"angle_degrees"`
}

type ScaleDetails struct {
	Factor *float64 `mapstructure:"factor"`
}

type ChangeColorDetails struct {
	TargetColor string `mapstructure:"target_color"`
}

type TransformDetails struct {
	TargetShape string `mapstructure:"target_shape"`
	TargetColor string `mapstructure:"target_color"`
}

type FlashDetails struct {
	FlashColor string `mapstructure:"flash_color"`
}
