package animation

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// RawDescription is the untyped object returned by the completion service.
type RawDescription map[string]any

// DefaultUpstreamError is attached when the description is empty and carries no reason.
const DefaultUpstreamError = "LLM processing failed"

// Spec is a validated animation description.
type Spec struct {
	// Shape is empty when Text is set.
	Shape Shape
	Color Color
	Text  string
	Steps []Step

	// UpstreamError carries the completion failure forward so it can be shown
	// inside the rendered video instead of failing the request.
	UpstreamError string

	// Notes lists the parts of the raw description that were discarded.
	Notes []string
}

// IsText reports whether the primary object is a text object.
func (s Spec) IsText() bool {
	return s.Text != ""
}

// Object returns the declaration of the primary renderable object.
func (s Spec) Object() ObjectDecl {
	return ObjectDecl{Shape: s.Shape, Color: s.Color, Text: s.Text}
}

// FallbackSpec is used whenever no usable description was obtained.
func FallbackSpec(reason string) Spec {
	if strings.TrimSpace(reason) == "" {
		reason = DefaultUpstreamError
	}
	return Spec{
		Shape:         FallbackShape,
		Color:         FallbackColor,
		Steps:         []Step{{Kind: StepCreate}},
		UpstreamError: reason,
	}
}

// Normalize validates and defaults raw. It never fails: an upstream error, an
// empty description or an explicit "error" field all yield FallbackSpec with
// the reason attached.
func Normalize(raw RawDescription, upstreamErr error) Spec {
	if upstreamErr != nil {
		return FallbackSpec(upstreamErr.Error())
	}
	if len(raw) == 0 {
		return FallbackSpec(DefaultUpstreamError)
	}
	if reason, failed := errorField(raw); failed {
		return FallbackSpec(reason)
	}

	var spec Spec
	spec.Color = colorOr(stringField(raw, "color"), DefaultColor)
	if text := stringField(raw, "text_content"); text != "" {
		spec.Text = text
	} else {
		spec.Shape = shapeOr(stringField(raw, "shape"), DefaultShape)
	}

	items, _ := raw["animations"].([]any)
	for i, item := range items {
		step, ok := parseStep(item, &spec.Notes, fmt.Sprintf("animations[%d]", i))
		if ok {
			spec.Steps = append(spec.Steps, step)
		}
	}
	if len(spec.Steps) == 0 {
		spec.Steps = []Step{{Kind: StepCreate}}
	}
	return spec
}

func errorField(raw RawDescription) (string, bool) {
	v := raw["error"]
	if !Truthy(v) {
		return "", false
	}
	switch e := v.(type) {
	case string:
		return e, true
	case bool:
		return DefaultUpstreamError, true
	default:
		return fmt.Sprint(e), true
	}
}

// Truthy reports whether a decoded JSON value counts as set: null, false,
// zero, "" and empty arrays or objects do not.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	case map[string]any:
		return len(x) > 0
	case []any:
		return len(x) > 0
	}
	return true
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func mapField(m map[string]any, key string) map[string]any {
	sub, _ := m[key].(map[string]any)
	return sub
}

func parseStep(item any, notes *[]string, where string) (Step, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		*notes = append(*notes, where+": not an object")
		return Step{}, false
	}
	name := stringField(m, "type")
	kind, ok := stepKinds[name]
	if !ok {
		*notes = append(*notes, fmt.Sprintf("%s: unknown animation type %q", where, name))
		return Step{}, false
	}

	step := Step{Kind: kind}
	details := mapField(m, "details")
	switch kind {
	case StepMove:
		step.Move = &MoveDetails{}
		decodeDetails(mapField(details, "movement_details"), step.Move, notes, where)
	case StepRotate:
		step.Rotate = &RotateDetails{}
		decodeDetails(mapField(details, "rotation_details"), step.Rotate, notes, where)
	case StepScale:
		step.Scale = &ScaleDetails{}
		decodeDetails(mapField(details, "scale_details"), step.Scale, notes, where)
	case StepChangeColor:
		step.ChangeColor = &ChangeColorDetails{}
		decodeDetails(mapField(details, "color_change_details"), step.ChangeColor, notes, where)
	case StepTransformShape:
		step.Transform = &TransformDetails{}
		decodeDetails(mapField(details, "transform_details"), step.Transform, notes, where)
	case StepFlash:
		step.Flash = &FlashDetails{}
		if fd := mapField(details, "flash_details"); fd != nil {
			decodeDetails(fd, step.Flash, notes, where)
		} else {
			decodeDetails(details, step.Flash, notes, where)
		}
	case StepGroup:
		members, _ := details["grouped_animations"].([]any)
		for i, member := range members {
			memberWhere := fmt.Sprintf("%s.grouped_animations[%d]", where, i)
			sub, ok := parseStep(member, notes, memberWhere)
			if !ok {
				continue
			}
			if !sub.Kind.Groupable() {
				*notes = append(*notes, fmt.Sprintf("%s: %s cannot be grouped", memberWhere, sub.Kind))
				continue
			}
			step.Group = append(step.Group, sub)
		}
	}
	return step, true
}

// decodeDetails fills out from in. Numbers given as strings are accepted;
// fields that still fail to decode are left unset so their defaults apply.
func decodeDetails(in map[string]any, out any, notes *[]string, where string) {
	if in == nil {
		return
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		*notes = append(*notes, fmt.Sprintf("%s: %v", where, err))
		return
	}
	if err := decoder.Decode(in); err != nil {
		*notes = append(*notes, fmt.Sprintf("%s: %v", where, err))
	}
}
