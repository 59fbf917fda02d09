package render

import (
	"errors"
	"fmt"
)

var (
	ErrExecutableNotFound = errors.New("manim executable not found")
	ErrRenderTimeout      = errors.New("manim rendering timed out")
	ErrRenderFailed       = errors.New("manim rendering failed")
	ErrArtifactNotFound   = errors.New("rendered video not found")
)

// ExitError reports a non-zero exit of the rendering engine.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", ErrRenderFailed, e.Code)
}

func (e *ExitError) Unwrap() error {
	return ErrRenderFailed
}
