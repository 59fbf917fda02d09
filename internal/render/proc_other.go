//go:build !unix

package render

import "os/exec"

// killProcessGroup keeps the default cancellation, which kills only the direct child.
func killProcessGroup(*exec.Cmd) {}
