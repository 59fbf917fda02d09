package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"manim-server/internal/logger"
)

// qualityTags maps manim's -q flag onto the directory it renders into.
var qualityTags = map[string]string{
	"l": "480p15",
	"m": "720p30",
	"h": "1080p60",
	"p": "1440p60",
	"k": "2160p60",
}

// Runner runs the rendering engine in dir and returns its captured output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	killProcessGroup(cmd)
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

type Options struct {
	// ScenesDir holds scene files and is the engine's working directory.
	ScenesDir string
	// Executable overrides detection; it may carry arguments ("python3 -m manim").
	Executable string
	Quality    string
	Timeout    time.Duration
}

// Job is one scene to render.
type Job struct {
	SceneName string
	Script    string
}

// Artifact is a located video.
type Artifact struct {
	Path string
	// RelPath is Path relative to the scenes directory, slash separated.
	RelPath string
}

type Invoker struct {
	fs        afero.Fs
	runner    Runner
	lookPath  func(string) (string, error)
	scenesDir string
	exe       []string
	quality   string
	tag       string
	timeout   time.Duration
	log       logger.Logger
}

func NewInvoker(opts Options, log logger.Logger) (*Invoker, error) {
	quality := strings.ToLower(strings.TrimSpace(opts.Quality))
	if quality == "" {
		quality = "l"
	}
	tag, ok := qualityTags[quality]
	if !ok {
		return nil, fmt.Errorf("unknown render quality %q", opts.Quality)
	}
	if opts.ScenesDir == "" {
		return nil, fmt.Errorf("scenes directory is required")
	}
	dir, err := filepath.Abs(opts.ScenesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scenes directory: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Invoker{
		fs:        afero.NewOsFs(),
		runner:    ExecRunner{},
		lookPath:  exec.LookPath,
		scenesDir: dir,
		exe:       strings.Fields(opts.Executable),
		quality:   quality,
		tag:       tag,
		timeout:   timeout,
		log:       log.With("component", "render"),
	}, nil
}

// WithFs overrides the filesystem (e.g., an in-memory one in tests).
func (inv *Invoker) WithFs(fsys afero.Fs) *Invoker {
	if fsys != nil {
		inv.fs = fsys
	}
	return inv
}

func (inv *Invoker) WithRunner(r Runner) *Invoker {
	if r != nil {
		inv.runner = r
	}
	return inv
}

func (inv *Invoker) WithLookPath(fn func(string) (string, error)) *Invoker {
	if fn != nil {
		inv.lookPath = fn
	}
	return inv
}

func (inv *Invoker) ScenesDir() string { return inv.scenesDir }

// Prepare creates the scenes directory.
func (inv *Invoker) Prepare() error {
	return inv.fs.MkdirAll(filepath.Join(inv.scenesDir, "media", "videos"), 0o755)
}

// Render writes the scene file, clears earlier output for the same scene,
// runs the engine with a hard timeout and locates the produced video.
// Failures are not retried.
func (inv *Invoker) Render(ctx context.Context, job Job) (Artifact, error) {
	stem := strings.ToLower(job.SceneName)
	file := stem + ".py"
	log := inv.log.With("scene", job.SceneName)

	if err := inv.fs.MkdirAll(inv.scenesDir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("failed to create scenes directory: %w", err)
	}
	if err := afero.WriteFile(inv.fs, filepath.Join(inv.scenesDir, file), []byte(job.Script), 0o644); err != nil {
		return Artifact{}, fmt.Errorf("failed to write scene file: %w", err)
	}

	locator := NewLocator(inv.fs, inv.scenesDir)
	if err := inv.fs.RemoveAll(locator.OutputDir(stem)); err != nil {
		log.Warn("Could not clear previous output", "dir", locator.OutputDir(stem), "error", err)
	}

	cmd, err := inv.command()
	if err != nil {
		log.Error("Manim executable not found", "error", err)
		return Artifact{}, err
	}
	args := append(cmd[1:len(cmd):len(cmd)], "-q"+inv.quality, file, job.SceneName)

	runCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	log.Info("Running manim", "command", strings.Join(append([]string{cmd[0]}, args...), " "), "cwd", inv.scenesDir)
	start := time.Now()
	stdout, stderr, err := inv.runner.Run(runCtx, inv.scenesDir, cmd[0], args...)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			log.Error("Manim rendering timed out", "timeout", inv.timeout, "stdout", string(stdout), "stderr", string(stderr))
			return Artifact{}, fmt.Errorf("%w after %s", ErrRenderTimeout, inv.timeout)
		case errors.Is(err, exec.ErrNotFound):
			log.Error("Manim executable not found", "executable", cmd[0], "error", err)
			return Artifact{}, fmt.Errorf("%w: %s", ErrExecutableNotFound, cmd[0])
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Error("Manim rendering failed", "code", exitErr.ExitCode(), "stdout", string(stdout), "stderr", string(stderr))
			return Artifact{}, &ExitError{Code: exitErr.ExitCode(), Stderr: string(stderr)}
		}
		log.Error("Manim rendering failed", "error", err, "stderr", string(stderr))
		return Artifact{}, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	log.Debug("Manim finished", "duration", elapsed, "stdout", string(stdout))

	path, fallback, err := locator.Locate(stem, job.SceneName, inv.tag)
	if err != nil {
		log.Error("Could not locate the output video", "dir", locator.OutputDir(stem), "error", err)
		return Artifact{}, err
	}
	if fallback {
		log.Warn("Video not at expected path, found by search",
			"expected", locator.ExpectedPath(stem, job.SceneName, inv.tag), "found", path)
	}

	rel, err := filepath.Rel(inv.scenesDir, path)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to relativize %s: %w", path, err)
	}
	log.Info("Video file created", "path", path, "duration", elapsed)
	return Artifact{Path: path, RelPath: filepath.ToSlash(rel)}, nil
}

// command resolves the engine invocation: the configured override, the
// manim script on PATH, or the python module.
func (inv *Invoker) command() ([]string, error) {
	if len(inv.exe) > 0 {
		return inv.exe, nil
	}
	if p, err := inv.lookPath("manim"); err == nil {
		return []string{p}, nil
	}
	if p, err := inv.lookPath("python3"); err == nil {
		return []string{p, "-m", "manim"}, nil
	}
	return nil, ErrExecutableNotFound
}
