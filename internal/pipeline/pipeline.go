package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"manim-server/internal/animation"
	"manim-server/internal/completion"
	"manim-server/internal/logger"
	"manim-server/internal/manim"
	"manim-server/internal/metrics"
	"manim-server/internal/render"
	"manim-server/internal/store"
)

const (
	// MediaPrefix is the URL path artifacts are served under.
	MediaPrefix = "/generated_media/"

	DefaultPrompt     = "a default yellow square"
	MissingBodyPrompt = "a default green circle"

	MessageSuccess         = "Animation generated successfully!"
	MessageRenderFailed    = "Failed to generate Manim script from prompt or rendering failed."
	MessageArtifactMissing = "Failed to generate animation video (file not found post-render)."
)

type Describer interface {
	Describe(ctx context.Context, prompt string) (animation.RawDescription, error)
}

type Renderer interface {
	Render(ctx context.Context, job render.Job) (render.Artifact, error)
}

type Recorder interface {
	SaveRender(ctx context.Context, r store.Render) error
}

// Result describes one generation request.
type Result struct {
	ID        string
	SceneName string
	// VideoPath is the artifact's absolute path; empty on failure.
	VideoPath string
	VideoURL  string
	Message   string
	// UpstreamError is set when the video shows an error text instead of the
	// requested animation.
	UpstreamError string
}

// Pipeline turns a prompt into a rendered video.
type Pipeline struct {
	describer Describer
	renderer  Renderer
	recorder  Recorder
	ids       *render.IDGenerator
	metrics   *metrics.Metrics
	log       logger.Logger
}

func New(d Describer, r Renderer, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}
	return &Pipeline{
		describer: d,
		renderer:  r,
		ids:       render.NewIDGenerator(),
		log:       log.With("component", "pipeline"),
	}
}

// WithRecorder records every request. A nil recorder disables history.
func (p *Pipeline) WithRecorder(rec Recorder) *Pipeline {
	p.recorder = rec
	return p
}

func (p *Pipeline) WithMetrics(m *metrics.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// Generate runs a prompt through description, compilation and rendering.
// Description failures are not errors: the video then carries the failure
// text. The returned error is a render failure and Result.Message is always
// suitable for the caller.
func (p *Pipeline) Generate(ctx context.Context, prompt, userID string) (Result, error) {
	if strings.TrimSpace(prompt) == "" {
		p.log.Info("Received empty prompt, using default")
		prompt = DefaultPrompt
	}
	id := p.ids.Next()
	res := Result{ID: id, SceneName: manim.SceneName(id)}
	log := p.log.With("id", id)
	log.Info("Received prompt for animation", "prompt", prompt)

	raw, descErr := p.describer.Describe(ctx, prompt)
	p.metrics.ObserveCompletion(completionOutcome(descErr))

	spec := animation.Normalize(raw, descErr)
	for _, n := range spec.Notes {
		log.Warn("Discarded part of the description", "note", n)
	}
	res.UpstreamError = spec.UpstreamError
	if spec.UpstreamError != "" {
		log.Warn("Using fallback description", "reason", spec.UpstreamError)
	}

	prog := animation.Compile(spec)
	for _, w := range prog.Warnings {
		log.Warn("Compiler warning", "warning", w)
	}
	p.metrics.ObserveProgram(len(prog.Effects))

	err := p.render(ctx, &res, prog)
	p.record(ctx, prompt, userID, res, err)
	return res, err
}

func (p *Pipeline) render(ctx context.Context, res *Result, prog animation.Program) error {
	script, err := manim.Emit(prog, res.SceneName)
	if err != nil {
		p.log.Error("Failed to emit scene", "scene", res.SceneName, "error", err)
		res.Message = MessageRenderFailed
		p.metrics.ObserveRender(metrics.OutcomeFailure, 0)
		return err
	}

	start := time.Now()
	art, err := p.renderer.Render(ctx, render.Job{SceneName: res.SceneName, Script: script})
	elapsed := time.Since(start)
	if err != nil {
		res.Message = failureMessage(err)
		p.metrics.ObserveRender(metrics.OutcomeFailure, elapsed)
		return err
	}

	res.VideoPath = art.Path
	res.VideoURL = MediaPrefix + art.RelPath
	res.Message = MessageSuccess
	outcome := metrics.OutcomeSuccess
	if res.UpstreamError != "" {
		outcome = metrics.OutcomeFallback
	}
	p.metrics.ObserveRender(outcome, elapsed)
	return nil
}

func (p *Pipeline) record(ctx context.Context, prompt, userID string, res Result, renderErr error) {
	if p.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := p.recorder.SaveRender(ctx, store.Render{
		ID:            res.ID,
		Prompt:        prompt,
		SceneName:     res.SceneName,
		VideoURL:      res.VideoURL,
		Success:       renderErr == nil,
		Message:       res.Message,
		UpstreamError: res.UpstreamError,
		UserID:        userID,
	})
	if err != nil {
		p.log.Error("Failed to record render", "id", res.ID, "error", err)
	}
}

func failureMessage(err error) string {
	if errors.Is(err, render.ErrArtifactNotFound) {
		return MessageArtifactMissing
	}
	return MessageRenderFailed + " " + err.Error()
}

func completionOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	var cerr *completion.Error
	if errors.As(err, &cerr) && cerr.Reason == completion.ReasonNoCredential {
		return metrics.OutcomeFallback
	}
	return metrics.OutcomeFailure
}
