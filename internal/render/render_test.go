package render

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manim-server/internal/logger"
)

const scenes = "/scenes"

type fakeRunner struct {
	calls []fakeCall
	run   func(ctx context.Context) ([]byte, []byte, error)
}

type fakeCall struct {
	dir  string
	name string
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, fakeCall{dir: dir, name: name, args: args})
	if f.run == nil {
		return nil, nil, nil
	}
	return f.run(ctx)
}

func foundManim(name string) (string, error) {
	if name == "manim" {
		return "/usr/bin/manim", nil
	}
	return "", exec.ErrNotFound
}

func newTestInvoker(t *testing.T, fsys afero.Fs, r Runner, timeout time.Duration) *Invoker {
	t.Helper()
	inv, err := NewInvoker(Options{ScenesDir: scenes, Quality: "l", Timeout: timeout}, logger.Discard())
	require.NoError(t, err)
	return inv.WithFs(fsys).WithRunner(r).WithLookPath(foundManim)
}

func writeVideo(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte("video"), 0o644))
}

func TestIDGenerator(t *testing.T) {
	t.Run("Should return increasing ids within the same millisecond", func(t *testing.T) {
		fixed := time.UnixMilli(1747577571124)
		g := &IDGenerator{now: func() time.Time { return fixed }}

		assert.Equal(t, "1747577571124", g.Next())
		assert.Equal(t, "1747577571125", g.Next())
		assert.Equal(t, "1747577571126", g.Next())
	})
}

func TestLocator(t *testing.T) {
	t.Run("Should prefer the conventional path", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		l := NewLocator(fsys, scenes)
		expected := "/scenes/media/videos/advancedscene_1/480p15/AdvancedScene_1.mp4"
		writeVideo(t, fsys, expected)
		writeVideo(t, fsys, "/scenes/media/videos/advancedscene_1/other/AdvancedScene_1.mp4")

		p, fallback, err := l.Locate("advancedscene_1", "AdvancedScene_1", "480p15")

		require.NoError(t, err)
		assert.Equal(t, expected, p)
		assert.False(t, fallback)
	})

	t.Run("Should fall back to a suffix search in the output subtree", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		l := NewLocator(fsys, scenes)
		writeVideo(t, fsys, "/scenes/media/videos/advancedscene_1/720p30/partial_movie_files/clip.mp4")
		writeVideo(t, fsys, "/scenes/media/videos/advancedscene_1/720p30/Renamed_AdvancedScene_1.mp4")

		p, fallback, err := l.Locate("advancedscene_1", "AdvancedScene_1", "480p15")

		require.NoError(t, err)
		assert.Equal(t, "/scenes/media/videos/advancedscene_1/720p30/Renamed_AdvancedScene_1.mp4", p)
		assert.True(t, fallback)
	})

	t.Run("Should not look outside the scene's subtree", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		l := NewLocator(fsys, scenes)
		writeVideo(t, fsys, "/scenes/media/videos/advancedscene_2/480p15/AdvancedScene_1.mp4")
		require.NoError(t, fsys.MkdirAll("/scenes/media/videos/advancedscene_1", 0o755))

		_, _, err := l.Locate("advancedscene_1", "AdvancedScene_1", "480p15")

		assert.ErrorIs(t, err, ErrArtifactNotFound)
	})

	t.Run("Should report not found when the subtree is missing", func(t *testing.T) {
		_, _, err := NewLocator(afero.NewMemMapFs(), scenes).Locate("advancedscene_1", "AdvancedScene_1", "480p15")

		assert.ErrorIs(t, err, ErrArtifactNotFound)
	})
}

func TestNewInvoker(t *testing.T) {
	t.Run("Should reject unknown quality", func(t *testing.T) {
		_, err := NewInvoker(Options{ScenesDir: scenes, Quality: "x"}, nil)
		assert.Error(t, err)
	})

	t.Run("Should require a scenes directory", func(t *testing.T) {
		_, err := NewInvoker(Options{}, nil)
		assert.Error(t, err)
	})
}

func TestInvoker_Render(t *testing.T) {
	job := Job{SceneName: "AdvancedScene_42", Script: "print('scene')\n"}

	t.Run("Should write the scene, run manim and return the conventional path", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		stale := "/scenes/media/videos/advancedscene_42/480p15/old.mp4"
		writeVideo(t, fsys, stale)
		runner := &fakeRunner{}
		runner.run = func(context.Context) ([]byte, []byte, error) {
			ok, _ := afero.Exists(fsys, stale)
			assert.False(t, ok, "stale output should be purged before rendering")
			writeVideo(t, fsys, "/scenes/media/videos/advancedscene_42/480p15/AdvancedScene_42.mp4")
			return []byte("done"), nil, nil
		}
		inv := newTestInvoker(t, fsys, runner, time.Second)

		art, err := inv.Render(context.Background(), job)

		require.NoError(t, err)
		assert.Equal(t, "/scenes/media/videos/advancedscene_42/480p15/AdvancedScene_42.mp4", art.Path)
		assert.Equal(t, "media/videos/advancedscene_42/480p15/AdvancedScene_42.mp4", art.RelPath)
		script, err := afero.ReadFile(fsys, "/scenes/advancedscene_42.py")
		require.NoError(t, err)
		assert.Equal(t, job.Script, string(script))
		require.Len(t, runner.calls, 1)
		assert.Equal(t, fakeCall{
			dir:  scenes,
			name: "/usr/bin/manim",
			args: []string{"-ql", "advancedscene_42.py", "AdvancedScene_42"},
		}, runner.calls[0])
	})

	t.Run("Should find a renamed artifact by search", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		runner := &fakeRunner{run: func(context.Context) ([]byte, []byte, error) {
			writeVideo(t, fsys, "/scenes/media/videos/advancedscene_42/custom/x_AdvancedScene_42.mp4")
			return nil, nil, nil
		}}

		art, err := newTestInvoker(t, fsys, runner, time.Second).Render(context.Background(), job)

		require.NoError(t, err)
		assert.Equal(t, "media/videos/advancedscene_42/custom/x_AdvancedScene_42.mp4", art.RelPath)
	})

	t.Run("Should fail when no artifact is produced", func(t *testing.T) {
		_, err := newTestInvoker(t, afero.NewMemMapFs(), &fakeRunner{}, time.Second).Render(context.Background(), job)

		assert.ErrorIs(t, err, ErrArtifactNotFound)
	})

	t.Run("Should report a timeout", func(t *testing.T) {
		runner := &fakeRunner{run: func(ctx context.Context) ([]byte, []byte, error) {
			<-ctx.Done()
			return nil, nil, errors.New("signal: killed")
		}}

		_, err := newTestInvoker(t, afero.NewMemMapFs(), runner, 20*time.Millisecond).Render(context.Background(), job)

		assert.ErrorIs(t, err, ErrRenderTimeout)
	})

	t.Run("Should report a non-zero exit", func(t *testing.T) {
		runner := &fakeRunner{run: func(context.Context) ([]byte, []byte, error) {
			return nil, []byte("boom"), exec.Command("sh", "-c", "exit 3").Run()
		}}

		_, err := newTestInvoker(t, afero.NewMemMapFs(), runner, time.Second).Render(context.Background(), job)

		require.ErrorIs(t, err, ErrRenderFailed)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, exitErr.Code)
		assert.Equal(t, "boom", exitErr.Stderr)
	})

	t.Run("Should report a missing executable", func(t *testing.T) {
		runner := &fakeRunner{}
		inv := newTestInvoker(t, afero.NewMemMapFs(), runner, time.Second).
			WithLookPath(func(string) (string, error) { return "", exec.ErrNotFound })

		_, err := inv.Render(context.Background(), job)

		assert.ErrorIs(t, err, ErrExecutableNotFound)
		assert.Empty(t, runner.calls)
	})

	t.Run("Should fall back to the python module", func(t *testing.T) {
		runner := &fakeRunner{}
		inv := newTestInvoker(t, afero.NewMemMapFs(), runner, time.Second).
			WithLookPath(func(name string) (string, error) {
				if name == "python3" {
					return "/usr/bin/python3", nil
				}
				return "", exec.ErrNotFound
			})

		_, _ = inv.Render(context.Background(), job)

		require.Len(t, runner.calls, 1)
		assert.Equal(t, "/usr/bin/python3", runner.calls[0].name)
		assert.Equal(t, []string{"-m", "manim", "-ql", "advancedscene_42.py", "AdvancedScene_42"}, runner.calls[0].args)
	})

	t.Run("Should use the configured executable with its arguments", func(t *testing.T) {
		runner := &fakeRunner{}
		inv, err := NewInvoker(Options{ScenesDir: scenes, Executable: "uv run manim", Quality: "H"}, nil)
		require.NoError(t, err)
		inv.WithFs(afero.NewMemMapFs()).WithRunner(runner)

		_, _ = inv.Render(context.Background(), job)

		require.Len(t, runner.calls, 1)
		assert.Equal(t, "uv", runner.calls[0].name)
		assert.Equal(t, []string{"run", "manim", "-qh", "advancedscene_42.py", "AdvancedScene_42"}, runner.calls[0].args)
		assert.Equal(t, filepath.Join(scenes), inv.ScenesDir())
	})
}
