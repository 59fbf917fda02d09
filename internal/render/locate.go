package render

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// VideoExt is the container the engine writes by default.
const VideoExt = "mp4"

var errStopWalk = errors.New("stop walk")

// Locator finds the video the engine produced for a scene. Manim writes to
// <root>/media/videos/<stem>/<quality-tag>/<Scene>.mp4, but the quality
// directory and file name vary with engine version and flags, so a search of
// the stem's subtree backs up the convention.
type Locator struct {
	fs   afero.Fs
	root string
}

func NewLocator(fsys afero.Fs, root string) *Locator {
	return &Locator{fs: fsys, root: root}
}

// OutputDir is the subtree the engine writes the stem's videos into.
func (l *Locator) OutputDir(stem string) string {
	return filepath.Join(l.root, "media", "videos", stem)
}

// ExpectedPath is the conventional location of the scene's video.
func (l *Locator) ExpectedPath(stem, sceneName, qualityTag string) string {
	return filepath.Join(l.OutputDir(stem), qualityTag, sceneName+"."+VideoExt)
}

// Locate returns the conventional path when it exists, otherwise the first
// file under the stem's output subtree whose name ends with "<sceneName>.mp4".
// fallback reports whether the search produced the result. ErrArtifactNotFound
// is returned when neither strategy finds a file.
func (l *Locator) Locate(stem, sceneName, qualityTag string) (p string, fallback bool, err error) {
	expected := l.ExpectedPath(stem, sceneName, qualityTag)
	if ok, err := afero.Exists(l.fs, expected); err != nil {
		return "", false, err
	} else if ok {
		return expected, false, nil
	}

	dir := l.OutputDir(stem)
	if ok, err := afero.DirExists(l.fs, dir); err != nil {
		return "", false, err
	} else if !ok {
		return "", false, ErrArtifactNotFound
	}

	suffix := sceneName + "." + VideoExt
	var found string
	fsys := afero.NewIOFS(afero.NewBasePathFs(l.fs, dir))
	err = doublestar.GlobWalk(fsys, "**/*."+VideoExt, func(p string, d fs.DirEntry) error {
		if d.IsDir() || !strings.HasSuffix(path.Base(p), suffix) {
			return nil
		}
		found = filepath.Join(dir, filepath.FromSlash(p))
		return errStopWalk
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return "", false, err
	}
	if found == "" {
		return "", false, ErrArtifactNotFound
	}
	return found, true, nil
}
