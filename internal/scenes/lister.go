// Package scenes enumerates the scene images available under the static-asset root.
package scenes

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"syscall"

	"hll-geoguesser/internal/apperr"
	"hll-geoguesser/internal/config"
	"hll-geoguesser/internal/filesystem"
	"hll-geoguesser/internal/logger"
)

// Lister returns the scene files of the configured directory.
type Lister struct {
	dir    string // on disk
	relDir string // relative to the web root, forward slashes
	fsys   filesystem.FS
	log    *logger.Logger
}

func NewLister(cfg *config.Config, fsys filesystem.FS, log *logger.Logger) *Lister {
	return &Lister{
		dir:    cfg.SceneDir(),
		relDir: cfg.SceneDirRel(),
		fsys:   fsys,
		log:    log.With("component", "scenes"),
	}
}

// Dir is the scene directory on disk.
func (l *Lister) Dir() string { return l.dir }

// List returns one web-root-relative path per regular file directly inside
// the scene directory, in enumeration order. Symlinks count when their target
// is a regular file. A missing directory is reported
// as apperr.ErrDirectoryNotFound; an empty one yields an empty slice.
func (l *Lister) List(ctx context.Context) ([]string, error) {
	const op = "scenes.List"
	if err := ctx.Err(); err != nil {
		return nil, apperr.New(apperr.KindInternal, op, err)
	}

	entries, err := l.fsys.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			l.log.Warn("scene directory not found", "dir", l.dir)
			return nil, apperr.New(apperr.KindDirectoryNotFound, op, err)
		}
		l.log.Error("failed to read scene directory", "dir", l.dir, "error", err)
		return nil, apperr.New(apperr.KindInternal, op, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !l.isSceneFile(e) {
			continue
		}
		files = append(files, path.Join(l.relDir, e.Name()))
	}
	l.log.Debug("listed scenes", "dir", l.dir, "count", len(files))
	return files, nil
}

func (l *Lister) isSceneFile(e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := l.fsys.Stat(filepath.Join(l.dir, e.Name()))
	if err != nil {
		l.log.Debug("skipping unresolvable symlink", "name", e.Name(), "error", err)
		return false
	}
	return info.Mode().IsRegular()
}
