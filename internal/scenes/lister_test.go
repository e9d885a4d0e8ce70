package scenes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"hll-geoguesser/internal/apperr"
	"hll-geoguesser/internal/config"
	"hll-geoguesser/internal/filesystem"
	"hll-geoguesser/internal/logger"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.WebRoot = t.TempDir()
	return cfg
}

func TestListReturnsRelativeForwardSlashPaths(t *testing.T) {
	cfg := newTestConfig(t)
	dir := cfg.SceneDir()
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	names := []string{"a.jpg", "b.png", "Carentan 1.jpg"}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("img"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	// Files below a subdirectory are not scenes.
	if err := os.WriteFile(filepath.Join(dir, "nested", "deep.jpg"), []byte("img"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	lister := NewLister(cfg, filesystem.LocalFS{}, logger.Nop())
	got, err := lister.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != len(names) {
		t.Fatalf("Expected %d scenes, got %d: %v", len(names), len(got), got)
	}

	sort.Strings(got)
	want := []string{"Scenes/SME/Carentan 1.jpg", "Scenes/SME/a.jpg", "Scenes/SME/b.png"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Scene %d: expected %q, got %q", i, want[i], got[i])
		}
		if strings.Contains(got[i], `\`) {
			t.Errorf("Scene path uses backslashes: %q", got[i])
		}
	}
}

func TestListIncludesSymlinkedFiles(t *testing.T) {
	cfg := newTestConfig(t)
	dir := cfg.SceneDir()
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, n := range []string{"a.jpg", "real.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("img"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	if err := os.Symlink(filepath.Join(dir, "real.jpg"), filepath.Join(dir, "linked.jpg")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	// Links to directories and dangling links are not scenes.
	if err := os.Symlink(filepath.Join(dir, "nested"), filepath.Join(dir, "dirlink")); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "missing.jpg"), filepath.Join(dir, "dangling.jpg")); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	got, err := NewLister(cfg, filesystem.LocalFS{}, logger.Nop()).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	sort.Strings(got)
	want := []string{"Scenes/SME/a.jpg", "Scenes/SME/linked.jpg", "Scenes/SME/real.jpg"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestListEmptyDirectory(t *testing.T) {
	cfg := newTestConfig(t)
	if err := os.MkdirAll(cfg.SceneDir(), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	got, err := NewLister(cfg, filesystem.LocalFS{}, logger.Nop()).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}

func TestListMissingDirectory(t *testing.T) {
	cfg := newTestConfig(t)

	got, err := NewLister(cfg, filesystem.LocalFS{}, logger.Nop()).List(context.Background())
	if !errors.Is(err, apperr.ErrDirectoryNotFound) {
		t.Fatalf("Expected ErrDirectoryNotFound, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected no result on error, got %v", got)
	}
}

func TestListPathIsAFile(t *testing.T) {
	cfg := newTestConfig(t)
	if err := os.MkdirAll(filepath.Dir(cfg.SceneDir()), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(cfg.SceneDir(), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := NewLister(cfg, filesystem.LocalFS{}, logger.Nop()).List(context.Background())
	if !errors.Is(err, apperr.ErrDirectoryNotFound) {
		t.Fatalf("Expected ErrDirectoryNotFound, got %v", err)
	}
}

func TestListReadFailureIsInternal(t *testing.T) {
	cfg := config.Default()
	fsys := filesystem.NewMockFS()
	fsys.ReadErr = errors.New("i/o error")

	_, err := NewLister(cfg, fsys, logger.Nop()).List(context.Background())
	if err == nil {
		t.Fatal("Expected error")
	}
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Errorf("Expected KindInternal, got %v", apperr.KindOf(err))
	}
}

func TestListWithMockFS(t *testing.T) {
	// MockFS keys are slash paths; the lister joins with the OS separator.
	if filepath.Separator != '/' {
		t.Skip("MockFS keys are forward-slash only")
	}
	cfg := config.Default()
	fsys := filesystem.NewMockFS()
	for _, n := range []string{"x.jpg", "y.jpg"} {
		if err := fsys.WriteFileAtomic("wwwroot/Scenes/SME/"+n, []byte("img"), 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}
	}

	got, err := NewLister(cfg, fsys, logger.Nop()).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0] != "Scenes/SME/x.jpg" || got[1] != "Scenes/SME/y.jpg" {
		t.Errorf("Unexpected scenes: %v", got)
	}
}

func TestListCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLister(config.Default(), filesystem.NewMockFS(), logger.Nop()).List(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
