package filesystem

import (
	"io/fs"
	"sync"
	"testing/fstest"
)

// MockFS is an in-memory FS for tests. Paths are used verbatim as keys, so
// callers should pass forward-slash paths without a leading slash.
type MockFS struct {
	mu       sync.Mutex
	Files    fstest.MapFS
	WriteErr error
	ReadErr  error
	Writes   int
}

func NewMockFS() *MockFS {
	return &MockFS{Files: fstest.MapFS{}}
}

func (m *MockFS) ReadDir(path string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.Files.ReadDir(path)
}

func (m *MockFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.Files.ReadFile(path)
}

func (m *MockFS) Stat(path string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.Files.Stat(path)
}

func (m *MockFS) WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Writes++
	m.Files[path] = &fstest.MapFile{Data: append([]byte(nil), data...), Mode: perm}
	return nil
}
