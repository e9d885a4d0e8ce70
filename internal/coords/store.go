// Package coords persists the scene coordinate set to a single JSON document.
//
// Every save replaces the whole document. Writes are serialized by the Store
// and go through filesystem.FS.WriteFileAtomic, so concurrent saves resolve
// to last-writer-wins and a reader never sees a torn file.
package coords

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"hll-geoguesser/internal/apperr"
	"hll-geoguesser/internal/config"
	"hll-geoguesser/internal/filesystem"
	"hll-geoguesser/internal/logger"
	"hll-geoguesser/internal/models"
)

//go:embed scene_coordinates.schema.json
var schemaJSON []byte

const schemaURL = "mem://schemas/scene_coordinates.json"

const filePerm fs.FileMode = 0644

// Store owns the persisted coordinates file.
type Store struct {
	path   string
	schema *jsonschema.Schema
	fsys   filesystem.FS
	log    *logger.Logger

	mu sync.Mutex // single writer for path
}

// NewStore compiles the payload schema and binds the store to cfg.CoordsPath().
func NewStore(cfg *config.Config, fsys filesystem.FS, log *logger.Logger) (*Store, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Store{
		path:   cfg.CoordsPath(),
		schema: schema,
		fsys:   fsys,
		log:    log.With("component", "coords"),
	}, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add coordinates schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile coordinates schema: %w", err)
	}
	return schema, nil
}

// Path is the persisted file on disk.
func (s *Store) Path() string { return s.path }

// FileName is the base name of the persisted file.
func (s *Store) FileName() string { return path.Base(filepath.ToSlash(s.path)) }

// Parse decodes payload into coordinate records. Errors are of kind
// MalformedInput.
func (s *Store) Parse(payload []byte) ([]models.SceneCoordinate, error) {
	const op = "coords.Parse"

	raw, err := decodeStrict(payload)
	if err != nil {
		return nil, apperr.New(apperr.KindMalformedInput, op, err)
	}
	if err := s.schema.Validate(raw); err != nil {
		return nil, apperr.New(apperr.KindMalformedInput, op, err)
	}

	records := []models.SceneCoordinate{}
	if err := json.Unmarshal(payload, &records); err != nil {
		// e.g. numbers outside float64 range
		return nil, apperr.New(apperr.KindMalformedInput, op, err)
	}
	return records, nil
}

// decodeStrict decodes exactly one JSON value from payload.
func decodeStrict(payload []byte) (interface{}, error) {
	// encoding/json would replace invalid bytes with U+FFFD instead of failing.
	if !utf8.Valid(payload) {
		return nil, errors.New("payload is not valid UTF-8")
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty payload")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level JSON value")
	}
	return v, nil
}

// Save parses payload and, on success, replaces the persisted document with
// the parsed records. It returns the number of records written. The existing
// file is left untouched on any error.
func (s *Store) Save(ctx context.Context, payload []byte) (int, error) {
	s.log.Debug("received coordinates payload", "bytes", len(payload), "payload", string(payload))

	records, err := s.Parse(payload)
	if err != nil {
		s.log.Warn("rejected coordinates payload", "error", err, "payload", string(payload))
		return 0, err
	}
	for _, r := range records {
		s.log.Debug("parsed scene coordinate", "record", r.String())
	}

	if err := s.write(ctx, records); err != nil {
		return 0, err
	}
	s.log.Info("saved scene coordinates", "file", s.path, "count", len(records))
	return len(records), nil
}

func (s *Store) write(ctx context.Context, records []models.SceneCoordinate) error {
	const op = "coords.Save"

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return apperr.New(apperr.KindInternal, op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return apperr.New(apperr.KindInternal, op, err)
	}
	if err := s.fsys.WriteFileAtomic(s.path, data, filePerm); err != nil {
		s.log.Error("failed to write coordinates file", "file", s.path, "error", err)
		return apperr.New(apperr.KindPersistenceFailure, op, err)
	}
	return nil
}

// Load returns the persisted records. A missing file is an empty set.
func (s *Store) Load(ctx context.Context) ([]models.SceneCoordinate, error) {
	const op = "coords.Load"
	if err := ctx.Err(); err != nil {
		return nil, apperr.New(apperr.KindInternal, op, err)
	}

	data, err := s.fsys.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.SceneCoordinate{}, nil
		}
		return nil, apperr.New(apperr.KindInternal, op, err)
	}

	records := []models.SceneCoordinate{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperr.New(apperr.KindInternal, op, fmt.Errorf("corrupt coordinates file %s: %w", s.path, err))
	}
	return records, nil
}
