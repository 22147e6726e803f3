package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/2beens/expfit/internal/telemetry/tracing"
	"github.com/2beens/expfit/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultFileName matches the file name the data has always been kept under.
const DefaultFileName = "user_data.json"

// FileStore keeps the whole document in a single JSON file.
// It is not safe for use by more than one process: the last writer wins.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path}
}

func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the document from disk. A missing file yields an empty document.
func (fs *FileStore) Load(ctx context.Context) (_ *Document, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "fileStore.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("store.path", fs.path))

	exists, err := pkg.PathExists(fs.path, false)
	if err != nil {
		return nil, fmt.Errorf("check store file: %w", err)
	}
	if !exists {
		log.Debugf("store file [%s] does not exist, starting with an empty document", fs.path)
		return NewDocument(), nil
	}

	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, &CorruptStoreError{Path: fs.path, Err: err}
	}

	if repaired := doc.repairLockStep(); len(repaired) > 0 {
		log.Warnf("store file [%s]: added missing entries for users %v", fs.path, repaired)
	}

	span.SetAttributes(attribute.Int("store.users", len(doc.UserAccounts)))
	log.Debugf("store loaded from [%s], users: %d", fs.path, len(doc.UserAccounts))

	return doc, nil
}

// Save replaces the backing file with the serialized document. The data is
// written to a temp file next to it first and renamed over it afterwards.
func (fs *FileStore) Save(ctx context.Context, doc *Document) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "fileStore.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	span.SetAttributes(attribute.Int("store.size", len(data)))

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fs.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				log.Warnf("remove temp store file [%s]: %s", tmpPath, removeErr)
			}
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpPath, fs.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}

	log.Tracef("store saved to [%s], %d bytes", fs.path, len(data))

	return nil
}

func decodeDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	if dec.More() {
		return nil, errors.New("unexpected data after document")
	}

	switch {
	case doc.UserAccounts == nil:
		return nil, errors.New("missing user_accounts")
	case doc.WorkoutLogs == nil:
		return nil, errors.New("missing workout_logs")
	case doc.Exp == nil:
		return nil, errors.New("missing exp")
	case doc.CalorieLogs == nil:
		return nil, errors.New("missing calorie_logs")
	case doc.WaterLogs == nil:
		return nil, errors.New("missing water_logs")
	}

	return &doc, nil
}
