package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/2beens/expfit/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const backupTimeLayout = "20060102T150405Z"

// Backup validates the store file and writes a timestamped copy of it into
// dir. Only the newest keep backups are retained; keep <= 0 retains all.
func Backup(ctx context.Context, src *FileStore, dir string, now time.Time, keep int) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.backup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	doc, err := src.Load(ctx)
	if err != nil {
		return "", err
	}

	prefix, ext := backupNameParts(src.Path())
	backupPath := filepath.Join(dir, prefix+now.UTC().Format(backupTimeLayout)+ext)
	if err := NewFileStore(backupPath).Save(ctx, doc); err != nil {
		return "", fmt.Errorf("save backup: %w", err)
	}
	log.Infof("store [%s] backed up to [%s], users: %d", src.Path(), backupPath, len(doc.UserAccounts))

	if keep <= 0 {
		return backupPath, nil
	}
	if err := pruneBackups(dir, prefix, ext, keep); err != nil {
		return backupPath, fmt.Errorf("prune backups: %w", err)
	}

	return backupPath, nil
}

func backupNameParts(storePath string) (prefix, ext string) {
	base := filepath.Base(storePath)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-", ext
}

func pruneBackups(dir, prefix, ext string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var backups []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		backups = append(backups, name)
	}
	if len(backups) <= keep {
		return nil
	}

	// the timestamp layout sorts chronologically
	sort.Strings(backups)

	var errs error
	for _, name := range backups[:len(backups)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		log.Debugf("removed old backup [%s]", name)
	}
	return errs
}
