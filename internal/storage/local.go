package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/config"
)

// LocalStore writes uploads below a directory on the local disk.
type LocalStore struct {
	dir    string
	prefix string
	rules  rules
	log    *zap.Logger
}

func NewLocalStore(cfg *config.StorageConfig, log *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", cfg.LocalDir, err)
	}
	return &LocalStore{
		dir:    cfg.LocalDir,
		prefix: cfg.PublicPrefix,
		rules:  newRules(cfg),
		log:    log,
	}, nil
}

func (s *LocalStore) Store(_ context.Context, upload Upload) (account.LicenseFile, error) {
	if err := s.rules.check(upload); err != nil {
		return account.LicenseFile{}, err
	}

	name := objectName(upload.Filename)
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return account.LicenseFile{}, fmt.Errorf("create %s: %w", full, err)
	}

	// One byte past the limit is enough to notice a lying Size.
	limit := upload.Size + 1
	if s.rules.maxSize > 0 {
		limit = s.rules.maxSize + 1
	}
	written, err := io.Copy(f, io.LimitReader(upload.Reader, limit))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && s.rules.maxSize > 0 && written > s.rules.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		return account.LicenseFile{}, err
	}

	s.log.Debug("license stored", zap.String("path", full), zap.Int64("size", written))

	return account.LicenseFile{
		Filename:     name,
		OriginalName: upload.Filename,
		Path:         full,
		MimeType:     upload.MimeType,
		Size:         written,
		URL:          path.Join(s.prefix, name),
	}, nil
}

func (s *LocalStore) Remove(_ context.Context, file account.LicenseFile) error {
	if file.Filename == "" {
		return nil
	}
	// Only names this store generated, never a caller supplied path.
	full := filepath.Join(s.dir, filepath.Base(file.Filename))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", full, err)
	}
	s.log.Debug("license removed", zap.String("path", full))
	return nil
}
