// Package storage accepts press license uploads and records where they were
// put. Files are opaque to the rest of the service.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/config"
)

var (
	ErrTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrEmpty           = errors.New("file is empty")
)

type Upload struct {
	Filename string
	Size     int64
	MimeType string
	Reader   io.Reader
}

// Intake persists an upload and returns the reference stored on the account.
// Remove discards a stored upload whose registration did not go through.
type Intake interface {
	Store(ctx context.Context, upload Upload) (account.LicenseFile, error)
	Remove(ctx context.Context, file account.LicenseFile) error
}

type rules struct {
	maxSize int64
	allowed map[string]struct{}
}

func newRules(cfg *config.StorageConfig) rules {
	r := rules{maxSize: cfg.MaxSize, allowed: make(map[string]struct{}, len(cfg.AllowedTypes))}
	for _, t := range cfg.AllowedTypes {
		r.allowed[strings.ToLower(t)] = struct{}{}
	}
	return r
}

func (r rules) check(u Upload) error {
	if u.Size <= 0 || u.Reader == nil {
		return ErrEmpty
	}
	if r.maxSize > 0 && u.Size > r.maxSize {
		return ErrTooLarge
	}
	if _, ok := r.allowed[strings.ToLower(u.MimeType)]; !ok {
		return ErrUnsupportedType
	}
	return nil
}

// objectName builds a collision free name that keeps the original extension.
func objectName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("license-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}
