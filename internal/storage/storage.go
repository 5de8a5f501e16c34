package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrForeignURL = errors.New("storage: url not managed by this provider")

type Provider interface {
	// Upload stores data and returns its public URL.
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

type Config struct {
	Provider  string
	LocalDir  string
	PublicURL string

	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

func New(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.PublicURL)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unsupported provider %q", cfg.Provider)
	}
}

// objectKey builds "products/2025/01/<uuid>.jpg" style keys.
func objectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	now := time.Now().UTC()
	return path.Join("products", now.Format("2006"), now.Format("01"), uuid.NewString()+ext)
}
