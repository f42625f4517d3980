// Package media stores post images and avatars on an external image host.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"social-blog/pkg/common/config"
)

// ErrEmptyID is returned by Remove for an empty public id.
var ErrEmptyID = errors.New("media: empty public id")

// Image is a hosted image reference.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Host uploads and removes images.
type Host interface {
	Upload(ctx context.Context, filename string, r io.Reader) (Image, error)
	Remove(ctx context.Context, publicID string) error
}

// New builds the host selected by cfg.Driver, wrapped with the configured
// timeout and retry policy.
func New(cfg config.MediaConfig) (Host, error) {
	var (
		host Host
		err  error
	)
	switch cfg.Driver {
	case "cloudinary":
		host, err = NewCloudinary(cfg.Cloudinary)
	case "", "local":
		host, err = NewLocal(cfg.Local.Dir, cfg.Local.BaseURL)
	default:
		err = fmt.Errorf("media: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return NewResilient(host, cfg.Timeout, cfg.Retries), nil
}
