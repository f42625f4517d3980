package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores images in a directory served by the web server itself.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if dir == "" {
		return nil, errors.New("media: empty local directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create %s: %w", dir, err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Upload(ctx context.Context, filename string, r io.Reader) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	id := uuid.NewString() + ext

	f, err := os.OpenFile(filepath.Join(l.dir, id), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Image{}, fmt.Errorf("media: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return Image{}, fmt.Errorf("media: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return Image{}, fmt.Errorf("media: close file: %w", err)
	}
	return Image{URL: l.baseURL + "/" + id, PublicID: id}, nil
}

// Remove deletes the file. Removing an already absent image succeeds.
func (l *Local) Remove(ctx context.Context, publicID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if publicID == "" {
		return ErrEmptyID
	}
	if publicID != filepath.Base(publicID) {
		return fmt.Errorf("media: invalid public id %q", publicID)
	}
	err := os.Remove(filepath.Join(l.dir, publicID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: remove file: %w", err)
	}
	return nil
}
