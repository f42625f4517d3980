package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"social-blog/pkg/common/config"
)

// Cloudinary hosts images on cloudinary.com.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg config.CloudinaryConfig) (*Cloudinary, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cfg.URL != "" {
		cld, err = cloudinary.NewFromURL(cfg.URL)
	} else {
		if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
			return nil, errors.New("media: cloudinary credentials are not configured")
		}
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	}
	if err != nil {
		return nil, fmt.Errorf("media: init cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, _ string, r io.Reader) (Image, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: c.folder})
	if err != nil {
		return Image{}, fmt.Errorf("media: cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return Image{}, fmt.Errorf("media: cloudinary upload: %s", res.Error.Message)
	}
	return Image{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (c *Cloudinary) Remove(ctx context.Context, publicID string) error {
	if publicID == "" {
		return ErrEmptyID
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("media: cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("media: cloudinary destroy: %s", res.Error.Message)
	}
	return nil
}
