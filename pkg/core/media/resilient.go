package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const retryPause = 200 * time.Millisecond

// Resilient bounds every call to the wrapped host by a timeout and retries
// failed calls. Uploads are buffered so a retry can resend the body.
type Resilient struct {
	host    Host
	timeout time.Duration
	retries int
}

func NewResilient(host Host, timeout time.Duration, retries int) *Resilient {
	if retries < 0 {
		retries = 0
	}
	return &Resilient{host: host, timeout: timeout, retries: retries}
}

func (r *Resilient) Upload(ctx context.Context, filename string, body io.Reader) (Image, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return Image{}, err
	}
	var img Image
	err = r.do(ctx, "upload", func(ctx context.Context) error {
		var err error
		img, err = r.host.Upload(ctx, filename, bytes.NewReader(data))
		return err
	})
	return img, err
}

func (r *Resilient) Remove(ctx context.Context, publicID string) error {
	if publicID == "" {
		return ErrEmptyID
	}
	return r.do(ctx, "remove", func(ctx context.Context) error {
		return r.host.Remove(ctx, publicID)
	})
}

func (r *Resilient) do(ctx context.Context, op string, call func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			hlog.CtxWarnf(ctx, "[MEDIA] %s failed, retrying (attempt %d): %v", op, attempt+1, err)
			select {
			case <-ctx.Done():
				return err
			case <-time.After(retryPause):
			}
		}
		err = r.once(ctx, call)
		if err == nil || errors.Is(err, ErrEmptyID) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (r *Resilient) once(ctx context.Context, call func(context.Context) error) error {
	if r.timeout <= 0 {
		return call(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return call(callCtx)
}
