package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sony/gobreaker/v2"

	"go-storefront/utils"
)

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// Cloudinary uploads images to Cloudinary, overwriting assets with the same
// public id and invalidating CDN copies.
type Cloudinary struct {
	api     uploadAPI
	breaker *gobreaker.CircuitBreaker[string]
}

// NewCloudinary creates an uploader for the given account.
func NewCloudinary(cloudName, apiKey, apiSecret string, logger *slog.Logger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	return newCloudinary(&cld.Upload, logger), nil
}

func newCloudinary(a uploadAPI, logger *slog.Logger) *Cloudinary {
	return &Cloudinary{
		api:     a,
		breaker: utils.NewBreaker[string]("cloudinary", logger, isRejected),
	}
}

// rejectedError is an upload Cloudinary answered with an error payload,
// such as an unreadable image. It does not count against the breaker.
type rejectedError struct {
	message string
}

func (e *rejectedError) Error() string { return e.message }

func isRejected(err error) bool {
	var rejected *rejectedError
	return errors.As(err, &rejected)
}

func (c *Cloudinary) Name() string {
	return "cloudinary"
}

func (c *Cloudinary) Upload(ctx context.Context, image string) (string, error) {
	if image == "" {
		return "", errors.New("image is required")
	}

	params := uploader.UploadParams{
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "auto",
	}

	return c.breaker.Execute(func() (string, error) {
		res, err := c.api.Upload(ctx, image, params)
		if err != nil {
			return "", err
		}
		if res.Error.Message != "" {
			return "", &rejectedError{message: res.Error.Message}
		}
		if res.SecureURL == "" {
			return "", errors.New("upload returned no secure url")
		}
		return res.SecureURL, nil
	})
}
