package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploadAPI struct {
	params uploader.UploadParams
	file   interface{}
	result *uploader.UploadResult
	err    error
}

func (f *fakeUploadAPI) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.file = file
	f.params = params
	return f.result, f.err
}

func newTestCloudinary(f *fakeUploadAPI) *Cloudinary {
	return newCloudinary(f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCloudinary_Upload(t *testing.T) {
	f := &fakeUploadAPI{result: &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/x.png"}}
	c := newTestCloudinary(f)

	url, err := c.Upload(context.Background(), "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/x.png", url)

	assert.Equal(t, "data:image/png;base64,AAAA", f.file)
	assert.Equal(t, api.Bool(true), f.params.Overwrite)
	assert.Equal(t, api.Bool(true), f.params.Invalidate)
	assert.Equal(t, "auto", f.params.ResourceType)
}

func TestCloudinary_UploadErrorResponse(t *testing.T) {
	f := &fakeUploadAPI{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}

	_, err := newTestCloudinary(f).Upload(context.Background(), "not-an-image")
	require.Error(t, err)
	assert.Equal(t, "Invalid image file", err.Error())
}

func TestCloudinary_UploadTransportError(t *testing.T) {
	f := &fakeUploadAPI{err: errors.New("dial tcp: timeout")}

	_, err := newTestCloudinary(f).Upload(context.Background(), "https://img.test/a.png")
	assert.EqualError(t, err, "dial tcp: timeout")
}

func TestCloudinary_EmptyImage(t *testing.T) {
	_, err := newTestCloudinary(&fakeUploadAPI{}).Upload(context.Background(), "")
	assert.Error(t, err)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCloudinary_RejectedUploadsDoNotOpenBreaker(t *testing.T) {
	f := &fakeUploadAPI{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}
	c := newTestCloudinary(f)

	for i := 0; i < 5; i++ {
		_, err := c.Upload(context.Background(), "not-an-image")
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, c.breaker.State())

	f.result = &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/ok.png"}
	url, err := c.Upload(context.Background(), "https://img.test/ok.png")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/ok.png", url)
}

func TestCloudinary_TransportErrorsOpenBreaker(t *testing.T) {
	f := &fakeUploadAPI{err: errors.New("dial tcp: timeout")}
	c := newTestCloudinary(f)

	for i := 0; i < 5; i++ {
		_, _ = c.Upload(context.Background(), "https://img.test/a.png")
	}
	assert.Equal(t, gobreaker.StateOpen, c.breaker.State())
}
