package media

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researchhive/hive-api/internal/config"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fakeStore struct {
	input   *s3.PutObjectInput
	body    []byte
	err     error
	deleted []string
}

func (f *fakeStore) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeStore) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func newTestUploader(store ObjectStore) *S3Uploader {
	u := NewS3Uploader(store, config.MediaConfig{Bucket: "pics", Region: "eu-west-1", PublicBaseURL: "https://cdn.example/", MaxImageMB: 1})
	u.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return u
}

func TestS3Uploader_UploadDataURI(t *testing.T) {
	store := &fakeStore{}
	u := newTestUploader(store)

	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
	url, err := u.UploadImage(context.Background(), data)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://cdn.example/profile-pics/2026/03/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	assert.Equal(t, "pics", aws.ToString(store.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(store.input.ContentType))
	assert.Equal(t, pngHeader, store.body)
}

func TestS3Uploader_RejectsNonImages(t *testing.T) {
	u := newTestUploader(&fakeStore{})

	cases := []string{
		"",
		"data:text/plain,hello",
		"data:image/png;base64,%%%",
		base64.StdEncoding.EncodeToString([]byte("just some text")),
	}
	for _, data := range cases {
		_, err := u.UploadImage(context.Background(), data)
		assert.ErrorIs(t, err, ErrInvalidImage, data)
	}
}

func TestS3Uploader_TooLarge(t *testing.T) {
	u := newTestUploader(&fakeStore{})
	big := make([]byte, 2*1024*1024)
	copy(big, pngHeader)

	_, err := u.UploadImage(context.Background(), base64.StdEncoding.EncodeToString(big))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestS3Uploader_PutFailure(t *testing.T) {
	boom := errors.New("s3 down")
	u := newTestUploader(&fakeStore{err: boom})

	_, err := u.UploadImage(context.Background(), base64.StdEncoding.EncodeToString(pngHeader))
	assert.ErrorIs(t, err, boom)
}

func TestNewUploader_Disabled(t *testing.T) {
	u, err := NewUploader(context.Background(), config.MediaConfig{})
	require.NoError(t, err)

	_, err = u.UploadImage(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}

func TestS3Uploader_DeleteImage(t *testing.T) {
	store := &fakeStore{}
	u := newTestUploader(store)

	url, err := u.UploadImage(context.Background(), base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)
	require.NoError(t, u.DeleteImage(context.Background(), url))

	require.Len(t, store.deleted, 1)
	assert.Equal(t, "pics/"+strings.TrimPrefix(url, "https://cdn.example/"), store.deleted[0])

	err = u.DeleteImage(context.Background(), "https://elsewhere.example/profile-pics/x.png")
	assert.ErrorIs(t, err, ErrForeignURL)
	assert.Len(t, store.deleted, 1)
}
