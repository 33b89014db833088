package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantops/lib/tenant"
)

type fakeUploader struct {
	s3manageriface.UploaderAPI
	uploads map[string]string // key -> content type
	bodies  map[string][]byte
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: map[string]string{}, bodies: map[string][]byte{}}
}

func (f *fakeUploader) UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.uploads[aws.StringValue(input.Key)] = aws.StringValue(input.ContentType)
	f.bodies[aws.StringValue(input.Key)] = body
	return &s3manager.UploadOutput{}, nil
}

type fakeS3 struct {
	s3iface.S3API
	pages       [][]string // keys returned per listing, in order
	listCalls   int
	deleted     []string
	listErr     error
	deleteErr   error
	innerErrors []*s3.Error
}

func (f *fakeS3) ListObjectsV2WithContext(ctx aws.Context, input *s3.ListObjectsV2Input, opts ...request.Option) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if f.listCalls < len(f.pages) {
		for _, key := range f.pages[f.listCalls] {
			out.Contents = append(out.Contents, &s3.Object{Key: aws.String(key)})
		}
		out.IsTruncated = aws.Bool(f.listCalls < len(f.pages)-1)
	}
	f.listCalls++
	return out, nil
}

func (f *fakeS3) DeleteObjectsWithContext(ctx aws.Context, input *s3.DeleteObjectsInput, opts ...request.Option) (*s3.DeleteObjectsOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	for _, obj := range input.Delete.Objects {
		f.deleted = append(f.deleted, aws.StringValue(obj.Key))
	}
	return &s3.DeleteObjectsOutput{Errors: f.innerErrors}, nil
}

func TestUploadSetsContentType(t *testing.T) {
	uploader := newFakeUploader()
	client := New(&fakeS3{}, uploader, "assets")

	err := client.Upload(context.Background(), "deployments/42/assets/club_image.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "image/png", uploader.uploads["deployments/42/assets/club_image.png"])
	assert.Equal(t, []byte("png-bytes"), uploader.bodies["deployments/42/assets/club_image.png"])
}

func TestUploadFailureIsExternalServiceError(t *testing.T) {
	uploader := newFakeUploader()
	uploader.err = errors.New("boom")
	client := New(&fakeS3{}, uploader, "assets")

	err := client.Upload(context.Background(), "key", "text/plain", nil)
	require.ErrorIs(t, err, tenant.ErrExternalService)
}

func TestUploadDirectoryMirrorsTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "v2"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v2", "config.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.bin"), []byte{1, 2}, 0o644))

	uploader := newFakeUploader()
	client := New(&fakeS3{}, uploader, "assets")
	require.NoError(t, client.UploadDirectory(context.Background(), dir, "deployments/42"))

	assert.Contains(t, uploader.uploads["deployments/42/v2/config.json"], "application/json")
	assert.Equal(t, "image/png", uploader.uploads["deployments/42/logo.png"])
	assert.Equal(t, "application/octet-stream", uploader.uploads["deployments/42/blob.bin"])
}

func TestDeletePrefixDrainsAllPages(t *testing.T) {
	api := &fakeS3{pages: [][]string{
		{"deployments/42/a", "deployments/42/b"},
		{"deployments/42/c"},
	}}
	client := New(api, newFakeUploader(), "assets")

	deleted, err := client.DeletePrefix(context.Background(), "deployments/42/")
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.Equal(t, []string{"deployments/42/a", "deployments/42/b", "deployments/42/c"}, api.deleted)
}

func TestDeletePrefixEmptyListing(t *testing.T) {
	client := New(&fakeS3{}, newFakeUploader(), "assets")

	deleted, err := client.DeletePrefix(context.Background(), "deployments/999/")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestDeletePrefixStopsOnPartialFailure(t *testing.T) {
	api := &fakeS3{
		pages: [][]string{{"deployments/42/a"}},
		innerErrors: []*s3.Error{{
			Key:     aws.String("deployments/42/a"),
			Message: aws.String("access denied"),
		}},
	}
	client := New(api, newFakeUploader(), "assets")

	_, err := client.DeletePrefix(context.Background(), "deployments/42/")
	require.ErrorIs(t, err, tenant.ErrExternalService)
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, 1, api.listCalls)
}
