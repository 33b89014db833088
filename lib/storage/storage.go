package storage

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/hashicorp/go-multierror"

	"tenantops/lib/tenant"
)

// Client wraps the tenant asset bucket.
type Client struct {
	api      s3iface.S3API
	uploader s3manageriface.UploaderAPI
	bucket   string
}

func New(api s3iface.S3API, uploader s3manageriface.UploaderAPI, bucket string) *Client {
	return &Client{api: api, uploader: uploader, bucket: bucket}
}

// Upload writes one object.
func (c *Client) Upload(ctx context.Context, key, contentType string, body []byte) error {
	_, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: upload %s: %s", tenant.ErrExternalService, key, err.Error())
	}
	return nil
}

// UploadDirectory mirrors a local directory tree under the given key
// prefix, detecting content types from file extensions.
func (c *Client) UploadDirectory(ctx context.Context, dir, prefix string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		body, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		contentType := mime.TypeByExtension(filepath.Ext(p))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		key := path.Join(prefix, filepath.ToSlash(rel))
		return c.Upload(ctx, key, contentType, body)
	})
}

// DeletePrefix removes every object under the prefix, page by page,
// until a listing comes back empty. It returns the number of objects
// deleted.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	deleted := 0
	for {
		listed, err := c.api.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
			Bucket: aws.String(c.bucket),
			Prefix: aws.String(prefix),
		})
		if err != nil {
			return deleted, fmt.Errorf("%w: list %s: %s", tenant.ErrExternalService, prefix, err.Error())
		}
		if len(listed.Contents) == 0 {
			return deleted, nil
		}

		objects := make([]*s3.ObjectIdentifier, 0, len(listed.Contents))
		for _, obj := range listed.Contents {
			objects = append(objects, &s3.ObjectIdentifier{Key: obj.Key})
		}
		out, err := c.api.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(c.bucket),
			Delete: &s3.Delete{Objects: objects},
		})
		if err != nil {
			return deleted, fmt.Errorf("%w: delete under %s: %s", tenant.ErrExternalService, prefix, err.Error())
		}
		if len(out.Errors) > 0 {
			var result *multierror.Error
			for _, e := range out.Errors {
				result = multierror.Append(result, fmt.Errorf("delete %s: %s", aws.StringValue(e.Key), aws.StringValue(e.Message)))
			}
			return deleted, fmt.Errorf("%w: %s", tenant.ErrExternalService, result.Error())
		}
		deleted += len(objects)

		if !aws.BoolValue(listed.IsTruncated) {
			return deleted, nil
		}
	}
}
