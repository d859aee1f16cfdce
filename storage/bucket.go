package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/errs"
)

// Bucket talks to the hosted object store through its S3-compatible
// endpoint. Public URLs are derived from a separate base URL because the
// store serves public objects from a different host than the S3 API.
type Bucket struct {
	client        *s3.Client
	publicBaseURL string
}

// NewBucket builds a Bucket from STORAGE_* configuration keys.
func NewBucket(ctx context.Context, c map[string]string) (*Bucket, error) {
	endpoint := config.GetString(c, "STORAGE_S3_ENDPOINT", "")
	region := config.GetString(c, "STORAGE_S3_REGION", "us-east-1")
	accessKey := config.GetString(c, "STORAGE_ACCESS_KEY", "")
	secretKey := config.GetString(c, "STORAGE_SECRET_KEY", "")
	publicBaseURL := config.GetString(c, "STORAGE_PUBLIC_URL", "")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, errs.NewStoreUnavailableError("configure client", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	return &Bucket{client: client, publicBaseURL: publicBaseURL}, nil
}

func (b *Bucket) Upload(ctx context.Context, bucket, path string, data []byte, contentType string, upsert bool) (string, error) {
	if !upsert {
		_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(path),
		})
		if err == nil {
			return "", errs.NewBlobExistsError(path)
		}
		var notFound *types.NotFound
		if !errors.As(err, &notFound) {
			return "", errs.NewStoreUnavailableError("head "+path, err)
		}
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errs.NewStoreUnavailableError("upload "+path, err)
	}
	return path, nil
}

func (b *Bucket) PublicURL(bucket, path string) string {
	base := strings.TrimSuffix(b.publicBaseURL, "/")
	return base + "/" + bucket + "/" + path
}

func (b *Bucket) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, errs.NewBlobNotFoundError(path)
		}
		return nil, errs.NewStoreUnavailableError("download "+path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errs.NewStoreUnavailableError("read "+path, err)
	}
	return data, nil
}

func (b *Bucket) List(ctx context.Context, bucket, folder string) ([]string, error) {
	prefix := strings.TrimSuffix(folder, "/") + "/"

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errs.NewStoreUnavailableError("list "+folder, err)
		}
		for _, object := range page.Contents {
			keys = append(keys, aws.ToString(object.Key))
		}
	}
	return keys, nil
}

func (b *Bucket) Copy(ctx context.Context, bucket, from, to string) error {
	data, err := b.Download(ctx, bucket, from)
	if err != nil {
		return err
	}
	_, err = b.Upload(ctx, bucket, to, data, contentTypeFor(to), true)
	return err
}

func (b *Bucket) Delete(ctx context.Context, bucket, path string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return errs.NewStoreUnavailableError("delete "+path, err)
	}
	return nil
}

func (b *Bucket) DeleteFolder(ctx context.Context, bucket, folder string) error {
	keys, err := b.List(ctx, bucket, folder)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := b.Delete(ctx, bucket, key); err != nil {
			return err
		}
	}
	return nil
}

// contentTypeFor guesses a content type from the path extension. Good enough
// for the copy path, where the original content type is not retained.
func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".md"):
		return "text/markdown"
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(path, ".gif"):
		return "image/gif"
	case strings.HasSuffix(path, ".webp"):
		return "image/webp"
	case strings.HasSuffix(path, ".svg"):
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
