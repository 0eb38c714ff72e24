package remotefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// SchemeS3 is the scheme served by S3Driver. The location host is the bucket.
const SchemeS3 = "s3"

// S3Options configures S3 clients. Zero values keep SDK defaults.
type S3Options struct {
	Region      string
	Endpoint    string // custom endpoint for S3-compatible stores
	PathStyle   bool
	PartSize    int64
	Concurrency int
}

// s3API is the subset of *s3.Client used by S3Driver.
type s3API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// s3Uploader is the subset of *manager.Uploader used by S3Driver.
type s3Uploader interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Driver writes objects into one bucket. Directories are key prefixes:
// a location "is a directory" when at least one key lives below it.
type S3Driver struct {
	bucket   string
	api      s3API
	uploader s3Uploader
}

// NewS3Opener returns the OpenFunc for the s3 scheme.
func NewS3Opener(opts S3Options) OpenFunc {
	return func(ctx context.Context, loc Location) (Driver, error) {
		if loc.Host == "" {
			return nil, fmt.Errorf("remotefs: s3 location %q has no bucket", loc)
		}

		var loadOpts []func(*awsconfig.LoadOptions) error
		if opts.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
		}

		cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("remotefs: loading aws configuration: %w", err)
		}

		client := s3.NewFromConfig(cfg, func(o *s3.Options) {
			if opts.Endpoint != "" {
				o.BaseEndpoint = aws.String(opts.Endpoint)
			}

			o.UsePathStyle = opts.PathStyle
		})

		uploader := manager.NewUploader(client, func(u *manager.Uploader) {
			if opts.PartSize > 0 {
				u.PartSize = opts.PartSize
			}

			if opts.Concurrency > 0 {
				u.Concurrency = opts.Concurrency
			}
		})

		return &S3Driver{bucket: loc.Host, api: client, uploader: uploader}, nil
	}
}

// Exists reports whether an object or a non-empty prefix exists at loc.
func (d *S3Driver) Exists(ctx context.Context, loc Location) (bool, error) {
	key := loc.Key()
	if key == "" {
		return d.bucketExists(ctx)
	}

	_, err := d.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	if !isS3NotFound(err) {
		return false, fmt.Errorf("remotefs: s3 head %s: %w", loc, err)
	}

	return d.hasPrefix(ctx, key+"/")
}

// IsDir reports whether at least one object lives below loc.
func (d *S3Driver) IsDir(ctx context.Context, loc Location) (bool, error) {
	key := loc.Key()
	if key == "" {
		return d.bucketExists(ctx)
	}

	return d.hasPrefix(ctx, key+"/")
}

func (d *S3Driver) bucketExists(ctx context.Context) (bool, error) {
	_, err := d.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(d.bucket)})
	if err == nil {
		return true, nil
	}

	if isS3NotFound(err) {
		return false, nil
	}

	return false, fmt.Errorf("remotefs: s3 head bucket %s: %w", d.bucket, err)
}

func (d *S3Driver) hasPrefix(ctx context.Context, prefix string) (bool, error) {
	out, err := d.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(d.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("remotefs: s3 list s3://%s/%s: %w", d.bucket, prefix, err)
	}

	return len(out.Contents) > 0 || len(out.CommonPrefixes) > 0, nil
}

// CopyFile uploads localPath as an object. Multipart uploads are handled by
// the SDK uploader.
func (d *S3Driver) CopyFile(ctx context.Context, localPath string, dst Location) error {
	isDir, err := d.IsDir(ctx, dst)
	if err != nil {
		return err
	}

	if isDir || dst.Key() == "" {
		dst = dst.Join(filepath.Base(localPath))
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("remotefs: opening %s: %w", localPath, err)
	}
	defer f.Close()

	_, err = d.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(dst.Key()),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("remotefs: s3 upload %s to %s: %w", localPath, dst, err)
	}

	return nil
}

// isS3NotFound classifies HEAD 404s, which carry no error body.
func isS3NotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}

	return false
}
