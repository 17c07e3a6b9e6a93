package hosting

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/TobiSchelling/SmogStory/internal/config"
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads story files to a bucket and returns their public URL.
type S3 struct {
	client        ObjectPutter
	bucket        string
	region        string
	prefix        string
	publicBaseURL string
}

// NewS3 creates an S3 host using the default AWS credential chain.
func NewS3(ctx context.Context, cfg config.S3Hosting) (*S3, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewS3WithClient(s3.NewFromConfig(awsCfg), cfg, awsCfg.Region), nil
}

// NewS3WithClient creates an S3 host around an existing client.
func NewS3WithClient(client ObjectPutter, cfg config.S3Hosting, region string) *S3 {
	if cfg.Region != "" {
		region = cfg.Region
	}
	return &S3{
		client:        client,
		bucket:        cfg.Bucket,
		region:        region,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

// PublicURL uploads the file and returns the URL it can be fetched from.
func (h *S3) PublicURL(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	key := path.Join(h.prefix, filepath.Base(localPath))
	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading s3://%s/%s: %w", h.bucket, key, err)
	}
	log.Printf("Uploaded s3://%s/%s", h.bucket, key)

	if h.publicBaseURL != "" {
		return h.publicBaseURL + "/" + key, nil
	}
	if h.region == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", h.bucket, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.bucket, h.region, key), nil
}
