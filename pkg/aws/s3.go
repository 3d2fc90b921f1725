package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// LoadAWSConfig loads the default AWS config (env credentials, shared config).
func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

// S3Presigner issues presigned PUT URLs for direct browser uploads of product
// images.
type S3Presigner struct {
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

func NewS3Presigner(cfg sdkaws.Config, bucket, publicURL string) *S3Presigner {
	client := s3.NewFromConfig(cfg)
	return &S3Presigner{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		publicURL: publicURL,
	}
}

// PresignPut returns a presigned PUT URL for key plus the public URL the
// object will be served from after upload.
func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (uploadURL, publicURL string, err error) {
	input := &s3.PutObjectInput{
		Bucket:      &p.bucket,
		Key:         &key,
		ContentType: &contentType,
	}
	presigned, err := p.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to presign put object: %w", err)
	}
	return presigned.URL, fmt.Sprintf("%s/%s", p.publicURL, key), nil
}
