package media

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads blobs to a public-read bucket. Keys carry the
// /uploads/ path marker so the returned URLs classify correctly under
// the media-kind convention.
type S3Store struct {
	uploader *manager.Uploader
	bucket   string
	region   string
}

func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Store{uploader: manager.NewUploader(client), bucket: bucket, region: region}, nil
}

func (s *S3Store) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := "uploads/" + name
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/uploads/%s", s.bucket, s.region, url.PathEscape(name)), nil
}
