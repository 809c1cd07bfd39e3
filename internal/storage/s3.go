package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/config"
)

// objectStore is the slice of the S3 client used by S3Store.
type objectStore interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store puts uploads into an S3 compatible bucket such as MinIO.
type S3Store struct {
	client   objectStore
	bucket   string
	endpoint string
	rules    rules
	log      *zap.Logger
}

func NewS3Store(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, cfg, log), nil
}

func newS3Store(client objectStore, cfg *config.StorageConfig, log *zap.Logger) *S3Store {
	return &S3Store{
		client:   client,
		bucket:   cfg.S3Bucket,
		endpoint: strings.TrimRight(cfg.S3BaseEndpoint, "/"),
		rules:    newRules(cfg),
		log:      log,
	}
}

func (s *S3Store) Store(ctx context.Context, upload Upload) (account.LicenseFile, error) {
	if err := s.rules.check(upload); err != nil {
		return account.LicenseFile{}, err
	}

	key := "licenses/" + objectName(upload.Filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          upload.Reader,
		ContentType:   aws.String(upload.MimeType),
		ContentLength: aws.Int64(upload.Size),
	})
	if err != nil {
		return account.LicenseFile{}, fmt.Errorf("put object %s: %w", key, err)
	}

	s.log.Debug("license uploaded", zap.String("bucket", s.bucket), zap.String("key", key))

	return account.LicenseFile{
		Filename:     key[strings.LastIndex(key, "/")+1:],
		OriginalName: upload.Filename,
		Path:         key,
		MimeType:     upload.MimeType,
		Size:         upload.Size,
		URL:          s.objectURL(key),
	}, nil
}

func (s *S3Store) Remove(ctx context.Context, file account.LicenseFile) error {
	if file.Path == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(file.Path),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", file.Path, err)
	}
	s.log.Debug("license deleted", zap.String("bucket", s.bucket), zap.String("key", file.Path))
	return nil
}

func (s *S3Store) objectURL(key string) string {
	if s.endpoint == "" {
		return fmt.Sprintf("s3://%s/%s", s.bucket, key)
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}
