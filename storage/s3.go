package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Config carries the remote asset host credentials and layout.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, for S3-compatible hosts
	AccessKeyID     string
	SecretAccessKey string
	KeyPrefix       string // folder scope, e.g. "cars-track"
}

// S3 pushes files to an object host under a category-scoped key and
// returns the object's public URL.
type S3 struct {
	client  *s3.Client
	cfg     S3Config
	baseURL string
	log     *zap.Logger
}

func NewS3(ctx context.Context, cfg S3Config, log *zap.Logger) (*S3, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				HostnameImmutable: true,
				Source:            aws.EndpointSourceCustom,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(customResolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		baseURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return &S3{client: client, cfg: cfg, baseURL: baseURL, log: log}, nil
}

func (r *S3) key(category, name string) string {
	parts := []string{}
	if r.cfg.KeyPrefix != "" {
		parts = append(parts, strings.Trim(r.cfg.KeyPrefix, "/"))
	}
	parts = append(parts, category, name)
	return strings.Join(parts, "/")
}

func (r *S3) Store(ctx context.Context, file *multipart.FileHeader, category string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := r.key(category, SafeFileName(file.Filename))
	contentType := file.Header.Get("Content-Type")

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.cfg.Bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(file.Size),
	})
	if err != nil {
		r.log.Error("failed to upload file to S3",
			zap.String("key", key),
			zap.Error(err))
		return "", err
	}

	r.log.Info("file uploaded to S3",
		zap.String("key", key),
		zap.Int64("size", file.Size))

	return r.baseURL + "/" + key, nil
}

func (r *S3) Remove(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, r.baseURL+"/") {
		return nil
	}
	key := strings.TrimPrefix(url, r.baseURL+"/")

	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		r.log.Error("failed to delete file from S3",
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	r.log.Info("file deleted from S3", zap.String("key", key))
	return nil
}
