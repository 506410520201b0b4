package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"eventhub/config"
	"eventhub/internal/domain"
)

// NewObjectStore creates an object store from config. Provider "s3" uploads
// to an S3-compatible bucket (a custom Endpoint supports R2 and friends);
// "noop" or unknown stores nothing and fabricates URLs, for development.
func NewObjectStore(cfg config.StorageConfig) (domain.ObjectStore, error) {
	switch cfg.Provider {
	case "s3":
		awsCfg := aws.Config{
			Region: cfg.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretAccessKey,
					"",
				),
			),
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		})
		return &s3Store{
			client:        client,
			bucket:        cfg.Bucket,
			publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		}, nil
	case "noop":
		return &noopStore{}, nil
	default:
		log.Printf("[STORAGE] Unknown storage provider %q, using noop", cfg.Provider)
		return &noopStore{}, nil
	}
}

type s3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func (s *s3Store) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload object %s: %w", key, err)
	}
	return s.publicBaseURL + "/" + key, nil
}

type noopStore struct{}

func (n *noopStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	return "https://storage.invalid/" + path.Clean(key), nil
}
