package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "github.com/summitworks/training-api/config"
)

// StorageInterface defines the interface for invoice artifact storage.
// Artifacts are always written to local disk first; a configured storage
// backend additionally makes them reachable by URL.
type StorageInterface interface {
	Put(key string, body []byte, contentType string) (string, error)
	Delete(key string) error
}

// S3Storage stores invoice artifacts in an S3 bucket.
type S3Storage struct {
	client *s3.Client
	bucket string
	region string
}

var storageInstance StorageInterface

// InitStorageService initializes the artifact storage backend. Returns
// nil without error when no bucket is configured; callers treat a nil
// storage as "local disk only".
func InitStorageService() (StorageInterface, error) {
	cfg := appConfig.GetConfig()
	if cfg.AWSS3Bucket == "" {
		storageInstance = nil
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	storageInstance = &S3Storage{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.AWSS3Bucket,
		region: cfg.AWSRegion,
	}

	return storageInstance, nil
}

// GetStorageService returns the initialized storage instance (may be nil)
func GetStorageService() StorageInterface {
	return storageInstance
}

// SetStorageService sets the storage instance (primarily for testing)
func SetStorageService(s StorageInterface) {
	storageInstance = s
}

// Put uploads an artifact and returns its public URL.
func (s *S3Storage) Put(key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// Delete removes an artifact from the bucket.
func (s *S3Storage) Delete(key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}
