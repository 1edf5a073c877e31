package repository

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"

	"SentiPull/internal/domain/models"
	applogger "SentiPull/pkg/logger"
)

// S3Config holds the archive target of the S3 sink.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink archives the run's snapshot file as {prefix}/{file name}.
type S3Sink struct {
	client objectPutter
	bucket string
	prefix string
	l      *applogger.Logger
}

// NewS3Sink builds an S3 client from the default credential chain, or from static
// keys when both are set.
func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return newS3Sink(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Sink(client objectPutter, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), l: applogger.NewNop()}
}

// SetLogger injects a structured logger.
func (s *S3Sink) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *S3Sink) Name() string { return "s3" }

// ObjectKey returns the archive key of a snapshot file.
func (s *S3Sink) ObjectKey(snapshotPath string) string {
	name := filepath.Base(snapshotPath)
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *S3Sink) Publish(ctx context.Context, rc models.RunContext, _ []models.ScoredRow, _ models.MarketSummary) error {
	data, err := os.ReadFile(rc.SnapshotPath)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	key := s.ObjectKey(rc.SnapshotPath)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
		Metadata: map[string]string{
			"run-id": rc.RunID(),
		},
	})
	if err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}
	s.l.Info("snapshot archived",
		applogger.String("bucket", s.bucket),
		applogger.String("key", key),
		applogger.String("size", humanize.Bytes(uint64(len(data)))),
	)
	return nil
}

func (s *S3Sink) Close() error { return nil }
