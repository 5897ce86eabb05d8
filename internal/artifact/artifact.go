// Package artifact persists built indexes and shares them as artifacts.
package artifact

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/hashicorp/go-hclog"

	"github.com/detagtor/detagtor/internal/index"
	"github.com/detagtor/detagtor/pkg/shared/files"
)

// IndexFileName returns the default artifact name for an index built at t.
// Example: juice-shop_2025-09-15T08:28:46Z.detagtor-index.json.
func IndexFileName(repoName string, t time.Time) string {
	ts := t.UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s_%s.detagtor-index.json", repoName, ts)
}

// SaveIndexJSON writes the index to path, creating parent directories as
// needed.
func SaveIndexJSON(logger hclog.Logger, idx *index.Index, path string) error {
	var buf bytes.Buffer
	if err := idx.Encode(&buf); err != nil {
		return err
	}
	if err := files.WriteFileData(path, buf.Bytes()); err != nil {
		return fmt.Errorf("error writing index to file: %w", err)
	}
	logger.Info("index saved to file", "path", path, "tags", len(idx.Tags))
	return nil
}

// UploadS3 uploads the file at path to s3://bucket/key so one indexed
// knowledge base can be shared across a team. Region may be empty when
// the environment provides it.
func UploadS3(logger hclog.Logger, region, bucket, key, path string) error {
	cfg := aws.Config{}
	if region != "" {
		cfg.Region = aws.String(region)
	}
	sess, err := session.NewSession(&cfg)
	if err != nil {
		return fmt.Errorf("failed to create AWS session: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %q: %w", path, err)
	}
	defer f.Close()

	uploader := s3manager.NewUploader(sess)
	result, err := uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("failed to upload index to S3: %w", err)
	}

	logger.Info("index uploaded", "location", result.Location)
	return nil
}
