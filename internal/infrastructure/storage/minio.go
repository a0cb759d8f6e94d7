package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	"github.com/johnquangdev/monitor-agent/pkg/config"
)

// MinIOClient archives consumed segments and their records in MinIO
type MinIOClient struct {
	client *minio.Client
	bucket string
}

// NewMinIOClient creates a new MinIO client
func NewMinIOClient(cfg *config.StorageConfig) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	if err := client.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return client, nil
}

// ensureBucket creates the archive bucket if it does not exist
func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Archive uploads the segment audio and, when present, its record
func (m *MinIOClient) Archive(ctx context.Context, seg entities.Segment, record *entities.TranscriptRecord) error {
	_, err := m.client.FPutObject(ctx, m.bucket, SegmentObjectName(seg), seg.Path, minio.PutObjectOptions{
		ContentType: "audio/wav",
		UserMetadata: map[string]string{
			"capture-start": seg.CaptureStart.UTC().Format("2006-01-02T15:04:05Z"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload segment: %w", err)
	}

	if record == nil {
		return nil
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return m.UploadFile(ctx, RecordObjectName(seg), bytes.NewReader(body), int64(len(body)), "application/json")
}

// UploadFile uploads a file to MinIO
func (m *MinIOClient) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	return nil
}

// ListFiles lists all files in the bucket
func (m *MinIOClient) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	var files []string

	objectCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		files = append(files, object.Key)
	}

	return files, nil
}

// GetBucketInfo returns information about the bucket and connection
func (m *MinIOClient) GetBucketInfo(ctx context.Context) (map[string]interface{}, error) {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	info := map[string]interface{}{
		"bucket":        m.bucket,
		"bucket_exists": exists,
		"endpoint":      m.client.EndpointURL().String(),
	}

	if exists {
		files, err := m.ListFiles(ctx, "segments/")
		if err != nil {
			info["error"] = err.Error()
		} else {
			info["archived_segments"] = len(files)
		}
	}

	return info, nil
}

// SegmentObjectName is the archive key of a segment, partitioned by capture day
func SegmentObjectName(seg entities.Segment) string {
	return "segments/" + seg.CaptureStart.Format("2006/01/02") + "/" + seg.Name
}

// RecordObjectName is the archive key of a segment's record
func RecordObjectName(seg entities.Segment) string {
	name := strings.TrimSuffix(seg.Name, entities.SegmentExt) + ".json"
	return "transcripts/" + seg.CaptureStart.Format("2006/01/02") + "/" + name
}
