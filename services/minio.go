package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/learning_hub/dto"
	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/shared"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

const (
	exportPrefix = "exports/"

	// envelopes above this size are truncated and then rejected by import
	maxArchiveSize = 4 << 20
)

var ErrArchiveDisabled = errors.New("export archive not configured")

// MinIOService archives progress exports in an object store. It stays
// disabled without MINIO_ENDPOINT.
type MinIOService struct {
	appContext.DefaultService
	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
}

const MINIO_SVC = "minio_svc"

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *appContext.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")

	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	if svc.accessKey == "" {
		svc.accessKey = "admin"
	}

	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	if svc.secretKey == "" {
		svc.secretKey = "password123"
	}

	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "learning-hub-exports"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) Start() error {
	if svc.endpoint == "" {
		log.Info("minio disabled, export archiving unavailable")
		return nil
	}

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("minio client %s: %w", svc.endpoint, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ensureBucket(ctx, client, svc.bucketName); err != nil {
		return err
	}

	svc.client = client
	log.WithFields(log.Fields{
		"endpoint": svc.endpoint,
		"bucket":   svc.bucketName,
	}).Info("export archive ready")
	return nil
}

func (svc *MinIOService) Shutdown() {}

func (svc *MinIOService) Enabled() bool {
	return svc != nil && svc.client != nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", bucket, err)
	}
	log.WithField("bucket", bucket).Info("created export bucket")
	return nil
}

// ExportObjectName builds a sortable object name for an export taken at t.
func ExportObjectName(t time.Time) string {
	stamp := strings.ReplaceAll(t.UTC().Format(time.RFC3339), ":", "-")
	return fmt.Sprintf("%s%s-%s.json", exportPrefix, stamp, uuid.NewString()[:8])
}

func (svc *MinIOService) ArchiveExport(ctx context.Context, export *model.ProgressExport) (*dto.ArchiveResponse, error) {
	if !svc.Enabled() {
		return nil, ErrArchiveDisabled
	}

	data, err := shared.Marshal(export)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	objectName := ExportObjectName(export.Metadata.ExportDate)
	info, err := svc.client.PutObject(ctx, svc.bucketName, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  fiber.MIMEApplicationJSON,
		UserMetadata: map[string]string{
			"version":     strconv.Itoa(export.Metadata.Version),
			"total-pages": strconv.Itoa(export.Metadata.TotalPages),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", objectName, err)
	}

	return &dto.ArchiveResponse{
		Object:     info.Key,
		Size:       info.Size,
		ExportDate: export.Metadata.ExportDate,
	}, nil
}

// ArchiveObjectKey resolves a bare archive name into its key under the
// exports prefix.
func ArchiveObjectKey(name string) string {
	name = strings.TrimPrefix(name, "/")
	if strings.HasPrefix(name, exportPrefix) {
		return name
	}
	return exportPrefix + name
}

// FetchExport returns the raw envelope stored under objectName.
func (svc *MinIOService) FetchExport(ctx context.Context, objectName string) ([]byte, error) {
	if !svc.Enabled() {
		return nil, ErrArchiveDisabled
	}
	key := ArchiveObjectKey(objectName)

	obj, err := svc.client.GetObject(ctx, svc.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, maxArchiveSize))
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, shared.NewNotFoundError(err, "Archive not found")
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (svc *MinIOService) ListExports(ctx context.Context) ([]dto.ArchiveResponse, error) {
	if !svc.Enabled() {
		return nil, ErrArchiveDisabled
	}

	archives := []dto.ArchiveResponse{}
	objectCh := svc.client.ListObjects(ctx, svc.bucketName, minio.ListObjectsOptions{
		Prefix:    exportPrefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list %s: %w", exportPrefix, object.Err)
		}
		archives = append(archives, dto.ArchiveResponse{
			Object:     object.Key,
			Size:       object.Size,
			ExportDate: object.LastModified,
		})
	}

	return archives, nil
}
