package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/Ilyes4CODE/Market-place-live/internal/apperr"
	"github.com/Ilyes4CODE/Market-place-live/internal/config"
)

// IAttachmentStore stores chat image attachments and returns their public URL.
type IAttachmentStore interface {
	// SaveDataURI decodes a base64 data URI, validates and normalizes the
	// image, stores it, and returns the retrievable URL.
	SaveDataURI(ctx context.Context, dataURI string) (string, error)
}

// s3Uploader is the slice of *s3.Client the store needs.
type s3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type attachmentStore struct {
	cfg      *config.Config
	s3Client s3Uploader
}

// NewAttachmentStore creates an S3-backed attachment store.
func NewAttachmentStore(cfg *config.Config) (IAttachmentStore, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &attachmentStore{
		cfg:      cfg,
		s3Client: s3.NewFromConfig(awsCfg),
	}, nil
}

// NewAttachmentStoreWithClient is used by tests to inject a fake uploader.
func NewAttachmentStoreWithClient(cfg *config.Config, client s3Uploader) IAttachmentStore {
	return &attachmentStore{cfg: cfg, s3Client: client}
}

// SaveDataURI accepts "data:image/<fmt>;base64,<payload>" (a bare base64
// string is also tolerated), rejects oversized or undecodable payloads with
// InvalidArgument, downscales anything beyond the configured dimension, and
// uploads the result as JPEG.
func (s *attachmentStore) SaveDataURI(ctx context.Context, dataURI string) (string, error) {
	encoded := dataURI
	if strings.HasPrefix(dataURI, "data:") {
		idx := strings.Index(dataURI, ",")
		if idx < 0 {
			return "", apperr.Invalid("malformed data URI")
		}
		header := dataURI[:idx]
		if !strings.Contains(header, ";base64") {
			return "", apperr.Invalid("data URI must be base64 encoded")
		}
		encoded = dataURI[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", apperr.Invalid("invalid base64 attachment: %v", err)
	}

	maxSizeBytes := int64(s.cfg.ImageMaxSizeMB) * 1024 * 1024
	if int64(len(raw)) > maxSizeBytes {
		return "", apperr.Invalid("attachment exceeds maximum size of %dMB", s.cfg.ImageMaxSizeMB)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", apperr.Invalid("unsupported image format or corrupt image")
	}

	maxDim := uint(s.cfg.ImageMaxDimension)
	if uint(img.Bounds().Dx()) > maxDim || uint(img.Bounds().Dy()) > maxDim {
		log.Printf("attachments: downscaling %s image from %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())
		img = resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode attachment: %w", err)
	}

	objectKey := fmt.Sprintf("attachments/%s.jpg", uuid.NewString())
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment %s: %w", objectKey, err)
	}

	return strings.TrimSuffix(s.cfg.ImageBaseS3URL, "/") + "/" + objectKey, nil
}
