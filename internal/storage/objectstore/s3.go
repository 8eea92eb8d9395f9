package objectstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/bigkaa/gotransfer/internal/config"
)

// s3Gateway — реализация Gateway поверх AWS SDK.
// Работает с AWS S3, MinIO и другими S3-совместимыми хранилищами
// (для MinIO требуется path-style addressing).
type s3Gateway struct {
	client *s3.S3
	bucket string
}

// NewS3Gateway создаёт шлюз к S3-совместимому хранилищу.
func NewS3Gateway(cfg *config.Config) (Gateway, error) {
	awsCfg := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Region:           aws.String(cfg.S3Region),
		S3ForcePathStyle: aws.Bool(cfg.S3ForcePathStyle),
	}
	if cfg.S3Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания S3-сессии: %w", err)
	}

	return &s3Gateway{
		client: s3.New(sess),
		bucket: cfg.S3Bucket,
	}, nil
}

// CreateMultipartUpload открывает multipart-сессию.
func (g *s3Gateway) CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	out, err := g.client.CreateMultipartUploadWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("ошибка создания multipart upload: %w", err)
	}
	return aws.StringValue(out.UploadId), nil
}

// UploadPart загружает одну часть multipart upload.
func (g *s3Gateway) UploadPart(ctx context.Context, key, uploadID string, partNumber int, body io.ReadSeeker) (string, error) {
	out, err := g.client.UploadPartWithContext(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(g.bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int64(int64(partNumber)),
		Body:       aws.ReadSeekCloser(body),
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки части %d: %w", partNumber, err)
	}
	return aws.StringValue(out.ETag), nil
}

// CompleteMultipartUpload собирает объект из загруженных частей.
func (g *s3Gateway) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []Part) error {
	// S3 требует части в порядке возрастания номеров
	sorted := make([]Part, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	completed := make([]*s3.CompletedPart, 0, len(sorted))
	for _, p := range sorted {
		completed = append(completed, &s3.CompletedPart{
			PartNumber: aws.Int64(int64(p.Number)),
			ETag:       aws.String(p.ETag),
		})
	}

	_, err := g.client.CompleteMultipartUploadWithContext(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(g.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &s3.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		return fmt.Errorf("ошибка завершения multipart upload: %w", err)
	}
	return nil
}

// AbortMultipartUpload прерывает multipart-сессию.
func (g *s3Gateway) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	_, err := g.client.AbortMultipartUploadWithContext(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(g.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return fmt.Errorf("ошибка прерывания multipart upload: %w", err)
	}
	return nil
}

// PresignDownload возвращает временную ссылку на скачивание объекта
// с заголовком Content-Disposition, задающим имя файла при сохранении.
func (g *s3Gateway) PresignDownload(key, fileName string, ttl time.Duration) (string, error) {
	req, _ := g.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket:                     aws.String(g.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", fileName)),
	})

	url, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("ошибка генерации presigned URL: %w", err)
	}
	return url, nil
}
