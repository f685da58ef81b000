package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"rentavail/internal/app/policies"
	"rentavail/internal/domain/shared/apperr"
)

const calendarContentType = "text/calendar; charset=utf-8"

// CalendarStore publishes exported unit calendars to an S3-compatible bucket
// under calendars/<unit>.ics, where channels poll them.
type CalendarStore struct {
	bucket        string
	publicBaseURL string
	client        *minio.Client
	logger        *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

// NewCalendarStore configures a store using the provided endpoint and credentials.
func NewCalendarStore(endpoint string, useSSL bool, accessKey, secretKey, bucket, publicBaseURL string, logger *slog.Logger) (*CalendarStore, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	}
	minioClient, err := minio.New(parseEndpoint(cleanEndpoint), opts)
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		base = cleanEndpoint
	}
	return &CalendarStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		client:        minioClient,
		logger:        logger,
	}, nil
}

// Publish overwrites the unit's calendar object and returns its public URL.
func (c *CalendarStore) Publish(ctx context.Context, unitID string, ics []byte) (string, error) {
	unitID = strings.Trim(strings.TrimSpace(unitID), "/")
	if unitID == "" {
		return "", errors.New("s3: unit id is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", apperr.Upstream(err)
	}
	key := CalendarKey(unitID)
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(ics), int64(len(ics)), minio.PutObjectOptions{
		ContentType:  calendarContentType,
		CacheControl: "max-age=300",
	})
	if err != nil {
		return "", apperr.Upstream(fmt.Errorf("s3: put object: %w", err))
	}
	publicURL := c.objectURL(key)
	if c.logger != nil {
		c.logger.Debug("calendar published", "bucket", c.bucket, "key", key, "url", publicURL)
	}
	return publicURL, nil
}

// Ping checks the bucket is reachable.
func (c *CalendarStore) Ping(ctx context.Context) error {
	_, err := c.client.BucketExists(ctx, c.bucket)
	return err
}

func CalendarKey(unitID string) string {
	return "calendars/" + url.PathEscape(unitID) + ".ics"
}

// ensureBucket creates the bucket on first use. A failed attempt is retried
// on the next publish.
func (c *CalendarStore) ensureBucket(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bucketReady {
		return nil
	}
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("s3: create bucket: %w", err)
		}
		if err := c.allowPublicRead(ctx); err != nil {
			return err
		}
	}
	c.bucketReady = true
	return nil
}

func (c *CalendarStore) allowPublicRead(ctx context.Context) error {
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/calendars/*"]}]}`, c.bucket)
	if err := c.client.SetBucketPolicy(ctx, c.bucket, policy); err != nil {
		return fmt.Errorf("s3: set bucket policy: %w", err)
	}
	return nil
}

func (c *CalendarStore) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, strings.TrimLeft(key, "/"))
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ policies.CalendarPublisher = (*CalendarStore)(nil)
