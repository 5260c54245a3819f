package oss

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	alioss "github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// Config locates the bucket holding applicant photos.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	// PublicBaseURL overrides the default https://{bucket}.{endpoint} prefix (e.g. a CDN).
	PublicBaseURL string
}

// PhotoStore uploads applicant photos to an OSS bucket.
type PhotoStore struct {
	bucket  *alioss.Bucket
	baseURL string
}

func NewPhotoStore(cfg Config) (*PhotoStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("oss: endpoint, access key and bucket are required")
	}
	client, err := alioss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %s: %w", cfg.Bucket, err)
	}

	// Light sanity check; restricted keys may not read bucket info.
	if loc, err := client.GetBucketLocation(cfg.Bucket); err != nil {
		if se, ok := err.(alioss.ServiceError); ok && se.StatusCode == 403 {
			log.Printf("oss: skip location check for bucket %s: access denied", cfg.Bucket)
		} else {
			return nil, fmt.Errorf("verify bucket %s: %w", cfg.Bucket, err)
		}
	} else {
		log.Printf("oss: bucket %s location %s", cfg.Bucket, loc)
	}

	return &PhotoStore{bucket: bucket, baseURL: publicBase(cfg)}, nil
}

// Upload writes data to path, replacing any existing object.
func (s *PhotoStore) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.bucket.PutObject(path, bytes.NewReader(data),
		alioss.WithContext(ctx),
		alioss.ContentType(contentType),
		alioss.ContentDisposition("inline"),
		alioss.CacheControl("public, max-age=31536000, immutable"),
	)
}

func (s *PhotoStore) PublicURL(path string) string {
	return s.baseURL + "/" + path
}

func (s *PhotoStore) Remove(ctx context.Context, path string) error {
	return s.bucket.DeleteObject(path, alioss.WithContext(ctx))
}

func publicBase(cfg Config) string {
	if base := strings.TrimSpace(cfg.PublicBaseURL); base != "" {
		return strings.TrimRight(base, "/")
	}
	host := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s", cfg.Bucket, strings.TrimRight(host, "/"))
}
