// Package s3export writes snapshots of the link store to S3 as YAML.
package s3export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"refsync/internal/application"
	"refsync/internal/domain"
	"refsync/internal/logging"
)

const contentType = "application/yaml"

// Uploader is the part of the S3 client used by the exporter
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Document is the exported file
type Document struct {
	ExportedAt time.Time     `yaml:"exported_at"`
	Count      int           `yaml:"count"`
	Links      []domain.Link `yaml:"links"`
}

// Exporter uploads link snapshots under bucket/prefix
type Exporter struct {
	client Uploader
	bucket string
	prefix string
	now    func() time.Time
}

// NewClient builds an S3 client from the default credential chain.
// An empty region leaves the SDK's own resolution in place.
func NewClient(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// New creates an Exporter
func New(client Uploader, bucket, prefix string) *Exporter {
	return &Exporter{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Key returns the object key for a snapshot taken at t
func (e *Exporter) Key(t time.Time) string {
	return fmt.Sprintf("%slinks-%s.yaml", e.prefix, t.UTC().Format("20060102T150405Z"))
}

// Encode renders links as an export document
func Encode(links []domain.Link, at time.Time) ([]byte, error) {
	if links == nil {
		links = []domain.Link{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Document{ExportedAt: at.UTC(), Count: len(links), Links: links}); err != nil {
		return nil, fmt.Errorf("encode links: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode links: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads an export document
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{Links: []domain.Link{}}, nil
		}
		return nil, fmt.Errorf("decode links: %w", err)
	}
	if doc.Links == nil {
		doc.Links = []domain.Link{}
	}
	if doc.Count != 0 && doc.Count != len(doc.Links) {
		return nil, fmt.Errorf("decode links: count is %d but document holds %d links", doc.Count, len(doc.Links))
	}
	return &doc, nil
}

// Export uploads links and returns the object key
func (e *Exporter) Export(ctx context.Context, links []domain.Link) (string, error) {
	if err := application.ValidateRequired("bucket", e.bucket); err != nil {
		return "", err
	}

	at := e.now()
	body, err := Encode(links, at)
	if err != nil {
		return "", err
	}

	key := e.Key(at)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", e.bucket, key, err)
	}

	logging.FromContext(ctx).Info().
		Str("bucket", e.bucket).
		Str("key", key).
		Int("links", len(links)).
		Msg("links exported")
	return key, nil
}
