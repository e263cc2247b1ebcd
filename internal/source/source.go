// Package source opens annotation inputs from local files, stdin or S3,
// transparently decompressing gzip content.
package source

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client settings. Credentials come from the default AWS
// chain (environment, shared config, instance role).
type S3Config struct {
	Region    string
	Endpoint  string // optional; custom endpoint for S3-compatible stores such as MinIO
	PathStyle bool
}

// ObjectGetter is the subset of the S3 client used to fetch inputs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener resolves input locations to readers.
type Opener struct {
	s3cfg     S3Config
	once      sync.Once
	client    ObjectGetter
	clientErr error
}

// NewOpener creates an opener. The S3 client is built on first use.
func NewOpener(cfg S3Config) *Opener {
	return &Opener{s3cfg: cfg}
}

// SetS3Client replaces the S3 client, e.g. with a stub in tests.
func (o *Opener) SetS3Client(c ObjectGetter) {
	o.once.Do(func() {})
	o.client = c
}

// Open returns a reader for location: "-" for stdin, "s3://bucket/key" for
// an S3 object, anything else as a local path. Gzip content is detected by
// its magic bytes and decompressed.
func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	switch {
	case location == "-":
		rc = io.NopCloser(os.Stdin)
	case strings.HasPrefix(location, "s3://"):
		bucket, key, err := ParseS3URI(location)
		if err != nil {
			return nil, err
		}
		client, err := o.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
		if err != nil {
			return nil, fmt.Errorf("get s3 object %s: %w", location, err)
		}
		rc = out.Body
	default:
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", location, err)
		}
		rc = f
	}
	return maybeGzip(rc)
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri %q must name a bucket and a key", uri)
	}
	return bucket, key, nil
}

func (o *Opener) s3Client(ctx context.Context) (ObjectGetter, error) {
	o.once.Do(func() {
		region := o.s3cfg.Region
		if region == "" {
			region = "us-east-1"
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			o.clientErr = fmt.Errorf("load aws config: %w", err)
			return
		}
		o.client = s3.NewFromConfig(awsCfg, func(opts *s3.Options) {
			if o.s3cfg.PathStyle {
				opts.UsePathStyle = true
			}
			if o.s3cfg.Endpoint != "" {
				opts.BaseEndpoint = aws.String(o.s3cfg.Endpoint)
			}
		})
	})
	return o.client, o.clientErr
}

// readCloser pairs a decoding reader with the closers of every layer.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// maybeGzip wraps rc in a gzip reader when it starts with the gzip magic
// number (0x1f, 0x8b).
func maybeGzip(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		return &readCloser{Reader: br, closers: []io.Closer{rc}}, nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	return &readCloser{Reader: gz, closers: []io.Closer{gz, rc}}, nil
}
