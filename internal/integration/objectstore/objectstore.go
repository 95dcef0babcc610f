// Package objectstore mirrors artifacts into an S3-compatible bucket. The
// object ETag serves as the revision marker: an update is only accepted while
// the object still carries the ETag seen by the existence check.
package objectstore

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/colonyops/workplan/internal/core/logging"
	"github.com/colonyops/workplan/internal/core/mirror"
)

// Config configures the bucket mirror.
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Prefix    string
	Timeouts  mirror.Timeouts
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Mirror implements mirror.Mirror on a bucket.
type Mirror struct {
	cfg    Config
	client *minio.Client
	log    zerolog.Logger
}

var _ mirror.Mirror = (*Mirror)(nil)

// New returns a Mirror. An incomplete configuration yields a mirror whose
// calls report NotConfigured.
func New(cfg Config) (*Mirror, error) {
	cfg.Timeouts = cfg.Timeouts.WithDefaults()
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	m := &Mirror{cfg: cfg, log: logging.Component("objectstore")}
	if !m.configured() {
		return m, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, err
	}
	m.client = client
	return m, nil
}

func (m *Mirror) Name() string { return "S3" }

func (m *Mirror) configured() bool {
	return m.cfg.Endpoint != "" && m.cfg.Bucket != "" && m.cfg.AccessKey != "" && m.cfg.SecretKey != ""
}

// Upsert stats the object for its current ETag, then writes it. Updates are
// conditional on that ETag; a concurrent change fails with status 412.
func (m *Mirror) Upsert(ctx context.Context, content []byte, remotePath string) (mirror.Confirmation, error) {
	if m.client == nil {
		return mirror.Confirmation{}, mirror.NotConfigured("S3 endpoint, bucket or credentials missing")
	}
	remotePath, err := mirror.CleanPath(remotePath)
	if err != nil {
		return mirror.Confirmation{}, mirror.WriteFailed(0, "", err)
	}
	key := remotePath
	if m.cfg.Prefix != "" {
		key = path.Join(strings.Trim(m.cfg.Prefix, "/"), remotePath)
	}

	etag, err := m.etag(ctx, key)
	if err != nil {
		return mirror.Confirmation{}, err
	}

	opts := minio.PutObjectOptions{ContentType: contentType(key)}
	if etag != "" {
		opts.SetMatchETag(etag)
	}

	uctx, cancel := context.WithTimeout(ctx, m.cfg.Timeouts.Upload)
	defer cancel()

	info, err := m.client.PutObject(uctx, m.cfg.Bucket, key, bytes.NewReader(content), int64(len(content)), opts)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.StatusCode == http.StatusPreconditionFailed {
			m.log.Warn().Ctx(ctx).Str("key", key).Str("etag", etag).Msg("object changed since check")
		}
		return mirror.Confirmation{}, mirror.WriteFailed(resp.StatusCode, resp.Message, err)
	}

	m.log.Debug().Ctx(ctx).Str("key", key).Str("etag", info.ETag).Msg("put object")

	return mirror.Confirmation{Path: key, Revision: info.ETag, Created: etag == ""}, nil
}

func (m *Mirror) etag(ctx context.Context, key string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, m.cfg.Timeouts.Check)
	defer cancel()

	info, err := m.client.StatObject(cctx, m.cfg.Bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return info.ETag, nil
	}

	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" {
		return "", nil
	}
	return "", mirror.ReadFailed(resp.StatusCode, resp.Message, err)
}

func contentType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}
