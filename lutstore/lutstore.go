// Package lutstore delivers exported table files to a local directory or a
// GCS bucket.
package lutstore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Sink accepts named output files.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
}

// DirSink writes files beneath Dir, creating it if needed.
type DirSink struct {
	Dir string
}

func (s DirSink) Put(ctx context.Context, name, contentType string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("while creating output dir %q: %w", s.Dir, err)
	}

	p := filepath.Join(s.Dir, name)
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("while writing %q: %w", p, err)
	}
	return nil
}

// GCSSink uploads files as objects under Prefix in Bucket.
type GCSSink struct {
	gcs    *storage.Client
	bucket string
	prefix string
}

func NewGCSSink(gcs *storage.Client, bucket, prefix string) *GCSSink {
	return &GCSSink{
		gcs:    gcs,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *GCSSink) objectName(name string) string {
	return path.Join(s.prefix, name)
}

func (s *GCSSink) Put(ctx context.Context, name, contentType string, data []byte) error {
	tracer := otel.Tracer("skylut/lutstore")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GCSSink.Put")
	defer span.End()

	span.SetAttributes(
		attribute.String("object", s.objectName(name)),
		attribute.Int("bytes", len(data)),
	)

	obj := s.gcs.Bucket(s.bucket).Object(s.objectName(name))

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	// Disable chunking.  Tables are written whole, so buffering them again in
	// the writer only doubles memory use.
	w.ChunkSize = 0

	if _, err := w.Write(data); err != nil {
		err := fmt.Errorf("while writing %q to object writer: %w", name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := w.Close(); err != nil {
		err := fmt.Errorf("while closing object writer for %q: %w", name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Multi fans each file out to every sink in order, stopping at the first
// failure.
type Multi []Sink

func (m Multi) Put(ctx context.Context, name, contentType string, data []byte) error {
	for _, s := range m {
		if err := s.Put(ctx, name, contentType, data); err != nil {
			return err
		}
	}
	return nil
}
