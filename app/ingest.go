package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/document"
)

// ErrNoS3Bucket is returned by IngestS3 without a configured bucket
var ErrNoS3Bucket = errors.New("ingest.s3.bucket is not configured")

// IngestReport counts what an ingestion stored
type IngestReport struct {
	Documents int                 `json:"documents"`
	Chunks    int                 `json:"chunks"`
	Usage     components.LLMUsage `json:"usage"`
}

// IngestDir indexes every supported file under dir, the configured directory when empty
func (a *App) IngestDir(ctx context.Context, dir string) (IngestReport, error) {
	if dir == "" {
		dir = a.Config.Ingest.Directory
	}
	docs, err := document.LoadDir(ctx, dir)
	if err != nil {
		return IngestReport{}, fmt.Errorf("load %s: %w", dir, err)
	}
	return a.ingest(ctx, docs)
}

// IngestS3 indexes every supported object under the configured bucket prefix
func (a *App) IngestS3(ctx context.Context) (IngestReport, error) {
	cfg := a.Config.Ingest.S3
	if cfg.Bucket == "" {
		return IngestReport{}, ErrNoS3Bucket
	}
	src := document.NewS3Source(
		document.WithS3Client(document.NewS3Client(cfg.Region, cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)),
		document.WithS3Bucket(cfg.Bucket),
		document.WithS3Prefix(cfg.Prefix),
	)
	docs, err := src.Load(ctx)
	if err != nil {
		return IngestReport{}, fmt.Errorf("load s3://%s/%s: %w", cfg.Bucket, cfg.Prefix, err)
	}
	return a.ingest(ctx, docs)
}

// IngestURLs downloads and indexes remote documents, failed downloads are skipped
func (a *App) IngestURLs(ctx context.Context, links ...string) (IngestReport, error) {
	docs := make([]document.Document, 0, len(links))
	for _, link := range links {
		doc, err := document.LoadURL(ctx, a.http, link)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("url", link).Msg("skip document")
			continue
		}
		docs = append(docs, *doc)
	}
	return a.ingest(ctx, docs)
}

func (a *App) ingest(ctx context.Context, docs []document.Document) (IngestReport, error) {
	report := IngestReport{Documents: len(docs)}
	if len(docs) == 0 {
		return report, nil
	}
	chunks, usage, err := a.Docs.AddDocuments(ctx, docs...)
	report.Chunks = chunks
	report.Usage.Merge(usage)
	if err != nil {
		return report, err
	}
	zerolog.Ctx(ctx).Info().Int("documents", report.Documents).Int("chunks", chunks).Msg("documents indexed")
	return report, nil
}
