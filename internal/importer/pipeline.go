package importer

import (
	"context"
	"fmt"
	"log/slog"
)

// Pipeline runs crawl, convert and sync in order.
type Pipeline struct {
	Crawler   Crawler
	Retrier   *Retrier
	Converter *Converter
	Syncer    *Syncer
	SourceDir string
	Output    string
	Logger    *slog.Logger
}

// Crawl runs the crawler under the retry policy.
func (p *Pipeline) Crawl(ctx context.Context) error {
	if !p.Crawler.Enabled() {
		p.logger().InfoContext(ctx, "crawl skipped, no crawler configured")
		return nil
	}
	return p.Retrier.Do(ctx, "crawl", p.Crawler.Run)
}

// Convert parses the source directory and writes the canonical CSV.
func (p *Pipeline) Convert(ctx context.Context) (Schedule, error) {
	schedule, err := p.Converter.ConvertDir(ctx, p.SourceDir)
	if err != nil {
		return nil, err
	}
	if p.Output != "" {
		if err := WriteCSVFile(p.Output, schedule); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.Output, err)
		}
	}
	return schedule, nil
}

// Run crawls, converts and reconciles the lessons table.
func (p *Pipeline) Run(ctx context.Context) (SyncResult, error) {
	if err := p.Crawl(ctx); err != nil {
		return SyncResult{}, err
	}
	schedule, err := p.Convert(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	return p.Syncer.Sync(ctx, schedule)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
