package search

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cosmetia/cosmetia/pkg/catalog"
	"github.com/cosmetia/cosmetia/pkg/catalog/criteria"
	"github.com/cosmetia/cosmetia/pkg/observability/logger"
	"github.com/cosmetia/cosmetia/pkg/observability/metrics"
)

// PageRequest selects one zero-based page.
type PageRequest struct {
	Number int
	Size   int
}

// Page is one page of search results plus the totals computed from the
// companion count query.
type Page struct {
	Items      []catalog.Product `json:"items"`
	TotalCount int64             `json:"totalCount"`
	TotalPages int               `json:"totalPages"`
	Number     int               `json:"page"`
	Size       int               `json:"size"`
}

// Executor is the slice of the document store the engine needs.
// *mongodb.Adapter satisfies it.
type Executor interface {
	Aggregate(ctx context.Context, collection string, pipeline interface{}, results interface{}) error
}

// Engine runs compiled criteria against the product collection.
//
// The count query and the page query are two round-trips over the same
// filter with no snapshot isolation between them: with concurrent writes
// to the collection the totals can be momentarily stale relative to the
// page. Pagination is eventually consistent by design.
type Engine struct {
	executor Executor
	builder  *Builder
	logger   logger.Logger
	tracer   trace.Tracer
}

// NewEngine creates a search engine. tracer may be nil; a noop tracer is
// used in that case.
func NewEngine(executor Executor, builder *Builder, log logger.Logger, tracer trace.Tracer) (*Engine, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("builder is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("catalog.search")
	}
	return &Engine{executor: executor, builder: builder, logger: log, tracer: tracer}, nil
}

type countRow struct {
	Total int64 `bson:"total"`
}

// Search returns one page of products matching c plus the total match
// count. An empty result is a valid page with count 0, never an error.
func (e *Engine) Search(ctx context.Context, c criteria.Criteria, page PageRequest) (*Page, error) {
	if page.Number < 0 {
		return nil, fmt.Errorf("page number must not be negative, got %d", page.Number)
	}
	if page.Size <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", page.Size)
	}

	ctx, span := e.tracer.Start(ctx, "catalog.search",
		trace.WithAttributes(
			attribute.Int("search.page", page.Number),
			attribute.Int("search.size", page.Size),
			attribute.Bool("search.scored", c.NeedsMatchScore()),
		))
	defer span.End()

	start := time.Now()

	total, err := e.count(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	pipeline, err := e.builder.Pipeline(c, page)
	if err != nil {
		return nil, err
	}

	items := []catalog.Product{}
	if err := e.executor.Aggregate(ctx, catalog.ProductsCollection, pipeline, &items); err != nil {
		return nil, fmt.Errorf("page query failed: %w", err)
	}

	result := &Page{
		Items:      items,
		TotalCount: total,
		TotalPages: totalPages(total, page.Size),
		Number:     page.Number,
		Size:       page.Size,
	}

	span.SetAttributes(attribute.Int64("search.total", total))
	metrics.RecordSearch(time.Since(start), c.NeedsMatchScore())
	e.logger.WithContext(ctx).Debug("search executed",
		"total", total,
		"page", page.Number,
		"returned", len(items),
		"duration", time.Since(start),
	)
	return result, nil
}

// count runs the filter-only pipeline. A $count stage over zero matching
// documents yields no row at all; that decodes to an empty slice and
// means count 0.
func (e *Engine) count(ctx context.Context, c criteria.Criteria) (int64, error) {
	var rows []countRow
	if err := e.executor.Aggregate(ctx, catalog.ProductsCollection, e.builder.CountPipeline(c), &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func totalPages(total int64, size int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
