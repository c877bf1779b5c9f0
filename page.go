package mappa

import (
	"context"

	"github.com/syssam/mappa/meta"
	"github.com/syssam/mappa/wrapper"
)

// Page is one page of a paginated query.
type Page[E any] struct {
	Records []*E  // rows on this page
	Total   int64 // rows matching the conditions across all pages
	Current int64 // 1-based page number
	Size    int64 // page size
}

// Pages returns the number of pages needed for Total records.
func (p *Page[E]) Pages() int64 {
	if p.Size <= 0 {
		return 0
	}
	return (p.Total + p.Size - 1) / p.Size
}

// SelectPage counts the rows matching the wrapper and loads the
// requested page. Page numbers start at 1. The count short-circuits an
// empty result, skipping the data query. Both statements run on the
// given executor, so paging inside a transaction sees the
// transaction's view.
func SelectPage[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, w *wrapper.Wrapper, page, size int64) (*Page[E], error) {
	if page < 1 {
		return nil, &InvalidArgumentError{Name: "page", Reason: "must be at least 1"}
	}
	if size < 1 {
		return nil, &InvalidArgumentError{Name: "size", Reason: "must be at least 1"}
	}
	total, err := Count[E, P](ctx, ex, w)
	if err != nil {
		return nil, err
	}
	out := &Page[E]{Records: []*E{}, Total: total, Current: page, Size: size}
	if total == 0 {
		return out, nil
	}
	// Paging overrides the wrapper's bounds for the data query only;
	// the caller gets the wrapper back as it was.
	limit, offset := w.LimitValue(), w.OffsetValue()
	w.Limit(size).Offset((page - 1) * size)
	records, err := List[E, P](ctx, ex, w)
	w.Limit(limit).Offset(offset)
	if err != nil {
		return nil, err
	}
	out.Records = records
	return out, nil
}
