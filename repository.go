package mappa

import (
	"context"

	"github.com/syssam/mappa/meta"
	"github.com/syssam/mappa/wrapper"
)

// Repository binds the generic operations to one entity type, so call
// sites drop the type arguments. It holds no state beyond the executor
// and may be copied freely.
type Repository[E any, P meta.RecordPtr[E]] struct {
	ex Executor
}

// NewRepository returns a repository running on ex, either a *Mapper
// or a *Tx.
func NewRepository[E any, P meta.RecordPtr[E]](ex Executor) Repository[E, P] {
	return Repository[E, P]{ex: ex}
}

// WithTx returns a repository running the same entity on tx.
func (r Repository[E, P]) WithTx(tx *Tx) Repository[E, P] {
	return Repository[E, P]{ex: tx}
}

func (r Repository[E, P]) Save(ctx context.Context, ent P) error {
	return Save[E, P](ctx, r.ex, ent)
}

func (r Repository[E, P]) SaveBatch(ctx context.Context, ents []P) (int64, error) {
	return SaveBatch[E, P](ctx, r.ex, ents)
}

func (r Repository[E, P]) Upsert(ctx context.Context, ent P) error {
	return Upsert[E, P](ctx, r.ex, ent)
}

func (r Repository[E, P]) SaveOrUpdate(ctx context.Context, ent P) error {
	return SaveOrUpdate[E, P](ctx, r.ex, ent)
}

func (r Repository[E, P]) Update(ctx context.Context, w *wrapper.Wrapper) (int64, error) {
	return Update[E, P](ctx, r.ex, w)
}

func (r Repository[E, P]) UpdateByID(ctx context.Context, ent P) (int64, error) {
	return UpdateByID[E, P](ctx, r.ex, ent)
}

func (r Repository[E, P]) UpdateBatchByID(ctx context.Context, ents []P) (int64, error) {
	return UpdateBatchByID[E, P](ctx, r.ex, ents)
}

func (r Repository[E, P]) Remove(ctx context.Context, w *wrapper.Wrapper) (int64, error) {
	return Remove[E, P](ctx, r.ex, w)
}

func (r Repository[E, P]) RemoveByID(ctx context.Context, id any) (int64, error) {
	return RemoveByID[E, P](ctx, r.ex, id)
}

func (r Repository[E, P]) RemoveByIDs(ctx context.Context, ids []any) (int64, error) {
	return RemoveByIDs[E, P](ctx, r.ex, ids)
}

func (r Repository[E, P]) SelectByID(ctx context.Context, id any) (*E, error) {
	return SelectByID[E, P](ctx, r.ex, id)
}

func (r Repository[E, P]) SelectOne(ctx context.Context, w *wrapper.Wrapper) (*E, error) {
	return SelectOne[E, P](ctx, r.ex, w)
}

func (r Repository[E, P]) List(ctx context.Context, w *wrapper.Wrapper) ([]*E, error) {
	return List[E, P](ctx, r.ex, w)
}

func (r Repository[E, P]) Count(ctx context.Context, w *wrapper.Wrapper) (int64, error) {
	return Count[E, P](ctx, r.ex, w)
}

func (r Repository[E, P]) SelectPage(ctx context.Context, w *wrapper.Wrapper, page, size int64) (*Page[E], error) {
	return SelectPage[E, P](ctx, r.ex, w, page, size)
}
