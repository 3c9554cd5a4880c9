package dataset

import (
	"context"
	"fmt"

	"yamdb/pkg/models"
)

const DefaultBatchSize = 200

// Store is the write side the load stage needs. Implementations enforce
// unique and foreign-key constraints themselves.
type Store interface {
	DeleteAll(ctx context.Context, table string) (int64, error)
	// BulkInsert inserts rows, a non-empty slice of structs whose db tags
	// cover columns.
	BulkInsert(ctx context.Context, table string, columns []string, rows any) (int64, error)
	Count(ctx context.Context, table string) (int64, error)
}

// loadFunc reads one cleaned extract and inserts it, returning the row count.
type loadFunc func(ctx context.Context, s Store, path string, batch int) (int, error)

func loadTable[T any](e Entity) loadFunc {
	return func(ctx context.Context, s Store, path string, batch int) (int, error) {
		rows, err := readTable[T](path, e.Required)
		if err != nil {
			return 0, err
		}
		return insertBatches(ctx, s, e, rows, batch)
	}
}

func insertBatches[T any](ctx context.Context, s Store, e Entity, rows []T, batch int) (int, error) {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	total := 0
	for start := 0; start < len(rows); start += batch {
		end := start + batch
		if end > len(rows) {
			end = len(rows)
		}
		n, err := s.BulkInsert(ctx, e.Table, e.Columns, rows[start:end])
		if err != nil {
			return total, fmt.Errorf("insert %s rows %d-%d: %w", e.Table, start+1, end, err)
		}
		total += int(n)
	}
	return total, nil
}

// clearStore empties every managed table, children first.
func clearStore(ctx context.Context, s Store, steps []Step) (map[string]int64, error) {
	deleted := make(map[string]int64, len(steps))
	for i := len(steps) - 1; i >= 0; i-- {
		e := steps[i].Entity
		n, err := s.DeleteAll(ctx, e.Table)
		if err != nil {
			return deleted, fmt.Errorf("clear %s: %w", e.Table, err)
		}
		deleted[e.Name] = n
	}
	return deleted, nil
}

var (
	loadGenres     = loadTable[models.Genre](GenreEntity)
	loadCategories = loadTable[models.Category](CategoryEntity)
	loadTitles     = loadTable[models.Title](TitleEntity)
	loadTitleGenre = loadTable[models.TitleGenre](TitleGenreEntity)
	loadUsers      = loadTable[models.User](UserEntity)
	loadReviews    = loadTable[models.Review](ReviewEntity)
	loadComments   = loadTable[models.Comment](CommentEntity)
)
