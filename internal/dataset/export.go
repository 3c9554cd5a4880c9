package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"yamdb/pkg/models"
)

// Source is the read side used to dump the store back into extracts.
type Source interface {
	// SelectAll scans every row of table, ordered by id, into dest, a
	// pointer to a slice of structs with db tags for columns.
	SelectAll(ctx context.Context, dest any, table string, columns []string) error
}

type exportFunc func(ctx context.Context, src Source, dir string) (int, error)

func exportTable[T any](e Entity) exportFunc {
	return func(ctx context.Context, src Source, dir string) (int, error) {
		var rows []T
		if err := src.SelectAll(ctx, &rows, e.Table, e.Columns); err != nil {
			return 0, err
		}
		if err := writeTable(filepath.Join(dir, e.File), rows); err != nil {
			return 0, err
		}
		return len(rows), nil
	}
}

var exporters = map[string]exportFunc{
	GenreEntity.Name:      exportTable[models.Genre](GenreEntity),
	CategoryEntity.Name:   exportTable[models.Category](CategoryEntity),
	TitleEntity.Name:      exportTable[models.Title](TitleEntity),
	TitleGenreEntity.Name: exportTable[models.TitleGenre](TitleGenreEntity),
	UserEntity.Name:       exportTable[models.User](UserEntity),
	ReviewEntity.Name:     exportTable[models.Review](ReviewEntity),
	CommentEntity.Name:    exportTable[models.Comment](CommentEntity),
}

// Export writes one extract per entity into dir, in the layout load-data
// reads. Existing extracts are replaced.
func Export(ctx context.Context, src Source, dir string) (map[string]int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	out := make(map[string]int, len(Entities))
	for _, e := range Entities {
		n, err := exporters[e.Name](ctx, src, dir)
		if err != nil {
			return out, fmt.Errorf("export %s: %w", e.Name, err)
		}
		out[e.Name] = n
	}
	return out, nil
}
