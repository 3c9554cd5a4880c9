package dataset

// Entity describes one managed record type: the extract it is read from and
// the store table it is loaded into.
type Entity struct {
	Name  string
	File  string
	Table string
	// Columns are the store columns, in insert order. Each one matches a
	// db tag on the entity's model.
	Columns []string
	// Required lists the CSV header columns the extract must carry.
	Required []string
}

var (
	GenreEntity = Entity{
		Name:     "genre",
		File:     "genre.csv",
		Table:    "genres",
		Columns:  []string{"id", "name", "slug"},
		Required: []string{"id", "name", "slug"},
	}
	CategoryEntity = Entity{
		Name:     "category",
		File:     "category.csv",
		Table:    "categories",
		Columns:  []string{"id", "name", "slug"},
		Required: []string{"id", "name", "slug"},
	}
	TitleEntity = Entity{
		Name:     "titles",
		File:     "titles.csv",
		Table:    "titles",
		Columns:  []string{"id", "name", "year", "description", "category_id"},
		Required: []string{"id", "name", "year"},
	}
	TitleGenreEntity = Entity{
		Name:     "genre_title",
		File:     "genre_title.csv",
		Table:    "title_genres",
		Columns:  []string{"id", "title_id", "genre_id"},
		Required: []string{"id", "title_id", "genre_id"},
	}
	UserEntity = Entity{
		Name:  "users",
		File:  "users.csv",
		Table: "users",
		Columns: []string{
			"id", "username", "email", "role", "bio", "first_name", "last_name",
			"is_superuser", "is_staff", "is_active",
		},
		Required: []string{"id", "username", "email", "role"},
	}
	ReviewEntity = Entity{
		Name:     "review",
		File:     "review.csv",
		Table:    "reviews",
		Columns:  []string{"id", "title_id", "text", "author_id", "score", "pub_date"},
		Required: []string{"id", "title_id", "text", "author", "score"},
	}
	CommentEntity = Entity{
		Name:     "comments",
		File:     "comments.csv",
		Table:    "comments",
		Columns:  []string{"id", "review_id", "text", "author_id", "pub_date"},
		Required: []string{"id", "review_id", "text", "author"},
	}
)

// Entities is the dependency order: every entity only references entities
// that come before it.
var Entities = []Entity{
	GenreEntity,
	CategoryEntity,
	TitleEntity,
	TitleGenreEntity,
	UserEntity,
	ReviewEntity,
	CommentEntity,
}

// RequiredFiles returns the extract file names a source directory must hold.
func RequiredFiles() []string {
	out := make([]string, 0, len(Entities))
	for _, e := range Entities {
		out = append(out, e.File)
	}
	return out
}
