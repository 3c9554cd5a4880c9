package models

// Genre and Category share a shape: a unique display name plus a unique slug.
type Genre struct {
	ID   int64  `csv:"id" db:"id" json:"-"`
	Name string `csv:"name" db:"name" json:"name"`
	Slug string `csv:"slug" db:"slug" json:"slug"`
}

type Category struct {
	ID   int64  `csv:"id" db:"id" json:"-"`
	Name string `csv:"name" db:"name" json:"name"`
	Slug string `csv:"slug" db:"slug" json:"slug"`
}

// Title is a reviewed work. CategoryID is read from the "category" column
// of titles.csv and stored as category_id.
type Title struct {
	ID          int64   `csv:"id" db:"id" json:"id"`
	Name        string  `csv:"name" db:"name" json:"name"`
	Year        int     `csv:"year" db:"year" json:"year"`
	Description *string `csv:"description" db:"description" json:"description"`
	CategoryID  *int64  `csv:"category" db:"category_id" json:"-"`
}

// TitleGenre links a title to one of its genres.
type TitleGenre struct {
	ID      int64 `csv:"id" db:"id" json:"id"`
	TitleID int64 `csv:"title_id" db:"title_id" json:"title_id"`
	GenreID int64 `csv:"genre_id" db:"genre_id" json:"genre_id"`
}
