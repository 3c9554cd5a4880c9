package models

const (
	MinScore = 1
	MaxScore = 10
)

// Review is one user's score for a title. The extract names the author
// column "author"; the store keeps it as author_id.
type Review struct {
	ID       int64   `csv:"id" db:"id" json:"id"`
	TitleID  int64   `csv:"title_id" db:"title_id" json:"title_id"`
	Text     string  `csv:"text" db:"text" json:"text"`
	AuthorID int64   `csv:"author" db:"author_id" json:"-"`
	Score    int     `csv:"score" db:"score" json:"score"`
	PubDate  *string `csv:"pub_date" db:"pub_date" json:"pub_date"`
}

type Comment struct {
	ID       int64   `csv:"id" db:"id" json:"id"`
	ReviewID int64   `csv:"review_id" db:"review_id" json:"review_id"`
	Text     string  `csv:"text" db:"text" json:"text"`
	AuthorID int64   `csv:"author" db:"author_id" json:"-"`
	PubDate  *string `csv:"pub_date" db:"pub_date" json:"pub_date"`
}
