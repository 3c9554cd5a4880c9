package reviews

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"yamdb/internal/catalog"
)

type Repo struct {
	DB *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{DB: db}
}

// ReviewView is a review with its author's username.
type ReviewView struct {
	ID      int64   `db:"id" json:"id"`
	TitleID int64   `db:"title_id" json:"title"`
	Text    string  `db:"text" json:"text"`
	Author  string  `db:"author" json:"author"`
	Score   int     `db:"score" json:"score"`
	PubDate *string `db:"pub_date" json:"pub_date"`
}

type CommentView struct {
	ID       int64   `db:"id" json:"id"`
	ReviewID int64   `db:"review_id" json:"review"`
	Text     string  `db:"text" json:"text"`
	Author   string  `db:"author" json:"author"`
	PubDate  *string `db:"pub_date" json:"pub_date"`
}

func (r *Repo) ListByTitle(ctx context.Context, titleID int64, limit, offset int) ([]ReviewView, error) {
	limit, offset = catalog.ClampPage(limit, offset)

	out := make([]ReviewView, 0, limit)
	err := r.DB.SelectContext(ctx, &out, `
		SELECT rv.id, rv.title_id, rv.text, u.username AS author, rv.score, rv.pub_date
		FROM reviews rv
		JOIN users u ON u.id = rv.author_id
		WHERE rv.title_id = ?
		ORDER BY rv.pub_date DESC, rv.id DESC
		LIMIT ? OFFSET ?
	`, titleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

// ListComments returns the comments of a review, provided the review
// belongs to titleID.
func (r *Repo) ListComments(ctx context.Context, titleID, reviewID int64, limit, offset int) ([]CommentView, error) {
	limit, offset = catalog.ClampPage(limit, offset)

	out := make([]CommentView, 0, limit)
	err := r.DB.SelectContext(ctx, &out, `
		SELECT cm.id, cm.review_id, cm.text, u.username AS author, cm.pub_date
		FROM comments cm
		JOIN reviews rv ON rv.id = cm.review_id
		JOIN users u ON u.id = cm.author_id
		WHERE cm.review_id = ? AND rv.title_id = ?
		ORDER BY cm.pub_date DESC, cm.id DESC
		LIMIT ? OFFSET ?
	`, reviewID, titleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}
