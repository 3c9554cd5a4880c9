package dataset

import (
	"yamdb/pkg/models"
)

// ReviewExtract is a review.csv row as read. Blank cells decode to nil.
type ReviewExtract struct {
	ID       *int64  `csv:"id"`
	TitleID  *int64  `csv:"title_id"`
	Text     string  `csv:"text"`
	AuthorID *int64  `csv:"author"`
	Score    *int    `csv:"score"`
	PubDate  *string `csv:"pub_date"`
}

type CommentExtract struct {
	ID       *int64  `csv:"id"`
	ReviewID *int64  `csv:"review_id"`
	Text     string  `csv:"text"`
	AuthorID *int64  `csv:"author"`
	PubDate  *string `csv:"pub_date"`
}

// CompleteReviews drops rows with a blank id, title, author or score and
// returns the rest as reviews, in input order.
func CompleteReviews(rows []ReviewExtract) []models.Review {
	out := make([]models.Review, 0, len(rows))
	for _, r := range rows {
		if r.ID == nil || r.TitleID == nil || r.AuthorID == nil || r.Score == nil {
			continue
		}
		out = append(out, models.Review{
			ID:       *r.ID,
			TitleID:  *r.TitleID,
			Text:     r.Text,
			AuthorID: *r.AuthorID,
			Score:    *r.Score,
			PubDate:  r.PubDate,
		})
	}
	return out
}

// CompleteComments drops rows with a blank id, review or author.
func CompleteComments(rows []CommentExtract) []models.Comment {
	out := make([]models.Comment, 0, len(rows))
	for _, c := range rows {
		if c.ID == nil || c.ReviewID == nil || c.AuthorID == nil {
			continue
		}
		out = append(out, models.Comment{
			ID:       *c.ID,
			ReviewID: *c.ReviewID,
			Text:     c.Text,
			AuthorID: *c.AuthorID,
			PubDate:  c.PubDate,
		})
	}
	return out
}
