package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"yamdb/pkg/models"
)

type Repo struct {
	DB *sqlx.DB
}

type ListQuery struct {
	Name     string // substring match on title name
	Genre    string // genre slug
	Category string // category slug
	Year     int
	Limit    int
	Offset   int
}

// TitleView is a title with its category, genres and average review score.
type TitleView struct {
	models.Title
	Category *models.Category `json:"category"`
	Genres   []models.Genre   `json:"genre"`
	Rating   *float64         `json:"rating"`
}

type titleRow struct {
	models.Title
	CategoryName sql.NullString  `db:"category_name"`
	CategorySlug sql.NullString  `db:"category_slug"`
	Rating       sql.NullFloat64 `db:"rating"`
}

func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) ListCategories(ctx context.Context) ([]models.Category, error) {
	out := []models.Category{}
	if err := r.DB.SelectContext(ctx, &out, `SELECT id, name, slug FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *Repo) ListGenres(ctx context.Context) ([]models.Genre, error) {
	out := []models.Genre{}
	if err := r.DB.SelectContext(ctx, &out, `SELECT id, name, slug FROM genres ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return out, nil
}

func (r *Repo) GetTitle(ctx context.Context, id int64) (*TitleView, error) {
	var row titleRow
	err := r.DB.GetContext(ctx, &row, titleSelect+` WHERE t.id = ? GROUP BY t.id`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get title: %w", err)
	}
	views, err := r.attachGenres(ctx, []titleRow{row})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (r *Repo) CountTitles(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.GetContext(ctx, &total, sqlStr, args...); err != nil {
		return 0, fmt.Errorf("count titles: %w", err)
	}
	return total, nil
}

func (r *Repo) ListTitles(ctx context.Context, q ListQuery) ([]TitleView, error) {
	sqlStr, args := buildListSQL(q, false)
	var rows []titleRow
	if err := r.DB.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	return r.attachGenres(ctx, rows)
}

func (r *Repo) attachGenres(ctx context.Context, rows []titleRow) ([]TitleView, error) {
	out := make([]TitleView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	query, args, err := sqlx.In(`
		SELECT tg.title_id, g.id, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id IN (?)
		ORDER BY g.name
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("build genre query: %w", err)
	}

	var links []struct {
		TitleID int64 `db:"title_id"`
		models.Genre
	}
	if err := r.DB.SelectContext(ctx, &links, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list title genres: %w", err)
	}
	byTitle := make(map[int64][]models.Genre, len(rows))
	for _, l := range links {
		byTitle[l.TitleID] = append(byTitle[l.TitleID], l.Genre)
	}

	for _, row := range rows {
		v := TitleView{Title: row.Title, Genres: byTitle[row.ID]}
		if v.Genres == nil {
			v.Genres = []models.Genre{}
		}
		if row.CategorySlug.Valid {
			v.Category = &models.Category{Name: row.CategoryName.String, Slug: row.CategorySlug.String}
		}
		if row.Rating.Valid {
			rating := row.Rating.Float64
			v.Rating = &rating
		}
		out = append(out, v)
	}
	return out, nil
}

const titleSelect = `
	SELECT t.id, t.name, t.year, t.description, t.category_id,
	       c.name AS category_name, c.slug AS category_slug,
	       AVG(rv.score) AS rating
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id
	LEFT JOIN reviews rv ON rv.title_id = t.id
`

// buildListSQL builds either COUNT(*) or the paged SELECT.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	var where []string
	var args []any

	if name := strings.TrimSpace(q.Name); name != "" {
		where = append(where, "LOWER(t.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(name)+"%")
	}
	if q.Year > 0 {
		where = append(where, "t.year = ?")
		args = append(args, q.Year)
	}
	if slug := strings.TrimSpace(q.Category); slug != "" {
		where = append(where, "t.category_id IN (SELECT id FROM categories WHERE slug = ?)")
		args = append(args, slug)
	}
	if slug := strings.TrimSpace(q.Genre); slug != "" {
		where = append(where, `t.id IN (
			SELECT tg.title_id FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE g.slug = ?)`)
		args = append(args, slug)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	if countOnly {
		return `SELECT COUNT(*) FROM titles t` + whereSQL, args
	}

	limit, offset := ClampPage(q.Limit, q.Offset)
	sqlStr := titleSelect + whereSQL + " GROUP BY t.id ORDER BY t.name ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	return sqlStr, args
}
