package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb/pkg/database"
)

const seedSQL = `
INSERT INTO genres (id, name, slug) VALUES (1, 'Drama', 'drama'), (2, 'Comedy', 'comedy');
INSERT INTO categories (id, name, slug) VALUES (1, 'Movie', 'movie'), (2, 'Book', 'book');
INSERT INTO titles (id, name, year, description, category_id) VALUES
	(1, 'The Godfather', 1972, 'Family business', 1),
	(2, 'Catch-22', 1961, NULL, 2),
	(3, 'Airplane!', 1980, NULL, NULL);
INSERT INTO title_genres (id, title_id, genre_id) VALUES (1, 1, 1), (2, 2, 1), (3, 2, 2), (4, 3, 2);
INSERT INTO users (id, username, email, role) VALUES (1, 'alice', 'alice@example.com', 'user'), (2, 'bob', 'bob@example.com', 'user');
INSERT INTO reviews (id, title_id, author_id, text, score) VALUES (1, 1, 1, 'Classic', 10), (2, 1, 2, 'Long', 7);
`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	_, err = db.Exec(seedSQL)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewRepo(sqlx.NewDb(db, "sqlite3"))).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(t *testing.T, r http.Handler, path string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

type titlePage struct {
	Total int         `json:"total"`
	Items []TitleView `json:"items"`
}

func TestListGenres(t *testing.T) {
	r := newTestRouter(t)

	var body struct {
		Items []struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"items"`
	}
	require.Equal(t, http.StatusOK, get(t, r, "/api/v1/genres", &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "comedy", body.Items[0].Slug)
}

func TestListTitles_Filters(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "all by name", query: "", want: []string{"Airplane!", "Catch-22", "The Godfather"}},
		{name: "genre", query: "?genre=drama", want: []string{"Catch-22", "The Godfather"}},
		{name: "category", query: "?category=book", want: []string{"Catch-22"}},
		{name: "year", query: "?year=1980", want: []string{"Airplane!"}},
		{name: "name substring", query: "?name=GOD", want: []string{"The Godfather"}},
		{name: "paged", query: "?limit=1&offset=1", want: []string{"Catch-22"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page titlePage
			require.Equal(t, http.StatusOK, get(t, r, "/api/v1/titles"+tt.query, &page))

			var names []string
			for _, it := range page.Items {
				names = append(names, it.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestGetTitle(t *testing.T) {
	r := newTestRouter(t)

	var v TitleView
	require.Equal(t, http.StatusOK, get(t, r, "/api/v1/titles/1", &v))
	assert.Equal(t, "The Godfather", v.Name)
	require.NotNil(t, v.Category)
	assert.Equal(t, "movie", v.Category.Slug)
	require.Len(t, v.Genres, 1)
	require.NotNil(t, v.Rating)
	assert.InDelta(t, 8.5, *v.Rating, 0.001)

	var unrated TitleView
	require.Equal(t, http.StatusOK, get(t, r, "/api/v1/titles/3", &unrated))
	assert.Nil(t, unrated.Rating)
	assert.Nil(t, unrated.Category)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/api/v1/titles/99", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/api/v1/titles/abc", nil))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 7, ParseInt(" ", 7))
	assert.Equal(t, 7, ParseInt("x", 7))
	assert.Equal(t, 3, ParseInt("3", 7))

	_, ok := ParseID("0")
	assert.False(t, ok)
	id, ok := ParseID("12")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)
}

func TestListTitles_EchoesClampedPage(t *testing.T) {
	r := newTestRouter(t)

	var body struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
		Total  int `json:"total"`
	}
	require.Equal(t, http.StatusOK, get(t, r, "/api/v1/titles?limit=500&offset=-1", &body))

	assert.Equal(t, 20, body.Limit)
	assert.Equal(t, 0, body.Offset)
	assert.Equal(t, 3, body.Total)
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{limit: 0, offset: -5, wantLimit: 20, wantOffset: 0},
		{limit: 500, offset: 3, wantLimit: 20, wantOffset: 3},
		{limit: 100, offset: 0, wantLimit: 100, wantOffset: 0},
		{limit: 1, offset: 9, wantLimit: 1, wantOffset: 9},
	}
	for _, tt := range tests {
		l, o := ClampPage(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, l)
		assert.Equal(t, tt.wantOffset, o)
	}
}
