package reviews

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
INSERT INTO titles (id, name, year) VALUES (1, 'One', 2000), (2, 'Two', 2001);
INSERT INTO users (id, username, email, role) VALUES (1, 'alice', 'alice@example.com', 'user'), (2, 'bob', 'bob@example.com', 'user');
INSERT INTO reviews (id, title_id, author_id, text, score, pub_date) VALUES
	(1, 1, 1, 'Older', 9, '2019-01-01T00:00:00Z'),
	(2, 1, 2, 'Newer', 0, '2020-01-01T00:00:00Z'),
	(3, 2, 1, 'Other title', 5, '2020-01-01T00:00:00Z');
INSERT INTO comments (id, review_id, author_id, text, pub_date) VALUES
	(1, 1, 2, 'Agree', '2019-02-01T00:00:00Z'),
	(2, 3, 2, 'Elsewhere', '2019-02-01T00:00:00Z');
`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "reviews.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	_, err = db.Exec(seedSQL)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewRepo(sqlx.NewDb(db, "sqlite3"))).RegisterPublicRoutes(r.Group("/api/v1"))
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListByTitle_NewestFirst(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/api/v1/titles/1/reviews")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []ReviewView `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "Newer", body.Items[0].Text)
	assert.Equal(t, "bob", body.Items[0].Author)
	assert.Equal(t, 0, body.Items[0].Score)
	assert.Equal(t, "alice", body.Items[1].Author)
}

func TestListComments_ScopedToTitle(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/api/v1/titles/1/reviews/1/comments")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items []CommentView `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Agree", body.Items[0].Text)
	assert.Equal(t, "bob", body.Items[0].Author)

	w = get(r, "/api/v1/titles/1/reviews/3/comments")
	require.Equal(t, http.StatusOK, w.Code)
	body.Items = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Items)
}

func TestHandlers_RejectBadIDs(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, get(r, "/api/v1/titles/x/reviews").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/v1/titles/1/reviews/-2/comments").Code)
}

func TestListByTitle_EchoesClampedPage(t *testing.T) {
	r := newTestRouter(t)

	w := get(r, "/api/v1/titles/1/reviews?limit=500&offset=-3")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 20, body.Limit)
	assert.Equal(t, 0, body.Offset)
}
