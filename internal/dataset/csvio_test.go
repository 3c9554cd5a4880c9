package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb/pkg/models"
)

func TestDecodeTable_MissingOptionalColumnIsAbsent(t *testing.T) {
	in := "id,name,year,category\n1,Title One,1994,1\n2,Title Two,2001,\n"

	rows, err := decodeTable[models.Title](strings.NewReader(in), "titles.csv", TitleEntity.Required)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].Description)
	require.NotNil(t, rows[0].CategoryID)
	assert.Equal(t, int64(1), *rows[0].CategoryID)
	assert.Nil(t, rows[1].CategoryID)
}

func TestDecodeTable_MissingRequiredColumn(t *testing.T) {
	in := "id,name\n1,Drama\n"

	_, err := decodeTable[models.Genre](strings.NewReader(in), "genre.csv", GenreEntity.Required)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), `"slug"`)
}

func TestDecodeTable_BadValueReportsLine(t *testing.T) {
	in := "id,title_id,text,author,score\n1,1,ok,100,5\n2,1,bad,100,five\n"

	_, err := decodeTable[models.Review](strings.NewReader(in), "review.csv", ReviewEntity.Required)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestWriteTable_EmptyKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genre.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name,slug\n1,Drama,drama\n"), 0o644))

	require.NoError(t, writeTable[models.Genre](path, nil))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,name,slug\n", string(b))
}

func TestWriteTable_TitlesGainDescriptionColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titles.csv")
	cat := int64(2)
	rows := []models.Title{{ID: 1, Name: "Title One", Year: 1994, CategoryID: &cat}}

	require.NoError(t, writeTable(path, rows))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,name,year,description,category\n1,Title One,1994,,2\n", string(b))
}

func TestWriteTable_FollowsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.csv")
	link := filepath.Join(dir, "genre.csv")
	require.NoError(t, os.WriteFile(target, []byte("id,name,slug\n"), 0o644))
	require.NoError(t, os.Symlink(target, link))

	require.NoError(t, writeTable(link, []models.Genre{{ID: 1, Name: "Drama", Slug: "drama"}}))

	fi, err := os.Lstat(link)
	require.NoError(t, err)
	assert.True(t, fi.Mode()&os.ModeSymlink != 0, "link must survive the rewrite")

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "id,name,slug\n1,Drama,drama\n", string(b))
}
