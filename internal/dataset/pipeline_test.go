package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	rows   map[string]int64
	ops    []string
	failOn string
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]int64{}}
}

func (s *fakeStore) DeleteAll(_ context.Context, table string) (int64, error) {
	s.ops = append(s.ops, "delete "+table)
	n := s.rows[table]
	s.rows[table] = 0
	return n, nil
}

func (s *fakeStore) BulkInsert(_ context.Context, table string, _ []string, rows any) (int64, error) {
	if table == s.failOn {
		return 0, errors.New("constraint failed")
	}
	s.ops = append(s.ops, "insert "+table)
	n := int64(reflect.ValueOf(rows).Len())
	s.rows[table] += n
	return n, nil
}

func (s *fakeStore) Count(_ context.Context, table string) (int64, error) {
	return s.rows[table], nil
}

func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestPipeline(dir string, st Store, opts ...Option) *Pipeline {
	opts = append([]Option{WithClock(tickingClock()), WithLogger(zap.NewNop().Sugar())}, opts...)
	return New(dir, st, opts...)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestPipeline_StepsFollowDependencyOrder(t *testing.T) {
	p := newTestPipeline(t.TempDir(), newFakeStore())

	var names []string
	for _, s := range p.Steps() {
		names = append(names, s.Entity.Name)
	}
	assert.Equal(t, []string{"genre", "category", "titles", "genre_title", "users", "review", "comments"}, names)
}

func TestPipelineRun_CleansAndLoadsSample(t *testing.T) {
	dir := copySample(t)
	st := newFakeStore()

	res := newTestPipeline(dir, st).Run(context.Background())

	require.True(t, res.OK(), "run failed: %v", res.Err)
	assert.NotEmpty(t, res.RunID)

	wantKept := map[string]int{
		"genre": 2, "category": 3, "titles": 3, "genre_title": 4,
		"users": 3, "review": 3, "comments": 2,
	}
	for name, kept := range wantKept {
		assert.Equal(t, kept, res.Cleaned[name].Kept, name)
		assert.Equal(t, kept, res.Loaded[name], name)
	}
	assert.Equal(t, 4, res.Cleaned["genre"].Read)
	assert.Equal(t, 2, res.Cleaned["genre"].Dropped())

	assert.Equal(t,
		"id,name,year,description,category\n1,Title One,1994,,1\n2,Title Two,2001,,2\n5,Unknown Category,2010,,\n",
		readFile(t, filepath.Join(dir, "titles.csv")))
	assert.Equal(t,
		"id,title_id,genre_id\n1,1,1\n2,1,2\n3,2,2\n5,5,1\n",
		readFile(t, filepath.Join(dir, "genre_title.csv")))
	assert.Equal(t,
		"id,username,email,role,bio,first_name,last_name,is_superuser,is_staff,is_active\n"+
			"100,alice,alice@example.com,admin,,Alice,,false,true,true\n"+
			"101,bob,bob@example.com,user,Reads a lot,,,false,false,true\n"+
			"105,eve,eve@example.com,superuser,,,,true,true,true\n",
		readFile(t, filepath.Join(dir, "users.csv")))

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "1 reviews kept with score below 1")

	orig := readFile(t, filepath.Join("testdata", "sample", "genre.csv"))
	assert.Equal(t, orig, readFile(t, filepath.Join(res.ArchiveDir, "genre.csv")))
}

func TestPipelineRun_ReplacesExistingStoreRows(t *testing.T) {
	dir := copySample(t)
	st := newFakeStore()
	for _, e := range Entities {
		st.rows[e.Table] = 50
	}

	res := newTestPipeline(dir, st).Run(context.Background())
	require.True(t, res.OK(), "run failed: %v", res.Err)

	for _, e := range Entities {
		assert.Equal(t, int64(50), res.Deleted[e.Name], e.Name)
		n, _ := st.Count(context.Background(), e.Table)
		assert.Equal(t, int64(res.Cleaned[e.Name].Kept), n, e.Table)
	}

	assert.Equal(t, []string{
		"delete comments", "delete reviews", "delete users", "delete title_genres",
		"delete titles", "delete categories", "delete genres",
		"insert genres", "insert categories", "insert titles", "insert title_genres",
		"insert users", "insert reviews", "insert comments",
	}, st.ops)
}

func TestPipelineRun_MissingFileAbortsBeforeAnyChange(t *testing.T) {
	dir := copySample(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "comments.csv")))
	before := readFile(t, filepath.Join(dir, "users.csv"))
	st := newFakeStore()
	st.rows["users"] = 7

	res := newTestPipeline(dir, st).Run(context.Background())

	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err, ErrMissingSource)
	assert.Contains(t, res.Err.Error(), "comments.csv")

	var se *StageError
	require.ErrorAs(t, res.Err, &se)
	assert.Equal(t, StageArchive, se.Stage)

	assert.Equal(t, before, readFile(t, filepath.Join(dir, "users.csv")))
	assert.Empty(t, res.ArchiveDir)
	assert.Empty(t, st.ops)
	assert.Equal(t, int64(7), st.rows["users"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.IsDir(), "no archive dir expected, found %s", e.Name())
	}
}

func TestPipelineRun_LoadFailureLeavesPartialStore(t *testing.T) {
	dir := copySample(t)
	st := newFakeStore()
	st.failOn = "reviews"

	res := newTestPipeline(dir, st).Run(context.Background())

	f := res.Failure()
	require.NotNil(t, f)
	assert.Equal(t, StageLoad, f.Stage)
	assert.Equal(t, "review", f.Entity)
	assert.Equal(t, int64(3), st.rows["users"])
	assert.Zero(t, st.rows["comments"])
}

func TestPipelineRun_BadExtractFailsCleanStage(t *testing.T) {
	dir := copySample(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.csv"), []byte("id,username\n1,x\n"), 0o644))

	res := newTestPipeline(dir, newFakeStore()).Run(context.Background())

	f := res.Failure()
	require.NotNil(t, f)
	assert.Equal(t, StageClean, f.Stage)
	assert.Equal(t, "users", f.Entity)
	assert.ErrorIs(t, res.Err, ErrMissingColumn)
}

func TestPipelinePrepare_IsIdempotent(t *testing.T) {
	dir := copySample(t)
	p := newTestPipeline(dir, newFakeStore())

	first := p.Prepare()
	require.True(t, first.OK(), "first run failed: %v", first.Err)
	snapshot := map[string]string{}
	for _, e := range Entities {
		snapshot[e.Name] = readFile(t, filepath.Join(dir, e.File))
	}

	second := p.Prepare()
	require.True(t, second.OK(), "second run failed: %v", second.Err)
	assert.NotEqual(t, first.ArchiveDir, second.ArchiveDir)
	for _, e := range Entities {
		assert.Equal(t, snapshot[e.Name], readFile(t, filepath.Join(dir, e.File)), e.File)
		assert.Zero(t, second.Cleaned[e.Name].Dropped(), e.Name)
	}
}

func TestPipelineRun_BatchSize(t *testing.T) {
	dir := copySample(t)
	st := newFakeStore()

	res := newTestPipeline(dir, st, WithBatchSize(2)).Run(context.Background())
	require.True(t, res.OK(), "run failed: %v", res.Err)

	inserts := 0
	for _, op := range st.ops {
		if op == "insert users" {
			inserts++
		}
	}
	assert.Equal(t, 2, inserts)
	assert.Equal(t, int64(3), st.rows["users"])
}
