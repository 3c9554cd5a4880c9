package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yamdb/internal/logger"
	"yamdb/pkg/models"
)

type Stage string

const (
	StageArchive Stage = "archive"
	StageClean   Stage = "clean"
	StageLoad    Stage = "load"
)

// StageError reports where a run stopped.
type StageError struct {
	Stage  Stage
	Entity string
	Err    error
}

func (e *StageError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Entity, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Count is the row tally of one cleaned extract.
type Count struct {
	Read int `json:"read"`
	Kept int `json:"kept"`
}

func (c Count) Dropped() int { return c.Read - c.Kept }

// Tables holds the cleaned rows of every entity cleaned so far in a run.
type Tables struct {
	Genres      []models.Genre
	Categories  []models.Category
	Titles      []models.Title
	TitleGenres []models.TitleGenre
	Users       []models.User
	Reviews     []models.Review
	Comments    []models.Comment
}

type cleanFunc func(dir string, t *Tables) (map[string]Count, error)

// Step binds an entity to its extract and to how it is cleaned and loaded.
// Clean is nil when another step rewrites the extract.
type Step struct {
	Entity Entity
	Path   string
	Clean  cleanFunc
	Load   loadFunc
}

type Result struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	ArchiveDir string           `json:"archive_dir,omitempty"`
	Cleaned    map[string]Count `json:"cleaned"`
	Deleted    map[string]int64 `json:"deleted"`
	Loaded     map[string]int   `json:"loaded"`
	Warnings   []string         `json:"warnings,omitempty"`
	Err        error            `json:"-"`
}

func (r *Result) OK() bool { return r.Err == nil }

// Failure returns the stage error of a failed run, or nil.
func (r *Result) Failure() *StageError {
	if r.Err == nil {
		return nil
	}
	if se, ok := r.Err.(*StageError); ok {
		return se
	}
	return &StageError{Err: r.Err}
}

type Pipeline struct {
	dir        string
	store      Store
	batch      int
	now        func() time.Time
	validEmail EmailValidator
	log        *zap.SugaredLogger
	steps      []Step
}

type Option func(*Pipeline)

func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batch = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithEmailValidator(v EmailValidator) Option {
	return func(p *Pipeline) { p.validEmail = v }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Pipeline) { p.log = l }
}

func New(dir string, store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		dir:        dir,
		store:      store,
		batch:      DefaultBatchSize,
		now:        time.Now,
		validEmail: ValidEmail,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.GetLogger("dataset")
	}
	p.steps = p.buildSteps()
	return p
}

// Steps returns the run order.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

func (p *Pipeline) buildSteps() []Step {
	path := func(e Entity) string { return filepath.Join(p.dir, e.File) }
	validEmail := p.validEmail

	return []Step{
		{
			Entity: GenreEntity,
			Path:   path(GenreEntity),
			Clean: cleanOne(GenreEntity, func(rows []models.Genre, t *Tables) []models.Genre {
				t.Genres = CleanGenres(rows)
				return t.Genres
			}),
			Load: loadGenres,
		},
		{
			Entity: CategoryEntity,
			Path:   path(CategoryEntity),
			Clean: cleanOne(CategoryEntity, func(rows []models.Category, t *Tables) []models.Category {
				t.Categories = CleanCategories(rows)
				return t.Categories
			}),
			Load: loadCategories,
		},
		{
			Entity: TitleEntity,
			Path:   path(TitleEntity),
			Clean:  cleanTitleFiles,
			Load:   loadTitles,
		},
		{
			Entity: TitleGenreEntity,
			Path:   path(TitleGenreEntity),
			Load:   loadTitleGenre,
		},
		{
			Entity: UserEntity,
			Path:   path(UserEntity),
			Clean: cleanOne(UserEntity, func(rows []models.User, t *Tables) []models.User {
				t.Users = CleanUsers(rows, validEmail)
				return t.Users
			}),
			Load: loadUsers,
		},
		{
			Entity: ReviewEntity,
			Path:   path(ReviewEntity),
			Clean: cleanFrom(ReviewEntity, CompleteReviews, func(rows []models.Review, t *Tables) []models.Review {
				t.Reviews = CleanReviews(rows, t.Users, t.Titles)
				return t.Reviews
			}),
			Load: loadReviews,
		},
		{
			Entity: CommentEntity,
			Path:   path(CommentEntity),
			Clean: cleanFrom(CommentEntity, CompleteComments, func(rows []models.Comment, t *Tables) []models.Comment {
				t.Comments = CleanComments(rows, t.Users, t.Reviews)
				return t.Comments
			}),
			Load: loadComments,
		},
	}
}

func cleanOne[T any](e Entity, clean func([]T, *Tables) []T) cleanFunc {
	return cleanFrom(e, func(rows []T) []T { return rows }, clean)
}

// cleanFrom reads the extract as R rows, converts them with complete and
// cleans the result. Read counts the R rows.
func cleanFrom[R, T any](e Entity, complete func([]R) []T, clean func([]T, *Tables) []T) cleanFunc {
	return func(dir string, t *Tables) (map[string]Count, error) {
		path := filepath.Join(dir, e.File)
		raw, err := readTable[R](path, e.Required)
		if err != nil {
			return nil, err
		}
		kept := clean(complete(raw), t)
		if err := writeTable(path, kept); err != nil {
			return nil, err
		}
		return map[string]Count{e.Name: {Read: len(raw), Kept: len(kept)}}, nil
	}
}

func cleanTitleFiles(dir string, t *Tables) (map[string]Count, error) {
	titlesPath := filepath.Join(dir, TitleEntity.File)
	linksPath := filepath.Join(dir, TitleGenreEntity.File)

	titles, err := readTable[models.Title](titlesPath, TitleEntity.Required)
	if err != nil {
		return nil, err
	}
	links, err := readTable[models.TitleGenre](linksPath, TitleGenreEntity.Required)
	if err != nil {
		return nil, err
	}

	t.Titles, t.TitleGenres = CleanTitles(titles, links, t.Genres, t.Categories)

	if err := writeTable(titlesPath, t.Titles); err != nil {
		return nil, err
	}
	if err := writeTable(linksPath, t.TitleGenres); err != nil {
		return nil, err
	}
	return map[string]Count{
		TitleEntity.Name:      {Read: len(titles), Kept: len(t.Titles)},
		TitleGenreEntity.Name: {Read: len(links), Kept: len(t.TitleGenres)},
	}, nil
}

// Run archives, cleans and loads the dataset. The returned result is never
// nil; Err is set when the run stopped early.
func (p *Pipeline) Run(ctx context.Context) *Result {
	res := p.Prepare()
	if !res.OK() {
		return res
	}
	p.Load(ctx, res)
	return res
}

// Prepare runs the archive and clean stages only.
func (p *Pipeline) Prepare() *Result {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: p.now(),
		Cleaned:   make(map[string]Count),
		Deleted:   make(map[string]int64),
		Loaded:    make(map[string]int),
	}
	log := p.log.With("run_id", res.RunID)
	log.Infow("dataset run started", "dir", p.dir)

	if err := VerifySource(p.dir); err != nil {
		return p.fail(res, log, &StageError{Stage: StageArchive, Err: err})
	}
	archiveDir, err := Archive(p.dir, res.StartedAt)
	if err != nil {
		return p.fail(res, log, &StageError{Stage: StageArchive, Err: err})
	}
	res.ArchiveDir = archiveDir
	log.Infow("originals archived", "archive_dir", archiveDir)

	var tables Tables
	cleanStart := time.Now()
	for _, step := range p.steps {
		if step.Clean == nil {
			continue
		}
		counts, err := step.Clean(p.dir, &tables)
		if err != nil {
			return p.fail(res, log, &StageError{Stage: StageClean, Entity: step.Entity.Name, Err: err})
		}
		for name, c := range counts {
			res.Cleaned[name] = c
			log.Infow("extract cleaned", "entity", name, "read", c.Read, "kept", c.Kept, "dropped", c.Dropped())
		}
	}
	log.Infof("clean stage finished in %v", time.Since(cleanStart))

	if n := countBelow(tables.Reviews, models.MinScore); n > 0 {
		w := fmt.Sprintf("%d reviews kept with score below %d", n, models.MinScore)
		res.Warnings = append(res.Warnings, w)
		log.Warn(w)
	}

	res.FinishedAt = p.now()
	return res
}

// Load clears the store and inserts every cleaned extract in dependency
// order. Nothing is rolled back on failure.
func (p *Pipeline) Load(ctx context.Context, res *Result) {
	log := p.log.With("run_id", res.RunID)
	loadStart := time.Now()

	deleted, err := clearStore(ctx, p.store, p.steps)
	for name, n := range deleted {
		res.Deleted[name] = n
	}
	if err != nil {
		p.fail(res, log, &StageError{Stage: StageLoad, Err: err})
		return
	}
	log.Info("store cleared")

	for _, step := range p.steps {
		n, err := step.Load(ctx, p.store, step.Path, p.batch)
		res.Loaded[step.Entity.Name] = n
		if err != nil {
			p.fail(res, log, &StageError{Stage: StageLoad, Entity: step.Entity.Name, Err: err})
			return
		}
		log.Infow("entity loaded", "entity", step.Entity.Name, "table", step.Entity.Table, "rows", n)
	}

	res.FinishedAt = p.now()
	log.Infof("dataset run finished, load took %v", time.Since(loadStart))
}

func (p *Pipeline) fail(res *Result, log *zap.SugaredLogger, err *StageError) *Result {
	res.Err = err
	res.FinishedAt = p.now()
	log.Errorw("dataset run failed", "stage", err.Stage, "entity", err.Entity, "error", err.Err)
	return res
}

func countBelow(reviews []models.Review, floor int) int {
	n := 0
	for _, r := range reviews {
		if r.Score < floor {
			n++
		}
	}
	return n
}
