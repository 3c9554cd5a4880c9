package dataset

import (
	"yamdb/pkg/models"
)

// Score bounds accepted on import. The lower bound is below
// models.MinScore; see Result.Warnings.
const (
	ImportMinScore = 0
	ImportMaxScore = models.MaxScore
)

// dropDuplicates keeps the first row for every distinct key, in input order.
func dropDuplicates[T any, K comparable](rows []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// keySet indexes the ids of an already-cleaned parent table.
func keySet[T any](rows []T, key func(T) int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		set[key(r)] = struct{}{}
	}
	return set
}

func has(set map[int64]struct{}, id int64) bool {
	_, ok := set[id]
	return ok
}

func CleanGenres(rows []models.Genre) []models.Genre {
	rows = dropDuplicates(rows, func(g models.Genre) string { return g.Name })
	return dropDuplicates(rows, func(g models.Genre) string { return g.Slug })
}

func CleanCategories(rows []models.Category) []models.Category {
	rows = dropDuplicates(rows, func(c models.Category) string { return c.Name })
	return dropDuplicates(rows, func(c models.Category) string { return c.Slug })
}

// CleanTitles joins titles with their genre links. A title survives only if
// at least one link to a known genre names it, and a link survives only if
// its title does. Category references that do not resolve are cleared.
func CleanTitles(
	titles []models.Title,
	links []models.TitleGenre,
	genres []models.Genre,
	categories []models.Category,
) ([]models.Title, []models.TitleGenre) {
	titles = dropDuplicates(titles, func(t models.Title) string { return t.Name })
	titles = dropDuplicates(titles, func(t models.Title) int64 { return t.ID })

	genreIDs := keySet(genres, func(g models.Genre) int64 { return g.ID })
	links = dropDuplicates(links, func(l models.TitleGenre) int64 { return l.ID })
	links = filter(links, func(l models.TitleGenre) bool { return has(genreIDs, l.GenreID) })

	linked := keySet(links, func(l models.TitleGenre) int64 { return l.TitleID })
	titles = filter(titles, func(t models.Title) bool { return has(linked, t.ID) })

	titleIDs := keySet(titles, func(t models.Title) int64 { return t.ID })
	links = filter(links, func(l models.TitleGenre) bool { return has(titleIDs, l.TitleID) })

	categoryIDs := keySet(categories, func(c models.Category) int64 { return c.ID })
	for i := range titles {
		if titles[i].CategoryID != nil && !has(categoryIDs, *titles[i].CategoryID) {
			titles[i].CategoryID = nil
		}
	}
	return titles, links
}

// EmailValidator reports whether an address is syntactically valid.
type EmailValidator func(email string) bool

// CleanUsers drops rows with an unknown role or an invalid email, derives
// the role flags, then de-duplicates by id, username and email in turn.
func CleanUsers(rows []models.User, validEmail EmailValidator) []models.User {
	out := make([]models.User, 0, len(rows))
	for _, u := range rows {
		if !models.IsAllowedRole(u.Role) || !validEmail(u.Email) {
			continue
		}
		u.ApplyRoleFlags()
		out = append(out, u)
	}
	out = dropDuplicates(out, func(u models.User) int64 { return u.ID })
	out = dropDuplicates(out, func(u models.User) string { return u.Username })
	return dropDuplicates(out, func(u models.User) string { return u.Email })
}

type reviewKey struct {
	titleID  int64
	authorID int64
}

// CleanReviews keeps one review per id and per (title, author), within the
// import score range, whose author and title survived cleaning.
func CleanReviews(rows []models.Review, users []models.User, titles []models.Title) []models.Review {
	rows = dropDuplicates(rows, func(r models.Review) int64 { return r.ID })
	rows = dropDuplicates(rows, func(r models.Review) reviewKey {
		return reviewKey{titleID: r.TitleID, authorID: r.AuthorID}
	})
	rows = filter(rows, func(r models.Review) bool {
		return r.Score >= ImportMinScore && r.Score <= ImportMaxScore
	})

	userIDs := keySet(users, func(u models.User) int64 { return u.ID })
	titleIDs := keySet(titles, func(t models.Title) int64 { return t.ID })
	return filter(rows, func(r models.Review) bool {
		return has(userIDs, r.AuthorID) && has(titleIDs, r.TitleID)
	})
}

func CleanComments(rows []models.Comment, users []models.User, reviews []models.Review) []models.Comment {
	rows = dropDuplicates(rows, func(c models.Comment) int64 { return c.ID })

	userIDs := keySet(users, func(u models.User) int64 { return u.ID })
	reviewIDs := keySet(reviews, func(r models.Review) int64 { return r.ID })
	return filter(rows, func(c models.Comment) bool {
		return has(userIDs, c.AuthorID) && has(reviewIDs, c.ReviewID)
	})
}
