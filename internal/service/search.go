package service

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ekene/oryo/internal/database/repository"
)

// suggestion distance is capped relative to the query so short typos match
// and unrelated words do not.
const maxSuggestRatio = 0.4

// SearchResults groups matches by kind. Suggestion is set only when nothing
// matched and a creator name or handle is close to the query.
type SearchResults struct {
	Query       string
	Creators    []repository.Creator
	Communities []repository.Community
	Posts       []repository.Post
	Suggestion  string
}

// Empty reports whether the search matched nothing.
func (r SearchResults) Empty() bool {
	return len(r.Creators) == 0 && len(r.Communities) == 0 && len(r.Posts) == 0
}

// SearchService filters the local catalogue.
type SearchService struct {
	Creators    *repository.CreatorRepo
	Communities *repository.CommunityRepo
	Posts       *repository.PostRepo
}

// Search does a case-insensitive substring match. A blank query returns no results.
func (s *SearchService) Search(ctx context.Context, query string) (SearchResults, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	res := SearchResults{Query: strings.TrimSpace(query)}
	if q == "" {
		return res, nil
	}

	creators, err := s.Creators.List(ctx)
	if err != nil {
		return res, err
	}
	for _, c := range creators {
		if contains(q, c.Name, c.Handle, c.Bio) {
			res.Creators = append(res.Creators, c)
		}
	}

	communities, err := s.Communities.List(ctx)
	if err != nil {
		return res, err
	}
	for _, c := range communities {
		if contains(q, c.Name, c.Description) {
			res.Communities = append(res.Communities, c)
		}
	}

	posts, err := s.Posts.Feed(ctx, 0)
	if err != nil {
		return res, err
	}
	for _, p := range posts {
		if contains(q, p.Body, p.CreatorName, p.CreatorHandle) {
			res.Posts = append(res.Posts, p)
		}
	}

	if res.Empty() {
		res.Suggestion = suggest(q, creators)
	}
	return res, nil
}

func contains(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func suggest(q string, creators []repository.Creator) string {
	best, bestDist := "", -1
	for _, c := range creators {
		for _, cand := range []string{c.Name, strings.TrimPrefix(c.Handle, "@")} {
			d := levenshtein.ComputeDistance(q, strings.ToLower(cand))
			if float64(d) > maxSuggestRatio*float64(max(len(q), len(cand))) {
				continue
			}
			if bestDist < 0 || d < bestDist {
				best, bestDist = c.Name, d
			}
		}
	}
	return best
}
