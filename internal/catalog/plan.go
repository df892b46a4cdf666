// Package catalog turns listing filters into a typed query plan.
//
// A Plan always runs in four stages:
//
//  1. row predicates over per-book aggregate rows (text search, genre)
//  2. aggregate predicates over the computed average rating
//  3. sort
//  4. pagination
//
// Rating bounds therefore never filter individual reviews. Stores lower a Plan
// into their own query language; see store/sqlite.
package catalog

import (
	"fmt"
	"strings"

	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
)

// Pagination defaults.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SortKey orders a listing.
type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortOldest  SortKey = "oldest"
	SortTitle   SortKey = "title"
	SortAuthor  SortKey = "author"
	SortRating  SortKey = "rating"
	SortPopular SortKey = "popular"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortNewest, SortOldest, SortTitle, SortAuthor, SortRating, SortPopular}

func (k SortKey) valid() bool {
	for _, s := range SortKeys {
		if k == s {
			return true
		}
	}
	return false
}

// Filter is a listing request as received from a caller.
type Filter struct {
	Search    string
	Genre     string
	MinRating *float64
	MaxRating *float64
	SortBy    SortKey
	Limit     int
	Offset    int
}

// Stage says where a predicate is evaluated.
type Stage int

const (
	// StageRow predicates filter books before aggregation.
	StageRow Stage = iota
	// StageAggregate predicates filter the aggregated rows.
	StageAggregate
)

// Predicate is one filter condition in a Plan.
type Predicate interface {
	Stage() Stage
	String() string
}

// TextMatch matches Term as a substring of the folded title, author and description.
type TextMatch struct{ Term string }

// GenreEquals matches the folded genre exactly.
type GenreEquals struct{ Genre string }

// RatingAtLeast keeps books whose average rating is >= Min.
type RatingAtLeast struct{ Min float64 }

// RatingAtMost keeps books whose average rating is <= Max.
type RatingAtMost struct{ Max float64 }

func (TextMatch) Stage() Stage     { return StageRow }
func (GenreEquals) Stage() Stage   { return StageRow }
func (RatingAtLeast) Stage() Stage { return StageAggregate }
func (RatingAtMost) Stage() Stage  { return StageAggregate }

func (p TextMatch) String() string     { return fmt.Sprintf("text contains %q", p.Term) }
func (p GenreEquals) String() string   { return fmt.Sprintf("genre = %q", p.Genre) }
func (p RatingAtLeast) String() string { return fmt.Sprintf("avg_rating >= %.1f", p.Min) }
func (p RatingAtMost) String() string  { return fmt.Sprintf("avg_rating <= %.1f", p.Max) }

// Plan is a validated, normalized listing query.
type Plan struct {
	Where  []Predicate
	Having []Predicate
	Sort   SortKey
	Limit  int
	Offset int
}

// Build validates a filter and produces its plan. Empty options are dropped;
// text and genre are folded the same way stored keys are.
func Build(f Filter) (Plan, error) {
	problems := make(map[string]string)

	plan := Plan{
		Sort:   f.SortBy,
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	if plan.Sort == "" {
		plan.Sort = SortNewest
	} else if !plan.Sort.valid() {
		problems["sortBy"] = "must be one of: " + joinSortKeys()
	}

	switch {
	case plan.Limit == 0:
		plan.Limit = DefaultLimit
	case plan.Limit < 0 || plan.Limit > MaxLimit:
		problems["limit"] = fmt.Sprintf("must be between 1 and %d", MaxLimit)
	}
	if plan.Offset < 0 {
		problems["offset"] = "must not be negative"
	}

	if term := Fold(f.Search); term != "" {
		plan.Where = append(plan.Where, TextMatch{Term: term})
	}
	if genre := Fold(f.Genre); genre != "" {
		plan.Where = append(plan.Where, GenreEquals{Genre: genre})
	}

	if f.MinRating != nil {
		if !inRatingRange(*f.MinRating) {
			problems["minRating"] = "must be between 0 and 5"
		} else {
			plan.Having = append(plan.Having, RatingAtLeast{Min: *f.MinRating})
		}
	}
	if f.MaxRating != nil {
		if !inRatingRange(*f.MaxRating) {
			problems["maxRating"] = "must be between 0 and 5"
		} else {
			plan.Having = append(plan.Having, RatingAtMost{Max: *f.MaxRating})
		}
	}
	if f.MinRating != nil && f.MaxRating != nil && *f.MinRating > *f.MaxRating {
		problems["minRating"] = "must not exceed maxRating"
	}

	if len(problems) > 0 {
		return Plan{}, domainerrors.ValidationWithDetails("invalid listing filter", problems)
	}
	return plan, nil
}

// String renders the plan stages for logs.
func (p Plan) String() string {
	var b strings.Builder
	b.WriteString("where[")
	for i, w := range p.Where {
		if i > 0 {
			b.WriteString(" and ")
		}
		b.WriteString(w.String())
	}
	b.WriteString("] having[")
	for i, h := range p.Having {
		if i > 0 {
			b.WriteString(" and ")
		}
		b.WriteString(h.String())
	}
	fmt.Fprintf(&b, "] sort=%s limit=%d offset=%d", p.Sort, p.Limit, p.Offset)
	return b.String()
}

func inRatingRange(v float64) bool {
	return v >= 0 && v <= 5
}

func joinSortKeys() string {
	keys := make([]string, len(SortKeys))
	for i, k := range SortKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}
