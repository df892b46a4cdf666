package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
)

func float(v float64) *float64 { return &v }

func TestBuild_Defaults(t *testing.T) {
	plan, err := Build(Filter{})
	require.NoError(t, err)

	assert.Equal(t, SortNewest, plan.Sort)
	assert.Equal(t, DefaultLimit, plan.Limit)
	assert.Equal(t, 0, plan.Offset)
	assert.Empty(t, plan.Where)
	assert.Empty(t, plan.Having)
}

func TestBuild_SeparatesRowAndAggregateStages(t *testing.T) {
	plan, err := Build(Filter{
		Search:    "  The DUNE ",
		Genre:     "Science Fiction",
		MinRating: float(4),
		MaxRating: float(5),
		SortBy:    SortRating,
		Limit:     10,
		Offset:    30,
	})
	require.NoError(t, err)

	require.Len(t, plan.Where, 2)
	assert.Equal(t, TextMatch{Term: "the dune"}, plan.Where[0])
	assert.Equal(t, GenreEquals{Genre: "science fiction"}, plan.Where[1])
	for _, p := range plan.Where {
		assert.Equal(t, StageRow, p.Stage())
	}

	require.Len(t, plan.Having, 2)
	assert.Equal(t, RatingAtLeast{Min: 4}, plan.Having[0])
	assert.Equal(t, RatingAtMost{Max: 5}, plan.Having[1])
	for _, p := range plan.Having {
		assert.Equal(t, StageAggregate, p.Stage())
	}

	assert.Equal(t, SortRating, plan.Sort)
	assert.Equal(t, 10, plan.Limit)
	assert.Equal(t, 30, plan.Offset)
}

func TestBuild_BlankOptionsAreDropped(t *testing.T) {
	plan, err := Build(Filter{Search: "   ", Genre: "\t"})
	require.NoError(t, err)
	assert.Empty(t, plan.Where)
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		field  string
	}{
		{"unknown sort", Filter{SortBy: "random"}, "sortBy"},
		{"negative limit", Filter{Limit: -1}, "limit"},
		{"limit too large", Filter{Limit: MaxLimit + 1}, "limit"},
		{"negative offset", Filter{Offset: -5}, "offset"},
		{"min out of range", Filter{MinRating: float(6)}, "minRating"},
		{"max out of range", Filter{MaxRating: float(-1)}, "maxRating"},
		{"inverted bounds", Filter{MinRating: float(4), MaxRating: float(2)}, "minRating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.filter)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.field)
		})
	}
}

func TestPlan_String(t *testing.T) {
	plan, err := Build(Filter{Genre: "Mystery", MinRating: float(4), SortBy: SortPopular})
	require.NoError(t, err)

	assert.Equal(t,
		`where[genre = "mystery"] having[avg_rating >= 4.0] sort=popular limit=20 offset=0`,
		plan.String())
}

func TestFold(t *testing.T) {
	assert.Equal(t, "dune", Fold("  DUNE "))
	assert.Equal(t, Fold("Émile"), Fold("ÉMILE"))
	assert.Equal(t, "dune\nfrank herbert\n", SearchText("Dune", "Frank Herbert", ""))
	assert.Equal(t, "ölaf\nöla", UserSearchText("ÖLAF", "Öla"))
}
