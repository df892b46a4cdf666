package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/shelfsocial/shelfsocial-server/internal/catalog"
	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `id, title, author, genre, description, created_by, created_at, updated_at`

func scanBook(row scanner) (*domain.Book, error) {
	var (
		b           domain.Book
		author      sql.NullString
		genre       sql.NullString
		description sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(&b.ID, &b.Title, &author, &genre, &description, &b.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	b.Author = author.String
	b.Genre = genre.String
	b.Description = description.String
	return &b, nil
}

// CreateBook inserts a book. A book whose folded title and author match an
// existing one violates idx_books_title_author and returns ErrAlreadyExists.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`, title_key, author_key, genre_key, search_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		nullString(book.Author),
		nullString(book.Genre),
		nullString(book.Description),
		book.CreatedBy,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		catalog.Fold(book.Title),
		catalog.Fold(book.Author),
		catalog.Fold(book.Genre),
		catalog.SearchText(book.Title, book.Author, book.Description),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("book already exists")
	}
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("creator not found")
	}
	return s.wrap("create book", err)
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	b, err := scanBook(s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
	if isNoRows(err) {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, s.wrap("get book", err)
	}
	return b, nil
}

// FindBookByTitleAuthor looks a book up by its folded title and author.
func (s *Store) FindBookByTitleAuthor(ctx context.Context, title, author string) (*domain.Book, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	b, err := scanBook(s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE title_key = ? AND author_key = ?`,
		catalog.Fold(title), catalog.Fold(author)))
	if isNoRows(err) {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, s.wrap("find book", err)
	}
	return b, nil
}

// GetBookSummary returns a book with its creator and rating aggregate.
func (s *Store) GetBookSummary(ctx context.Context, id string) (*domain.BookSummary, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	query, args, err := s.summaryDataset().
		Select(summaryColumns()...).
		Where(goqu.I("b.id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book summary query: %w", err)
	}

	summary, err := scanBookSummary(s.db.QueryRowContext(ctx, query, args...))
	if isNoRows(err) {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, s.wrap("get book summary", err)
	}
	return summary, nil
}

// ListBooks lowers a catalog plan into one aggregate query:
// WHERE (row predicates), GROUP BY book, HAVING (rating bounds on the
// rounded average), ORDER BY, LIMIT/OFFSET. Total counts every book that
// passes both predicate stages.
func (s *Store) ListBooks(ctx context.Context, plan catalog.Plan) (*store.Page[domain.BookSummary], error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	filtered := s.summaryDataset()
	for _, p := range plan.Where {
		filtered = filtered.Where(rowCondition(p))
	}
	for _, p := range plan.Having {
		filtered = filtered.Having(aggregateCondition(p))
	}

	countSQL, countArgs, err := s.dialect.
		From(filtered.Select(goqu.I("b.id")).As("matched")).
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book count query: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, s.wrap("count books", err)
	}

	pageSQL, pageArgs, err := filtered.
		Select(summaryColumns()...).
		Order(sortOrder(plan.Sort)...).
		Limit(uint(plan.Limit)).
		Offset(uint(plan.Offset)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book list query: %w", err)
	}

	s.logger.Debug("listing books", "plan", plan.String())

	rows, err := s.db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, s.wrap("list books", err)
	}
	defer rows.Close()

	page := &store.Page[domain.BookSummary]{
		Items:  []domain.BookSummary{},
		Total:  total,
		Limit:  plan.Limit,
		Offset: plan.Offset,
	}
	for rows.Next() {
		summary, err := scanBookSummary(rows)
		if err != nil {
			return nil, s.wrap("scan book summary", err)
		}
		page.Items = append(page.Items, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list books", err)
	}
	return page, nil
}

// ListGenres returns distinct genres, deduplicated by folded value and
// ordered alphabetically. Each genre is spelled as on the first book that
// used it (SQLite takes bare columns from the MIN(created_at) row).
func (s *Store) ListGenres(ctx context.Context) ([]string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT genre, MIN(created_at) FROM books
		WHERE genre_key <> ''
		GROUP BY genre_key
		ORDER BY genre_key`)
	if err != nil {
		return nil, s.wrap("list genres", err)
	}
	defer rows.Close()

	genres := []string{}
	for rows.Next() {
		var g, first string
		if err := rows.Scan(&g, &first); err != nil {
			return nil, s.wrap("scan genre", err)
		}
		genres = append(genres, g)
	}
	return genres, s.wrap("list genres", rows.Err())
}

// averageRating is the value rating bounds and rating sort compare against.
func averageRating() exp.SQLFunctionExpression {
	return goqu.Func("ROUND", goqu.AVG(goqu.I("r.rating")), 1)
}

// summaryDataset joins each book to its creator and reviews, grouped per book.
func (s *Store) summaryDataset() *goqu.SelectDataset {
	return s.dialect.
		From(goqu.T("books").As("b")).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.created_by")))).
		LeftJoin(goqu.T("reviews").As("r"), goqu.On(goqu.I("r.book_id").Eq(goqu.I("b.id")))).
		GroupBy(goqu.I("b.id")).
		Prepared(true)
}

// summaryColumns must match the scan order in scanBookSummary.
func summaryColumns() []any {
	return []any{
		goqu.I("b.id"),
		goqu.I("b.title"),
		goqu.I("b.author"),
		goqu.I("b.genre"),
		goqu.I("b.description"),
		goqu.I("b.created_by"),
		goqu.I("b.created_at"),
		goqu.I("b.updated_at"),
		goqu.I("u.username").As("creator_username"),
		goqu.COUNT(goqu.I("r.id")).As("review_count"),
		averageRating().As("average_rating"),
	}
}

func scanBookSummary(row scanner) (*domain.BookSummary, error) {
	var (
		b           domain.BookSummary
		author      sql.NullString
		genre       sql.NullString
		description sql.NullString
		createdAt   string
		updatedAt   string
		creator     sql.NullString
		count       int
		avg         sql.NullFloat64
	)

	err := row.Scan(&b.ID, &b.Title, &author, &genre, &description, &b.CreatedBy,
		&createdAt, &updatedAt, &creator, &count, &avg)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	b.Author = author.String
	b.Genre = genre.String
	b.Description = description.String
	b.CreatorUsername = creator.String
	b.RatingStats = domain.NewRatingStats(count, avg.Float64)
	return &b, nil
}

func rowCondition(p catalog.Predicate) exp.Expression {
	switch p := p.(type) {
	case catalog.TextMatch:
		return goqu.Func("INSTR", goqu.I("b.search_text"), p.Term).Gt(0)
	case catalog.GenreEquals:
		return goqu.I("b.genre_key").Eq(p.Genre)
	default:
		panic(fmt.Sprintf("sqlite: unsupported row predicate %T", p))
	}
}

// Books without reviews have a NULL average and fail any bound.
func aggregateCondition(p catalog.Predicate) exp.Expression {
	switch p := p.(type) {
	case catalog.RatingAtLeast:
		return averageRating().Gte(p.Min)
	case catalog.RatingAtMost:
		return averageRating().Lte(p.Max)
	default:
		panic(fmt.Sprintf("sqlite: unsupported aggregate predicate %T", p))
	}
}

// sortOrder breaks every tie by newest first, then id, so paging is stable.
func sortOrder(key catalog.SortKey) []exp.OrderedExpression {
	newest := []exp.OrderedExpression{goqu.I("b.created_at").Desc(), goqu.I("b.id").Desc()}

	switch key {
	case catalog.SortOldest:
		return []exp.OrderedExpression{goqu.I("b.created_at").Asc(), goqu.I("b.id").Asc()}
	case catalog.SortTitle:
		return append([]exp.OrderedExpression{goqu.I("b.title_key").Asc()}, newest...)
	case catalog.SortAuthor:
		return append([]exp.OrderedExpression{
			goqu.L("? = ''", goqu.I("b.author_key")).Asc(),
			goqu.I("b.author_key").Asc(),
		}, newest...)
	case catalog.SortRating:
		return append([]exp.OrderedExpression{
			goqu.L("? IS NULL", averageRating()).Asc(),
			averageRating().Desc(),
		}, newest...)
	case catalog.SortPopular:
		return append([]exp.OrderedExpression{goqu.COUNT(goqu.I("r.id")).Desc()}, newest...)
	default:
		return newest
	}
}
