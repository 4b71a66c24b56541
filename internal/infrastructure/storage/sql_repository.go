package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"NewsDedup/internal/dedup"
	"NewsDedup/internal/domain"
	"NewsDedup/internal/ports"
)

const defaultChunkSize = 1000

var identifierExpr = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether name is a plain, optionally
// schema-qualified, table name.
func ValidIdentifier(name string) bool {
	return identifierExpr.MatchString(name)
}

// QuoteTable returns name as a double-quoted identifier, one part per
// schema component. Postgres and SQLite both accept the quoted form, so
// reserved words such as "order" stay usable.
func QuoteTable(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// Tables names the news table and the rejection archive.
type Tables struct {
	Articles string
	Archive  string
}

// Options configures SQLRepository.
type Options struct {
	Driver    string
	Tables    Tables
	ChunkSize int
	Logger    *slog.Logger
}

// SQLRepository reads duplicate groups and deletes losers through database/sql.
type SQLRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	tables  Tables
	quoted  Tables
	chunk   int
	logger  *slog.Logger
}

var _ ports.ArticleStore = (*SQLRepository)(nil)

// NewSQLRepository wires a sql.DB implementation.
func NewSQLRepository(db *sql.DB, opts Options) (*SQLRepository, error) {
	if !ValidIdentifier(opts.Tables.Articles) {
		return nil, domain.NewFailure(domain.FailureConfiguration, "articles table",
			fmt.Errorf("invalid table name %q", opts.Tables.Articles))
	}
	if opts.Tables.Archive != "" && !ValidIdentifier(opts.Tables.Archive) {
		return nil, domain.NewFailure(domain.FailureConfiguration, "archive table",
			fmt.Errorf("invalid table name %q", opts.Tables.Archive))
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}
	return &SQLRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(PlaceholderFor(opts.Driver)),
		tables:  opts.Tables,
		quoted:  quoteTables(opts.Tables),
		chunk:   chunk,
		logger:  opts.Logger,
	}, nil
}

func quoteTables(t Tables) Tables {
	q := Tables{Articles: QuoteTable(t.Articles)}
	if t.Archive != "" {
		q.Archive = QuoteTable(t.Archive)
	}
	return q
}

// articleColumns are selected in scan order.
var articleColumns = []string{"id", "link", "titulo", "portal", "data", "estrategica", "relevancia"}

func keyColumns(key dedup.IdentityKey) ([]string, error) {
	switch key {
	case dedup.KeyLink:
		return []string{"link"}, nil
	case dedup.KeyTitlePortal:
		return []string{"titulo", "portal"}, nil
	default:
		return nil, fmt.Errorf("unsupported identity key %q", key)
	}
}

func qualify(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

// DuplicateRows implements ports.ArticleStore.
func (r *SQLRepository) DuplicateRows(ctx context.Context, key dedup.IdentityKey) ([]domain.Article, error) {
	cols, err := keyColumns(key)
	if err != nil {
		return nil, domain.NewFailure(domain.FailureConfiguration, "duplicate rows", err)
	}

	dupes, _, err := sq.Select(cols...).
		From(r.quoted.Articles).
		GroupBy(cols...).
		Having("COUNT(*) > 1").
		ToSql()
	if err != nil {
		return nil, domain.NewFailure(domain.FailureStorage, "build duplicate subquery", err)
	}

	on := make([]string, len(cols))
	for i, c := range cols {
		on[i] = fmt.Sprintf("n.%s = d.%s", c, c)
	}

	order := append(qualify("n", cols), "n.data", "n.id")
	query := r.builder.
		Select(qualify("n", articleColumns)...).
		From(r.quoted.Articles + " n").
		Join(fmt.Sprintf("(%s) d ON %s", dupes, strings.Join(on, " AND "))).
		OrderBy(order...)

	r.debug("load duplicate rows", "key", key, "table", r.tables.Articles)
	return r.queryArticles(ctx, "duplicate rows", query)
}

// ArchivedRows implements ports.ArticleStore.
func (r *SQLRepository) ArchivedRows(ctx context.Context) ([]domain.Article, error) {
	if r.tables.Archive == "" {
		return nil, nil
	}

	archived, _, err := sq.Select("link").From(r.quoted.Archive).ToSql()
	if err != nil {
		return nil, domain.NewFailure(domain.FailureStorage, "build archive subquery", err)
	}
	query := r.builder.
		Select(articleColumns...).
		From(r.quoted.Articles).
		Where(fmt.Sprintf("link IN (%s)", archived)).
		OrderBy("link", "data", "id")

	r.debug("load archived rows", "archive", r.tables.Archive)
	return r.queryArticles(ctx, "archived rows", query)
}

func (r *SQLRepository) queryArticles(ctx context.Context, op string, query sq.SelectBuilder) ([]domain.Article, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, domain.NewFailure(domain.FailureStorage, op, fmt.Errorf("build query: %w", err))
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, classify(op, fmt.Errorf("query: %w", err), domain.FailureStorage)
	}

	var result []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			_ = rows.Close()
			return nil, classify(op, fmt.Errorf("scan article: %w", err), domain.FailureStorage)
		}
		result = append(result, a)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, classify(op, fmt.Errorf("rows iteration: %w", rowsErr), domain.FailureStorage)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, classify(op, fmt.Errorf("close rows: %w", closeErr), domain.FailureStorage)
	}

	return result, nil
}

func scanArticle(rows *sql.Rows) (domain.Article, error) {
	var (
		a                                    domain.Article
		link, title, portal, date, relevance sql.NullString
		strategic                            sql.NullBool
	)
	if err := rows.Scan(&a.ID, &link, &title, &portal, &date, &strategic, &relevance); err != nil {
		return domain.Article{}, err
	}
	a.Link = link.String
	a.Title = title.String
	a.Portal = portal.String
	a.PublishedDate = date.String
	a.Strategic = strategic.Valid && strategic.Bool
	a.Relevance = relevance.String
	return a, nil
}

// DeleteArticles implements ports.ArticleStore. Ids are removed in chunks
// inside one transaction which commits only after every chunk succeeded.
func (r *SQLRepository) DeleteArticles(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify("begin delete", err, domain.FailureTransaction)
	}
	defer func() { _ = tx.Rollback() }()

	var deleted int64
	for start := 0; start < len(ids); start += r.chunk {
		end := min(start+r.chunk, len(ids))

		stmt, args, err := r.builder.
			Delete(r.quoted.Articles).
			Where(sq.Eq{"id": ids[start:end]}).
			ToSql()
		if err != nil {
			return 0, domain.NewFailure(domain.FailureTransaction, "build delete", err)
		}

		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return 0, classify("delete chunk", fmt.Errorf("delete ids %d..%d: %w", start, end-1, err), domain.FailureTransaction)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, classify("rows affected", err, domain.FailureTransaction)
		}
		deleted += n
		r.debug("deleted chunk", "from", start, "to", end, "rows", n)
	}

	if err := tx.Commit(); err != nil {
		return 0, classify("commit delete", err, domain.FailureTransaction)
	}
	return deleted, nil
}

func (r *SQLRepository) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
