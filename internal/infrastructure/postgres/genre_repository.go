package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// GenreRepository implements repository.GenreRepository over PostgreSQL.
// Category references live in the genre_categories join table and are
// rewritten as a whole on every write.
type GenreRepository struct {
	uow *UnitOfWork
}

func NewGenreRepository(uow *UnitOfWork) *GenreRepository {
	return &GenreRepository{uow: uow}
}

func (r *GenreRepository) conn() DBTX {
	return r.uow.Conn()
}

func (r *GenreRepository) Insert(ctx context.Context, genre *model.Genre) error {
	const query = `
		INSERT INTO genres (id, name, is_active, created_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.conn().Exec(ctx, query,
		genre.ID.String(), genre.Name, genre.IsActive, genre.CreatedAt, genre.DeletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateEntity
		}
		return fmt.Errorf("failed to insert genre: %w", err)
	}

	if err := r.insertCategoryIDs(ctx, genre); err != nil {
		return err
	}

	r.uow.AddAggregateRoot(genre)
	return nil
}

func (r *GenreRepository) BulkInsert(ctx context.Context, genres []*model.Genre) error {
	for _, genre := range genres {
		if err := r.Insert(ctx, genre); err != nil {
			return err
		}
	}
	return nil
}

func (r *GenreRepository) Update(ctx context.Context, genre *model.Genre) error {
	const query = `
		UPDATE genres
		SET name = $2, is_active = $3, deleted_at = $4
		WHERE id = $1
	`
	tag, err := r.conn().Exec(ctx, query,
		genre.ID.String(), genre.Name, genre.IsActive, genre.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update genre: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("genre", genre.ID.String())
	}

	if _, err := r.conn().Exec(ctx, `DELETE FROM genre_categories WHERE genre_id = $1`, genre.ID.String()); err != nil {
		return fmt.Errorf("failed to clear genre categories: %w", err)
	}
	if err := r.insertCategoryIDs(ctx, genre); err != nil {
		return err
	}

	r.uow.AddAggregateRoot(genre)
	return nil
}

func (r *GenreRepository) Delete(ctx context.Context, id model.GenreID) error {
	const query = `UPDATE genres SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.conn().Exec(ctx, query, id.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete genre: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("genre", id.String())
	}
	return nil
}

func (r *GenreRepository) FindByID(ctx context.Context, id model.GenreID) (*model.Genre, error) {
	const query = `SELECT id, name, is_active, created_at, deleted_at FROM genres WHERE id = $1 AND deleted_at IS NULL`

	genre, err := scanGenre(r.conn().QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get genre by id: %w", err)
	}

	if err := r.hydrateCategoryIDs(ctx, []*model.Genre{genre}); err != nil {
		return nil, err
	}
	return genre, nil
}

func (r *GenreRepository) FindByIDs(ctx context.Context, ids []model.GenreID) ([]*model.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, name, is_active, created_at, deleted_at FROM genres WHERE id = ANY($1)`

	rows, err := r.conn().Query(ctx, query, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get genres by ids: %w", err)
	}
	genres, err := collectGenres(rows)
	if err != nil {
		return nil, err
	}

	if err := r.hydrateCategoryIDs(ctx, genres); err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *GenreRepository) ExistsByID(ctx context.Context, ids []model.GenreID) (repository.ExistsResult[model.GenreID], error) {
	var result repository.ExistsResult[model.GenreID]
	if len(ids) == 0 {
		return result, repository.ErrEmptyIDs
	}

	const query = `SELECT id FROM genres WHERE id = ANY($1) AND deleted_at IS NULL`

	found, err := collectFoundIDs(ctx, r.conn(), query, idStrings(ids))
	if err != nil {
		return result, fmt.Errorf("failed to check genre ids: %w", err)
	}

	for _, id := range ids {
		if found[id.String()] {
			result.Existent = append(result.Existent, id)
		} else {
			result.NonExistent = append(result.NonExistent, id)
		}
	}
	return result, nil
}

func (r *GenreRepository) FindAll(ctx context.Context) ([]*model.Genre, error) {
	const query = `SELECT id, name, is_active, created_at, deleted_at FROM genres WHERE deleted_at IS NULL ORDER BY created_at DESC`

	rows, err := r.conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	genres, err := collectGenres(rows)
	if err != nil {
		return nil, err
	}

	if err := r.hydrateCategoryIDs(ctx, genres); err != nil {
		return nil, err
	}
	return genres, nil
}

var genreSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

func (r *GenreRepository) Search(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Genre], error) {
	var result repository.SearchResult[*model.Genre]

	where := "deleted_at IS NULL"
	args := []any{}
	if params.Filter.Terms != "" {
		args = append(args, "%"+params.Filter.Terms+"%")
		where += " AND name ILIKE $1"
	}

	countQuery := "SELECT COUNT(*) FROM genres WHERE " + where
	if err := r.conn().QueryRow(ctx, countQuery, args...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("failed to count genres: %w", err)
	}

	orderBy := "created_at"
	if col, ok := genreSortColumns[params.Sort]; ok {
		orderBy = col
	}
	dir := "DESC"
	if params.SortDir == repository.SortAsc {
		dir = "ASC"
	}

	args = append(args, params.Limit())
	limitArg := len(args)
	args = append(args, params.Offset())
	offsetArg := len(args)

	query := fmt.Sprintf(
		"SELECT id, name, is_active, created_at, deleted_at FROM genres WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		where, orderBy, dir, limitArg, offsetArg,
	)

	rows, err := r.conn().Query(ctx, query, args...)
	if err != nil {
		return result, fmt.Errorf("failed to search genres: %w", err)
	}
	genres, err := collectGenres(rows)
	if err != nil {
		return result, err
	}
	if err := r.hydrateCategoryIDs(ctx, genres); err != nil {
		return result, err
	}

	result.Items = genres
	result.CurrentPage = params.Page
	if result.CurrentPage < 1 {
		result.CurrentPage = 1
	}
	result.PerPage = params.Limit()
	return result, nil
}

func (r *GenreRepository) insertCategoryIDs(ctx context.Context, genre *model.Genre) error {
	const query = `INSERT INTO genre_categories (genre_id, category_id) VALUES ($1, $2)`
	for categoryID := range genre.CategoryIDs {
		if _, err := r.conn().Exec(ctx, query, genre.ID.String(), categoryID.String()); err != nil {
			return fmt.Errorf("failed to link genre category: %w", err)
		}
	}
	return nil
}

func (r *GenreRepository) hydrateCategoryIDs(ctx context.Context, genres []*model.Genre) error {
	if len(genres) == 0 {
		return nil
	}

	byID := make(map[string]*model.Genre, len(genres))
	ids := make([]string, 0, len(genres))
	for _, genre := range genres {
		genre.CategoryIDs = map[model.CategoryID]struct{}{}
		byID[genre.ID.String()] = genre
		ids = append(ids, genre.ID.String())
	}

	const query = `SELECT genre_id, category_id FROM genre_categories WHERE genre_id = ANY($1)`

	rows, err := r.conn().Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load genre categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var genreID, categoryID string
		if err := rows.Scan(&genreID, &categoryID); err != nil {
			return fmt.Errorf("failed to scan genre category: %w", err)
		}
		parsed, err := model.ParseCategoryID(categoryID)
		if err != nil {
			return err
		}
		if genre, ok := byID[genreID]; ok {
			genre.CategoryIDs[parsed] = struct{}{}
		}
	}
	return rows.Err()
}

func collectGenres(rows pgx.Rows) ([]*model.Genre, error) {
	defer rows.Close()

	var genres []*model.Genre
	for rows.Next() {
		genre, err := scanGenre(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, genre)
	}
	return genres, rows.Err()
}

func scanGenre(row pgx.Row) (*model.Genre, error) {
	var id string
	var genre model.Genre

	err := row.Scan(&id, &genre.Name, &genre.IsActive, &genre.CreatedAt, &genre.DeletedAt)
	if err != nil {
		return nil, err
	}

	genreID, err := model.ParseGenreID(id)
	if err != nil {
		return nil, err
	}
	genre.ID = genreID
	genre.CategoryIDs = map[model.CategoryID]struct{}{}
	return &genre, nil
}

var _ repository.GenreRepository = (*GenreRepository)(nil)
