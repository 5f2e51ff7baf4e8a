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

// CategoryRepository implements repository.CategoryRepository over PostgreSQL.
type CategoryRepository struct {
	uow *UnitOfWork
}

func NewCategoryRepository(uow *UnitOfWork) *CategoryRepository {
	return &CategoryRepository{uow: uow}
}

func (r *CategoryRepository) conn() DBTX {
	return r.uow.Conn()
}

func (r *CategoryRepository) Insert(ctx context.Context, category *model.Category) error {
	const query = `
		INSERT INTO categories (id, name, description, is_active, created_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.conn().Exec(ctx, query,
		category.ID.String(), category.Name, category.Description,
		category.IsActive, category.CreatedAt, category.DeletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateEntity
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}

	r.uow.AddAggregateRoot(category)
	return nil
}

func (r *CategoryRepository) BulkInsert(ctx context.Context, categories []*model.Category) error {
	for _, category := range categories {
		if err := r.Insert(ctx, category); err != nil {
			return err
		}
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	const query = `
		UPDATE categories
		SET name = $2, description = $3, is_active = $4, deleted_at = $5
		WHERE id = $1
	`
	tag, err := r.conn().Exec(ctx, query,
		category.ID.String(), category.Name, category.Description,
		category.IsActive, category.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("category", category.ID.String())
	}

	r.uow.AddAggregateRoot(category)
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id model.CategoryID) error {
	const query = `UPDATE categories SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.conn().Exec(ctx, query, id.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("category", id.String())
	}
	return nil
}

const selectCategoryColumns = `id, name, description, is_active, created_at, deleted_at`

func (r *CategoryRepository) FindByID(ctx context.Context, id model.CategoryID) (*model.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM categories WHERE id = $1 AND deleted_at IS NULL`

	category, err := scanCategory(r.conn().QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}
	return category, nil
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []model.CategoryID) ([]*model.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + selectCategoryColumns + ` FROM categories WHERE id = ANY($1)`

	rows, err := r.conn().Query(ctx, query, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get categories by ids: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) ExistsByID(ctx context.Context, ids []model.CategoryID) (repository.ExistsResult[model.CategoryID], error) {
	var result repository.ExistsResult[model.CategoryID]
	if len(ids) == 0 {
		return result, repository.ErrEmptyIDs
	}

	const query = `SELECT id FROM categories WHERE id = ANY($1) AND deleted_at IS NULL`

	found, err := collectFoundIDs(ctx, r.conn(), query, idStrings(ids))
	if err != nil {
		return result, fmt.Errorf("failed to check category ids: %w", err)
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

func (r *CategoryRepository) FindAll(ctx context.Context) ([]*model.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM categories WHERE deleted_at IS NULL ORDER BY created_at DESC`

	rows, err := r.conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

var categorySortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

func (r *CategoryRepository) Search(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.Category], error) {
	var result repository.SearchResult[*model.Category]

	where := "deleted_at IS NULL"
	args := []any{}
	if params.Filter.Terms != "" {
		args = append(args, "%"+params.Filter.Terms+"%")
		where += " AND name ILIKE $1"
	}

	countQuery := "SELECT COUNT(*) FROM categories WHERE " + where
	if err := r.conn().QueryRow(ctx, countQuery, args...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("failed to count categories: %w", err)
	}

	orderBy := "created_at"
	if col, ok := categorySortColumns[params.Sort]; ok {
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
		"SELECT %s FROM categories WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		selectCategoryColumns, where, orderBy, dir, limitArg, offsetArg,
	)

	rows, err := r.conn().Query(ctx, query, args...)
	if err != nil {
		return result, fmt.Errorf("failed to search categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return result, fmt.Errorf("failed to scan category: %w", err)
		}
		result.Items = append(result.Items, category)
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("error iterating categories: %w", err)
	}

	result.CurrentPage = params.Page
	if result.CurrentPage < 1 {
		result.CurrentPage = 1
	}
	result.PerPage = params.Limit()
	return result, nil
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var id string
	var category model.Category

	err := row.Scan(&id, &category.Name, &category.Description, &category.IsActive, &category.CreatedAt, &category.DeletedAt)
	if err != nil {
		return nil, err
	}

	categoryID, err := model.ParseCategoryID(id)
	if err != nil {
		return nil, err
	}
	category.ID = categoryID
	return &category, nil
}

// collectFoundIDs runs an id-projection query and returns the found set.
func collectFoundIDs(ctx context.Context, conn DBTX, query string, ids []string) (map[string]bool, error) {
	rows, err := conn.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	return found, rows.Err()
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)
