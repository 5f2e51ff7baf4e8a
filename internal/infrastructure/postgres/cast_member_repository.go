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

// CastMemberRepository implements repository.CastMemberRepository over PostgreSQL.
type CastMemberRepository struct {
	uow *UnitOfWork
}

func NewCastMemberRepository(uow *UnitOfWork) *CastMemberRepository {
	return &CastMemberRepository{uow: uow}
}

func (r *CastMemberRepository) conn() DBTX {
	return r.uow.Conn()
}

func (r *CastMemberRepository) Insert(ctx context.Context, member *model.CastMember) error {
	const query = `
		INSERT INTO cast_members (id, name, type, is_active, created_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.conn().Exec(ctx, query,
		member.ID.String(), member.Name, int(member.Type),
		member.IsActive, member.CreatedAt, member.DeletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateEntity
		}
		return fmt.Errorf("failed to insert cast member: %w", err)
	}

	r.uow.AddAggregateRoot(member)
	return nil
}

func (r *CastMemberRepository) BulkInsert(ctx context.Context, members []*model.CastMember) error {
	for _, member := range members {
		if err := r.Insert(ctx, member); err != nil {
			return err
		}
	}
	return nil
}

func (r *CastMemberRepository) Update(ctx context.Context, member *model.CastMember) error {
	const query = `
		UPDATE cast_members
		SET name = $2, type = $3, is_active = $4, deleted_at = $5
		WHERE id = $1
	`
	tag, err := r.conn().Exec(ctx, query,
		member.ID.String(), member.Name, int(member.Type), member.IsActive, member.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update cast member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("cast member", member.ID.String())
	}

	r.uow.AddAggregateRoot(member)
	return nil
}

func (r *CastMemberRepository) Delete(ctx context.Context, id model.CastMemberID) error {
	const query = `UPDATE cast_members SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.conn().Exec(ctx, query, id.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete cast member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("cast member", id.String())
	}
	return nil
}

const selectCastMemberColumns = `id, name, type, is_active, created_at, deleted_at`

func (r *CastMemberRepository) FindByID(ctx context.Context, id model.CastMemberID) (*model.CastMember, error) {
	query := `SELECT ` + selectCastMemberColumns + ` FROM cast_members WHERE id = $1 AND deleted_at IS NULL`

	member, err := scanCastMember(r.conn().QueryRow(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cast member by id: %w", err)
	}
	return member, nil
}

func (r *CastMemberRepository) FindByIDs(ctx context.Context, ids []model.CastMemberID) ([]*model.CastMember, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + selectCastMemberColumns + ` FROM cast_members WHERE id = ANY($1)`

	rows, err := r.conn().Query(ctx, query, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get cast members by ids: %w", err)
	}
	return collectCastMembers(rows)
}

func (r *CastMemberRepository) ExistsByID(ctx context.Context, ids []model.CastMemberID) (repository.ExistsResult[model.CastMemberID], error) {
	var result repository.ExistsResult[model.CastMemberID]
	if len(ids) == 0 {
		return result, repository.ErrEmptyIDs
	}

	const query = `SELECT id FROM cast_members WHERE id = ANY($1) AND deleted_at IS NULL`

	found, err := collectFoundIDs(ctx, r.conn(), query, idStrings(ids))
	if err != nil {
		return result, fmt.Errorf("failed to check cast member ids: %w", err)
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

func (r *CastMemberRepository) FindAll(ctx context.Context) ([]*model.CastMember, error) {
	query := `SELECT ` + selectCastMemberColumns + ` FROM cast_members WHERE deleted_at IS NULL ORDER BY created_at DESC`

	rows, err := r.conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cast members: %w", err)
	}
	return collectCastMembers(rows)
}

var castMemberSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

func (r *CastMemberRepository) Search(ctx context.Context, params repository.SearchParams[repository.TermFilter]) (repository.SearchResult[*model.CastMember], error) {
	var result repository.SearchResult[*model.CastMember]

	where := "deleted_at IS NULL"
	args := []any{}
	if params.Filter.Terms != "" {
		args = append(args, "%"+params.Filter.Terms+"%")
		where += " AND name ILIKE $1"
	}

	countQuery := "SELECT COUNT(*) FROM cast_members WHERE " + where
	if err := r.conn().QueryRow(ctx, countQuery, args...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("failed to count cast members: %w", err)
	}

	orderBy := "created_at"
	if col, ok := castMemberSortColumns[params.Sort]; ok {
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
		"SELECT %s FROM cast_members WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		selectCastMemberColumns, where, orderBy, dir, limitArg, offsetArg,
	)

	rows, err := r.conn().Query(ctx, query, args...)
	if err != nil {
		return result, fmt.Errorf("failed to search cast members: %w", err)
	}
	members, err := collectCastMembers(rows)
	if err != nil {
		return result, err
	}

	result.Items = members
	result.CurrentPage = params.Page
	if result.CurrentPage < 1 {
		result.CurrentPage = 1
	}
	result.PerPage = params.Limit()
	return result, nil
}

func collectCastMembers(rows pgx.Rows) ([]*model.CastMember, error) {
	defer rows.Close()

	var members []*model.CastMember
	for rows.Next() {
		member, err := scanCastMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cast member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func scanCastMember(row pgx.Row) (*model.CastMember, error) {
	var id string
	var memberType int
	var member model.CastMember

	err := row.Scan(&id, &member.Name, &memberType, &member.IsActive, &member.CreatedAt, &member.DeletedAt)
	if err != nil {
		return nil, err
	}

	memberID, err := model.ParseCastMemberID(id)
	if err != nil {
		return nil, err
	}
	parsedType, err := model.ParseCastMemberType(memberType)
	if err != nil {
		return nil, err
	}
	member.ID = memberID
	member.Type = parsedType
	return &member, nil
}

var _ repository.CastMemberRepository = (*CastMemberRepository)(nil)
