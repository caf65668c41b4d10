package parties

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/platform/db"
)

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("parties: not found")

// ErrDuplicateCode indicates the party code is already taken.
var ErrDuplicateCode = errors.New("parties: code already exists")

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Party, int, error)
	Get(ctx context.Context, id int64) (Party, error)
	Create(ctx context.Context, party Party) (Party, error)
	Update(ctx context.Context, id int64, party Party) error
	PartyExists(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const partyColumns = `id, code, name, kind, gstin, address, email, phone, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Party, int, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM parties WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Kind != "" {
		argCount++
		clause := ` AND kind = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Kind)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
	limit := filters.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	offset := (filters.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var parties []Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, 0, err
		}
		parties = append(parties, p)
	}
	return parties, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE id = $1`
	p, err := scanParty(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Party{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, party Party) (Party, error) {
	query := `
		INSERT INTO parties (code, name, kind, gstin, address, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		party.Code, party.Name, party.Kind, party.GSTIN, party.Address, party.Email, party.Phone,
	).Scan(&party.ID, &party.CreatedAt, &party.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Party{}, ErrDuplicateCode
		}
		return Party{}, err
	}
	return party, nil
}

func (r *repository) Update(ctx context.Context, id int64, party Party) error {
	query := `
		UPDATE parties SET name = $1, gstin = $2, address = $3, email = $4, phone = $5, updated_at = NOW()
		WHERE id = $6`
	tag, err := r.db.Exec(ctx, query, party.Name, party.GSTIN, party.Address, party.Email, party.Phone, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) PartyExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM parties WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanParty(row pgx.Row) (Party, error) {
	var p Party
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Kind, &p.GSTIN, &p.Address, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
