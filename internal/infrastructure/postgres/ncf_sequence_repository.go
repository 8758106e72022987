package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
)

var _ repository.NCFSequenceRepository = (*NCFSequenceRepo)(nil)

// NCFSequenceRepo contadores de comprobantes sobre PostgreSQL.
type NCFSequenceRepo struct {
	q Querier
}

// NewNCFSequenceRepository construye el repositorio. Pasar pool o tx (Querier).
func NewNCFSequenceRepository(q Querier) *NCFSequenceRepo {
	return &NCFSequenceRepo{q: q}
}

// Next incrementa con upsert; la fila queda bloqueada hasta el fin de la transacción, lo que
// serializa a los emisores concurrentes del mismo tipo.
func (r *NCFSequenceRepo) Next(ctx context.Context, code string) (*entity.NCFSequence, error) {
	const q = `
		INSERT INTO ncf_sequences (type, current, range_end, updated_at)
		VALUES ($1, 1, 0, now())
		ON CONFLICT (type) DO UPDATE SET current = ncf_sequences.current + 1, updated_at = now()
		RETURNING type, current, range_end, expires_at, updated_at`
	seq, err := scanSequence(r.q.QueryRow(ctx, q, code))
	if err != nil {
		return nil, wrap("next sequence", err)
	}
	return seq, nil
}

func (r *NCFSequenceRepo) Get(ctx context.Context, code string) (*entity.NCFSequence, error) {
	seq, err := scanSequence(r.q.QueryRow(ctx,
		`SELECT type, current, range_end, expires_at, updated_at FROM ncf_sequences WHERE type = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get sequence", err)
	}
	return seq, nil
}

func (r *NCFSequenceRepo) Save(ctx context.Context, seq *entity.NCFSequence) error {
	const q = `
		INSERT INTO ncf_sequences (type, current, range_end, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (type) DO UPDATE
		SET current = EXCLUDED.current, range_end = EXCLUDED.range_end,
		    expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, q, seq.Type, seq.Current, seq.RangeEnd, seq.ExpiresAt, seq.UpdatedAt); err != nil {
		return wrap("save sequence", err)
	}
	return nil
}

func (r *NCFSequenceRepo) List(ctx context.Context) ([]*entity.NCFSequence, error) {
	rows, err := r.q.Query(ctx, `SELECT type, current, range_end, expires_at, updated_at FROM ncf_sequences ORDER BY type`)
	if err != nil {
		return nil, wrap("list sequences", err)
	}
	defer rows.Close()
	var list []*entity.NCFSequence
	for rows.Next() {
		seq, err := scanSequence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		list = append(list, seq)
	}
	return list, wrap("rows sequence", rows.Err())
}

func scanSequence(row pgx.Row) (*entity.NCFSequence, error) {
	var s entity.NCFSequence
	if err := row.Scan(&s.Type, &s.Current, &s.RangeEnd, &s.ExpiresAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
