package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/factura-lv/internal/domain/numbering"
)

var _ numbering.CounterStore = (*SequenceRepo)(nil)

// SequenceRepo persiste el contador de numeración por serie. La autoridad
// de numeración serializa el acceso; aquí solo hay un upsert por serie.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Load devuelve el último valor asignado de la serie (0 si no existe aún).
func (r *SequenceRepo) Load(ctx context.Context, series string) (int64, error) {
	var last int64
	err := r.q.QueryRow(ctx,
		`SELECT last_number FROM invoice_sequences WHERE series = $1`, series,
	).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("load sequence %q: %w", series, err)
	}
	return last, nil
}

// Save guarda el último valor asignado de la serie.
func (r *SequenceRepo) Save(ctx context.Context, series string, last int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoice_sequences (series, last_number, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (series) DO UPDATE
		SET last_number = EXCLUDED.last_number, updated_at = now()`,
		series, last,
	)
	if err != nil {
		return fmt.Errorf("save sequence %q: %w", series, err)
	}
	return nil
}
