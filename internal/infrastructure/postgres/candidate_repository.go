package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Asignador-api/internal/domain/entity"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
)

var _ repository.CandidateRepository = (*CandidateRepo)(nil)

// CandidateRepo produce los candidatos de asignación para un producto.
//
// El orden es el contrato anti-deadlock: warehouse_id → lot_id → location_id →
// vencimiento (stock más viejo primero). Todos los workers recorren los
// candidatos de un producto en la misma secuencia, así los locks de fila se
// piden siempre en el mismo orden global y no hay espera cíclica.
//
// FOR UPDATE ... SKIP LOCKED sobre los lotes: una fila a medio reclamar por
// otro worker simplemente no aparece, en vez de bloquear el intento.
type CandidateRepo struct {
	q Querier
}

// NewCandidateRepository construye el adaptador. Pasar la tx del intento.
func NewCandidateRepository(q Querier) *CandidateRepo {
	return &CandidateRepo{q: q}
}

// Candidates devuelve hasta limit coordenadas con disponibilidad positiva.
// available_qty es la suma firmada del ledger en la coordenada: los pares
// RESERVE/RELEASE netean, así que los holds activos ya están descontados.
func (r *CandidateRepo) Candidates(ctx context.Context, productID string, limit int) ([]*entity.Candidate, error) {
	if limit <= 0 {
		limit = repository.DefaultCandidateLimit
	}
	query := `
		WITH available AS (
			SELECT sl.warehouse_id, sl.location_id, sl.lot_id,
			       SUM(sl.qty_delta) AS available_qty
			FROM core.stock_ledger sl
			WHERE sl.tenant_id = current_setting('app.tenant_id')::uuid
			  AND sl.product_id = $1
			  AND sl.lot_id IS NOT NULL
			GROUP BY sl.warehouse_id, sl.location_id, sl.lot_id
		)
		SELECT a.warehouse_id, a.location_id, a.lot_id, a.available_qty
		FROM available a
		JOIN core.lots l ON l.id = a.lot_id
		WHERE a.available_qty > 0
		ORDER BY a.warehouse_id, a.lot_id, a.location_id, l.expiry_date ASC NULLS LAST
		LIMIT $2
		FOR UPDATE OF l SKIP LOCKED`
	rows, err := r.q.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("candidatos: %w", err)
	}
	defer rows.Close()

	var candidates []*entity.Candidate
	for rows.Next() {
		var c entity.Candidate
		if err := rows.Scan(&c.WarehouseID, &c.LocationID, &c.LotID, &c.AvailableQty); err != nil {
			return nil, fmt.Errorf("scan candidato: %w", err)
		}
		candidates = append(candidates, &c)
	}
	return candidates, rows.Err()
}
