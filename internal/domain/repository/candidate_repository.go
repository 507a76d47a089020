package repository

import (
	"context"

	"github.com/jhoicas/Asignador-api/internal/domain/entity"
)

// DefaultCandidateLimit acota la lista de candidatos por latencia predecible.
// Un producto fragmentado en más lotes que el límite puede sub-asignarse
// aunque el stock agregado alcance; aproximación aceptada, sin paginación.
const DefaultCandidateLimit = 64

// CandidateRepository produce la lista acotada y determinísticamente ordenada
// de coordenadas disponibles para un producto (warehouse_id, lot_id,
// location_id, vencimiento asc). Las filas ya bloqueadas por otro worker se
// omiten (SKIP LOCKED) en lugar de esperar.
type CandidateRepository interface {
	Candidates(ctx context.Context, productID string, limit int) ([]*entity.Candidate, error)
}
