package allocation

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// OrderLockKey deriva la clave del advisory lock por pedido:
// BLAKE2b con digest de 8 bytes sobre los 16 bytes del tenant UUID seguidos de
// los 16 del order UUID. El digest big-endian se reinterpreta como entero de
// 64 bits con signo en complemento a dos (valores >= 2^63 quedan negativos),
// que es el dominio que espera pg_advisory_xact_lock(bigint). Cualquier
// reimplementación debe reproducir exactamente esta regla de truncado/signo
// para colisionar solo donde este sistema colisionaría.
func OrderLockKey(tenantID, orderID string) (int64, error) {
	tid, err := uuid.Parse(tenantID)
	if err != nil {
		return 0, fmt.Errorf("tenant_id inválido: %w", err)
	}
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return 0, fmt.Errorf("order_id inválido: %w", err)
	}
	h, err := blake2b.New(8, nil)
	if err != nil {
		return 0, fmt.Errorf("blake2b: %w", err)
	}
	h.Write(tid[:])
	h.Write(oid[:])
	return int64(binary.BigEndian.Uint64(h.Sum(nil))), nil
}
