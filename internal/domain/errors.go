package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")

	// ErrDuplicateOperation: ya existe un evento con el mismo (tenant_id, op_id).
	// Los callers lo tratan como éxito sin efecto, no como fallo.
	ErrDuplicateOperation = errors.New("operación duplicada en el ledger")

	// ErrHoldOverlap: otro worker ya reclamó esa coordenada (producto, lote, ubicación).
	// Se absorbe por candidato; nunca llega al caller.
	ErrHoldOverlap = errors.New("hold en conflicto con una reserva activa")

	// ErrRetryableConflict: deadlock o fallo de serialización; el intento completo
	// se reinicia con backoff.
	ErrRetryableConflict = errors.New("conflicto de concurrencia reintentable")

	// ErrLockUnavailable: el advisory lock no está disponible en el entorno
	// (función inexistente o permisos). Modo degradado, no fatal.
	ErrLockUnavailable = errors.New("advisory lock no disponible")

	// ErrAllocationFailed: se agotaron los reintentos; envuelve la última causa.
	ErrAllocationFailed = errors.New("asignación fallida tras agotar reintentos")
)
