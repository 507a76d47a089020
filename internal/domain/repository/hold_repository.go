package repository

import (
	"context"

	"github.com/jhoicas/Asignador-api/internal/domain/entity"
)

// HoldRepository define el puerto sobre los holds activos de un pedido.
type HoldRepository interface {
	// ReleaseActive cierra (released_at = now()) todos los holds activos del
	// pedido y devuelve los holds cerrados. Sin holds activos devuelve lista
	// vacía, no error.
	ReleaseActive(ctx context.Context, orderID string) ([]*entity.Hold, error)
}

// ReservationRepository crea el par hold + evento RESERVE dentro de una
// sub-transacción (savepoint) del intento en curso: un conflicto de solape
// revierte solo las escrituras de ese candidato, nunca el intento completo.
// Devuelve domain.ErrHoldOverlap cuando la restricción de exclusión rechaza
// el reclamo.
type ReservationRepository interface {
	Reserve(ctx context.Context, hold *entity.Hold, reserve *entity.LedgerEvent) error
}
