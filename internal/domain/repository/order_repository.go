package repository

import (
	"context"

	"github.com/jhoicas/Asignador-api/internal/domain/entity"
)

// OrderRepository define el puerto mínimo sobre pedidos: este núcleo lee las
// líneas y muta el status; el CRUD de pedidos es de colaboradores externos.
type OrderRepository interface {
	GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error)
	SetStatus(ctx context.Context, orderID, status string) error
}
