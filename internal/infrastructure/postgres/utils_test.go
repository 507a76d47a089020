package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Asignador-api/internal/domain"
)

func pgErr(code string) error {
	return &pgconn.PgError{Code: code, Message: "test"}
}

func TestSQLState(t *testing.T) {
	assert.Equal(t, "40P01", sqlState(pgErr("40P01")))
	assert.Equal(t, "", sqlState(errors.New("no es un PgError")))
	assert.Equal(t, "", sqlState(nil))

	// El código debe sobrevivir al wrapping con %w.
	wrapped := fmt.Errorf("insert hold: %w", pgErr("23P01"))
	assert.Equal(t, "23P01", sqlState(wrapped))
}

func TestClasificacionDeErrores(t *testing.T) {
	assert.True(t, isUniqueViolation(pgErr("23505")))
	assert.False(t, isUniqueViolation(pgErr("23P01")))

	assert.True(t, isExclusionViolation(pgErr("23P01")))
	assert.False(t, isExclusionViolation(pgErr("23505")))

	assert.True(t, isRetryableConflict(pgErr("40001")), "fallo de serialización")
	assert.True(t, isRetryableConflict(pgErr("40P01")), "deadlock")
	assert.False(t, isRetryableConflict(pgErr("23505")))

	assert.True(t, isLockUnsupported(pgErr("42883")), "función inexistente")
	assert.True(t, isLockUnsupported(pgErr("42501")), "permisos insuficientes")
	assert.False(t, isLockUnsupported(pgErr("40001")))
}

func TestClassifyTxErr(t *testing.T) {
	// Deadlocks y fallos de serialización quedan marcados como reintentables.
	err := classifyTxErr(fmt.Errorf("commit transaction: %w", pgErr("40001")))
	assert.ErrorIs(t, err, domain.ErrRetryableConflict)

	err = classifyTxErr(pgErr("40P01"))
	assert.ErrorIs(t, err, domain.ErrRetryableConflict)

	// Cualquier otro error pasa sin tocar.
	plain := errors.New("columna inexistente")
	assert.Equal(t, plain, classifyTxErr(plain))

	assert.NoError(t, classifyTxErr(nil))
}
