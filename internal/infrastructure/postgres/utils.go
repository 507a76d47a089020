package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlState extrae el SQLSTATE de un error de PostgreSQL, o "" si no aplica.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return sqlState(err) == "23505"
}

// isExclusionViolation verifica si un error es una violación de constraint de
// exclusión (23P01): dos holds reclamando la misma coordenada.
func isExclusionViolation(err error) bool {
	return sqlState(err) == "23P01"
}

// isRetryableConflict verifica deadlock (40P01) o fallo de serialización (40001):
// las únicas dos condiciones que reinician el intento completo.
func isRetryableConflict(err error) bool {
	code := sqlState(err)
	return code == "40001" || code == "40P01"
}

// isLockUnsupported verifica si el advisory lock no está disponible en el
// entorno: función inexistente (42883) o permisos insuficientes (42501).
func isLockUnsupported(err error) bool {
	code := sqlState(err)
	return code == "42883" || code == "42501"
}
