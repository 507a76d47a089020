package allocation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jhoicas/Asignador-api/internal/domain"
	"github.com/jhoicas/Asignador-api/pkg/metrics"
)

// Outcome clasifica el resultado de un intento de asignación.
type Outcome int

const (
	Success Outcome = iota
	RetryableConflict
	Fatal
)

// Classify mapea un error de intento a su outcome. Solo los conflictos de
// serialización/deadlock (domain.ErrRetryableConflict, puesto por la capa de
// storage) reinician el intento completo; el solape por candidato se absorbe
// antes de llegar aquí.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, domain.ErrRetryableConflict):
		return RetryableConflict
	default:
		return Fatal
	}
}

// RetryPolicy implementa el loop de reintentos con backoff exponencial y
// jitter: sleep = Base * 2^attempt + U(0, JitterMax). Sleep y Rand son
// inyectables para test.
type RetryPolicy struct {
	MaxAttempts int
	Base        time.Duration
	JitterMax   time.Duration
	Sleep       func(time.Duration)
	Rand        func() float64
}

// DefaultRetryPolicy replica los budgets del motor: 5 intentos, base 50ms,
// jitter hasta 30ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Base:        50 * time.Millisecond,
		JitterMax:   30 * time.Millisecond,
		Sleep:       time.Sleep,
		Rand:        rand.Float64,
	}
}

// Backoff calcula la espera tras el intento fallido número attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.Base * (1 << uint(attempt))
	if p.JitterMax > 0 {
		d += time.Duration(p.Rand() * float64(p.JitterMax))
	}
	return d
}

// Do ejecuta fn hasta MaxAttempts veces. Cada reintento parte de una
// transacción nueva (fn abre la suya); nada queda a medio commit durante el
// sleep. Agotar los intentos devuelve domain.ErrAllocationFailed envolviendo
// la última causa.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err := fn()
		switch Classify(err) {
		case Success:
			return nil
		case Fatal:
			return err
		case RetryableConflict:
			lastErr = err
			if err := ctx.Err(); err != nil {
				return err
			}
			metrics.RetrySleeps.Inc()
			p.Sleep(p.Backoff(attempt + 1))
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrAllocationFailed, lastErr)
}
