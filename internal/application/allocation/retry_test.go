package allocation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Asignador-api/internal/application/allocation"
	"github.com/jhoicas/Asignador-api/internal/domain"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, allocation.Success, allocation.Classify(nil))
	assert.Equal(t, allocation.RetryableConflict,
		allocation.Classify(fmt.Errorf("%w: deadlock", domain.ErrRetryableConflict)))
	assert.Equal(t, allocation.Fatal, allocation.Classify(errors.New("columna inexistente")))
	assert.Equal(t, allocation.Fatal, allocation.Classify(domain.ErrInvalidInput))
}

func TestBackoff_ExponencialConJitter(t *testing.T) {
	p := allocation.DefaultRetryPolicy()
	p.Rand = func() float64 { return 0 }
	assert.Equal(t, 100*time.Millisecond, p.Backoff(1), "base 50ms * 2^1")
	assert.Equal(t, 200*time.Millisecond, p.Backoff(2))
	assert.Equal(t, 400*time.Millisecond, p.Backoff(3))

	p.Rand = func() float64 { return 1 }
	assert.Equal(t, 130*time.Millisecond, p.Backoff(1), "jitter máximo de 30ms")
}

func TestDo_ExitoInmediato(t *testing.T) {
	p := allocation.DefaultRetryPolicy()
	p.Sleep = func(time.Duration) { t.Fatal("no debe dormir en un éxito inmediato") }

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_FatalNoReintenta(t *testing.T) {
	p := allocation.DefaultRetryPolicy()
	p.Sleep = func(time.Duration) { t.Fatal("un error fatal no debe dormir") }

	fatal := errors.New("violación de esquema")
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return fatal
	})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls, "el error fatal aborta sin reintentar")
}

func TestDo_AgotamientoEnvuelveUltimaCausa(t *testing.T) {
	var sleeps []time.Duration
	p := allocation.DefaultRetryPolicy()
	p.Sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	p.Rand = func() float64 { return 0 }

	conflict := fmt.Errorf("%w: could not serialize access", domain.ErrRetryableConflict)
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return conflict
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAllocationFailed)
	assert.ErrorIs(t, err, domain.ErrRetryableConflict)
	assert.Equal(t, 5, calls)
	require.Len(t, sleeps, 5)
	assert.Equal(t, 100*time.Millisecond, sleeps[0])
	assert.Equal(t, 1600*time.Millisecond, sleeps[4])
}

func TestDo_RecuperaTrasConflictos(t *testing.T) {
	p := allocation.DefaultRetryPolicy()
	p.Sleep = func(time.Duration) {}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: deadlock", domain.ErrRetryableConflict)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextoCanceladoCortaElLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := allocation.DefaultRetryPolicy()
	p.Sleep = func(time.Duration) {}

	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		cancel()
		return fmt.Errorf("%w: deadlock", domain.ErrRetryableConflict)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancelar el contexto corta antes del siguiente intento")
}
