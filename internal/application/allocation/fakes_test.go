package allocation_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Asignador-api/internal/application/allocation"
	"github.com/jhoicas/Asignador-api/internal/domain"
	"github.com/jhoicas/Asignador-api/internal/domain/entity"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: un almacén con la misma disciplina que la base real
// (disponibilidad = suma firmada del ledger, idempotencia por op_id, holds
// con solape rechazado) y un TxRunner que serializa cada intento completo,
// igual que lo hacen los locks de fila + advisory lock en producción.
// ──────────────────────────────────────────────────────────────────────────────

type coord struct {
	warehouseID string
	locationID  string
	lotID       string
}

type fakeStore struct {
	mu sync.Mutex

	stock  map[string]map[coord]int64 // productID -> coordenada -> qty disponible
	lines  map[string][]*entity.OrderLine
	status map[string]string

	holds  []*entity.Hold
	ledger []*entity.LedgerEvent
	opIDs  map[string]bool

	refreshes int

	// overlapLeft simula la restricción de exclusión: mientras el contador de
	// una coordenada sea > 0, todo Reserve sobre ella devuelve ErrHoldOverlap.
	overlapLeft map[coord]int

	// conflictsLeft hace que los próximos N intentos (RunOrder) fallen con un
	// conflicto reintentable antes de ejecutar nada.
	conflictsLeft int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stock:       make(map[string]map[coord]int64),
		lines:       make(map[string][]*entity.OrderLine),
		status:      make(map[string]string),
		opIDs:       make(map[string]bool),
		overlapLeft: make(map[coord]int),
	}
}

func (s *fakeStore) addStock(productID string, c coord, qty int64) {
	if s.stock[productID] == nil {
		s.stock[productID] = make(map[coord]int64)
	}
	s.stock[productID][c] += qty
}

func (s *fakeStore) addOrder(orderID string, lines ...*entity.OrderLine) {
	s.lines[orderID] = lines
	s.status[orderID] = entity.OrderStatusOpen
}

// applyEvent registra el evento y aplica su delta a la coordenada, como lo
// haría la suma sobre el ledger real. Devuelve ErrDuplicateOperation si el
// op_id ya fue usado.
func (s *fakeStore) applyEvent(e *entity.LedgerEvent) (string, error) {
	key := e.TenantID + "/" + e.OpID
	if s.opIDs[key] {
		return "", domain.ErrDuplicateOperation
	}
	s.opIDs[key] = true
	e.ID = fmt.Sprintf("evt-%d", len(s.ledger)+1)
	s.ledger = append(s.ledger, e)
	s.addStock(e.ProductID, coord{e.WarehouseID, e.LocationID, e.LotID}, e.QtyDelta)
	return e.ID, nil
}

// ── Repos atados al store ─────────────────────────────────────────────────────

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) GetLines(_ context.Context, orderID string) ([]*entity.OrderLine, error) {
	return r.s.lines[orderID], nil
}

func (r *fakeOrderRepo) SetStatus(_ context.Context, orderID, status string) error {
	r.s.status[orderID] = status
	return nil
}

type fakeCandidateRepo struct{ s *fakeStore }

func (r *fakeCandidateRepo) Candidates(_ context.Context, productID string, limit int) ([]*entity.Candidate, error) {
	var out []*entity.Candidate
	for c, qty := range r.s.stock[productID] {
		if qty <= 0 {
			continue
		}
		out = append(out, &entity.Candidate{
			WarehouseID:  c.warehouseID,
			LocationID:   c.locationID,
			LotID:        c.lotID,
			AvailableQty: qty,
		})
	}
	// Mismo orden estable que la consulta real: warehouse → lot → location.
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarehouseID != out[j].WarehouseID {
			return out[i].WarehouseID < out[j].WarehouseID
		}
		if out[i].LotID != out[j].LotID {
			return out[i].LotID < out[j].LotID
		}
		return out[i].LocationID < out[j].LocationID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeReservationRepo struct{ s *fakeStore }

func (r *fakeReservationRepo) Reserve(_ context.Context, hold *entity.Hold, reserve *entity.LedgerEvent) error {
	c := coord{hold.WarehouseID, hold.LocationID, hold.LotID}
	if r.s.overlapLeft[c] > 0 {
		r.s.overlapLeft[c]--
		return domain.ErrHoldOverlap
	}
	hold.CreatedAt = time.Now()
	r.s.holds = append(r.s.holds, hold)
	_, err := r.s.applyEvent(reserve)
	return err
}

type fakeHoldRepo struct{ s *fakeStore }

func (r *fakeHoldRepo) ReleaseActive(_ context.Context, orderID string) ([]*entity.Hold, error) {
	now := time.Now()
	var released []*entity.Hold
	for _, h := range r.s.holds {
		if h.OrderID == orderID && h.ReleasedAt == nil {
			h.ReleasedAt = &now
			released = append(released, h)
		}
	}
	return released, nil
}

type fakeLedgerRepo struct{ s *fakeStore }

func (r *fakeLedgerRepo) Append(_ context.Context, event *entity.LedgerEvent) (string, error) {
	return r.s.applyEvent(event)
}

func (r *fakeLedgerRepo) CurrentStock(_ context.Context, warehouseID, locationID, productID, lotID string) (int64, error) {
	return r.s.stock[productID][coord{warehouseID, locationID, lotID}], nil
}

type fakeSnapshotRepo struct{ s *fakeStore }

func (r *fakeSnapshotRepo) Refresh(_ context.Context) error {
	r.s.refreshes++
	return nil
}

func (r *fakeSnapshotRepo) RefreshConcurrently(_ context.Context) error {
	r.s.refreshes++
	return nil
}

func (r *fakeSnapshotRepo) CurrentStock(_ context.Context, productID string) ([]*entity.StockRow, error) {
	var rows []*entity.StockRow
	for c, qty := range r.s.stock[productID] {
		rows = append(rows, &entity.StockRow{
			ProductID:   productID,
			WarehouseID: c.warehouseID,
			LocationID:  c.locationID,
			LotID:       c.lotID,
			Qty:         qty,
		})
	}
	return rows, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// fakeTxRunner mantiene el lock del store durante todo el callback: cada
// intento ve un estado consistente y dos workers sobre el mismo pedido quedan
// serializados, como con pg_advisory_xact_lock.
type fakeTxRunner struct{ s *fakeStore }

var _ allocation.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) RunTenant(_ context.Context, _ string, fn func(
	ledgerRepo repository.LedgerRepository,
	snapshotRepo repository.SnapshotRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(&fakeLedgerRepo{r.s}, &fakeSnapshotRepo{r.s})
}

func (r *fakeTxRunner) RunOrder(_ context.Context, _, _ string, fn func(
	orderRepo repository.OrderRepository,
	candidateRepo repository.CandidateRepository,
	reservationRepo repository.ReservationRepository,
	holdRepo repository.HoldRepository,
	ledgerRepo repository.LedgerRepository,
	snapshotRepo repository.SnapshotRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.conflictsLeft > 0 {
		r.s.conflictsLeft--
		return fmt.Errorf("%w: deadlock detected", domain.ErrRetryableConflict)
	}
	return fn(
		&fakeOrderRepo{r.s},
		&fakeCandidateRepo{r.s},
		&fakeReservationRepo{r.s},
		&fakeHoldRepo{r.s},
		&fakeLedgerRepo{r.s},
		&fakeSnapshotRepo{r.s},
	)
}

// testPolicy devuelve una política sin sleeps reales, contando las esperas.
func testPolicy(sleeps *[]time.Duration) allocation.RetryPolicy {
	p := allocation.DefaultRetryPolicy()
	p.Sleep = func(d time.Duration) {
		if sleeps != nil {
			*sleeps = append(*sleeps, d)
		}
	}
	p.Rand = func() float64 { return 0.5 }
	return p
}
