package transfer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	apptransfer "github.com/jhoicas/Farmacia-api/internal/application/transfer"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// El motor de traslados solo habla con puertos, así que los tests lo ejercitan
// completo con repositorios en memoria. El TxRunner fake serializa las
// "transacciones" con un mutex: mismo efecto que el SELECT FOR UPDATE sobre la
// fila del traslado, lo que permite probar verificaciones concurrentes.
// ──────────────────────────────────────────────────────────────────────────────

type fakeTransferRepo struct {
	mu        sync.Mutex
	transfers map[string]*entity.Transfer
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: map[string]*entity.Transfer{}}
}

func copyTransfer(t *entity.Transfer) *entity.Transfer {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Items = append([]entity.TransferItem(nil), t.Items...)
	cp.Logs = append([]entity.WorkflowLog(nil), t.Logs...)
	return &cp
}

func (r *fakeTransferRepo) Create(t *entity.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[t.ID] = copyTransfer(t)
	return nil
}

func (r *fakeTransferRepo) GetByID(id string) (*entity.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyTransfer(r.transfers[id]), nil
}

func (r *fakeTransferRepo) GetByIDForUpdate(id string) (*entity.Transfer, error) {
	return r.GetByID(id)
}

func (r *fakeTransferRepo) UpdateState(t *entity.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transfers[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = t.Status
	stored.Step = t.Step
	stored.UpdatedAt = t.UpdatedAt
	return nil
}

func (r *fakeTransferRepo) AppendLog(transferID string, log *entity.WorkflowLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transfers[transferID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Logs = append(stored.Logs, *log)
	return nil
}

func (r *fakeTransferRepo) List(filter repository.TransferFilter, limit, offset int) ([]*entity.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Transfer
	for _, t := range r.transfers {
		if filter.SourceBranchID != "" && t.SourceBranchID != filter.SourceBranchID {
			continue
		}
		if filter.TargetBranchID != "" && t.TargetBranchID != filter.TargetBranchID {
			continue
		}
		if filter.InvolvedBranchID != "" &&
			t.SourceBranchID != filter.InvolvedBranchID && t.TargetBranchID != filter.InvolvedBranchID {
			continue
		}
		out = append(out, copyTransfer(t))
	}
	return out, nil
}

type fakeStockRepo struct {
	mu     sync.Mutex
	stocks map[string]*entity.Stock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{stocks: map[string]*entity.Stock{}}
}

func stockKey(branchID, productID string) string { return branchID + "|" + productID }

func copyStock(s *entity.Stock) *entity.Stock {
	cp := *s
	cp.Batches = append([]entity.Batch(nil), s.Batches...)
	return &cp
}

func (r *fakeStockRepo) Get(branchID, productID string) (*entity.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stocks[stockKey(branchID, productID)]
	if !ok {
		// Fila en cero, nunca nil.
		return &entity.Stock{BranchID: branchID, ProductID: productID, Quantity: decimal.Zero}, nil
	}
	return copyStock(s), nil
}

func (r *fakeStockRepo) GetForUpdate(branchID, productID string) (*entity.Stock, error) {
	return r.Get(branchID, productID)
}

func (r *fakeStockRepo) AddBatch(branchID, productID string, batch *entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := stockKey(branchID, productID)
	s, ok := r.stocks[key]
	if !ok {
		s = &entity.Stock{BranchID: branchID, ProductID: productID, Quantity: decimal.Zero}
		r.stocks[key] = s
	}
	s.Batches = append(s.Batches, *batch)
	s.Quantity = s.Quantity.Add(batch.Quantity)
	return nil
}

func (r *fakeStockRepo) SetLastBatchStatus(branchID, productID, batchNumber, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stocks[stockKey(branchID, productID)]
	if !ok {
		return domain.ErrNotFound
	}
	// Con lotes repetidos gana el último insertado.
	last := -1
	for i, b := range s.Batches {
		if b.BatchNumber == batchNumber {
			last = i
		}
	}
	if last == -1 {
		return domain.ErrNotFound
	}
	s.Batches[last].Status = status
	return nil
}

func (r *fakeStockRepo) ListByBranch(branchID string, limit, offset int) ([]*entity.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Stock
	for _, s := range r.stocks {
		if s.BranchID == branchID {
			out = append(out, copyStock(s))
		}
	}
	return out, nil
}

func (r *fakeStockRepo) MarkExpiredBatches(asOf time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.stocks {
		for i, b := range s.Batches {
			if b.Status == entity.BatchStatusActive && b.ExpiryDate.Before(asOf) {
				s.Batches[i].Status = entity.BatchStatusExpired
				n++
			}
		}
	}
	return n, nil
}

type fakeBranchRepo struct {
	branches map[string]*entity.Branch
}

func (r *fakeBranchRepo) Create(b *entity.Branch) error { r.branches[b.ID] = b; return nil }
func (r *fakeBranchRepo) GetByID(id string) (*entity.Branch, error) {
	return r.branches[id], nil
}
func (r *fakeBranchRepo) GetByCode(code string) (*entity.Branch, error) {
	for _, b := range r.branches {
		if b.Code == code {
			return b, nil
		}
	}
	return nil, nil
}
func (r *fakeBranchRepo) List(limit, offset int) ([]*entity.Branch, error) { return nil, nil }

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (r *fakeProductRepo) Create(p *entity.Product) error { r.products[p.ID] = p; return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.products[id], nil
}
func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) { return nil, nil }

// fakeTxRunner serializa las transacciones con un mutex, emulando el bloqueo
// de fila de la implementación real.
type fakeTxRunner struct {
	mu        sync.Mutex
	transfers *fakeTransferRepo
	stocks    *fakeStockRepo
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(repository.TransferRepository, repository.StockRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.transfers, r.stocks)
}

// fixedCodes devuelve siempre el mismo par, para poder afirmar sobre códigos.
type fixedCodes struct {
	keeper, controller string
}

func (c fixedCodes) Pair() (string, string, error) { return c.keeper, c.controller, nil }

type noopNotes struct{}

func (noopNotes) GenerateTransferNote(ctx context.Context, t *entity.Transfer, source, target *entity.Branch, products map[string]*entity.Product) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado del escenario
// ──────────────────────────────────────────────────────────────────────────────

const (
	branchCentral      = "branch-central" // casa matriz
	branchNorte        = "branch-norte"
	branchSur          = "branch-sur"
	productParacetamol = "prod-paracetamol"
	testUser           = "user-test"
)

type testEnv struct {
	uc        *apptransfer.WorkflowUseCase
	transfers *fakeTransferRepo
	stocks    *fakeStockRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	transfers := newFakeTransferRepo()
	stocks := newFakeStockRepo()
	branches := &fakeBranchRepo{branches: map[string]*entity.Branch{
		branchCentral: {ID: branchCentral, Code: "BR000", Name: "Farmacia Central", Type: entity.BranchTypeHeadOffice},
		branchNorte:   {ID: branchNorte, Code: "BR001", Name: "Sucursal Norte", Type: entity.BranchTypeBranch},
		branchSur:     {ID: branchSur, Code: "BR002", Name: "Sucursal Sur", Type: entity.BranchTypeBranch},
	}}
	products := &fakeProductRepo{products: map[string]*entity.Product{
		productParacetamol: {ID: productParacetamol, SKU: "PARA-500", Name: "Paracetamol 500mg"},
	}}
	runner := &fakeTxRunner{transfers: transfers, stocks: stocks}
	uc := apptransfer.NewWorkflowUseCase(
		runner, transfers, stocks, branches, products,
		fixedCodes{keeper: "111111", controller: "222222"}, noopNotes{},
	)
	return &testEnv{uc: uc, transfers: transfers, stocks: stocks}
}

// seedActiveStock deja qty unidades ACTIVE del producto en la sucursal.
func (e *testEnv) seedActiveStock(t *testing.T, branchID, productID string, qty int64) {
	t.Helper()
	err := e.stocks.AddBatch(branchID, productID, &entity.Batch{
		ID:          "seed-" + branchID,
		BatchNumber: "SEED-001",
		ExpiryDate:  time.Now().AddDate(1, 0, 0),
		Quantity:    decimal.NewFromInt(qty),
		Status:      entity.BatchStatusActive,
	})
	require.NoError(t, err)
}

func dispatchRequest(qty int64) dto.DispatchTransferRequest {
	return dto.DispatchTransferRequest{
		SourceBranchID: branchCentral,
		TargetBranchID: branchNorte,
		Items: []dto.TransferItemDTO{{
			ProductID:   productParacetamol,
			Quantity:    decimal.NewFromInt(qty),
			BatchNumber: "LOTE-A1",
			ExpiryDate:  "2027-06-30",
		}},
		Notes: "reposición semanal",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Despacho
// ──────────────────────────────────────────────────────────────────────────────

func TestDispatch_CreaTrasladoEnTransito(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)

	tr, err := env.uc.Dispatch(context.Background(), testUser, dispatchRequest(30))
	require.NoError(t, err)

	assert.Equal(t, entity.TransferStatusInTransit, tr.Status)
	assert.Equal(t, entity.StepKeeperCheck, tr.Step)
	assert.Equal(t, "111111", tr.KeeperCode)
	assert.Equal(t, "222222", tr.ControllerCode)
	require.Len(t, tr.Logs, 1, "el despacho deja exactamente una entrada de historial")
	assert.Equal(t, "Farmacia Central", tr.Logs[0].Role, "el rol de la primera entrada es la sucursal origen")
	assert.Equal(t, "Dispatched", tr.Logs[0].Action)
	assert.Equal(t, testUser, tr.Logs[0].UserID)

	// El despacho NO muta el libro del destino: el stock solo aparece cuando
	// el bodeguero confirma.
	target, err := env.stocks.Get(branchNorte, productParacetamol)
	require.NoError(t, err)
	assert.Empty(t, target.Batches)
}

func TestDispatch_StockInsuficiente(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 10)

	_, err := env.uc.Dispatch(context.Background(), testUser, dispatchRequest(30))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// El stock ON_HOLD del origen no respalda un despacho: solo cuenta ACTIVE.
func TestDispatch_StockOnHoldNoCuenta(t *testing.T) {
	env := newTestEnv(t)
	err := env.stocks.AddBatch(branchCentral, productParacetamol, &entity.Batch{
		ID: "b1", BatchNumber: "HOLD-1", Quantity: decimal.NewFromInt(100),
		Status: entity.BatchStatusOnHold, ExpiryDate: time.Now().AddDate(1, 0, 0),
	})
	require.NoError(t, err)

	_, err = env.uc.Dispatch(context.Background(), testUser, dispatchRequest(30))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// Varias líneas del mismo producto se acumulan contra el stock disponible.
func TestDispatch_LineasDelMismoProductoSeAcumulan(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 50)

	in := dispatchRequest(30)
	in.Items = append(in.Items, dto.TransferItemDTO{
		ProductID:   productParacetamol,
		Quantity:    decimal.NewFromInt(30),
		BatchNumber: "LOTE-A2",
		ExpiryDate:  "2027-06-30",
	})

	_, err := env.uc.Dispatch(context.Background(), testUser, in)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "30+30 > 50 disponible")
}

func TestDispatch_Validaciones(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	ctx := context.Background()

	sinItems := dispatchRequest(10)
	sinItems.Items = nil
	_, err := env.uc.Dispatch(ctx, testUser, sinItems)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	mismaSucursal := dispatchRequest(10)
	mismaSucursal.TargetBranchID = branchCentral
	_, err = env.uc.Dispatch(ctx, testUser, mismaSucursal)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "origen == destino")

	cantidadCero := dispatchRequest(10)
	cantidadCero.Items[0].Quantity = decimal.Zero
	_, err = env.uc.Dispatch(ctx, testUser, cantidadCero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad debe ser > 0")

	sinLote := dispatchRequest(10)
	sinLote.Items[0].BatchNumber = ""
	_, err = env.uc.Dispatch(ctx, testUser, sinLote)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "lote requerido")

	fechaMala := dispatchRequest(10)
	fechaMala.Items[0].ExpiryDate = "30/06/2027"
	_, err = env.uc.Dispatch(ctx, testUser, fechaMala)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "vencimiento debe ser YYYY-MM-DD")

	sucursalInexistente := dispatchRequest(10)
	sucursalInexistente.TargetBranchID = "branch-fantasma"
	_, err = env.uc.Dispatch(ctx, testUser, sucursalInexistente)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Verificación del bodeguero (paso 1)
// ──────────────────────────────────────────────────────────────────────────────

func TestVerifyKeeper_CodigoCorrecto(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	tr, err := env.uc.Dispatch(context.Background(), testUser, dispatchRequest(30))
	require.NoError(t, err)

	out, err := env.uc.VerifyKeeper(context.Background(), tr.ID, "111111", "keeper-1")
	require.NoError(t, err)

	assert.Equal(t, entity.TransferStatusReceivedKeeper, out.Status)
	assert.Equal(t, entity.StepControllerVerify, out.Step)
	require.Len(t, out.Logs, 2)
	assert.Equal(t, "Store Keeper", out.Logs[1].Role)
	assert.Equal(t, "Confirmed Receipt", out.Logs[1].Action)

	// Los lotes entran ON_HOLD al destino: existen pero no son vendibles.
	target, err := env.stocks.Get(branchNorte, productParacetamol)
	require.NoError(t, err)
	require.Len(t, target.Batches, 1)
	assert.Equal(t, entity.BatchStatusOnHold, target.Batches[0].Status)
	assert.True(t, target.Batches[0].Quantity.Equal(decimal.NewFromInt(30)))
	assert.True(t, target.SellableQuantity().IsZero(),
		"tras el paso del bodeguero el stock sigue sin ser vendible")
}

// Un código incorrecto no muta nada: ni lotes, ni estado, ni historial.
// Los intentos son ilimitados.
func TestVerifyKeeper_CodigoIncorrectoNoMuta(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	tr, err := env.uc.Dispatch(context.Background(), testUser, dispatchRequest(30))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = env.uc.VerifyKeeper(context.Background(), tr.ID, "999999", "keeper-1")
		assert.ErrorIs(t, err, domain.ErrInvalidKeeperCode)
		assert.EqualError(t, err, "Invalid Keeper Code")
	}

	stored, err := env.uc.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusInTransit, stored.Status)
	assert.Len(t, stored.Logs, 1, "los intentos fallidos no dejan historial")

	target, err := env.stocks.Get(branchNorte, productParacetamol)
	require.NoError(t, err)
	assert.Empty(t, target.Batches, "un código incorrecto no crea lotes")

	// El código correcto sigue funcionando después de fallar: sin bloqueo.
	_, err = env.uc.VerifyKeeper(context.Background(), tr.ID, "111111", "keeper-1")
	assert.NoError(t, err)
}

func TestVerifyKeeper_TrasladoInexistente(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.uc.VerifyKeeper(context.Background(), "no-existe", "111111", "keeper-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// El código del controlador NO sirve para el paso del bodeguero.
func TestVerifyKeeper_CodigoDelControladorNoSirve(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	tr, err := env.uc.Dispatch(context.Background(), testUser, dispatchRequest(30))
	require.NoError(t, err)

	_, err = env.uc.VerifyKeeper(context.Background(), tr.ID, "222222", "keeper-1")
	assert.ErrorIs(t, err, domain.ErrInvalidKeeperCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Verificación del controlador (paso 2)
// ──────────────────────────────────────────────────────────────────────────────

func TestVerifyController_CompletaElFlujo(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	ctx := context.Background()

	tr, err := env.uc.Dispatch(ctx, testUser, dispatchRequest(30))
	require.NoError(t, err)
	_, err = env.uc.VerifyKeeper(ctx, tr.ID, "111111", "keeper-1")
	require.NoError(t, err)

	out, err := env.uc.VerifyController(ctx, tr.ID, "222222", "controller-1")
	require.NoError(t, err)

	assert.Equal(t, entity.TransferStatusCompleted, out.Status)
	assert.Equal(t, entity.StepDone, out.Step)

	// Historial completo: exactamente 3 entradas en orden.
	require.Len(t, out.Logs, 3)
	assert.Equal(t, "Dispatched", out.Logs[0].Action)
	assert.Equal(t, "Store Keeper", out.Logs[1].Role)
	assert.Equal(t, "Confirmed Receipt", out.Logs[1].Action)
	assert.Equal(t, "Inventory Controller", out.Logs[2].Role)
	assert.Equal(t, "Verified & Made Available for Sale", out.Logs[2].Action)

	// Solo ahora el stock en destino es vendible.
	target, err := env.stocks.Get(branchNorte, productParacetamol)
	require.NoError(t, err)
	require.Len(t, target.Batches, 1)
	assert.Equal(t, entity.BatchStatusActive, target.Batches[0].Status)
	assert.True(t, target.SellableQuantity().Equal(decimal.NewFromInt(30)))
}

// El segundo paso no puede correr antes que el primero: el orden es estricto.
func TestVerifyController_AntesDelBodeguero(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	tr, err := env.uc.Dispatch(context.Background(), testUser, dispatchRequest(30))
	require.NoError(t, err)

	_, err = env.uc.VerifyController(context.Background(), tr.ID, "222222", "controller-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransferState,
		"el controlador no puede verificar un traslado IN_TRANSIT, aunque el código sea correcto")
}

func TestVerifyController_CodigoIncorrectoNoMuta(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	ctx := context.Background()

	tr, err := env.uc.Dispatch(ctx, testUser, dispatchRequest(30))
	require.NoError(t, err)
	_, err = env.uc.VerifyKeeper(ctx, tr.ID, "111111", "keeper-1")
	require.NoError(t, err)

	_, err = env.uc.VerifyController(ctx, tr.ID, "111111", "controller-1")
	assert.ErrorIs(t, err, domain.ErrInvalidControllerCode,
		"el código del bodeguero no sirve para el paso del controlador")
	assert.EqualError(t, err, "Invalid Controller Code")

	target, err := env.stocks.Get(branchNorte, productParacetamol)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusOnHold, target.Batches[0].Status,
		"con código incorrecto el lote sigue en cuarentena")

	stored, err := env.uc.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusReceivedKeeper, stored.Status)
	assert.Len(t, stored.Logs, 2)
}

// Un traslado COMPLETED es terminal: repetir cualquier verificación falla por
// estado, no por código, y no duplica lotes ni historial.
func TestVerifyController_CompletedEsTerminal(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	ctx := context.Background()

	tr, err := env.uc.Dispatch(ctx, testUser, dispatchRequest(30))
	require.NoError(t, err)
	_, err = env.uc.VerifyKeeper(ctx, tr.ID, "111111", "keeper-1")
	require.NoError(t, err)
	_, err = env.uc.VerifyController(ctx, tr.ID, "222222", "controller-1")
	require.NoError(t, err)

	_, err = env.uc.VerifyController(ctx, tr.ID, "222222", "controller-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransferState)
	_, err = env.uc.VerifyKeeper(ctx, tr.ID, "111111", "keeper-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransferState)

	stored, err := env.uc.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Logs, 3)

	target, err := env.stocks.Get(branchNorte, productParacetamol)
	require.NoError(t, err)
	assert.Len(t, target.Batches, 1, "las repeticiones no duplican lotes")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: verificaciones duplicadas
// ──────────────────────────────────────────────────────────────────────────────

// Dos bodegueros ingresan el código correcto a la vez: la transacción con
// bloqueo de fila garantiza exactamente un ganador; el perdedor recibe
// conflicto de estado y los lotes no se duplican.
func TestVerifyKeeper_ConcurrenteUnSoloGanador(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	tr, err := env.uc.Dispatch(context.Background(), testUser, dispatchRequest(30))
	require.NoError(t, err)

	const intentos = 8
	errs := make(chan error, intentos)
	var wg sync.WaitGroup
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.uc.VerifyKeeper(context.Background(), tr.ID, "111111", "keeper-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	exitos, conflictos := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			exitos++
		case errors.Is(err, domain.ErrInvalidTransferState):
			conflictos++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, exitos, "exactamente una verificación debe ganar")
	assert.Equal(t, intentos-1, conflictos, "las demás deben fallar por estado")

	target, err := env.stocks.Get(branchNorte, productParacetamol)
	require.NoError(t, err)
	assert.Len(t, target.Batches, 1, "los lotes no se duplican bajo concurrencia")

	stored, err := env.uc.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Logs, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado y visibilidad por sucursal
// ──────────────────────────────────────────────────────────────────────────────

func TestList_CasaMatrizVeTodo(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	ctx := context.Background()

	_, err := env.uc.Dispatch(ctx, testUser, dispatchRequest(10))
	require.NoError(t, err)
	otra := dispatchRequest(10)
	otra.TargetBranchID = branchSur
	_, err = env.uc.Dispatch(ctx, testUser, otra)
	require.NoError(t, err)

	todos, err := env.uc.List(ctx, branchCentral, repository.TransferFilter{}, 50, 0)
	require.NoError(t, err)
	assert.Len(t, todos, 2, "la casa matriz ve todos los traslados")

	// Sucursal Norte solo ve el traslado donde es destino.
	norte, err := env.uc.List(ctx, branchNorte, repository.TransferFilter{}, 50, 0)
	require.NoError(t, err)
	require.Len(t, norte, 1)
	assert.Equal(t, branchNorte, norte[0].TargetBranchID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guía de traslado (PDF)
// ──────────────────────────────────────────────────────────────────────────────

func TestTransferNotePDF_GeneraDocumento(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveStock(t, branchCentral, productParacetamol, 100)
	tr, err := env.uc.Dispatch(context.Background(), testUser, dispatchRequest(10))
	require.NoError(t, err)

	out, err := env.uc.TransferNotePDF(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestTransferNotePDF_TrasladoInexistente(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.uc.TransferNotePDF(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
