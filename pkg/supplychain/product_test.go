package supplychain

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cloverErrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/ledger"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
)

func TestCreateProductConfirmsLedgerSync(t *testing.T) {
	ts := newTestService(t)

	product, err := ts.CreateProduct(actorCtx(roles.RoleRegulator), models.CreateProductRequest{
		Name:        "Free Range Chicken",
		Description: "Pasture raised broilers",
	})
	require.NoError(t, err)
	assert.True(t, product.IsActive, "new products start active")
	assert.Equal(t, models.SyncStatusPending, product.SyncStatus)

	ts.store.mu.Lock()
	stored := ts.store.products[0]
	ts.store.mu.Unlock()
	assert.Equal(t, models.SyncStatusConfirmed, stored.SyncStatus)
	require.NotNil(t, stored.LedgerTxID)
	assert.Equal(t, []string{ledger.FuncCreateProduct}, ts.client.submitted())
}

func TestCreateProductRequiresName(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.CreateProduct(actorCtx(roles.RoleRegulator), models.CreateProductRequest{Name: "  "})
	assert.True(t, cloverErrors.IsInvalidInput(err))
}

func TestCreateProductCapability(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.CreateProduct(actorCtx(roles.RoleFarmer), models.CreateProductRequest{Name: "Eggs"})
	assert.True(t, cloverErrors.IsUnauthorized(err))

	_, err = ts.CreateProduct(actorCtx(roles.RoleAdmin), models.CreateProductRequest{Name: "Eggs"})
	assert.NoError(t, err)
}

func TestCreateProductRequiresActorRole(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.CreateProduct(context.Background(), models.CreateProductRequest{Name: "Eggs"})
	assert.True(t, cloverErrors.IsUnauthorized(err))
}

func TestUpdateProductStaysLocal(t *testing.T) {
	ts := newTestService(t)
	product := ts.seedProduct(t)
	before := len(ts.client.submitted())

	name := "Heritage Chicken"
	updated, err := ts.UpdateProduct(actorCtx(roles.RoleRegulator), product.ID, models.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Heritage Chicken", updated.Name)

	assert.Len(t, ts.client.submitted(), before, "product updates never reach the ledger")

	ts.store.mu.Lock()
	stored := ts.store.products[0]
	ts.store.mu.Unlock()
	assert.Equal(t, models.SyncStatusConfirmed, stored.SyncStatus, "the creation sync record is untouched")
}

func TestUpdateProductRejectsBlankName(t *testing.T) {
	ts := newTestService(t)
	product := ts.seedProduct(t)

	name := ""
	_, err := ts.UpdateProduct(actorCtx(roles.RoleRegulator), product.ID, models.UpdateProductRequest{Name: &name})
	assert.True(t, cloverErrors.IsInvalidInput(err))
}

func TestUpdateProductNotFound(t *testing.T) {
	ts := newTestService(t)

	name := "Ghost"
	_, err := ts.UpdateProduct(actorCtx(roles.RoleRegulator), uuid.New(), models.UpdateProductRequest{Name: &name})
	assert.True(t, cloverErrors.IsNotFound(err))
}

func TestSetProductActiveToggles(t *testing.T) {
	ts := newTestService(t)
	product := ts.seedProduct(t)
	ctx := actorCtx(roles.RoleRegulator)

	deactivated, err := ts.SetProductActive(ctx, product.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	reactivated, err := ts.SetProductActive(ctx, product.ID, true)
	require.NoError(t, err)
	assert.True(t, reactivated.IsActive)
}

func TestSetProductActiveNotFound(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.SetProductActive(actorCtx(roles.RoleRegulator), uuid.New(), false)
	assert.True(t, cloverErrors.IsNotFound(err))
}

func TestListProductsActiveOnly(t *testing.T) {
	ts := newTestService(t)
	ctx := actorCtx(roles.RoleRegulator)

	active := ts.seedProduct(t)
	retired, err := ts.CreateProduct(ctx, models.CreateProductRequest{Name: "Retired Line"})
	require.NoError(t, err)
	_, err = ts.SetProductActive(ctx, retired.ID, false)
	require.NoError(t, err)

	items, total, err := ts.ListProducts(ctx, true, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, active.ID, items[0].ID)

	_, total, err = ts.ListProducts(ctx, false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestGetProductNotFound(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.GetProduct(actorCtx(roles.RoleRegulator), uuid.New())
	assert.True(t, cloverErrors.IsNotFound(err))
}
