package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	domainRepo "github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/internal/infrastructure/gateway"
	"github.com/sangkips/brewline-api/internal/infrastructure/queue"
	"github.com/sangkips/brewline-api/internal/infrastructure/repository"
	"github.com/sangkips/brewline-api/internal/testutil"
	"github.com/sangkips/brewline-api/pkg/logger"
	"github.com/sangkips/brewline-api/pkg/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testServerKey = "SB-Mid-server-test"

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*gateway.ChargeResult)
	return r, args.Error(1)
}

type mockInvoices struct {
	mock.Mock
}

func (m *mockInvoices) SendInvoice(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishNewOrder(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

type harness struct {
	db        *gorm.DB
	tx        domainRepo.Transactor
	orders    domainRepo.OrderRepository
	payments  domainRepo.PaymentRepository
	materials domainRepo.MaterialRepository
	queue     *queue.MemoryDelayQueue
	gateway   *mockGateway
	invoices  *mockInvoices
	events    *mockPublisher

	pricing  *PricingEngine
	bom      *BOMExpander
	ledger   *InventoryLedger
	payment  *PaymentOrchestrator
	expiry   *ExpiryService
	webhook  *WebhookProcessor
	orderSvc *OrderService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewDB(t)
	log := logger.Discard()
	tx := repository.NewTransactor(db)

	h := &harness{
		db:        db,
		tx:        tx,
		orders:    repository.NewOrderRepository(db),
		payments:  repository.NewPaymentRepository(db),
		materials: repository.NewMaterialRepository(db),
		queue:     queue.NewMemoryDelayQueue(),
		gateway:   &mockGateway{},
		invoices:  &mockInvoices{},
		events:    &mockPublisher{},
	}

	h.pricing = NewPricingEngine(repository.NewCatalogRepository(db))
	h.bom = NewBOMExpander(repository.NewRecipeRepository(db), log)
	h.ledger = NewInventoryLedger(tx, h.materials, log)
	h.expiry = NewExpiryService(tx, h.payments, h.orders, h.queue, ExpiryOptions{
		Window:     15 * time.Minute,
		BatchSize:  10,
		MaxRetries: 3,
	}, log)
	h.payment = NewPaymentOrchestrator(tx, h.payments, h.orders, h.bom, h.ledger, h.gateway, h.expiry, 15*time.Minute, log)
	h.webhook = NewWebhookProcessor(testServerKey, tx, h.payments, h.orders, h.bom, h.ledger, h.invoices, h.events, log)
	h.orderSvc = NewOrderService(tx, h.orders, h.payments, h.pricing, h.ledger, h.payment, log)
	return h
}

// menu is a product A using 2 of material X per cup and an add-on B using
// 1 of material Y per shot.
type menu struct {
	product *entity.Product
	addon   *entity.Addon
	x       *entity.Material
	y       *entity.Material
}

func seedMenu(t *testing.T, db *gorm.DB, stockX, stockY string) menu {
	t.Helper()
	m := menu{
		product: testutil.CreateProduct(t, db, "Latte", "25.00", "8.00"),
		addon:   testutil.CreateAddon(t, db, "Extra Shot", "5.00", "1.50"),
		x:       testutil.CreateMaterial(t, db, "Milk", stockX),
		y:       testutil.CreateMaterial(t, db, "Espresso", stockY),
	}
	testutil.ProductRecipe(t, db, m.product.ID, nil, m.x.ID, "2")
	testutil.AddonRecipe(t, db, m.addon.ID, m.y.ID, "1")
	return m
}

func (h *harness) createGatewayOrder(t *testing.T, m menu, channel string, requester Requester) *entity.Order {
	t.Helper()
	h.gateway.On("CreateCharge", mock.Anything, mock.Anything).
		Return(&gateway.ChargeResult{Token: "snap-token", RedirectURL: "https://pay.example/snap"}, nil).Once()

	res, err := h.orderSvc.CreateOrder(context.Background(), &CreateOrderInput{
		Requester:     requester,
		Channel:       channel,
		PaymentMethod: "QRIS",
		Items: []LineInput{{
			ProductID: m.product.ID,
			Quantity:  2,
			Addons:    []LineAddonInput{{AddonID: m.addon.ID, Quantity: 3}},
		}},
	})
	require.NoError(t, err)
	return res.Order
}

// signedNotification builds a notification the processor will accept.
func signedNotification(orderID uuid.UUID, status, fraud, gross string) gateway.Notification {
	ref := utils.OrderReference(orderID)
	return gateway.Notification{
		OrderID:           ref,
		StatusCode:        "200",
		GrossAmount:       gross,
		SignatureKey:      gateway.Signature(ref, "200", gross, testServerKey),
		TransactionStatus: status,
		FraudStatus:       fraud,
	}
}

func (h *harness) reload(t *testing.T, orderID uuid.UUID) *entity.Order {
	t.Helper()
	order, err := h.orders.GetWithDetails(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, order)
	return order
}

func (h *harness) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

func staff() Requester {
	return Requester{Role: enum.CustomerRoleStaff}
}

func customer(name string) Requester {
	id := uuid.New()
	return Requester{CustomerID: &id, Name: name, Email: name + "@example.com", Role: enum.CustomerRoleRetailBuyer}
}

func signatureFor(n gateway.Notification) string {
	return gateway.Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey)
}
