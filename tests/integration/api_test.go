package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "marketplace-ledger/internal/adapter/http/handler"
	redisStorage "marketplace-ledger/internal/adapter/storage/redis"
	"marketplace-ledger/internal/core/domain"
	"marketplace-ledger/internal/core/ports"
	"marketplace-ledger/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminUsername = "market_admin"
	adminPassword = "AdminPass123!"

	defaultMinTransferValue = 100
)

// testApp wires the real service stack against in-memory repositories
// and a miniredis instance, exposing it over a live HTTP server.
type testApp struct {
	server     *httptest.Server
	redis      *miniredis.Miniredis
	client     *goredis.Client
	ledger     ports.LedgerService
	adminID    uuid.UUID
	treasuryID uuid.UUID
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	accountRepo := newInMemoryAccountRepo()
	balanceRepo := newInMemoryBalanceRepo()
	journalRepo := newInMemoryJournalRepo()
	transactor := newInMemoryTransactor()

	paramsStore := redisStorage.NewParamsStore(client, defaultMinTransferValue)
	rateLimitStore := redisStorage.NewRateLimitStore(client)

	log := zerolog.Nop()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("integration-test-secret-0123456789", time.Hour, "marketplace-ledger-test")
	authSvc := service.NewAuthService(accountRepo, balanceRepo, hashSvc, tokenSvc)
	ledgerSvc := service.NewLedgerService(balanceRepo, transactor, log)

	admin, err := authSvc.Register(ctx, adminUsername, adminPassword)
	require.NoError(t, err)
	treasury, err := authSvc.Register(ctx, "treasury", uuid.NewString())
	require.NoError(t, err)

	treasurySvc := service.NewTreasury(ledgerSvc, treasury.ID)
	market := domain.NewMarket(admin.ID, domain.MarketConfig{PublicKey: "initial-key"})
	marketSvc := service.NewMarketService(market, treasurySvc, paramsStore, journalRepo, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		MarketSvc:      marketSvc,
		LedgerSvc:      ledgerSvc,
		Treasury:       treasurySvc,
		TokenSvc:       tokenSvc,
		NetworkParams:  paramsStore,
		JournalRepo:    journalRepo,
		ParamsStore:    paramsStore,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(client)},
		Logger:         log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:     server,
		redis:      mr,
		client:     client,
		ledger:     ledgerSvc,
		adminID:    admin.ID,
		treasuryID: treasury.ID,
	}
}

func (app *testApp) close() {
	app.server.Close()
	app.client.Close()
}

// request performs an HTTP call against the test server and decodes the
// response envelope. The body may be nil.
func (app *testApp) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, app.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func data(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	d, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "expected data object in envelope: %v", envelope)
	return d
}

func errCode(t *testing.T, envelope map[string]any) string {
	t.Helper()
	e, ok := envelope["error"].(map[string]any)
	require.True(t, ok, "expected error object in envelope: %v", envelope)
	code, _ := e["code"].(string)
	return code
}

// registerAndLogin creates a fresh account over HTTP and returns its ID
// and a valid JWT.
func (app *testApp) registerAndLogin(t *testing.T, username, password string) (uuid.UUID, string) {
	t.Helper()

	status, envelope := app.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, status, "register failed: %v", envelope)
	id, err := uuid.Parse(data(t, envelope)["account_id"].(string))
	require.NoError(t, err)

	return id, app.login(t, username, password)
}

func (app *testApp) login(t *testing.T, username, password string) string {
	t.Helper()

	status, envelope := app.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "login failed: %v", envelope)
	token, _ := data(t, envelope)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (app *testApp) topup(t *testing.T, token string, amount uint64) {
	t.Helper()
	status, envelope := app.request(t, http.MethodPost, "/api/v1/wallets/topup", token, map[string]any{
		"amount": amount,
	})
	require.Equal(t, http.StatusOK, status, "topup failed: %v", envelope)
}

func (app *testApp) balanceOf(t *testing.T, account uuid.UUID) uint64 {
	t.Helper()
	amount, err := app.ledger.Balance(context.Background(), account)
	require.NoError(t, err)
	return amount
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id, token := app.registerAndLogin(t, "alice", "StrongPass123!")
	assert.NotEqual(t, uuid.Nil, id)
	assert.NotEmpty(t, token)

	// A fresh account starts with a zero balance.
	status, envelope := app.request(t, http.MethodGet, "/api/v1/wallets/balance", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, data(t, envelope)["balance"])
}

func TestLoginWrongCredentials(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerAndLogin(t, "bob", "StrongPass123!")

	status, envelope := app.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "bob",
		"password": "WrongPass456!",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "AUTH_001", errCode(t, envelope))
}

func TestDuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerAndLogin(t, "carol", "StrongPass123!")

	status, envelope := app.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "carol",
		"password": "AnotherPass123!",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "AUTH_002", errCode(t, envelope))
}

func TestUnauthenticatedMarketAccess(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// State queries are public.
	status, _ := app.request(t, http.MethodGet, "/api/v1/market/products", "", nil)
	assert.Equal(t, http.StatusOK, status)

	// Mutations and purchases require an identity.
	status, _ = app.request(t, http.MethodPost, "/api/v1/market/products", "", map[string]any{
		"name":     "Widget",
		"quantity": 10,
		"price":    1000,
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = app.request(t, http.MethodPost, "/api/v1/market/purchases", "", map[string]any{
		"name":             "Widget",
		"quantity":         1,
		"attached_value":   1000,
		"delivery_address": "1 Elm St",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

// TestFullPurchaseFlow walks the whole happy path end to end: the admin
// tunes the transfer floor and lists a product, a buyer funds a wallet
// and buys with overpayment, and every ledger movement is verified.
func TestFullPurchaseFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.login(t, adminUsername, adminPassword)
	buyerID, buyerToken := app.registerAndLogin(t, "dave", "StrongPass123!")

	// Admin raises the minimum transfer value.
	status, envelope := app.request(t, http.MethodPut, "/api/v1/params/min-transfer-value", adminToken, map[string]any{
		"value": 200,
	})
	require.Equal(t, http.StatusOK, status, "set min transfer value: %v", envelope)

	status, envelope = app.request(t, http.MethodGet, "/api/v1/params/min-transfer-value", buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 200, data(t, envelope)["value"])

	// Admin lists a product priced above the floor.
	status, envelope = app.request(t, http.MethodPost, "/api/v1/market/products", adminToken, map[string]any{
		"name":     "Widget",
		"quantity": 100,
		"price":    1000,
	})
	require.Equal(t, http.StatusCreated, status, "add product: %v", envelope)
	added := data(t, envelope)
	assert.Equal(t, "Widget", added["name"])
	assert.EqualValues(t, 100, added["quantity"])
	assert.EqualValues(t, 1000, added["price"])

	// Buyer funds a wallet and buys 2 units, overpaying by 500.
	app.topup(t, buyerToken, 5000)

	status, envelope = app.request(t, http.MethodPost, "/api/v1/market/purchases", buyerToken, map[string]any{
		"name":             "Widget",
		"quantity":         2,
		"attached_value":   2500,
		"delivery_address": "10 Main St",
	})
	require.Equal(t, http.StatusOK, status, "buy: %v", envelope)
	bought := data(t, envelope)
	assert.Equal(t, "Widget", bought["name"])
	assert.EqualValues(t, 2, bought["quantity"])
	assert.Equal(t, buyerID.String(), bought["buyer"])

	// The change (500) came back; the market kept exactly the total (2000).
	assert.EqualValues(t, 3000, app.balanceOf(t, buyerID))
	assert.EqualValues(t, 2000, app.balanceOf(t, app.treasuryID))

	// Stock went down by the purchased quantity.
	status, envelope = app.request(t, http.MethodGet, "/api/v1/market/products", buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	products := data(t, envelope)["products"].([]any)
	require.Len(t, products, 1)
	widget := products[0].(map[string]any)
	assert.EqualValues(t, 98, widget["quantity"])

	// The purchase is on record for the buyer.
	status, envelope = app.request(t, http.MethodGet, "/api/v1/market/purchases/me", buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	purchases := data(t, envelope)["purchases"].([]any)
	require.Len(t, purchases, 1)
	purchase := purchases[0].(map[string]any)
	assert.Equal(t, "Widget", purchase["name"])
	assert.Equal(t, string(domain.PurchaseStatusPaidFor), purchase["status"])
	assert.Equal(t, "10 Main St", purchase["delivery_address"])

	// The same history is publicly readable by actor ID.
	status, envelope = app.request(t, http.MethodGet, "/api/v1/market/purchases/"+buyerID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, data(t, envelope)["purchases"].([]any), 1)

	// And in the journal, with the total and change broken out.
	status, envelope = app.request(t, http.MethodGet, "/api/v1/wallets/journal", buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	journal := data(t, envelope)["entries"].([]any)
	require.Len(t, journal, 1)
	entry := journal[0].(map[string]any)
	assert.EqualValues(t, 2000, entry["total"])
	assert.EqualValues(t, 500, entry["change"])
}

func TestBuyFailureRefundsAttachedValue(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.login(t, adminUsername, adminPassword)
	buyerID, buyerToken := app.registerAndLogin(t, "erin", "StrongPass123!")

	status, envelope := app.request(t, http.MethodPost, "/api/v1/market/products", adminToken, map[string]any{
		"name":     "Gadget",
		"quantity": 3,
		"price":    500,
	})
	require.Equal(t, http.StatusCreated, status, "add product: %v", envelope)

	app.topup(t, buyerToken, 10000)

	// Ordering more than is in stock fails after the value was escrowed;
	// the dispatcher must hand the full attached value back.
	status, envelope = app.request(t, http.MethodPost, "/api/v1/market/purchases", buyerToken, map[string]any{
		"name":             "Gadget",
		"quantity":         10,
		"attached_value":   5000,
		"delivery_address": "22 Side Rd",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "MKT_005", errCode(t, envelope))

	assert.EqualValues(t, 10000, app.balanceOf(t, buyerID))
	assert.EqualValues(t, 0, app.balanceOf(t, app.treasuryID))

	// Underpaying is rejected the same way.
	status, envelope = app.request(t, http.MethodPost, "/api/v1/market/purchases", buyerToken, map[string]any{
		"name":             "Gadget",
		"quantity":         2,
		"attached_value":   999,
		"delivery_address": "22 Side Rd",
	})
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "MKT_006", errCode(t, envelope))
	assert.EqualValues(t, 10000, app.balanceOf(t, buyerID))
}

func TestBuyWithInsufficientWalletBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.login(t, adminUsername, adminPassword)
	_, buyerToken := app.registerAndLogin(t, "frank", "StrongPass123!")

	status, _ := app.request(t, http.MethodPost, "/api/v1/market/products", adminToken, map[string]any{
		"name":     "Trinket",
		"quantity": 5,
		"price":    300,
	})
	require.Equal(t, http.StatusCreated, status)

	app.topup(t, buyerToken, 100)

	// The wallet cannot cover the attached value, so the escrow itself fails.
	status, envelope := app.request(t, http.MethodPost, "/api/v1/market/purchases", buyerToken, map[string]any{
		"name":             "Trinket",
		"quantity":         1,
		"attached_value":   300,
		"delivery_address": "1 Elm St",
	})
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "LED_001", errCode(t, envelope))
}

func TestNonAdminCannotMutateCatalog(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, buyerToken := app.registerAndLogin(t, "grace", "StrongPass123!")

	status, envelope := app.request(t, http.MethodPost, "/api/v1/market/products", buyerToken, map[string]any{
		"name":     "Widget",
		"quantity": 10,
		"price":    1000,
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "MKT_001", errCode(t, envelope))

	status, envelope = app.request(t, http.MethodPut, "/api/v1/market/config", buyerToken, map[string]any{
		"public_key": "hijacked",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "MKT_001", errCode(t, envelope))

	status, envelope = app.request(t, http.MethodPut, "/api/v1/params/min-transfer-value", buyerToken, map[string]any{
		"value": 1,
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "MKT_001", errCode(t, envelope))
}

func TestPriceBelowFloorRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.login(t, adminUsername, adminPassword)

	status, envelope := app.request(t, http.MethodPut, "/api/v1/params/min-transfer-value", adminToken, map[string]any{
		"value": 1000,
	})
	require.Equal(t, http.StatusOK, status, "set min transfer value: %v", envelope)

	status, envelope = app.request(t, http.MethodPost, "/api/v1/market/products", adminToken, map[string]any{
		"name":     "Penny Candy",
		"quantity": 100,
		"price":    999,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "MKT_007", errCode(t, envelope))

	// Lowering the floor makes the same listing acceptable: the floor is
	// read fresh on every call.
	status, _ = app.request(t, http.MethodPut, "/api/v1/params/min-transfer-value", adminToken, map[string]any{
		"value": 500,
	})
	require.Equal(t, http.StatusOK, status)

	status, envelope = app.request(t, http.MethodPost, "/api/v1/market/products", adminToken, map[string]any{
		"name":     "Penny Candy",
		"quantity": 100,
		"price":    999,
	})
	assert.Equal(t, http.StatusCreated, status, "add product after floor drop: %v", envelope)
}

func TestDeleteProductPreservesHistory(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.login(t, adminUsername, adminPassword)
	_, buyerToken := app.registerAndLogin(t, "heidi", "StrongPass123!")

	status, _ := app.request(t, http.MethodPost, "/api/v1/market/products", adminToken, map[string]any{
		"name":     "Keepsake",
		"quantity": 10,
		"price":    400,
	})
	require.Equal(t, http.StatusCreated, status)

	app.topup(t, buyerToken, 1000)

	status, envelope := app.request(t, http.MethodPost, "/api/v1/market/purchases", buyerToken, map[string]any{
		"name":             "Keepsake",
		"quantity":         1,
		"attached_value":   400,
		"delivery_address": "5 Oak Ave",
	})
	require.Equal(t, http.StatusOK, status, "buy: %v", envelope)

	status, _ = app.request(t, http.MethodDelete, "/api/v1/market/products/Keepsake", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	// The catalog entry is gone but the purchase record survives.
	status, envelope = app.request(t, http.MethodGet, "/api/v1/market/products", buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, data(t, envelope)["products"])

	status, envelope = app.request(t, http.MethodGet, "/api/v1/market/purchases/me", buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	purchases := data(t, envelope)["purchases"].([]any)
	require.Len(t, purchases, 1)
	assert.Equal(t, "Keepsake", purchases[0].(map[string]any)["name"])
}

func TestUpdateProductPatchSemantics(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.login(t, adminUsername, adminPassword)

	status, _ := app.request(t, http.MethodPost, "/api/v1/market/products", adminToken, map[string]any{
		"name":     "Widget",
		"quantity": 10,
		"price":    1000,
	})
	require.Equal(t, http.StatusCreated, status)

	// Patch only the quantity; the response echoes exactly the patch.
	status, envelope := app.request(t, http.MethodPatch, "/api/v1/market/products/Widget", adminToken, map[string]any{
		"quantity": 50,
	})
	require.Equal(t, http.StatusOK, status, "patch: %v", envelope)
	patched := data(t, envelope)
	assert.EqualValues(t, 50, patched["quantity"])
	_, priceEchoed := patched["price"]
	assert.False(t, priceEchoed, "untouched field must not be echoed")

	// The absolute state reflects the patch with the price unchanged.
	status, envelope = app.request(t, http.MethodGet, "/api/v1/market/products", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	products := data(t, envelope)["products"].([]any)
	require.Len(t, products, 1)
	widget := products[0].(map[string]any)
	assert.EqualValues(t, 50, widget["quantity"])
	assert.EqualValues(t, 1000, widget["price"])

	// Unknown products are a 404, not a silent no-op.
	status, envelope = app.request(t, http.MethodPatch, "/api/v1/market/products/Ghost", adminToken, map[string]any{
		"quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "MKT_003", errCode(t, envelope))
}

func TestMarketStateSnapshot(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.login(t, adminUsername, adminPassword)

	for i, name := range []string{"zeta", "alpha", "mu"} {
		status, _ := app.request(t, http.MethodPost, "/api/v1/market/products", adminToken, map[string]any{
			"name":     name,
			"quantity": 10 + i,
			"price":    1000,
		})
		require.Equal(t, http.StatusCreated, status)
	}

	status, envelope := app.request(t, http.MethodGet, "/api/v1/market", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	snapshot := data(t, envelope)
	assert.Equal(t, app.adminID.String(), snapshot["admin"])

	products := snapshot["products"].([]any)
	require.Len(t, products, 3)
	var names []string
	for _, p := range products {
		names = append(names, fmt.Sprint(p.(map[string]any)["name"]))
	}
	assert.Equal(t, []string{"alpha", "mu", "zeta"}, names)
}
