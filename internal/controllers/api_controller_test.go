package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gxd/internal/models"
	"gxd/internal/services"
	"gxd/internal/testutil"
)

type apiFixture struct {
	ctrl      *ApiController
	accounts  services.AccountServiceInterface
	gifts     services.GiftServiceInterface
	logger    *testutil.MockLogger
	cache     *testutil.MockCache
	persister *testutil.MockPersister
	metrics   *testutil.MockMetrics
}

func newApiFixture() *apiFixture {
	catalog := models.NewCatalog([]models.CatalogItem{
		{ID: "c1", Name: "Candy Cane", Icon: "🍬", Cost: 5},
		{ID: "c3", Name: "Teddy Bear", Icon: "🧸", Cost: 20},
	})
	accounts := services.NewAccountService()
	gifts := services.NewGiftService(accounts, catalog)
	f := &apiFixture{
		accounts:  accounts,
		gifts:     gifts,
		logger:    &testutil.MockLogger{},
		cache:     testutil.NewMockCache(),
		persister: &testutil.MockPersister{},
		metrics:   &testutil.MockMetrics{},
	}
	f.ctrl = NewApiController(f.logger, accounts, gifts, f.cache, f.persister, f.metrics)
	return f
}

func doRequest(handler http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func (f *apiFixture) register(t *testing.T, username, password string) {
	t.Helper()
	rr := doRequest(f.ctrl.Register, http.MethodPost, `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestApiController_Register(t *testing.T) {
	f := newApiFixture()

	rr := doRequest(f.ctrl.Register, http.MethodPost, `{"username":"Alice","password":"secret"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	body := decodeResponse(t, rr)
	assert.Equal(t, true, body["ok"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Alice", user["username"])
	assert.Equal(t, float64(0), user["coins"])
	assert.Equal(t, 1, f.persister.CallCount())
}

func TestApiController_RegisterValidation(t *testing.T) {
	f := newApiFixture()

	rr := doRequest(f.ctrl.Register, http.MethodPost, `{"username":"","password":"secret"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(f.ctrl.Register, http.MethodPost, `{"username":"Alice","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, 0, f.persister.CallCount())
}

func TestApiController_RegisterDuplicateConflict(t *testing.T) {
	f := newApiFixture()
	f.register(t, "Alice", "secret")

	rr := doRequest(f.ctrl.Register, http.MethodPost, `{"username":"ALICE","password":"other"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	body := decodeResponse(t, rr)
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["msg"])
}

func TestApiController_MalformedBody(t *testing.T) {
	f := newApiFixture()

	rr := doRequest(f.ctrl.Register, http.MethodPost, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApiController_Login(t *testing.T) {
	f := newApiFixture()
	f.register(t, "Alice", "secret")
	f.accounts.Logout()

	rr := doRequest(f.ctrl.Login, http.MethodPost, `{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeResponse(t, rr)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Alice", user["username"])
}

func TestApiController_LoginWrongPassword(t *testing.T) {
	f := newApiFixture()
	f.register(t, "Alice", "secret")
	f.accounts.Logout()

	rr := doRequest(f.ctrl.Login, http.MethodPost, `{"username":"Alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestApiController_LoginUnknownAccount(t *testing.T) {
	f := newApiFixture()

	rr := doRequest(f.ctrl.Login, http.MethodPost, `{"username":"ghost","password":"x"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApiController_SessionLifecycle(t *testing.T) {
	f := newApiFixture()

	rr := doRequest(f.ctrl.Session, http.MethodGet, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	f.register(t, "Alice", "secret")
	rr = doRequest(f.ctrl.Session, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeResponse(t, rr)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Alice", user["username"])

	rr = doRequest(f.ctrl.Logout, http.MethodPost, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(f.ctrl.Session, http.MethodGet, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestApiController_GetCatalogCaches(t *testing.T) {
	f := newApiFixture()

	rr := doRequest(f.ctrl.GetCatalog, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Candy Cane")

	cached, ok := f.cache.Get("catalog")
	require.True(t, ok)

	rr = doRequest(f.ctrl.GetCatalog, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, string(cached), rr.Body.String())
}

func TestApiController_SendGift(t *testing.T) {
	f := newApiFixture()
	f.register(t, "Bob", "pw")
	f.register(t, "Alice", "secret")
	_, err := f.accounts.AdjustCoins("alice", 50)
	require.NoError(t, err)
	flushed := f.persister.CallCount()

	rr := doRequest(f.ctrl.SendGift, http.MethodPost, `{"giftId":"c1","to":"Bob","message":"merry christmas"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	body := decodeResponse(t, rr)
	entry := body["entry"].(map[string]interface{})
	assert.Equal(t, "c1", entry["giftId"])
	assert.Equal(t, "Alice", entry["sender"])
	assert.Equal(t, "merry christmas", entry["message"])
	assert.Equal(t, false, entry["opened"])

	bob, ok := f.accounts.Get("bob")
	require.True(t, ok)
	assert.Len(t, bob.Inbox, 1)

	alice, _ := f.accounts.Get("alice")
	assert.Equal(t, 45, alice.Coins)

	assert.Equal(t, 1, f.metrics.GiftsSent)
	assert.Equal(t, flushed+1, f.persister.CallCount())
}

func TestApiController_SendGiftErrors(t *testing.T) {
	f := newApiFixture()

	rr := doRequest(f.ctrl.SendGift, http.MethodPost, `{"giftId":"c1","to":"Bob"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	f.register(t, "Bob", "pw")
	f.register(t, "Alice", "secret")

	rr = doRequest(f.ctrl.SendGift, http.MethodPost, `{"giftId":"c1","to":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(f.ctrl.SendGift, http.MethodPost, `{"giftId":"c99","to":"Bob"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(f.ctrl.SendGift, http.MethodPost, `{"giftId":"c3","to":"Bob"}`)
	assert.Equal(t, http.StatusPaymentRequired, rr.Code)

	assert.Equal(t, 0, f.metrics.GiftsSent)
}

func TestApiController_OpenGiftLocked(t *testing.T) {
	f := newApiFixture()
	f.register(t, "Bob", "pw")
	f.register(t, "Alice", "secret")
	_, err := f.accounts.AdjustCoins("alice", 50)
	require.NoError(t, err)

	rr := doRequest(f.ctrl.SendGift, http.MethodPost, `{"giftId":"c1","to":"Bob"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	entry := decodeResponse(t, rr)["entry"].(map[string]interface{})
	giftID := entry["id"].(string)

	_, err = f.accounts.Login("Bob", "pw")
	require.NoError(t, err)

	rr = doRequest(f.ctrl.OpenGift, http.MethodPost, `{"id":"`+giftID+`"}`)
	assert.Equal(t, http.StatusLocked, rr.Code)
	body := decodeResponse(t, rr)
	assert.Contains(t, body["msg"], "locked")
	assert.Equal(t, 0, f.metrics.GiftsOpened)
}

func TestApiController_UnlockAllThenOpen(t *testing.T) {
	f := newApiFixture()
	f.register(t, "Bob", "pw")
	f.register(t, "Alice", "secret")
	_, err := f.accounts.AdjustCoins("alice", 50)
	require.NoError(t, err)

	rr := doRequest(f.ctrl.SendGift, http.MethodPost, `{"giftId":"c1","to":"Bob"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	giftID := decodeResponse(t, rr)["entry"].(map[string]interface{})["id"].(string)

	_, err = f.accounts.Login("Bob", "pw")
	require.NoError(t, err)

	rr = doRequest(f.ctrl.UnlockAll, http.MethodPost, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), decodeResponse(t, rr)["count"])

	rr = doRequest(f.ctrl.OpenGift, http.MethodPost, `{"id":"`+giftID+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	entry := decodeResponse(t, rr)["entry"].(map[string]interface{})
	assert.Equal(t, true, entry["opened"])
	assert.Equal(t, 1, f.metrics.GiftsOpened)

	bob, _ := f.accounts.Get("bob")
	assert.Empty(t, bob.Inbox)
	assert.Len(t, bob.Collection, 1)
}

func TestApiController_OpenGiftUnknown(t *testing.T) {
	f := newApiFixture()
	f.register(t, "Alice", "secret")

	rr := doRequest(f.ctrl.OpenGift, http.MethodPost, `{"id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApiController_Earn(t *testing.T) {
	f := newApiFixture()

	rr := doRequest(f.ctrl.Earn, http.MethodPost, `{"amount":10}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	f.register(t, "Alice", "secret")

	rr = doRequest(f.ctrl.Earn, http.MethodPost, `{"amount":10}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(10), decodeResponse(t, rr)["coins"])

	rr = doRequest(f.ctrl.Earn, http.MethodPost, `{"amount":-50}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), decodeResponse(t, rr)["coins"])
}

func TestApiController_GetInbox(t *testing.T) {
	f := newApiFixture()

	rr := doRequest(f.ctrl.GetInbox, http.MethodGet, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	f.register(t, "Bob", "pw")
	f.register(t, "Alice", "secret")
	_, err := f.accounts.AdjustCoins("alice", 50)
	require.NoError(t, err)
	rr = doRequest(f.ctrl.SendGift, http.MethodPost, `{"giftId":"c1","to":"Bob"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	_, err = f.accounts.Login("Bob", "pw")
	require.NoError(t, err)

	rr = doRequest(f.ctrl.GetInbox, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, false, entries[0]["canOpen"])
	assert.Equal(t, "c1", entries[0]["giftId"])

	rr = doRequest(f.ctrl.UnlockAll, http.MethodPost, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(f.ctrl.GetInbox, http.MethodGet, "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0]["canOpen"])
}

func TestApiController_GetCollection(t *testing.T) {
	f := newApiFixture()
	f.register(t, "Alice", "secret")

	rr := doRequest(f.ctrl.GetCollection, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestApiController_PersistFailureNotSurfaced(t *testing.T) {
	f := newApiFixture()
	f.persister.PersistFn = func() error { return assert.AnError }

	rr := doRequest(f.ctrl.Register, http.MethodPost, `{"username":"Alice","password":"secret"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var logged bool
	for _, entry := range f.logger.Logs {
		if entry.Level == "error" {
			logged = true
		}
	}
	assert.True(t, logged, "expected the failed flush to be logged")
}
