package controllers

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"gxd/internal/exchange/interfaces"
	"gxd/internal/models"
	"gxd/internal/providers"
	"gxd/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// ApiController is the presentation surface of the exchange. Every
// mutating handler persists the snapshot synchronously after the
// service call succeeds, so durable storage stays the source of truth.
type ApiController struct {
	logger    providers.Logger
	accounts  services.AccountServiceInterface
	gifts     services.GiftServiceInterface
	cache     providers.CacheProviderInterface
	persister interfaces.PersisterInterface
	metrics   providers.MetricsProviderInterface
}

func NewApiController(logger providers.Logger, accounts services.AccountServiceInterface, gifts services.GiftServiceInterface, cache providers.CacheProviderInterface, persister interfaces.PersisterInterface, metrics providers.MetricsProviderInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		accounts:  accounts,
		gifts:     gifts,
		cache:     cache,
		persister: persister,
		metrics:   metrics,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sendRequest struct {
	GiftID  string `json:"giftId"`
	To      string `json:"to"`
	Message string `json:"message"`
}

type openRequest struct {
	ID string `json:"id"`
}

type earnRequest struct {
	Amount int `json:"amount"`
}

type accountView struct {
	Username string `json:"username"`
	Coins    int    `json:"coins"`
}

// inboxEntry annotates a gift with its openability at serve time, the
// locked/unlockable distinction the renderer draws.
type inboxEntry struct {
	*models.GiftInstance
	CanOpen bool `json:"canOpen"`
}

type apiResponse struct {
	Ok    bool        `json:"ok"`
	Msg   string      `json:"msg,omitempty"`
	User  *accountView `json:"user,omitempty"`
	Entry interface{} `json:"entry,omitempty"`
	Count *int        `json:"count,omitempty"`
	Coins *int        `json:"coins,omitempty"`
}

func statusForError(err error) int {
	var locked *models.LockedError
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.As(err, &locked):
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) fail(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), apiResponse{Ok: false, Msg: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	return true
}

// persist flushes the snapshot after a successful mutation. A failed
// flush is logged but not surfaced: the in-memory state is committed
// and the periodic save will retry.
func (ac *ApiController) persist() {
	if err := ac.persister.Persist(); err != nil {
		ac.logger.Errorf(providers.TypeApp, "Persist after mutation failed: %s", err)
	}
}

// currentKey resolves the session account and writes the 401 refusal
// itself when no session is active. Session resolution happens here so
// every service call receives the acting account explicitly.
func (ac *ApiController) currentKey(w http.ResponseWriter) (string, bool) {
	acc, ok := ac.accounts.Current()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, apiResponse{Ok: false, Msg: "login required"})
		return "", false
	}
	return acc.Key(), true
}

func (ac *ApiController) Register(w http.ResponseWriter, r *http.Request) {
	var payload credentialsRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	acc, err := ac.accounts.Register(payload.Username, payload.Password)
	if err != nil {
		ac.fail(w, err)
		return
	}
	ac.persist()
	ac.logger.Infof(providers.TypePost, "Account %q registered", acc.Key())
	writeJSON(w, http.StatusCreated, apiResponse{Ok: true, User: &accountView{Username: acc.Username, Coins: acc.Coins}})
}

func (ac *ApiController) Login(w http.ResponseWriter, r *http.Request) {
	var payload credentialsRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	acc, err := ac.accounts.Login(payload.Username, payload.Password)
	if err != nil {
		ac.fail(w, err)
		return
	}
	ac.persist()
	writeJSON(w, http.StatusOK, apiResponse{Ok: true, User: &accountView{Username: acc.Username, Coins: acc.Coins}})
}

func (ac *ApiController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.accounts.Logout()
	ac.persist()
	writeJSON(w, http.StatusOK, apiResponse{Ok: true})
}

func (ac *ApiController) Session(w http.ResponseWriter, r *http.Request) {
	acc, ok := ac.accounts.Current()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, apiResponse{Ok: false, Msg: "login required"})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Ok: true, User: &accountView{Username: acc.Username, Coins: acc.Coins}})
}

// GetCatalog serves the static catalog, cached because it never
// changes after startup.
func (ac *ApiController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	if data, ok := ac.cache.Get("catalog"); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	gson, err := json.Marshal(ac.gifts.Catalog())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.cache.Set("catalog", gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) SendGift(w http.ResponseWriter, r *http.Request) {
	var payload sendRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	key, ok := ac.currentKey(w)
	if !ok {
		return
	}

	entry, err := ac.gifts.Send(key, payload.GiftID, payload.To, payload.Message)
	if err != nil {
		ac.fail(w, err)
		return
	}
	ac.persist()
	ac.metrics.IncGiftsSent()
	ac.logger.Infof(providers.TypePost, "Gift %s sent to %q", entry.ID, payload.To)
	writeJSON(w, http.StatusCreated, apiResponse{Ok: true, Entry: entry})
}

func (ac *ApiController) OpenGift(w http.ResponseWriter, r *http.Request) {
	var payload openRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	key, ok := ac.currentKey(w)
	if !ok {
		return
	}

	entry, err := ac.gifts.Open(key, payload.ID)
	if err != nil {
		ac.fail(w, err)
		return
	}
	ac.persist()
	ac.metrics.IncGiftsOpened()
	writeJSON(w, http.StatusOK, apiResponse{Ok: true, Entry: entry})
}

// Earn applies a minigame reward to the current account. Reward
// amounts are caller policy; the balance floor still clamps at zero.
func (ac *ApiController) Earn(w http.ResponseWriter, r *http.Request) {
	var payload earnRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	key, ok := ac.currentKey(w)
	if !ok {
		return
	}
	balance, err := ac.accounts.AdjustCoins(key, payload.Amount)
	if err != nil {
		ac.fail(w, err)
		return
	}
	ac.persist()
	ac.metrics.IncCoinsGranted(payload.Amount)
	writeJSON(w, http.StatusOK, apiResponse{Ok: true, Coins: &balance})
}

// UnlockAll is the dev escape hatch: it rewinds unlock dates, it does
// not open anything. Routed only in dev mode.
func (ac *ApiController) UnlockAll(w http.ResponseWriter, r *http.Request) {
	key, ok := ac.currentKey(w)
	if !ok {
		return
	}
	count, err := ac.gifts.ForceUnlockAll(key)
	if err != nil {
		ac.fail(w, err)
		return
	}
	ac.persist()
	ac.logger.Warnf(providers.TypePost, "Force-unlocked %d inbox gifts", count)
	writeJSON(w, http.StatusOK, apiResponse{Ok: true, Count: &count})
}

func (ac *ApiController) GetInbox(w http.ResponseWriter, r *http.Request) {
	key, ok := ac.currentKey(w)
	if !ok {
		return
	}
	gifts, err := ac.gifts.Inbox(key)
	if err != nil {
		ac.fail(w, err)
		return
	}

	now := time.Now()
	entries := make([]inboxEntry, 0, len(gifts))
	for _, g := range gifts {
		entries = append(entries, inboxEntry{GiftInstance: g, CanOpen: g.CanOpen(now)})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (ac *ApiController) GetCollection(w http.ResponseWriter, r *http.Request) {
	key, ok := ac.currentKey(w)
	if !ok {
		return
	}
	gifts, err := ac.gifts.Collection(key)
	if err != nil {
		ac.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gifts)
}
