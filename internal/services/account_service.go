package services

import (
	"fmt"
	"strings"

	"gxd/internal/models"
)

type AccountServiceInterface interface {
	EnsureAccount(username string) (*models.Account, bool)
	Register(username, password string) (*models.Account, error)
	Login(username, password string) (*models.Account, error)
	Logout()
	Current() (*models.Account, bool)
	Get(key string) (*models.Account, bool)
	AdjustCoins(key string, delta int) (int, error)
	Count() int
	Table() *models.AccountTable
	GetSnapshot() *models.Storage
	PutSnapshot(accounts map[string]*models.Account, session string)
}

// AccountService owns account creation, authentication and the coin
// balance arithmetic. All state lives in the shared AccountTable; the
// service adds input validation and the error taxonomy on top.
type AccountService struct {
	table *models.AccountTable
}

func NewAccountService() AccountServiceInterface {
	return &AccountService{
		table: models.NewAccountTable(),
	}
}

// EnsureAccount idempotently creates an account for the username.
// Reports whether this call created it, so the caller knows to persist.
func (as *AccountService) EnsureAccount(username string) (*models.Account, bool) {
	return as.table.Ensure(username)
}

func (as *AccountService) Register(username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" {
		return nil, fmt.Errorf("username required: %w", models.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("password required: %w", models.ErrValidation)
	}

	acc, created := as.table.Create(username, password)
	if !created {
		return nil, fmt.Errorf("username %q: %w", username, models.ErrConflict)
	}
	return acc, nil
}

// Login checks the stored secret and activates the session. The
// session is left untouched on every failure path.
func (as *AccountService) Login(username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	key := strings.ToLower(username)

	acc, ok := as.table.Get(key)
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
	}
	if acc.Password != password {
		return nil, fmt.Errorf("incorrect password: %w", models.ErrAuth)
	}
	as.table.SetSession(key)
	return acc, nil
}

func (as *AccountService) Logout() {
	as.table.ClearSession()
}

func (as *AccountService) Current() (*models.Account, bool) {
	key := as.table.SessionKey()
	if key == "" {
		return nil, false
	}
	return as.table.Get(key)
}

func (as *AccountService) Get(key string) (*models.Account, bool) {
	return as.table.Get(strings.ToLower(key))
}

func (as *AccountService) AdjustCoins(key string, delta int) (int, error) {
	balance, ok := as.table.AdjustCoins(strings.ToLower(key), delta)
	if !ok {
		return 0, fmt.Errorf("account %q: %w", key, models.ErrNotFound)
	}
	return balance, nil
}

func (as *AccountService) Count() int {
	return as.table.Len()
}

func (as *AccountService) Table() *models.AccountTable {
	return as.table
}

func (as *AccountService) GetSnapshot() *models.Storage {
	return as.table.Snapshot()
}

func (as *AccountService) PutSnapshot(accounts map[string]*models.Account, session string) {
	as.table.Replace(accounts, session)
}
