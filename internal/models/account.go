package models

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Account is a registered local user. The map key in the table is the
// lowercased username; Username keeps the original casing for display.
type Account struct {
	Username   string          `json:"username"`
	Password   string          `json:"password"`
	Coins      int             `json:"coins"`
	Inbox      []*GiftInstance `json:"inbox"`
	Collection []*GiftInstance `json:"collection"`
}

func (a *Account) Key() string {
	return strings.ToLower(a.Username)
}

// AccountTable is the single shared mutable structure of the system:
// the full account registry plus the active-session pointer. All
// compound mutations happen under its lock so every operation is atomic
// with respect to balance, inbox and collection.
type AccountTable struct {
	Mutex    sync.RWMutex
	Accounts map[string]*Account
	Session  string
}

func NewAccountTable() *AccountTable {
	return &AccountTable{
		Accounts: make(map[string]*Account),
	}
}

func (t *AccountTable) Get(key string) (*Account, bool) {
	t.Mutex.RLock()
	defer t.Mutex.RUnlock()
	acc, ok := t.Accounts[key]
	return acc, ok
}

func (t *AccountTable) Len() int {
	t.Mutex.RLock()
	defer t.Mutex.RUnlock()
	return len(t.Accounts)
}

// Ensure creates an account with zero coins and empty inbox/collection
// if none exists for the lowercased username. Returns the account and
// whether it was created by this call.
func (t *AccountTable) Ensure(username string) (*Account, bool) {
	t.Mutex.Lock()
	defer t.Mutex.Unlock()

	key := strings.ToLower(username)
	if acc, ok := t.Accounts[key]; ok {
		return acc, false
	}
	acc := &Account{
		Username:   username,
		Inbox:      make([]*GiftInstance, 0),
		Collection: make([]*GiftInstance, 0),
	}
	t.Accounts[key] = acc
	return acc, true
}

// Create inserts a new account and makes it the active session.
// Returns false without mutation when the key is already taken.
func (t *AccountTable) Create(username, password string) (*Account, bool) {
	t.Mutex.Lock()
	defer t.Mutex.Unlock()

	key := strings.ToLower(username)
	if _, ok := t.Accounts[key]; ok {
		return nil, false
	}
	acc := &Account{
		Username:   username,
		Password:   password,
		Inbox:      make([]*GiftInstance, 0),
		Collection: make([]*GiftInstance, 0),
	}
	t.Accounts[key] = acc
	t.Session = key
	return acc, true
}

func (t *AccountTable) SessionKey() string {
	t.Mutex.RLock()
	defer t.Mutex.RUnlock()
	return t.Session
}

func (t *AccountTable) SetSession(key string) {
	t.Mutex.Lock()
	defer t.Mutex.Unlock()
	t.Session = key
}

func (t *AccountTable) ClearSession() {
	t.Mutex.Lock()
	defer t.Mutex.Unlock()
	t.Session = ""
}

// AdjustCoins adds delta to the account's balance, clamping the floor
// at zero. A negative delta never fails, it clamps. Returns the new
// balance and whether the account exists.
func (t *AccountTable) AdjustCoins(key string, delta int) (int, bool) {
	t.Mutex.Lock()
	defer t.Mutex.Unlock()

	acc, ok := t.Accounts[key]
	if !ok {
		return 0, false
	}
	acc.Coins += delta
	if acc.Coins < 0 {
		acc.Coins = 0
	}
	return acc.Coins, true
}

// Deliver debits cost from the sender and appends the gift to the
// recipient's inbox in one atomic step. On any failure nothing is
// mutated.
func (t *AccountTable) Deliver(senderKey, recipientKey string, cost int, gift *GiftInstance) error {
	t.Mutex.Lock()
	defer t.Mutex.Unlock()

	sender, ok := t.Accounts[senderKey]
	if !ok {
		return fmt.Errorf("sender %q: %w", senderKey, ErrNotFound)
	}
	recipient, ok := t.Accounts[recipientKey]
	if !ok {
		return fmt.Errorf("recipient %q: %w", recipientKey, ErrNotFound)
	}
	if sender.Coins < cost {
		return fmt.Errorf("%d coins needed: %w", cost, ErrInsufficientFunds)
	}

	sender.Coins -= cost
	recipient.Inbox = append(recipient.Inbox, gift)
	return nil
}

// Open moves the gift with the given id from the account's inbox to the
// end of its collection, marking it opened. Fails with LockedError when
// the unlock date has not passed yet.
func (t *AccountTable) Open(key, giftID string, now time.Time) (*GiftInstance, error) {
	t.Mutex.Lock()
	defer t.Mutex.Unlock()

	acc, ok := t.Accounts[key]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", key, ErrNotFound)
	}
	idx := -1
	for i, g := range acc.Inbox {
		if g.ID == giftID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("gift %q: %w", giftID, ErrNotFound)
	}
	gift := acc.Inbox[idx]
	if !gift.CanOpen(now) {
		return nil, &LockedError{OpenDate: gift.OpenDate}
	}

	gift.Opened = true
	acc.Collection = append(acc.Collection, gift)
	acc.Inbox = append(acc.Inbox[:idx], acc.Inbox[idx+1:]...)
	return gift, nil
}

// ForceUnlock rewinds every inbox gift's open date to just before the
// given time without opening anything. Returns the number of gifts
// touched.
func (t *AccountTable) ForceUnlock(key string, now time.Time) (int, bool) {
	t.Mutex.Lock()
	defer t.Mutex.Unlock()

	acc, ok := t.Accounts[key]
	if !ok {
		return 0, false
	}
	unlocked := now.Add(-1 * time.Second)
	for _, g := range acc.Inbox {
		g.OpenDate = unlocked
	}
	return len(acc.Inbox), true
}

// PendingGifts counts unopened gifts across all inboxes.
func (t *AccountTable) PendingGifts() int {
	t.Mutex.RLock()
	defer t.Mutex.RUnlock()

	total := 0
	for _, acc := range t.Accounts {
		total += len(acc.Inbox)
	}
	return total
}

// UnlockableGifts counts inbox gifts whose unlock date has passed.
func (t *AccountTable) UnlockableGifts(now time.Time) int {
	t.Mutex.RLock()
	defer t.Mutex.RUnlock()

	total := 0
	for _, acc := range t.Accounts {
		for _, g := range acc.Inbox {
			if g.CanOpen(now) {
				total++
			}
		}
	}
	return total
}

// Snapshot returns a deep copy of the table suitable for serialization.
// The copy shares nothing with the live table, so it can be marshaled
// outside the lock while mutations keep running.
func (t *AccountTable) Snapshot() *Storage {
	t.Mutex.RLock()
	defer t.Mutex.RUnlock()

	accounts := make(map[string]*Account, len(t.Accounts))
	for k, v := range t.Accounts {
		accounts[k] = v.clone()
	}
	return &Storage{
		Accounts: accounts,
		Session:  t.Session,
	}
}

func (a *Account) clone() *Account {
	c := *a
	c.Inbox = cloneGifts(a.Inbox)
	c.Collection = cloneGifts(a.Collection)
	return &c
}

func cloneGifts(gifts []*GiftInstance) []*GiftInstance {
	out := make([]*GiftInstance, len(gifts))
	for i, g := range gifts {
		gc := *g
		out[i] = &gc
	}
	return out
}

// Replace swaps in a freshly loaded account table and session pointer.
func (t *AccountTable) Replace(accounts map[string]*Account, session string) {
	t.Mutex.Lock()
	defer t.Mutex.Unlock()

	if accounts == nil {
		accounts = make(map[string]*Account)
	}
	for _, acc := range accounts {
		if acc.Inbox == nil {
			acc.Inbox = make([]*GiftInstance, 0)
		}
		if acc.Collection == nil {
			acc.Collection = make([]*GiftInstance, 0)
		}
	}
	if _, ok := accounts[session]; !ok {
		session = ""
	}
	t.Accounts = accounts
	t.Session = session
}
