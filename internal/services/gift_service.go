package services

import (
	"fmt"
	"strings"
	"time"

	"gxd/internal/models"
)

// The unlock anniversary: local midnight of December 25.
const (
	unlockMonth = time.December
	unlockDay   = 25
)

type GiftServiceInterface interface {
	Catalog() []models.CatalogItem
	FindItem(id string) (models.CatalogItem, bool)
	Send(senderKey, catalogID, recipient, message string) (*models.GiftInstance, error)
	Open(accountKey, giftID string) (*models.GiftInstance, error)
	ForceUnlockAll(accountKey string) (int, error)
	Inbox(accountKey string) ([]*models.GiftInstance, error)
	Collection(accountKey string) ([]*models.GiftInstance, error)
}

// GiftService drives the gift state machine from catalog item to
// inbox entry to opened collection entry. The acting account is always
// an explicit parameter; session resolution is the caller's job. The
// atomic table mutations are delegated to the AccountTable.
type GiftService struct {
	accounts AccountServiceInterface
	catalog  *models.Catalog
	now      func() time.Time
}

func NewGiftService(accounts AccountServiceInterface, catalog *models.Catalog) GiftServiceInterface {
	return &GiftService{
		accounts: accounts,
		catalog:  catalog,
		now:      time.Now,
	}
}

// NextUnlockDate returns the next occurring unlock anniversary on or
// after the reference time: midnight December 25 of the reference year,
// or of the following year once that instant has passed. The boundary
// is inclusive, a gift sent exactly at midnight December 25 unlocks
// immediately.
func NextUnlockDate(ref time.Time) time.Time {
	unlock := time.Date(ref.Year(), unlockMonth, unlockDay, 0, 0, 0, 0, ref.Location())
	if ref.After(unlock) {
		return time.Date(ref.Year()+1, unlockMonth, unlockDay, 0, 0, 0, 0, ref.Location())
	}
	return unlock
}

func (gs *GiftService) Catalog() []models.CatalogItem {
	return gs.catalog.Items()
}

func (gs *GiftService) FindItem(id string) (models.CatalogItem, bool) {
	return gs.catalog.Find(id)
}

// Send debits the sender and places a snapshot copy of the catalog
// item in the recipient's inbox. Either both happen or neither.
func (gs *GiftService) Send(senderKey, catalogID, recipient, message string) (*models.GiftInstance, error) {
	if senderKey == "" {
		return nil, fmt.Errorf("login required: %w", models.ErrAuth)
	}
	sender, ok := gs.accounts.Get(senderKey)
	if !ok {
		return nil, fmt.Errorf("sender %q: %w", senderKey, models.ErrNotFound)
	}

	recipientKey := strings.ToLower(strings.TrimSpace(recipient))
	if _, ok := gs.accounts.Get(recipientKey); !ok {
		return nil, fmt.Errorf("recipient %q: %w", recipient, models.ErrNotFound)
	}
	item, ok := gs.catalog.Find(catalogID)
	if !ok {
		return nil, fmt.Errorf("catalog item %q: %w", catalogID, models.ErrNotFound)
	}

	now := gs.now()
	gift := &models.GiftInstance{
		ID:        fmt.Sprintf("%s_%d", item.ID, now.UnixNano()),
		CatalogID: item.ID,
		Name:      item.Name,
		Icon:      item.Icon,
		Cost:      item.Cost,
		Sender:    sender.Username,
		Message:   message,
		SentAt:    now,
		OpenDate:  NextUnlockDate(now),
	}

	if err := gs.accounts.Table().Deliver(sender.Key(), recipientKey, item.Cost, gift); err != nil {
		return nil, err
	}
	return gift, nil
}

// Open transitions an inbox gift to the collection. The moved instance
// is appended at the end, most recently opened last.
func (gs *GiftService) Open(accountKey, giftID string) (*models.GiftInstance, error) {
	if accountKey == "" {
		return nil, fmt.Errorf("login required: %w", models.ErrAuth)
	}
	return gs.accounts.Table().Open(strings.ToLower(accountKey), giftID, gs.now())
}

// ForceUnlockAll rewinds every inbox gift of the account to an
// already-unlockable date without opening them. Maintenance escape
// hatch, wired only in dev mode.
func (gs *GiftService) ForceUnlockAll(accountKey string) (int, error) {
	if accountKey == "" {
		return 0, fmt.Errorf("login required: %w", models.ErrAuth)
	}
	n, ok := gs.accounts.Table().ForceUnlock(strings.ToLower(accountKey), gs.now())
	if !ok {
		return 0, fmt.Errorf("account %q: %w", accountKey, models.ErrNotFound)
	}
	return n, nil
}

func (gs *GiftService) Inbox(accountKey string) ([]*models.GiftInstance, error) {
	acc, err := gs.lookup(accountKey)
	if err != nil {
		return nil, err
	}
	table := gs.accounts.Table()
	table.Mutex.RLock()
	defer table.Mutex.RUnlock()
	return append([]*models.GiftInstance(nil), acc.Inbox...), nil
}

func (gs *GiftService) Collection(accountKey string) ([]*models.GiftInstance, error) {
	acc, err := gs.lookup(accountKey)
	if err != nil {
		return nil, err
	}
	table := gs.accounts.Table()
	table.Mutex.RLock()
	defer table.Mutex.RUnlock()
	return append([]*models.GiftInstance(nil), acc.Collection...), nil
}

func (gs *GiftService) lookup(accountKey string) (*models.Account, error) {
	if accountKey == "" {
		return nil, fmt.Errorf("login required: %w", models.ErrAuth)
	}
	acc, ok := gs.accounts.Get(accountKey)
	if !ok {
		return nil, fmt.Errorf("account %q: %w", accountKey, models.ErrNotFound)
	}
	return acc, nil
}
