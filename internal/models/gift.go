package models

import "time"

// CatalogItem is a static, purchasable gift definition. The catalog is
// fixed at process start and never mutated.
type CatalogItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"emoji"`
	Cost int    `json:"cost"`
}

type Catalog struct {
	items []CatalogItem
	byID  map[string]CatalogItem
}

func NewCatalog(items []CatalogItem) *Catalog {
	byID := make(map[string]CatalogItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &Catalog{items: items, byID: byID}
}

func (c *Catalog) Items() []CatalogItem {
	return c.items
}

func (c *Catalog) Find(id string) (CatalogItem, bool) {
	item, ok := c.byID[id]
	return item, ok
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// GiftInstance is a concrete gift sent from one account to another.
// Name, icon and cost are snapshot-copied from the catalog at send time
// so later catalog changes never rewrite history. An instance lives in
// exactly one of inbox or collection: Opened is true iff it has been
// moved to the collection.
type GiftInstance struct {
	ID        string    `json:"id"`
	CatalogID string    `json:"giftId"`
	Name      string    `json:"name"`
	Icon      string    `json:"emoji"`
	Cost      int       `json:"cost"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sentAt"`
	OpenDate  time.Time `json:"openDate"`
	Opened    bool      `json:"opened"`
}

// CanOpen reports whether the gift may be opened at the given time.
// Pure predicate, no side effects.
func (g *GiftInstance) CanOpen(now time.Time) bool {
	return !now.Before(g.OpenDate)
}
