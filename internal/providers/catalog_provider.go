package providers

import (
	"gxd/internal/models"
	"gxd/internal/structures"
)

// The built-in catalog, used when the config file supplies no override.
var defaultCatalogItems = []models.CatalogItem{
	{ID: "c1", Name: "Candy Cane", Icon: "🍬", Cost: 5},
	{ID: "c2", Name: "Gingerbread", Icon: "🧁", Cost: 8},
	{ID: "c3", Name: "Teddy Bear", Icon: "🧸", Cost: 20},
	{ID: "c4", Name: "Snow Globe", Icon: "❄️", Cost: 15},
	{ID: "c5", Name: "Stocking", Icon: "🧦", Cost: 12},
	{ID: "c6", Name: "Present Box", Icon: "🎁", Cost: 25},
}

func NewCatalogProvider(conf *structures.Config, logger Logger) *models.Catalog {
	if len(conf.Exchange.Catalog) == 0 {
		logger.Infof(TypeApp, "Using built-in catalog with %d items", len(defaultCatalogItems))
		return models.NewCatalog(defaultCatalogItems)
	}

	items := make([]models.CatalogItem, 0, len(conf.Exchange.Catalog))
	for _, item := range conf.Exchange.Catalog {
		items = append(items, models.CatalogItem{
			ID:   item.ID,
			Name: item.Name,
			Icon: item.Icon,
			Cost: item.Cost,
		})
	}
	logger.Infof(TypeApp, "Loaded %d catalog items from config", len(items))
	return models.NewCatalog(items)
}
