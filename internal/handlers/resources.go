package handlers

import (
	"github.com/yourorg/salesdash/internal/models"
	"github.com/yourorg/salesdash/internal/store"
)

var Products = Resource[models.Product]{
	Kind:      "product",
	Label:     "Product",
	Table:     store.Products,
	ID:        func(p models.Product) string { return p.ID },
	NewCreate: func() Payload { return &models.CreateProductRequest{} },
	NewUpdate: func() Payload { return &models.UpdateProductRequest{} },
}

var WebsiteVisits = Resource[models.WebsiteVisit]{
	Kind:      "website_visit",
	Label:     "Website visit",
	Table:     store.WebsiteVisits,
	ID:        func(v models.WebsiteVisit) string { return v.ID },
	NewCreate: func() Payload { return &models.CreateWebsiteVisitRequest{} },
	NewUpdate: func() Payload { return &models.UpdateWebsiteVisitRequest{} },
}

var StoreVisits = Resource[models.StoreVisit]{
	Kind:      "store_visit",
	Label:     "Store visit",
	Table:     store.StoreVisits,
	ID:        func(v models.StoreVisit) string { return v.ID },
	NewCreate: func() Payload { return &models.CreateStoreVisitRequest{} },
	NewUpdate: func() Payload { return &models.UpdateStoreVisitRequest{} },
}
