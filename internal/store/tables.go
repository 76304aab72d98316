package store

import "github.com/yourorg/salesdash/internal/models"

var Users = Table[models.User]{
	Name:    "users",
	Columns: []string{"id", "email", "name", "password_hash", "created_at"},
	Scan: func(s Scanner) (models.User, error) {
		var u models.User
		err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
		return u, err
	},
}

var Products = Table[models.Product]{
	Name:    "products",
	Columns: []string{"id", "name", "category", "price", "stock_quantity", "description", "status", "created_at"},
	Scan: func(s Scanner) (models.Product, error) {
		var p models.Product
		err := s.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.StockQuantity, &p.Description, &p.Status, &p.CreatedAt)
		return p, err
	},
}

var WebsiteVisits = Table[models.WebsiteVisit]{
	Name:    "website_visits",
	Columns: []string{"id", "visit_date", "source", "visit_count", "page_views", "time_spent", "visitor_name", "created_at"},
	Scan: func(s Scanner) (models.WebsiteVisit, error) {
		var v models.WebsiteVisit
		err := s.Scan(&v.ID, &v.VisitDate, &v.Source, &v.VisitCount, &v.PageViews, &v.TimeSpent, &v.VisitorName, &v.CreatedAt)
		return v, err
	},
}

var StoreVisits = Table[models.StoreVisit]{
	Name:    "store_visits",
	Columns: []string{"id", "visit_date", "location", "visit_count", "revenue", "created_at"},
	Scan: func(s Scanner) (models.StoreVisit, error) {
		var v models.StoreVisit
		err := s.Scan(&v.ID, &v.VisitDate, &v.Location, &v.VisitCount, &v.Revenue, &v.CreatedAt)
		return v, err
	},
}
