package models

import (
	"strings"
	"time"
)

// WebsiteVisit is one day's traffic from a single source.
type WebsiteVisit struct {
	ID          string    `json:"id"`
	VisitDate   Date      `json:"visit_date"`
	Source      string    `json:"source"`
	VisitCount  int       `json:"visit_count"`
	PageViews   int       `json:"page_views"`
	TimeSpent   float64   `json:"time_spent"`
	VisitorName string    `json:"visitor_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateWebsiteVisitRequest struct {
	VisitDate   string   `json:"visit_date" validate:"required,isodate"`
	Source      string   `json:"source" validate:"required,max=100"`
	VisitCount  *int     `json:"visit_count" validate:"required,gte=0"`
	PageViews   *int     `json:"page_views" validate:"omitempty,gte=0"`
	TimeSpent   *float64 `json:"time_spent" validate:"omitempty,gte=0"`
	VisitorName string   `json:"visitor_name" validate:"max=100"`
}

func (r *CreateWebsiteVisitRequest) Normalize() {
	r.VisitDate = normalizeDate(strings.TrimSpace(r.VisitDate))
	r.Source = strings.TrimSpace(r.Source)
	r.VisitorName = strings.TrimSpace(r.VisitorName)
}

func (r *CreateWebsiteVisitRequest) Fields() map[string]any {
	return map[string]any{
		"visit_date":   r.VisitDate,
		"source":       r.Source,
		"visit_count":  valueOr(r.VisitCount, 0),
		"page_views":   valueOr(r.PageViews, 0),
		"time_spent":   valueOr(r.TimeSpent, 0),
		"visitor_name": r.VisitorName,
	}
}

type UpdateWebsiteVisitRequest struct {
	VisitDate   *string  `json:"visit_date" validate:"omitempty,isodate"`
	Source      *string  `json:"source" validate:"omitempty,min=1,max=100"`
	VisitCount  *int     `json:"visit_count" validate:"omitempty,gte=0"`
	PageViews   *int     `json:"page_views" validate:"omitempty,gte=0"`
	TimeSpent   *float64 `json:"time_spent" validate:"omitempty,gte=0"`
	VisitorName *string  `json:"visitor_name" validate:"omitempty,max=100"`
}

func (r *UpdateWebsiteVisitRequest) Normalize() {
	if r.VisitDate != nil {
		*r.VisitDate = normalizeDate(strings.TrimSpace(*r.VisitDate))
	}
	trimPtr(r.Source)
	trimPtr(r.VisitorName)
}

func (r *UpdateWebsiteVisitRequest) Fields() map[string]any {
	f := make(map[string]any)
	setIf(f, "visit_date", r.VisitDate)
	setIf(f, "source", r.Source)
	setIf(f, "visit_count", r.VisitCount)
	setIf(f, "page_views", r.PageViews)
	setIf(f, "time_spent", r.TimeSpent)
	setIf(f, "visitor_name", r.VisitorName)
	return f
}

// StoreVisit is one day's foot traffic at a physical location.
type StoreVisit struct {
	ID         string    `json:"id"`
	VisitDate  Date      `json:"visit_date"`
	Location   string    `json:"location"`
	VisitCount int       `json:"visit_count"`
	Revenue    float64   `json:"revenue"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateStoreVisitRequest struct {
	VisitDate  string   `json:"visit_date" validate:"required,isodate"`
	Location   string   `json:"location" validate:"required,max=100"`
	VisitCount *int     `json:"visit_count" validate:"required,gte=0"`
	Revenue    *float64 `json:"revenue" validate:"omitempty,gte=0"`
}

func (r *CreateStoreVisitRequest) Normalize() {
	r.VisitDate = normalizeDate(strings.TrimSpace(r.VisitDate))
	r.Location = strings.TrimSpace(r.Location)
}

func (r *CreateStoreVisitRequest) Fields() map[string]any {
	return map[string]any{
		"visit_date":  r.VisitDate,
		"location":    r.Location,
		"visit_count": valueOr(r.VisitCount, 0),
		"revenue":     valueOr(r.Revenue, 0),
	}
}

type UpdateStoreVisitRequest struct {
	VisitDate  *string  `json:"visit_date" validate:"omitempty,isodate"`
	Location   *string  `json:"location" validate:"omitempty,min=1,max=100"`
	VisitCount *int     `json:"visit_count" validate:"omitempty,gte=0"`
	Revenue    *float64 `json:"revenue" validate:"omitempty,gte=0"`
}

func (r *UpdateStoreVisitRequest) Normalize() {
	if r.VisitDate != nil {
		*r.VisitDate = normalizeDate(strings.TrimSpace(*r.VisitDate))
	}
	trimPtr(r.Location)
}

func (r *UpdateStoreVisitRequest) Fields() map[string]any {
	f := make(map[string]any)
	setIf(f, "visit_date", r.VisitDate)
	setIf(f, "location", r.Location)
	setIf(f, "visit_count", r.VisitCount)
	setIf(f, "revenue", r.Revenue)
	return f
}
