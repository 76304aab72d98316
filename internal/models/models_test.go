package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequest_Defaults(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 10},
		{-3, 5, 1, 5},
		{2, 10, 2, 10},
		{4, 101, 4, 10},
		{1, 100, 1, 100},
	}
	for _, tt := range tests {
		p := NewPageRequest(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, p.Page)
		assert.Equal(t, tt.wantLimit, p.Limit)
	}
}

func TestPageRequest_HugePageDoesNotOverflow(t *testing.T) {
	for _, limit := range []int{1, 10, MaxLimit} {
		p := NewPageRequest(math.MaxInt, limit)
		assert.GreaterOrEqual(t, p.Offset(), 0, "limit %d", limit)
		assert.Equal(t, math.MaxInt/limit, p.Page)
	}
	assert.GreaterOrEqual(t, NewPageRequest(922337203685477582, 10).Offset(), 0)
}

func TestPageRequest_OffsetAndTotalPages(t *testing.T) {
	p := NewPageRequest(2, 10)
	assert.Equal(t, 10, p.Offset())

	pg := p.Paginate(25)
	assert.Equal(t, Pagination{CurrentPage: 2, PerPage: 10, Total: 25, TotalPages: 3}, pg)

	assert.Equal(t, 0, NewPageRequest(1, 10).Paginate(0).TotalPages)
	assert.Equal(t, 1, NewPageRequest(1, 10).Paginate(10).TotalPages)
	assert.Equal(t, 2, NewPageRequest(1, 10).Paginate(11).TotalPages)
}

func TestUserJSON_OmitsPasswordHash(t *testing.T) {
	u := User{ID: "u1", Email: "a@b.com", Name: "A", PasswordHash: "$2a$10$secret"}
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.NotContains(t, string(b), "secret")
}

func TestCreateProductRequest_FieldsDefaults(t *testing.T) {
	price, stock := 9.5, 3
	r := &CreateProductRequest{Name: " Mug ", Category: "Kitchen", Price: &price, StockQuantity: &stock, Status: " "}
	r.Normalize()

	f := r.Fields()
	assert.Equal(t, "Mug", f["name"])
	assert.Equal(t, 9.5, f["price"])
	assert.Equal(t, 3, f["stock_quantity"])
	assert.Equal(t, ProductStatusActive, f["status"])
	assert.Equal(t, "", f["description"])
}

func TestUpdateRequests_OnlyPresentFields(t *testing.T) {
	assert.Empty(t, (&UpdateProductRequest{}).Fields())
	assert.Empty(t, (&UpdateWebsiteVisitRequest{}).Fields())
	assert.Empty(t, (&UpdateStoreVisitRequest{}).Fields())

	rev := 12.25
	f := (&UpdateStoreVisitRequest{Revenue: &rev}).Fields()
	assert.Equal(t, map[string]any{"revenue": 12.25}, f)
}

func TestCreateVisit_NormalizesTimestampToDate(t *testing.T) {
	n := 4
	r := &CreateWebsiteVisitRequest{VisitDate: "2024-03-05T13:45:00Z", Source: "google", VisitCount: &n}
	r.Normalize()
	assert.Equal(t, "2024-03-05", r.VisitDate)
	assert.Equal(t, 0, r.Fields()["page_views"])

	bad := &CreateStoreVisitRequest{VisitDate: "yesterday"}
	bad.Normalize()
	assert.Equal(t, "yesterday", bad.VisitDate)
}

func TestDate_ScanAndMarshal(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "2024-02-29", d.String())

	require.NoError(t, d.Scan([]byte("2023-12-31")))
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2023-12-31"`, string(b))

	require.NoError(t, d.Scan("2023-01-02 00:00:00"))
	assert.Equal(t, "2023-01-02", d.String())

	assert.Error(t, d.Scan(42))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2022-07-01"`), &back))
	assert.Equal(t, NewDate(2022, time.July, 1), back)
}
