package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourorg/salesdash/internal/validation"
)

// Date is a calendar day. It serializes as "YYYY-MM-DD" and scans from DATE
// columns of either driver.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := validation.ParseDate(s)
	if err != nil {
		return err
	}
	*d = NewDate(t.Date())
	return nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Date())
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("models.Date: cannot scan %T", src)
	}
}

func (d *Date) parse(s string) error {
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	*d = Date{t}
	return nil
}

// normalizeDate rewrites an accepted date string as YYYY-MM-DD, leaving
// anything unparseable for the validator to reject.
func normalizeDate(s string) string {
	t, err := validation.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format(time.DateOnly)
}
