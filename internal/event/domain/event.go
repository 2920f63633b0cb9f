package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	userdomain "github.com/dmehra2102/eventia/internal/user/domain"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidPrice  = errors.New("invalid event price")
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Event is owned by the catalogue; checkout only reads it.
type Event struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	ImageURL      string          `json:"imageUrl"`
	StartDateTime time.Time       `json:"startDateTime"`
	EndDateTime   time.Time       `json:"endDateTime"`
	Price         string          `json:"price"`
	IsFree        bool            `json:"isFree"`
	URL           string          `json:"url,omitempty"`
	Category      Category        `json:"category"`
	Organizer     userdomain.User `json:"organizer"`
}

// HasFinished reports whether tickets can no longer be sold.
func (e Event) HasFinished(now time.Time) bool {
	return e.EndDateTime.Before(now)
}

// PriceMinorUnits converts the listed price (major units, e.g. "500" or
// "499.50") to integer minor units. Free events cost zero.
func (e Event) PriceMinorUnits() (int64, error) {
	if e.IsFree {
		return 0, nil
	}
	p, err := decimal.NewFromString(strings.TrimSpace(e.Price))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, e.Price)
	}
	if p.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidPrice, e.Price)
	}
	minor := p.Shift(2).Round(0)
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidPrice, e.Price)
	}
	return minor.IntPart(), nil
}

// ShareURL is the public page link offered by the share dialog.
func (e Event) ShareURL(base string) string {
	return strings.TrimRight(base, "/") + "/events/" + url.PathEscape(e.ID)
}

// OGImageURL points at the image-rendering endpoint used for link previews.
func (e Event) OGImageURL(base string) string {
	q := url.Values{}
	q.Set("title", e.Title)
	q.Set("date", e.StartDateTime.Format("Mon, Jan 2"))
	q.Set("location", e.Location)
	return strings.TrimRight(base, "/") + "/api/og?" + q.Encode()
}
