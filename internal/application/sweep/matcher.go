package sweep

import (
	"strings"

	"github.com/go-rentals-api/internal/domain"
)

// Match returns the listings satisfying the alert, in catalog order. The
// location filter is a case-insensitive substring test; an empty location
// matches every listing. Price bounds are inclusive. An inverted range
// (min above max) matches nothing, covering records stored before range
// validation existed. Match is pure and safe for concurrent use.
func Match(a domain.Alert, listings []domain.Listing) []domain.Listing {
	if a.MinPrice > a.MaxPrice {
		return nil
	}
	needle := strings.ToLower(a.Location)
	var out []domain.Listing
	for _, l := range listings {
		if needle != "" && !strings.Contains(strings.ToLower(l.Location), needle) {
			continue
		}
		if l.Price < a.MinPrice || l.Price > a.MaxPrice {
			continue
		}
		out = append(out, l)
	}
	return out
}
