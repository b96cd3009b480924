// Package taxlot implements lot selection and sale allocation for the tax
// lot ledger. It is pure logic over in-memory lots; persistence and
// transaction scoping belong to the service and repository layers.
package taxlot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/model"
)

// Method is a lot selection method. It is a closed set; ParseMethod is the
// only way to obtain one from external input.
type Method string

const (
	// FIFO consumes the oldest lots first.
	FIFO Method = "fifo"
	// LIFO consumes the newest lots first.
	LIFO Method = "lifo"
	// HIFO consumes the highest-cost lots first, minimizing realized gain.
	HIFO Method = "hifo"
	// Specific consumes caller-identified lots in purchase date order.
	Specific Method = "specific"
)

// ParseMethod converts external input into a Method.
// Returns apperrors.ErrInvalidLotMethod for anything outside the closed set.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case FIFO:
		return FIFO, nil
	case LIFO:
		return LIFO, nil
	case HIFO:
		return HIFO, nil
	case Specific:
		return Specific, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidLotMethod, s)
	}
}

// SortLots orders open lots into the consumption order for the method.
// The input slice is sorted in place.
//
// Ties on the sort key fall back to purchase date ascending (and lot ID
// for full determinism) so that repeated runs over the same lots always
// produce the same allocation.
func SortLots(lots []model.TaxLot, method Method) {
	switch method {
	case LIFO:
		sort.Slice(lots, func(i, j int) bool {
			if !lots[i].PurchaseDate.Equal(lots[j].PurchaseDate) {
				return lots[i].PurchaseDate.After(lots[j].PurchaseDate)
			}
			return lots[i].ID > lots[j].ID
		})
	case HIFO:
		sort.Slice(lots, func(i, j int) bool {
			if !lots[i].CostPerShare.Equal(lots[j].CostPerShare) {
				return lots[i].CostPerShare.GreaterThan(lots[j].CostPerShare)
			}
			if !lots[i].PurchaseDate.Equal(lots[j].PurchaseDate) {
				return lots[i].PurchaseDate.Before(lots[j].PurchaseDate)
			}
			return lots[i].ID < lots[j].ID
		})
	default:
		// FIFO and Specific both walk lots oldest first.
		sort.Slice(lots, func(i, j int) bool {
			if !lots[i].PurchaseDate.Equal(lots[j].PurchaseDate) {
				return lots[i].PurchaseDate.Before(lots[j].PurchaseDate)
			}
			return lots[i].ID < lots[j].ID
		})
	}
}
