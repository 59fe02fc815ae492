package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

// Cache stores encoded reports by request key. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ReportKey identifies a normalized request. Equal inputs always give equal
// reports, so the tuple is a complete key. Text fields are quoted so that a
// separator inside a district name cannot make two requests share a key.
func ReportKey(req domain.ReportRequest) string {
	return fmt.Sprintf("report:%s:%s:%s:%d",
		strconv.Quote(req.PropertyType),
		strconv.Quote(req.District),
		strconv.FormatFloat(req.LandArea, 'g', -1, 64),
		req.NumFloors,
	)
}
