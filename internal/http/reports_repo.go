package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/storage"
)

type ListParams struct {
	Limit        int
	Offset       int
	PropertyType string
	Sort         string
}

type ReportSummary struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Title           string    `json:"title"`
	PropertyType    string    `json:"property_type"`
	District        string    `json:"district"`
	LandArea        float64   `json:"land_area"`
	NumFloors       int       `json:"num_floors"`
	TotalInvestment float64   `json:"total_investment"`
	RentalROI       float64   `json:"rental_roi"`
}

// ReportsRepo is the read side of the report history.
type ReportsRepo interface {
	List(ctx context.Context, p ListParams) ([]ReportSummary, int, error)
	Get(ctx context.Context, id string) (domain.StoredReport, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type SQLiteReportsRepo struct {
	Store *storage.SQLiteStore
}

func (r *SQLiteReportsRepo) List(ctx context.Context, p ListParams) ([]ReportSummary, int, error) {
	reports, total, err := r.Store.ListReports(ctx, storage.ListFilter{
		Limit:        p.Limit,
		Offset:       p.Offset,
		PropertyType: p.PropertyType,
		Sort:         p.Sort,
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]ReportSummary, 0, len(reports))
	for _, sr := range reports {
		out = append(out, ReportSummary{
			ID:              sr.ID,
			CreatedAt:       sr.CreatedAt,
			Title:           sr.Report.Title,
			PropertyType:    sr.Report.PropertyType,
			District:        sr.Report.District,
			LandArea:        sr.Request.LandArea,
			NumFloors:       sr.Request.NumFloors,
			TotalInvestment: sr.Report.Figures.TotalInvestment,
			RentalROI:       sr.Report.Figures.RentalROI,
		})
	}
	return out, total, nil
}

func (r *SQLiteReportsRepo) Get(ctx context.Context, id string) (domain.StoredReport, bool, error) {
	return r.Store.GetReport(ctx, id)
}

func (r *SQLiteReportsRepo) Delete(ctx context.Context, id string) (bool, error) {
	return r.Store.DeleteReport(ctx, id)
}

type ReportsListResponse struct {
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Total  int             `json:"total"`
	Items  []ReportSummary `json:"items"`
}

func (s *Server) handleReportsList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.History == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "history_disabled"})
		return
	}

	limit, offset := parseLimitOffset(r, 20, 0)
	q := r.URL.Query()
	sort := q.Get("sort")
	switch sort {
	case "", storage.SortCreatedDesc, storage.SortROIDesc, storage.SortInvestmentDesc:
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_sort", Value: sort})
		return
	}

	pt := q.Get("property_type")
	if pt != "" {
		pt = string(catalog.ParsePropertyType(pt))
	}
	items, total, err := s.History.List(r.Context(), ListParams{
		Limit:        limit,
		Offset:       offset,
		PropertyType: pt,
		Sort:         sort,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReportsListResponse{
		Limit:  limit,
		Offset: offset,
		Total:  total,
		Items:  items,
	})
}

func (s *Server) handleReportByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(r.URL.Path[len("/reports/"):], "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing_id"})
		return
	}
	if s.History == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "history_disabled"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		rep, ok, err := s.History.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, rep)

	case http.MethodDelete:
		deleted, err := s.History.Delete(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !deleted {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
