package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/dataset"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
	"github.com/denisok6893-rgb/property-investment/internal/matching"
	"github.com/denisok6893-rgb/property-investment/internal/model"
	"github.com/denisok6893-rgb/property-investment/internal/service"
)

type Server struct {
	Reports   *service.ReportService
	History   ReportsRepo
	Generator *dataset.Generator
	Matcher   *matching.Engine

	models atomic.Pointer[model.Set]
}

// NewServer builds the API. history and models may be nil: report history
// routes then answer 503, and prediction routes answer 503 until SetModels
// is called.
func NewServer(reports *service.ReportService, history ReportsRepo, models *model.Set) *Server {
	s := &Server{
		Reports:   reports,
		History:   history,
		Generator: dataset.NewGenerator(reports.Engine(), 1),
		Matcher:   matching.NewEngine(reports.Engine(), matching.DefaultWeights()),
	}
	s.SetModels(models)
	return s
}

func (s *Server) SetModels(m *model.Set) {
	s.models.Store(m)
}

func (s *Server) catalog() *catalog.Catalog {
	return s.Reports.Engine().Catalog()
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/catalog", s.handleCatalog)
	mux.HandleFunc("/report", s.handleReport)
	mux.HandleFunc("/report/batch", s.handleReportBatch)
	mux.HandleFunc("/reports", s.handleReportsList)
	mux.HandleFunc("/reports/", s.handleReportByID)
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/compare", s.handleCompare)
	mux.HandleFunc("/match", s.handleMatch)
	mux.HandleFunc("/dataset/stream", s.handleDatasetStream)
	return mux
}

// Handler is Routes behind the per-client rate limiter; a nil limiter
// disables limiting.
func (s *Server) Handler(limiter *RateLimiter) http.Handler {
	if limiter == nil {
		return s.Routes()
	}
	return RateLimitMiddleware(limiter, s.Routes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"models_loaded": s.models.Load() != nil,
	})
}

type DistrictInfo struct {
	Name      string  `json:"name"`
	BasePrice float64 `json:"base_price"`
	Premium   float64 `json:"premium"`
}

type PropertyTypeInfo struct {
	PropertyType      string                      `json:"property_type"`
	BorrowsFrom       string                      `json:"borrows_from,omitempty"`
	Districts         []DistrictInfo              `json:"districts"`
	BuildRatios       catalog.BuildRatios         `json:"build_ratios"`
	AlternativeRatios catalog.BuildRatios         `json:"alternative_ratios"`
	UnitSizes         map[string]catalog.UnitSize `json:"unit_sizes,omitempty"`
}

type CatalogResponse struct {
	Costs         catalog.Costs      `json:"costs"`
	PropertyTypes []PropertyTypeInfo `json:"property_types"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c := s.catalog()
	resp := CatalogResponse{Costs: c.Costs()}
	for _, pt := range c.PropertyTypes() {
		profile, _ := c.Profile(pt)
		info := PropertyTypeInfo{
			PropertyType: string(pt),
			BorrowsFrom:  string(profile.BorrowsFrom),
			UnitSizes:    profile.UnitSizes,
		}
		names, _ := c.Districts(pt)
		for _, d := range names {
			q, err := c.Lookup(pt, d)
			if err != nil {
				continue
			}
			info.BuildRatios = q.BuildRatios
			info.AlternativeRatios = q.AlternativeRatios
			info.Districts = append(info.Districts, DistrictInfo{Name: d, BasePrice: q.BasePrice, Premium: q.Premium})
		}
		resp.PropertyTypes = append(resp.PropertyTypes, info)
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_json", Message: err.Error()})
		return false
	}
	return true
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req domain.ReportRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	res, err := s.Reports.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type BatchRequest struct {
	Requests []domain.ReportRequest `json:"requests"`
}

type BatchResponse struct {
	Items []service.BatchItem `json:"items"`
}

// maxBatch caps POST /report/batch.
const maxBatch = 500

func (s *Server) handleReportBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if len(req.Requests) == 0 || len(req.Requests) > maxBatch {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_batch_size", Message: "requests must hold 1.." + strconv.Itoa(maxBatch) + " items"})
		return
	}
	items, err := s.Reports.GenerateBatch(r.Context(), req.Requests)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BatchResponse{Items: items})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req domain.ReportRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	set := s.models.Load()
	if set == nil {
		writeError(w, model.ErrNoModel)
		return
	}
	if err := investment.ValidateRequest(req); err != nil {
		writeError(w, err)
		return
	}
	p, err := set.Predict(investment.Normalize(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req domain.ReportRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	set := s.models.Load()
	if set == nil {
		writeError(w, model.ErrNoModel)
		return
	}
	if err := investment.ValidateRequest(req); err != nil {
		writeError(w, err)
		return
	}
	cmp, err := model.Compare(s.Reports.Engine(), set, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req domain.MatchRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	res, err := s.Matcher.Match(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseLimitOffset(r *http.Request, defLimit, defOffset int) (int, int) {
	q := r.URL.Query()

	limit := defLimit
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defLimit
	}
	// safety cap
	if limit > 200 {
		limit = 200
	}

	offset := defOffset
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = defOffset
	}
	return limit, offset
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}
