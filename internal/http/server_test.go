package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/denisok6893-rgb/property-investment/internal/cache"
	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	"github.com/denisok6893-rgb/property-investment/internal/dataset"
	"github.com/denisok6893-rgb/property-investment/internal/domain"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
	"github.com/denisok6893-rgb/property-investment/internal/model"
	"github.com/denisok6893-rgb/property-investment/internal/service"
	"github.com/denisok6893-rgb/property-investment/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.EnsureSchema(); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	svc := service.NewReportService(investment.NewEngine(catalog.Default()), st, cache.NewMemoryCache(time.Minute))
	return NewServer(svc, &SQLiteReportsRepo{Store: st}, nil)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestPOSTReport(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newTestServer(t).Routes())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/report", domain.ReportRequest{PropertyType: "villa", District: catalog.DistrictNarjis, LandArea: 5000, NumFloors: 5})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var got service.Result
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == "" {
		t.Fatalf("report was not stored")
	}
	if got.Report.RatiosUsed != investment.RatiosAlternative || got.Report.Costs.LandCost != "77,000,000.00 SAR" {
		t.Fatalf("report=%+v", got.Report)
	}
}

func TestPOSTReport_Errors(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newTestServer(t).Routes())
	defer ts.Close()

	tests := []struct {
		req       domain.ReportRequest
		status    int
		code      string
		offending string
	}{
		{domain.ReportRequest{PropertyType: "castle", District: catalog.DistrictNarjis, LandArea: 100, NumFloors: 2}, http.StatusUnprocessableEntity, "unknown_property_type", "castle"},
		{domain.ReportRequest{PropertyType: "tower", District: "Mars", LandArea: 100, NumFloors: 2}, http.StatusUnprocessableEntity, "unknown_district", "Mars"},
		{domain.ReportRequest{PropertyType: "tower", District: catalog.DistrictNarjis, LandArea: 0, NumFloors: 2}, http.StatusBadRequest, "invalid_land_area", ""},
		{domain.ReportRequest{PropertyType: "tower", District: catalog.DistrictNarjis, LandArea: 10, NumFloors: 0}, http.StatusBadRequest, "invalid_num_floors", ""},
	}
	for _, tt := range tests {
		resp := postJSON(t, ts.URL+"/report", tt.req)
		var got ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&got)
		resp.Body.Close()
		if resp.StatusCode != tt.status || got.Error != tt.code || got.Value != tt.offending {
			t.Fatalf("req=%+v status=%d body=%+v want=%d %s %q", tt.req, resp.StatusCode, got, tt.status, tt.code, tt.offending)
		}
	}

	resp, err := http.Post(ts.URL+"/report", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid JSON status=%d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/report")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /report status=%d", resp.StatusCode)
	}
}

func TestGETReports_FiltersSortAndByID(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newTestServer(t).Routes())
	defer ts.Close()

	for _, req := range []domain.ReportRequest{
		{PropertyType: "tower", District: catalog.DistrictMalqa, LandArea: 3000, NumFloors: 12},
		{PropertyType: "tower", District: catalog.DistrictMalqa, LandArea: 6000, NumFloors: 12},
		{PropertyType: "hotel", District: catalog.DistrictMalqa, LandArea: 4000, NumFloors: 10},
	} {
		resp := postJSON(t, ts.URL+"/report", req)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("seed status=%d", resp.StatusCode)
		}
	}

	resp, err := http.Get(ts.URL + "/reports?property_type=Tower&sort=investment_desc&limit=20&offset=0")
	if err != nil {
		t.Fatalf("GET /reports: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /reports status=%d", resp.StatusCode)
	}
	var got ReportsListResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 2 || len(got.Items) != 2 {
		t.Fatalf("total=%d items=%d want=2", got.Total, len(got.Items))
	}
	if got.Items[0].LandArea != 6000 {
		t.Fatalf("first land=%v want=6000", got.Items[0].LandArea)
	}

	id := got.Items[0].ID
	byID, err := http.Get(ts.URL + "/reports/" + id)
	if err != nil {
		t.Fatalf("GET /reports/{id}: %v", err)
	}
	defer byID.Body.Close()
	var stored domain.StoredReport
	if err := json.NewDecoder(byID.Body).Decode(&stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stored.ID != id || stored.Report.PropertyType != "tower" {
		t.Fatalf("stored=%+v", stored)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/reports/"+id, nil)
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	del.Body.Close()
	if del.StatusCode != http.StatusOK {
		t.Fatalf("DELETE status=%d", del.StatusCode)
	}

	missing, err := http.Get(ts.URL + "/reports/" + id)
	if err != nil {
		t.Fatalf("GET missing: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing status=%d", missing.StatusCode)
	}

	bad, err := http.Get(ts.URL + "/reports?sort=cheapest")
	if err != nil {
		t.Fatalf("GET bad sort: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad sort status=%d", bad.StatusCode)
	}
}

func TestGETCatalog(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newTestServer(t).Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/catalog")
	if err != nil {
		t.Fatalf("GET /catalog: %v", err)
	}
	defer resp.Body.Close()
	var got CatalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.PropertyTypes) != 7 || got.Costs.ConstructionPerSqm != 1400 {
		t.Fatalf("types=%d costs=%+v", len(got.PropertyTypes), got.Costs)
	}
	for _, info := range got.PropertyTypes {
		if info.PropertyType == "villas" {
			if info.BorrowsFrom != "villa" || len(info.Districts) != 6 || info.BuildRatios.TopFloor != 0.9 {
				t.Fatalf("villas=%+v", info)
			}
		}
	}
}

func TestPredictAndCompare(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	req := domain.ReportRequest{PropertyType: "tower", District: catalog.DistrictYasmin, LandArea: 4000, NumFloors: 14}
	resp := postJSON(t, ts.URL+"/predict", req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("predict without models status=%d", resp.StatusCode)
	}

	c := catalog.Default()
	sampler, err := dataset.NewSampler(c, 5, nil)
	if err != nil {
		t.Fatalf("sampler: %v", err)
	}
	rows, err := dataset.NewGenerator(investment.NewEngine(c), 2).Generate(context.Background(), sampler.Samples(400))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	set, err := model.Train(rows, model.DefaultTrainOptions())
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	srv.SetModels(set)

	resp = postJSON(t, ts.URL+"/predict", req)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("predict status=%d", resp.StatusCode)
	}
	var p domain.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.TotalInvestment == 0 {
		t.Fatalf("prediction=%+v", p)
	}

	cmpResp := postJSON(t, ts.URL+"/compare", req)
	defer cmpResp.Body.Close()
	var cmp domain.Comparison
	if err := json.NewDecoder(cmpResp.Body).Decode(&cmp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cmpResp.StatusCode != http.StatusOK || cmp.Formula.TotalInvestment <= 0 {
		t.Fatalf("status=%d compare=%+v", cmpResp.StatusCode, cmp)
	}

	unknown := postJSON(t, ts.URL+"/predict", domain.ReportRequest{PropertyType: "villas", District: catalog.DistrictYasmin, LandArea: 4000, NumFloors: 3})
	unknown.Body.Close()
	if unknown.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("predict unseen type status=%d", unknown.StatusCode)
	}
}

func TestPOSTMatch(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newTestServer(t).Routes())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/match", domain.MatchRequest{District: catalog.DistrictMalqa, LandArea: 3000, NumFloors: 8, Limit: 3})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var got domain.MatchResult
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Candidates) != 3 || got.Candidates[0].Score < got.Candidates[2].Score {
		t.Fatalf("candidates=%+v", got.Candidates)
	}

	bad := postJSON(t, ts.URL+"/match", domain.MatchRequest{District: "Mars", LandArea: 3000, NumFloors: 8})
	bad.Body.Close()
	if bad.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unknown district status=%d", bad.StatusCode)
	}

	invalid := postJSON(t, ts.URL+"/match", domain.MatchRequest{District: catalog.DistrictMalqa, LandArea: -1, NumFloors: 8})
	invalid.Body.Close()
	if invalid.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid land status=%d", invalid.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(2, time.Hour)
	ts := httptest.NewServer(newTestServer(t).Handler(limiter))
	defer ts.Close()

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		resp, err := http.Get(ts.URL + "/health")
		if err != nil {
			t.Fatalf("GET /health: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatalf("request %d status=%d want=%d", i, resp.StatusCode, want)
		}
		if want == http.StatusTooManyRequests {
			retry, err := strconv.Atoi(resp.Header.Get("Retry-After"))
			if err != nil || retry < 1 || retry > 1800 {
				t.Fatalf("Retry-After=%q want 1..1800", resp.Header.Get("Retry-After"))
			}
		}
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if ok, _ := rl.Allow("a"); !ok {
		t.Fatalf("first request should pass")
	}
	if ok, wait := rl.Allow("a"); ok || wait != time.Minute {
		t.Fatalf("ok=%v wait=%v want rejected with 1m wait", ok, wait)
	}
	if ok, _ := rl.Allow("b"); !ok {
		t.Fatalf("clients have separate buckets")
	}
	now = now.Add(time.Minute)
	if ok, _ := rl.Allow("a"); !ok {
		t.Fatalf("bucket should refill after the window")
	}
}

func TestRateLimiter_ContinuousRefill(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("a"); !ok {
			t.Fatalf("request %d should pass", i)
		}
	}
	if ok, wait := rl.Allow("a"); ok || wait != 30*time.Second {
		t.Fatalf("ok=%v wait=%v want rejected with 30s wait", ok, wait)
	}
	now = now.Add(30 * time.Second)
	if ok, _ := rl.Allow("a"); !ok {
		t.Fatalf("one token should be back after half the window")
	}
	if ok, _ := rl.Allow("a"); ok {
		t.Fatalf("only one token should be back after half the window")
	}
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for _, c := range []string{"a", "b", "c"} {
		rl.Allow(c)
	}
	if rl.clients() != 3 {
		t.Fatalf("clients=%d want=3", rl.clients())
	}
	now = now.Add(2 * time.Minute)
	rl.Allow("d")
	if rl.clients() != 1 {
		t.Fatalf("clients=%d want=1 after idle buckets refilled", rl.clients())
	}
}

func TestDatasetStream(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newTestServer(t).Routes())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/dataset/stream?n=5&seed=9"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 5; i++ {
		var row domain.DatasetRow
		if err := conn.ReadJSON(&row); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
		if row.PropertyType == "" || row.TotalInvestment <= 0 {
			t.Fatalf("row %d=%+v", i, row)
		}
	}
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("err=%v want normal close", err)
	}

	resp, err := http.Get(ts.URL + "/dataset/stream?n=20000")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("oversized n status=%d", resp.StatusCode)
	}
}
