package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/tax-harvester/internal/application/services"
	"github.com/bimakw/tax-harvester/internal/domain/entities"
	"github.com/bimakw/tax-harvester/internal/infrastructure/session"
	"github.com/bimakw/tax-harvester/internal/testutil"
)

const unknownSessionID = "7f1d2c4e-8a9b-4c3d-9e0f-1a2b3c4d5e6f"

func setupSessionHandlerTest() *chi.Mux {
	logger := zap.NewNop()
	service := services.NewHarvestService(
		testutil.NewTestDataset(),
		testutil.TestBaseline(),
		session.NewMemoryStore(),
		nil,
		logger,
	)

	r := chi.NewRouter()
	NewSessionHandler(service, logger).RegisterRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, r http.Handler) string {
	t.Helper()

	rec := do(t, r, http.MethodPost, "/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var response services.SessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response.Data.ID
}

func decodeSelection(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()

	var response services.SelectionResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response.Data.IDs
}

func TestSessionHandler_Lifecycle(t *testing.T) {
	r := setupSessionHandlerTest()
	id := startSession(t, r)

	rec := do(t, r, http.MethodGet, "/sessions/"+id, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	rec = do(t, r, http.MethodDelete, "/sessions/"+id, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}

	rec = do(t, r, http.MethodGet, "/sessions/"+id+"/selection", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after end, got %d", rec.Code)
	}
}

func TestSessionHandler_SelectionFlow(t *testing.T) {
	r := setupSessionHandlerTest()
	id := startSession(t, r)
	base := "/sessions/" + id

	rec := do(t, r, http.MethodPost, base+"/selection/eth/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ids := decodeSelection(t, rec); len(ids) != 1 || ids[0] != testutil.EthereumID {
		t.Errorf("expected [eth], got %v", ids)
	}

	rec = do(t, r, http.MethodGet, base+"/selection/eth", "")
	var status services.SelectionStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !status.Data.Selected {
		t.Error("expected eth selected")
	}

	rec = do(t, r, http.MethodPut, base+"/selection", `{"ids": ["sol", "btc"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ids := decodeSelection(t, rec); len(ids) != 2 || ids[0] != testutil.SolanaID {
		t.Errorf("expected [sol btc], got %v", ids)
	}

	rec = do(t, r, http.MethodDelete, base+"/selection", "")
	if ids := decodeSelection(t, rec); len(ids) != 0 {
		t.Errorf("expected empty selection, got %v", ids)
	}
}

func TestSessionHandler_Summary(t *testing.T) {
	r := setupSessionHandlerTest()
	id := startSession(t, r)

	do(t, r, http.MethodPost, "/sessions/"+id+"/selection/btc/toggle", "")

	rec := do(t, r, http.MethodGet, "/sessions/"+id+"/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response services.SummaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Data.ShowSavings {
		t.Error("expected savings shown")
	}
	if response.Data.SavingsMessage != "You are going to save up to $220.00" {
		t.Errorf("unexpected message %q", response.Data.SavingsMessage)
	}
}

func TestSessionHandler_HoldingsSortAndPageSelection(t *testing.T) {
	r := setupSessionHandlerTest()
	id := startSession(t, r)
	base := "/sessions/" + id

	rec := do(t, r, http.MethodPost, base+"/holdings/sort/ltcg", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var sortResponse services.SortResponse
	if err := json.NewDecoder(rec.Body).Decode(&sortResponse); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if sortResponse.Data.Order != "asc" {
		t.Errorf("expected asc, got %s", sortResponse.Data.Order)
	}

	// ltcg ascending: eth(-80), sol(0), usdc(0), btc(30)
	rec = do(t, r, http.MethodPut, base+"/holdings/page-selection", `{"selected": true, "limit": 1}`)
	if ids := decodeSelection(t, rec); len(ids) != 1 || ids[0] != testutil.EthereumID {
		t.Errorf("expected [eth], got %v", ids)
	}

	rec = do(t, r, http.MethodGet, base+"/holdings", "")
	var page services.HoldingsPageResponse
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if page.Data[0].ID != testutil.EthereumID || !page.Data[0].Selected {
		t.Errorf("expected eth first and selected, got %+v", page.Data[0])
	}
	if page.Selection.Selected != 1 {
		t.Errorf("expected 1 selected, got %d", page.Selection.Selected)
	}
}

func TestSessionHandler_Errors(t *testing.T) {
	r := setupSessionHandlerTest()
	id := startSession(t, r)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{"malformed session id", http.MethodGet, "/sessions/not-a-uuid/selection", "", http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/sessions/" + unknownSessionID + "/summary", "", http.StatusNotFound},
		{"unknown session toggle", http.MethodPost, "/sessions/" + unknownSessionID + "/selection/btc/toggle", "", http.StatusNotFound},
		{"invalid sort column", http.MethodPost, "/sessions/" + id + "/holdings/sort/price", "", http.StatusBadRequest},
		{"invalid body", http.MethodPut, "/sessions/" + id + "/selection", "{", http.StatusBadRequest},
		{"invalid page window", http.MethodPut, "/sessions/" + id + "/holdings/page-selection", `{"limit": 1000}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}

			var response map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response["error"] == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestSessionHandler_ToggleAnyDatasetID(t *testing.T) {
	wrapped := "wrapped btc"
	long := strings.Repeat("x", 80)

	dataset, err := entities.NewDataset([]entities.HoldingRecord{
		testutil.CreateTestHolding(testutil.WithID(wrapped)),
		testutil.CreateTestHolding(testutil.WithID(long)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := zap.NewNop()
	service := services.NewHarvestService(dataset, testutil.TestBaseline(), session.NewMemoryStore(), nil, logger)
	r := chi.NewRouter()
	NewSessionHandler(service, logger).RegisterRoutes(r)

	id := startSession(t, r)
	toggle := func(holdingID string) []string {
		t.Helper()
		rec := do(t, r, http.MethodPost, "/sessions/"+id+"/selection/"+url.PathEscape(holdingID)+"/toggle", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle %q: expected status 200, got %d", holdingID, rec.Code)
		}
		return decodeSelection(t, rec)
	}

	if got := toggle(wrapped); !reflect.DeepEqual(got, []string{wrapped}) {
		t.Errorf("expected [%s], got %v", wrapped, got)
	}
	if got := toggle(long); !reflect.DeepEqual(got, []string{wrapped, long}) {
		t.Errorf("expected both ids selected, got %v", got)
	}
	if got := toggle("no such coin"); !reflect.DeepEqual(got, []string{wrapped, long}) {
		t.Errorf("unknown id changed selection: %v", got)
	}

	rec := do(t, r, http.MethodGet, "/sessions/"+id+"/selection/"+url.PathEscape(wrapped), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var status services.SelectionStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !status.Data.Selected {
		t.Errorf("expected %q to be selected", wrapped)
	}
}
