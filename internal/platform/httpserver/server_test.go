package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	analyticsservice "tallyroom/contexts/election-core/analytics-service"
	analyticslocal "tallyroom/contexts/election-core/analytics-service/adapters/local"
	resultservice "tallyroom/contexts/election-core/result-service"
	"tallyroom/contexts/election-core/result-service/domain/entities"
	resultports "tallyroom/contexts/election-core/result-service/ports"
	ussdservice "tallyroom/contexts/field-intake/ussd-service"
	ussdlocal "tallyroom/contexts/field-intake/ussd-service/adapters/local"
	directoryservice "tallyroom/contexts/registry/directory-service"
	"tallyroom/internal/platform/realtime"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	directoryModule := directoryservice.NewInMemoryModule(nil)
	hub := realtime.NewHub(nil)

	resultModule := resultservice.NewInMemoryModule(nil, nil)
	resultModule.Store.SetCenter(resultports.CenterProjection{
		CenterID:         "center-1",
		Code:             "PC-001",
		Name:             "Unity Primary",
		RegisteredVoters: 1000,
		Active:           true,
	})
	resultModule.Store.SetActor(resultports.ActorProjection{ActorID: "agent-1", Role: entities.RoleAgent, Approved: true})
	resultModule.Store.SetActor(resultports.ActorProjection{ActorID: "reviewer-1", Role: entities.RoleReviewer, Approved: true})

	analyticsModule := analyticsservice.NewModule(analyticsservice.Dependencies{
		Results:   analyticslocal.ResultSource{Repo: resultModule.Store},
		Centers:   analyticslocal.CenterSource{Repo: directoryModule.Store},
		Publisher: hub,
	})

	ussdModule := ussdservice.NewInMemoryModule(
		ussdlocal.DirectoryClient{Directory: directoryModule.Service},
		ussdlocal.ResultClient{Results: resultModule.Service},
		0,
		nil,
	)

	server := New(directoryModule, resultModule, analyticsModule, ussdModule, hub, nil, "")
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, userID, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return resp, payload
}

func TestSubmitRequiresUserHeader(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/results", "", `{}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestSubmitReviewRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	resp, payload := doJSON(t, http.MethodPost, ts.URL+"/api/v1/results", "agent-1",
		`{"center_id":"center-1","channel":"ussd","votes":{"president":{"cand-a":400,"cand-b":300}},"invalid_votes":25}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, payload)
	}
	var submitted struct {
		ResultID   string `json:"result_id"`
		Status     string `json:"status"`
		TotalVotes int    `json:"total_votes"`
	}
	if err := json.Unmarshal(payload, &submitted); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if submitted.Status != "pending" || submitted.TotalVotes != 725 {
		t.Fatalf("unexpected submission %+v", submitted)
	}

	resp, payload = doJSON(t, http.MethodPost, ts.URL+"/api/v1/results/"+submitted.ResultID+"/review", "reviewer-1",
		`{"action":"approve"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
	}
	var reviewed struct {
		Status     string `json:"status"`
		VerifiedBy string `json:"verified_by"`
	}
	if err := json.Unmarshal(payload, &reviewed); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if reviewed.Status != "verified" || reviewed.VerifiedBy != "reviewer-1" {
		t.Fatalf("unexpected review outcome %+v", reviewed)
	}

	resp, payload = doJSON(t, http.MethodGet, ts.URL+"/api/v1/results/"+submitted.ResultID+"/transitions", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var transitions struct {
		Items []struct {
			Action string `json:"action"`
		} `json:"items"`
	}
	if err := json.Unmarshal(payload, &transitions); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(transitions.Items) != 2 || transitions.Items[0].Action != "submit" || transitions.Items[1].Action != "approve" {
		t.Fatalf("expected submit then approve, got %+v", transitions.Items)
	}
}

func TestReviewByAgentIsForbidden(t *testing.T) {
	ts := newTestServer(t)

	resp, payload := doJSON(t, http.MethodPost, ts.URL+"/api/v1/results", "agent-1",
		`{"center_id":"center-1","channel":"ussd","votes":{"president":{"cand-a":100}}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, payload)
	}
	var submitted struct {
		ResultID string `json:"result_id"`
	}
	if err := json.Unmarshal(payload, &submitted); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/v1/results/"+submitted.ResultID+"/review", "agent-1",
		`{"action":"approve"}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestAnalyticsSummaryServesSnapshot(t *testing.T) {
	ts := newTestServer(t)

	resp, payload := doJSON(t, http.MethodGet, ts.URL+"/api/v1/analytics/summary", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var snapshot struct {
		TotalResults int `json:"total_results"`
	}
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
}

func TestUSSDCallbackSpeaksPlainText(t *testing.T) {
	ts := newTestServer(t)

	form := url.Values{
		"sessionId":   {"sess-1"},
		"phoneNumber": {"233200000001"},
		"text":        {""},
	}
	resp, err := http.PostForm(ts.URL+"/ussd/callback", form)
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected plain text, got %q", ct)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	body := string(payload)
	if !strings.HasPrefix(body, "CON ") || !strings.Contains(body, "1. Submit results") {
		t.Fatalf("unexpected reply %q", body)
	}
}
