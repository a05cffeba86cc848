package httpserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ballotengine "quorum/contexts/election/ballot-engine"
	"quorum/contexts/election/ballot-engine/domain/entities"
	"quorum/contexts/election/ballot-engine/ports"
	candidatecatalog "quorum/contexts/election/candidate-catalog"
)

func newTestServer() *Server {
	ballots := ballotengine.NewInMemoryModule(nil, nil)
	state := entities.DefaultElectionState()
	state.Phase = entities.PhaseRound1Voting
	state.Round1DirectorMaxApprove = 1
	ballots.Store.SetState(state)
	ballots.Store.SetCandidate(ports.CandidateProjection{
		CandidateID: "cand-1", Name: "Director One", Category: entities.CategoryDirector,
	})
	ballots.Store.SetCandidate(ports.CandidateProjection{
		CandidateID: "cand-2", Name: "Director Two", Category: entities.CategoryDirector,
	})

	catalog := candidatecatalog.NewInMemoryModule(nil, nil)
	return New(ballots, catalog, nil, ":0")
}

func doJSON(t *testing.T, server *Server, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request failed: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func TestSubmitStatusCodes(t *testing.T) {
	server := newTestServer()

	ok := doJSON(t, server, http.MethodPost, "/api/vote/submit", map[string]any{
		"voter_id": "voter-1",
		"round":    1,
		"votes":    map[string]string{"cand-1": "approve"},
	})
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", ok.Code, ok.Body.String())
	}

	dup := doJSON(t, server, http.MethodPost, "/api/vote/submit", map[string]any{
		"voter_id": "voter-1",
		"round":    1,
		"votes":    map[string]string{"cand-2": "approve"},
	})
	if dup.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate batch, got %d body=%s", dup.Code, dup.Body.String())
	}

	overQuota := doJSON(t, server, http.MethodPost, "/api/vote/submit", map[string]any{
		"voter_id": "voter-2",
		"round":    1,
		"votes":    map[string]string{"cand-1": "approve", "cand-2": "approve"},
	})
	if overQuota.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for quota breach, got %d body=%s", overQuota.Code, overQuota.Body.String())
	}

	malformed := doJSON(t, server, http.MethodPost, "/api/vote/submit", map[string]any{
		"voter_id": "voter-3",
		"round":    1,
		"votes":    map[string]string{"cand-1": "maybe"},
	})
	if malformed.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad vote type, got %d body=%s", malformed.Code, malformed.Body.String())
	}

	wrongRound := doJSON(t, server, http.MethodPost, "/api/vote/submit", map[string]any{
		"voter_id": "voter-3",
		"round":    2,
		"votes":    map[string]string{"cand-1": "approve"},
	})
	if wrongRound.Code != http.StatusConflict {
		t.Fatalf("expected 409 for closed round, got %d body=%s", wrongRound.Code, wrongRound.Body.String())
	}
}

func TestTransitionStatusCodes(t *testing.T) {
	server := newTestServer()

	repeat := doJSON(t, server, http.MethodPost, "/api/admin/round/start-round1", nil)
	if repeat.Code != http.StatusConflict {
		t.Fatalf("expected 409 repeating start-round1, got %d body=%s", repeat.Code, repeat.Body.String())
	}

	unknown := doJSON(t, server, http.MethodPost, "/api/admin/round/restart", nil)
	if unknown.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown command, got %d body=%s", unknown.Code, unknown.Body.String())
	}

	end := doJSON(t, server, http.MethodPost, "/api/admin/round/end-round1", nil)
	if end.Code != http.StatusOK {
		t.Fatalf("expected 200 for end-round1, got %d body=%s", end.Code, end.Body.String())
	}
}

func TestVoteReadEndpoints(t *testing.T) {
	server := newTestServer()

	status := doJSON(t, server, http.MethodGet, "/api/vote/status", nil)
	if status.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", status.Code)
	}

	candidates := doJSON(t, server, http.MethodGet, "/api/vote/candidates?round=1", nil)
	if candidates.Code != http.StatusOK {
		t.Fatalf("candidates: expected 200, got %d", candidates.Code)
	}

	badRound := doJSON(t, server, http.MethodGet, "/api/vote/results/9", nil)
	if badRound.Code != http.StatusBadRequest {
		t.Fatalf("results round 9: expected 400, got %d", badRound.Code)
	}

	check := doJSON(t, server, http.MethodGet, "/api/vote/check?voter_id=voter-9&round=1", nil)
	if check.Code != http.StatusOK {
		t.Fatalf("check: expected 200, got %d", check.Code)
	}

	live := doJSON(t, server, http.MethodGet, "/api/vote/live", nil)
	if live.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", live.Code)
	}
}

func TestAdminCandidateEndpoints(t *testing.T) {
	server := newTestServer()

	created := doJSON(t, server, http.MethodPost, "/api/admin/candidates", map[string]string{
		"name":     "Jane Doe",
		"category": "director",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%s", created.Code, created.Body.String())
	}
	var candidate struct {
		CandidateID string `json:"candidate_id"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &candidate); err != nil {
		t.Fatalf("decode create response failed: %v", err)
	}

	missing := doJSON(t, server, http.MethodGet, "/api/admin/candidates/nope", nil)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("get missing: expected 404, got %d", missing.Code)
	}

	qualified := doJSON(t, server, http.MethodPut, "/api/admin/round2/qualified", map[string]any{
		"candidate_ids": []string{candidate.CandidateID},
	})
	if qualified.Code != http.StatusOK {
		t.Fatalf("replace qualified: expected 200, got %d body=%s", qualified.Code, qualified.Body.String())
	}

	deleted := doJSON(t, server, http.MethodDelete, "/api/admin/candidates/"+candidate.CandidateID, nil)
	if deleted.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d body=%s", deleted.Code, deleted.Body.String())
	}
}

func TestAdminImportEndpoint(t *testing.T) {
	server := newTestServer()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "candidates.csv")
	if err != nil {
		t.Fatalf("create form file failed: %v", err)
	}
	if _, err := part.Write([]byte("name,title,description,category,resume_url\nImported Person,Ops,,manager,\n")); err != nil {
		t.Fatalf("write csv failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/candidates/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"imported":1`) {
		t.Fatalf("unexpected import response: %s", rr.Body.String())
	}

	template := doJSON(t, server, http.MethodGet, "/api/admin/candidates/template", nil)
	if template.Code != http.StatusOK {
		t.Fatalf("template: expected 200, got %d", template.Code)
	}
	if got := template.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("template content type: expected text/csv, got %s", got)
	}
}

func TestConfigEndpoints(t *testing.T) {
	server := newTestServer()

	get := doJSON(t, server, http.MethodGet, "/api/admin/config", nil)
	if get.Code != http.StatusOK {
		t.Fatalf("get config: expected 200, got %d", get.Code)
	}

	update := doJSON(t, server, http.MethodPut, "/api/admin/config", map[string]int{
		"round2_manager_max_approve": 3,
	})
	if update.Code != http.StatusOK {
		t.Fatalf("update config: expected 200, got %d body=%s", update.Code, update.Body.String())
	}
	if !strings.Contains(update.Body.String(), `"round2_manager_max_approve":3`) {
		t.Fatalf("config update not reflected: %s", update.Body.String())
	}
}
