package placement

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, f *fixture) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(f.svc).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, body string, actor *Actor) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set("x-actor-id", actor.ID)
		req.Header.Set("x-actor-party", string(actor.Party))
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHandler_NoteSegmentRecordsObservation(t *testing.T) {
	f := newFixture(t)
	tr := f.trainee(t, "ana@example.com")
	c := f.company(t, "Acme", 1)
	app := f.apply(t, tr, c)
	srv := newTestServer(t, f)

	actor := companyActor(c)
	resp := doJSON(t, srv, http.MethodPost, "/applications/"+app.ID+"/note",
		`{"comment":"reviewing profile"}`, &actor)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got Application
	decodeBody(t, resp, &got)
	if got.State != AppPending {
		t.Errorf("state = %s, want PENDING (notes never change state)", got.State)
	}
	if !got.CompanyResponded || got.CompanyNote != "reviewing profile" {
		t.Errorf("note not recorded: responded=%v note=%q", got.CompanyResponded, got.CompanyNote)
	}
}

func TestHandler_UnknownActionSegment(t *testing.T) {
	f := newFixture(t)
	tr := f.trainee(t, "ana@example.com")
	c := f.company(t, "Acme", 1)
	app := f.apply(t, tr, c)
	srv := newTestServer(t, f)

	actor := companyActor(c)
	for _, segment := range []string{"shred", "expire", "add_note"} {
		resp := doJSON(t, srv, http.MethodPost, "/applications/"+app.ID+"/"+segment, "", &actor)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("POST …/%s status = %d, want 404", segment, resp.StatusCode)
		}
	}
}

func TestHandler_ListStateFilter(t *testing.T) {
	f := newFixture(t)
	tr := f.trainee(t, "ana@example.com")
	a := f.company(t, "Acme", 1)
	b := f.company(t, "Borealis", 1)

	first := f.apply(t, tr, a)
	if _, err := f.svc.Transition(context.Background(), first.ID, ActionReject, companyActor(a), ""); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.svc.Transition(context.Background(), first.ID, ActionAddNote, traineeActor(tr), "ok"); err != nil {
		t.Fatalf("note: %v", err)
	}
	f.advanceBusinessDays(15)
	f.apply(t, tr, b)

	srv := newTestServer(t, f)
	resp := doJSON(t, srv, http.MethodGet, "/applications?trainee="+tr.ID+"&state=PENDING", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got struct {
		Applications []Application `json:"applications"`
		Summary      Summary       `json:"summary"`
	}
	decodeBody(t, resp, &got)
	if len(got.Applications) != 1 || got.Applications[0].State != AppPending {
		t.Errorf("filtered list = %+v, want exactly the PENDING application", got.Applications)
	}
	// The summary keeps counting the full set.
	if got.Summary.Pending != 1 || got.Summary.Available != 1 {
		t.Errorf("summary = %+v, want one PENDING and one AVAILABLE", got.Summary)
	}

	resp = doJSON(t, srv, http.MethodGet, "/applications?trainee="+tr.ID+"&state=bogus", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid state filter status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_UpdateCompanyState(t *testing.T) {
	f := newFixture(t)
	tr := f.trainee(t, "ana@example.com")
	c := f.company(t, "Acme", 1)
	srv := newTestServer(t, f)

	resp := doJSON(t, srv, http.MethodPost, "/companies/"+c.ID+"/state",
		`{"state":"CONTRACT_NULL"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got Company
	decodeBody(t, resp, &got)
	if got.State != CompanyContractNull {
		t.Errorf("state = %s, want CONTRACT_NULL", got.State)
	}

	// A closed company stops passing the eligibility guard.
	_, err := f.svc.CreateApplication(context.Background(), tr.ID, c.ID, traineeActor(tr))
	if !HasCode(err, CodeCompanyNotAccepting) {
		t.Errorf("error = %v, want COMPANY_NOT_ACCEPTING_APPLICATIONS", err)
	}

	resp = doJSON(t, srv, http.MethodPost, "/companies/"+c.ID+"/state", `{"state":"CLOSED"}`, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown state status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, srv, http.MethodPost, "/companies/missing/state", `{"state":"AVAILABLE"}`, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown company status = %d, want 404", resp.StatusCode)
	}
}
