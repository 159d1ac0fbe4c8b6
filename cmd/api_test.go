package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/directory-cli/internal/company"
	"github.com/sells-group/directory-cli/internal/listing"
	"github.com/sells-group/directory-cli/internal/ranking"
	"github.com/sells-group/directory-cli/internal/seo"
)

type fakeDedupe struct {
	companyMatch *company.CompanyMatch
	contactMatch *company.ContactMatch
	companyRes   *company.CompanyResolution
	contactRes   *company.ContactResolution
	err          error

	gotCompany company.CompanyCandidate
	gotContact company.ContactCandidate
}

func (f *fakeDedupe) FindCompanyDuplicate(_ context.Context, c company.CompanyCandidate) (*company.CompanyMatch, error) {
	f.gotCompany = c
	return f.companyMatch, f.err
}

func (f *fakeDedupe) FindContactDuplicate(_ context.Context, c company.ContactCandidate) (*company.ContactMatch, error) {
	f.gotContact = c
	return f.contactMatch, f.err
}

func (f *fakeDedupe) ResolveCompany(_ context.Context, c company.CompanyCandidate) (*company.CompanyResolution, error) {
	f.gotCompany = c
	return f.companyRes, f.err
}

func (f *fakeDedupe) ResolveContact(_ context.Context, c company.ContactCandidate) (*company.ContactResolution, error) {
	f.gotContact = c
	return f.contactRes, f.err
}

type fakeRanker struct {
	page     []listing.Ranked
	err      error
	gotLoc   seo.Location
	gotLimit int
}

func (f *fakeRanker) RankLocation(_ context.Context, loc seo.Location, limit int) ([]listing.Ranked, error) {
	f.gotLoc = loc
	f.gotLimit = limit
	return f.page, f.err
}

func newTestRouter(d *fakeDedupe, r *fakeRanker) http.Handler {
	return buildRouter(apiDeps{Dedupe: d, Ranker: r})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := buildRouter(apiDeps{Ping: func(context.Context) error { return nil }})
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	h = buildRouter(apiDeps{Ping: func(context.Context) error { return errors.New("down") }})
	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRentals(t *testing.T) {
	ranker := &fakeRanker{page: []listing.Ranked{{
		Position: 1,
		Listing:  listing.Listing{ID: 7, Slug: "ocean-view", Tier: ranking.TierGold},
		Score:    ranking.Breakdown{Total: 320},
	}}}
	h := newTestRouter(&fakeDedupe{}, ranker)

	rec := do(t, h, http.MethodGet, "/v1/rentals/florida/miami-beach?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rentalsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FL", resp.Location.State)
	assert.Equal(t, "Miami Beach", resp.Location.City)
	assert.Equal(t, "/rentals/fl/miami-beach", resp.Canonical)
	require.Len(t, resp.Listings, 1)
	assert.Equal(t, int64(7), resp.Listings[0].Listing.ID)
	assert.Equal(t, 5, ranker.gotLimit)
	assert.Equal(t, "miami-beach", ranker.gotLoc.CitySlug)
}

func TestRentals_EmptyPageIsArray(t *testing.T) {
	h := newTestRouter(&fakeDedupe{}, &fakeRanker{})
	rec := do(t, h, http.MethodGet, "/v1/rentals/ny/albany", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"listings":[]`)
}

func TestRentals_Errors(t *testing.T) {
	h := newTestRouter(&fakeDedupe{}, &fakeRanker{})

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/v1/rentals/atlantis/city", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/v1/rentals/fl/miami?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/v1/rentals/fl/miami?limit=abc", "").Code)

	h = newTestRouter(&fakeDedupe{}, &fakeRanker{err: errors.New("db gone")})
	rec := do(t, h, http.MethodGet, "/v1/rentals/fl/miami", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db gone")
}

func TestFindCompanyDuplicate(t *testing.T) {
	d := &fakeDedupe{companyMatch: &company.CompanyMatch{
		Company:    &company.CompanyRecord{ID: 3, Name: "Acme"},
		Reason:     company.ReasonNormalizedName,
		Confidence: 1,
	}}
	h := newTestRouter(d, &fakeRanker{})

	rec := do(t, h, http.MethodPost, "/v1/companies/duplicates", `{"name":"ACME Inc.","website":"acme.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ACME Inc.", d.gotCompany.Name)

	var resp struct {
		Duplicate bool                 `json:"duplicate"`
		Match     company.CompanyMatch `json:"match"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Duplicate)
	assert.Equal(t, int64(3), resp.Match.Company.ID)
	assert.Equal(t, company.ReasonNormalizedName, resp.Match.Reason)
}

func TestFindCompanyDuplicate_NoMatch(t *testing.T) {
	h := newTestRouter(&fakeDedupe{}, &fakeRanker{})
	rec := do(t, h, http.MethodPost, "/v1/companies/duplicates", `{"name":"Nobody"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"duplicate":false}`, rec.Body.String())
}

func TestFindContactDuplicate(t *testing.T) {
	d := &fakeDedupe{contactMatch: &company.ContactMatch{
		Contact:      &company.Contact{ID: 9, CompanyID: 2},
		Reason:       company.ReasonEmail,
		Confidence:   1,
		CrossCompany: true,
	}}
	h := newTestRouter(d, &fakeRanker{})

	rec := do(t, h, http.MethodPost, "/v1/contacts/duplicates", `{"company_id":1,"email":"jo@acme.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cross_company":true`)
	assert.Equal(t, int64(1), d.gotContact.CompanyID)
}

func TestDuplicateHandlers_BadRequests(t *testing.T) {
	h := newTestRouter(&fakeDedupe{}, &fakeRanker{})

	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/v1/companies/duplicates", `{"name":`},
		{"unknown field", "/v1/companies/duplicates", `{"name":"x","bogus":1}`},
		{"empty company", "/v1/companies/duplicates", `{}`},
		{"contact without company", "/v1/contacts/duplicates", `{"email":"a@b.com"}`},
		{"resolve company without name", "/v1/companies", `{"website":"acme.com"}`},
		{"resolve company with blank name", "/v1/companies", `{"name":"   ","website":"acme.com"}`},
		{"blank company", "/v1/companies/duplicates", `{"name":" ","website":"\t"}`},
		{"resolve contact with blank identity", "/v1/contacts", `{"company_id":1,"first_name":" ","email":"  "}`},
		{"resolve contact without identity", "/v1/contacts", `{"company_id":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestResolveCompany_StatusByOutcome(t *testing.T) {
	d := &fakeDedupe{companyRes: &company.CompanyResolution{
		Company: &company.CompanyRecord{ID: 11, Name: "Acme"},
		Outcome: company.OutcomeCreated,
	}}
	h := newTestRouter(d, &fakeRanker{})

	rec := do(t, h, http.MethodPost, "/v1/companies", `{"name":"Acme"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	d.companyRes.Outcome = company.OutcomeMerged
	rec = do(t, h, http.MethodPost, "/v1/companies", `{"name":"Acme"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"merged"`)
}

func TestResolveContact(t *testing.T) {
	d := &fakeDedupe{contactRes: &company.ContactResolution{
		Contact: &company.Contact{ID: 4, CompanyID: 1, FirstName: "Jo"},
		Outcome: company.OutcomeUnchanged,
	}}
	h := newTestRouter(d, &fakeRanker{})

	rec := do(t, h, http.MethodPost, "/v1/contacts", `{"company_id":1,"first_name":"Jo","last_name":"Smith"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Smith", d.gotContact.LastName)

	d.err = errors.New("boom")
	rec = do(t, h, http.MethodPost, "/v1/contacts", `{"company_id":1,"first_name":"Jo"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := buildRouter(apiDeps{Dedupe: &fakeDedupe{}, Ranker: &fakeRanker{}, RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/v1/rentals/fl/miami", "").Code)
	rec := do(t, h, http.MethodGet, "/v1/rentals/fl/miami", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Health is outside the limited group.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_requests_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	h := buildRouter(apiDeps{Gatherer: reg})
	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_requests_total 1")

	h = buildRouter(apiDeps{})
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", "").Code)
}
