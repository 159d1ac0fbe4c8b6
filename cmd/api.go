package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/directory-cli/internal/company"
	"github.com/sells-group/directory-cli/internal/listing"
	"github.com/sells-group/directory-cli/internal/seo"
)

// dedupeService is the part of company.Resolver the API uses.
type dedupeService interface {
	FindCompanyDuplicate(ctx context.Context, c company.CompanyCandidate) (*company.CompanyMatch, error)
	FindContactDuplicate(ctx context.Context, c company.ContactCandidate) (*company.ContactMatch, error)
	ResolveCompany(ctx context.Context, c company.CompanyCandidate) (*company.CompanyResolution, error)
	ResolveContact(ctx context.Context, c company.ContactCandidate) (*company.ContactResolution, error)
}

// locationRanker is the part of listing.Service the API uses.
type locationRanker interface {
	RankLocation(ctx context.Context, loc seo.Location, limit int) ([]listing.Ranked, error)
}

// apiDeps holds everything buildRouter needs.
type apiDeps struct {
	Dedupe      dedupeService
	Ranker      locationRanker
	Gatherer    prometheus.Gatherer
	Ping        func(ctx context.Context) error
	CORSOrigins []string
	RateLimit   float64 // requests per second; 0 disables limiting
	RateBurst   int
}

// buildRouter wires routes and middleware.
func buildRouter(d apiDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler(d.Ping))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		if d.RateLimit > 0 {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(d.RateLimit), max(d.RateBurst, 1))))
		}
		r.Get("/rentals/{state}/{city}", rentalsHandler(d.Ranker))
		r.Post("/companies/duplicates", findCompanyHandler(d.Dedupe))
		r.Post("/contacts/duplicates", findContactHandler(d.Dedupe))
		r.Post("/companies", resolveCompanyHandler(d.Dedupe))
		r.Post("/contacts", resolveContactHandler(d.Dedupe))
	})
	return r
}

func healthHandler(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type rentalsResponse struct {
	Location  seo.Location     `json:"location" yaml:"location"`
	Canonical string           `json:"canonical" yaml:"canonical"`
	Listings  []listing.Ranked `json:"listings" yaml:"listings"`
}

func newRentalsResponse(loc seo.Location, page []listing.Ranked) rentalsResponse {
	if page == nil {
		page = []listing.Ranked{}
	}
	return rentalsResponse{Location: loc, Canonical: loc.Path(), Listings: page}
}

func rentalsHandler(ranker locationRanker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := seo.ParseLocation(chi.URLParam(r, "state"), chi.URLParam(r, "city"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}

		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			if limit, err = strconv.Atoi(s); err != nil || limit < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
		}

		page, err := ranker.RankLocation(r.Context(), loc, limit)
		if err != nil {
			internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newRentalsResponse(loc, page))
	}
}

type duplicateResponse struct {
	Duplicate bool `json:"duplicate"`
	Match     any  `json:"match,omitempty"`
}

func findCompanyHandler(svc dedupeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c company.CompanyCandidate
		if !decodeBody(w, r, &c) {
			return
		}
		if blank(c.Name, c.Website) {
			writeError(w, http.StatusBadRequest, "name or website is required")
			return
		}
		m, err := svc.FindCompanyDuplicate(r.Context(), c)
		if err != nil {
			internalError(w, r, err)
			return
		}
		if m == nil {
			writeJSON(w, http.StatusOK, duplicateResponse{})
			return
		}
		writeJSON(w, http.StatusOK, duplicateResponse{Duplicate: true, Match: m})
	}
}

func findContactHandler(svc dedupeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c company.ContactCandidate
		if !decodeBody(w, r, &c) {
			return
		}
		if c.CompanyID == 0 {
			writeError(w, http.StatusBadRequest, "company_id is required")
			return
		}
		m, err := svc.FindContactDuplicate(r.Context(), c)
		if err != nil {
			internalError(w, r, err)
			return
		}
		if m == nil {
			writeJSON(w, http.StatusOK, duplicateResponse{})
			return
		}
		writeJSON(w, http.StatusOK, duplicateResponse{Duplicate: true, Match: m})
	}
}

func resolveCompanyHandler(svc dedupeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c company.CompanyCandidate
		if !decodeBody(w, r, &c) {
			return
		}
		if blank(c.Name) {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		res, err := svc.ResolveCompany(r.Context(), c)
		if err != nil {
			internalError(w, r, err)
			return
		}
		writeJSON(w, outcomeStatus(res.Outcome), res)
	}
}

func resolveContactHandler(svc dedupeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c company.ContactCandidate
		if !decodeBody(w, r, &c) {
			return
		}
		if c.CompanyID == 0 {
			writeError(w, http.StatusBadRequest, "company_id is required")
			return
		}
		if blank(c.FirstName, c.LastName, c.Email) {
			writeError(w, http.StatusBadRequest, "a name or email is required")
			return
		}
		res, err := svc.ResolveContact(r.Context(), c)
		if err != nil {
			internalError(w, r, err)
			return
		}
		writeJSON(w, outcomeStatus(res.Outcome), res)
	}
}

// blank reports whether every field is empty after trimming.
func blank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func outcomeStatus(o company.Outcome) int {
	if o == company.OutcomeCreated {
		return http.StatusCreated
	}
	return http.StatusOK
}

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// rateLimit rejects requests beyond the limiter's budget with 429.
func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
