package company

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/normalize"
	"github.com/sells-group/directory-cli/internal/resilience"
)

// Resolver finds duplicate companies and contacts and resolves candidates
// into persisted records.
type Resolver struct {
	store   Store
	cfg     config.DedupeConfig
	metrics *Metrics
	retry   resilience.RetryConfig
}

// NewResolver creates a resolver. metrics may be nil.
func NewResolver(store Store, cfg config.DedupeConfig, metrics *Metrics) *Resolver {
	retry := resilience.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}
	retry.ShouldRetry = resilience.IsRetryableTx
	return &Resolver{store: store, cfg: cfg, metrics: metrics, retry: retry}
}

func (r *Resolver) scope() EmailScope {
	if EmailScope(r.cfg.EmailScope) == EmailScopeCompany {
		return EmailScopeCompany
	}
	return EmailScopeGlobal
}

// FindCompanyDuplicate returns the most likely persisted duplicate of c, or
// nil when creating c is safe. It never writes.
func (r *Resolver) FindCompanyDuplicate(ctx context.Context, c CompanyCandidate) (*CompanyMatch, error) {
	m, err := r.findCompany(ctx, r.store, c)
	if err != nil {
		return nil, eris.Wrap(err, "company: find duplicate")
	}
	r.metrics.observeLookup("company", matchReason(m))
	return m, nil
}

// FindContactDuplicate returns the most likely persisted duplicate of c, or
// nil when creating c is safe. It never writes.
func (r *Resolver) FindContactDuplicate(ctx context.Context, c ContactCandidate) (*ContactMatch, error) {
	if c.CompanyID == 0 {
		return nil, eris.New("company: contact candidate requires a company id")
	}
	matches, err := r.findContact(ctx, r.store, c)
	if err != nil {
		return nil, eris.Wrap(err, "company: find contact duplicate")
	}
	m := matches.best()
	r.metrics.observeLookup("contact", contactReason(m))
	if m != nil && m.CrossCompany {
		r.metrics.incCrossCompany()
	}
	return m, nil
}

// ResolveCompany finds a duplicate of c and merges into it, or creates c.
// The lookup and the write share one transaction holding advisory locks on
// the candidate's keys, so concurrent resolutions of the same company
// serialize. A unique violation from a racing writer retries the whole
// transaction.
func (r *Resolver) ResolveCompany(ctx context.Context, c CompanyCandidate) (*CompanyResolution, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, eris.New("company: name is required")
	}

	retry := r.retry
	retry.OnRetry = resilience.RetryLogger("resolve company")

	res, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*CompanyResolution, error) {
		var res *CompanyResolution
		err := r.store.WithinTx(ctx, func(tx Store) error {
			if err := lockAll(ctx, tx, companyLockKeys(c)); err != nil {
				return err
			}

			m, err := r.findCompany(ctx, tx, c)
			if err != nil {
				return err
			}

			if m == nil {
				rec := NewCompanyRecord(c)
				if err := tx.CreateCompany(ctx, rec); err != nil {
					return err
				}
				res = &CompanyResolution{Company: rec, Outcome: OutcomeCreated}
				return nil
			}

			res = &CompanyResolution{Company: m.Company, Outcome: OutcomeUnchanged, Match: m}
			if MergeCompany(m.Company, c, m.Reason) {
				if err := tx.UpdateCompany(ctx, m.Company); err != nil {
					return err
				}
				res.Outcome = OutcomeMerged
			}
			return nil
		})
		return res, err
	})
	if err != nil {
		r.metrics.observeResolution("company", "failed")
		return nil, eris.Wrap(err, "company: resolve")
	}

	r.metrics.observeResolution("company", string(res.Outcome))
	zap.L().Debug("company: resolved",
		zap.String("name", c.Name),
		zap.Int64("company_id", res.Company.ID),
		zap.String("outcome", string(res.Outcome)),
		zap.String("reason", string(matchReason(res.Match))),
	)
	return res, nil
}

// ResolveContact finds a duplicate of c within its company and merges into
// it, or creates c. A contact of another company sharing c's email is
// reported as CrossCompanyMatch and never merged into.
func (r *Resolver) ResolveContact(ctx context.Context, c ContactCandidate) (*ContactResolution, error) {
	if c.CompanyID == 0 {
		return nil, eris.New("company: contact candidate requires a company id")
	}
	if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" && normalize.Email(c.Email) == "" {
		return nil, eris.New("company: contact needs a name or email")
	}

	retry := r.retry
	retry.OnRetry = resilience.RetryLogger("resolve contact")

	res, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*ContactResolution, error) {
		var res *ContactResolution
		err := r.store.WithinTx(ctx, func(tx Store) error {
			if err := lockAll(ctx, tx, contactLockKeys(c)); err != nil {
				return err
			}

			matches, err := r.findContact(ctx, tx, c)
			if err != nil {
				return err
			}
			cross := matches.crossCompany()

			m := matches.ownCompany()
			if m == nil {
				rec := NewContact(c)
				if err := tx.CreateContact(ctx, rec); err != nil {
					return err
				}
				res = &ContactResolution{Contact: rec, Outcome: OutcomeCreated, CrossCompanyMatch: cross}
				return nil
			}

			res = &ContactResolution{Contact: m.Contact, Outcome: OutcomeUnchanged, Match: m, CrossCompanyMatch: cross}
			if MergeContact(m.Contact, c) {
				if err := tx.UpdateContact(ctx, m.Contact); err != nil {
					return err
				}
				res.Outcome = OutcomeMerged
			}
			return nil
		})
		return res, err
	})
	if err != nil {
		r.metrics.observeResolution("contact", "failed")
		return nil, eris.Wrap(err, "company: resolve contact")
	}

	if x := res.CrossCompanyMatch; x != nil {
		r.metrics.incCrossCompany()
		zap.L().Warn("company: email already belongs to a contact of another company",
			zap.Int64("company_id", c.CompanyID),
			zap.Int64("other_company_id", x.Contact.CompanyID),
			zap.Int64("other_contact_id", x.Contact.ID),
		)
	}
	r.metrics.observeResolution("contact", string(res.Outcome))
	return res, nil
}

// NewCompanyRecord builds a record for a candidate with normalized columns
// filled in.
func NewCompanyRecord(c CompanyCandidate) *CompanyRecord {
	rec := &CompanyRecord{
		Name:    strings.TrimSpace(c.Name),
		Website: strings.TrimSpace(c.Website),
		Phone:   strings.TrimSpace(c.Phone),
		City:    strings.TrimSpace(c.City),
		State:   strings.TrimSpace(c.State),
	}
	rec.NormalizedName = normalize.CompanyName(rec.Name)
	rec.NormalizedWebsite = normalize.Website(rec.Website)
	return rec
}

// NewContact builds a contact for a candidate with its normalized email.
func NewContact(c ContactCandidate) *Contact {
	return &Contact{
		CompanyID:       c.CompanyID,
		FirstName:       strings.TrimSpace(c.FirstName),
		LastName:        strings.TrimSpace(c.LastName),
		Email:           strings.TrimSpace(c.Email),
		NormalizedEmail: normalize.Email(c.Email),
		Title:           strings.TrimSpace(c.Title),
		Phone:           strings.TrimSpace(c.Phone),
	}
}

// companyLockKeys returns the sorted lock keys for a company candidate.
func companyLockKeys(c CompanyCandidate) []string {
	var keys []string
	if n := normalize.CompanyName(c.Name); n != "" {
		keys = append(keys, "company:name:"+n)
	} else {
		keys = append(keys, "company:raw:"+strings.ToLower(strings.TrimSpace(c.Name)))
	}
	if w := normalize.Website(c.Website); w != "" {
		keys = append(keys, "company:website:"+w)
	}
	slices.Sort(keys)
	return keys
}

// contactLockKeys returns the sorted lock keys for a contact candidate.
func contactLockKeys(c ContactCandidate) []string {
	keys := []string{
		"contact:" + strconv.FormatInt(c.CompanyID, 10) + ":" + strings.ToLower(strings.TrimSpace(c.LastName)),
	}
	if e := normalize.Email(c.Email); e != "" {
		keys = append(keys, "contact:email:"+e)
	}
	slices.Sort(keys)
	return keys
}

// lockAll locks keys in order so two transactions never wait on each other
// in opposite orders.
func lockAll(ctx context.Context, tx Store, keys []string) error {
	for _, k := range keys {
		if err := tx.Lock(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func matchReason(m *CompanyMatch) MatchReason {
	if m == nil {
		return ""
	}
	return m.Reason
}

func contactReason(m *ContactMatch) MatchReason {
	if m == nil {
		return ""
	}
	return m.Reason
}
