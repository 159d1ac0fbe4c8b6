package company

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/sells-group/directory-cli/internal/normalize"
)

// CompanyQueryFor derives the lookup keys for a candidate. Normalized clauses
// are enabled only when normalization yields text; the raw clauses cover
// legacy rows written before normalized columns existed.
func CompanyQueryFor(c CompanyCandidate) CompanyQuery { //nolint:revive // stutters but widely used across codebase
	website := strings.TrimSpace(c.Website)
	return CompanyQuery{
		NormalizedName:    normalize.CompanyName(c.Name),
		NormalizedWebsite: normalize.Website(website),
		Name:              strings.TrimSpace(c.Name),
		Website:           website,
	}
}

// ContactQueryFor derives the lookup keys for a contact candidate.
func ContactQueryFor(c ContactCandidate, scope EmailScope, prefixLen int) ContactQuery {
	first := strings.TrimSpace(c.FirstName)
	var variants []string
	if v := normalize.NameVariants(first); len(v) > 1 {
		variants = v[1:]
	}
	return ContactQuery{
		CompanyID:         c.CompanyID,
		Email:             normalize.Email(c.Email),
		EmailInCompany:    scope == EmailScopeCompany,
		FirstName:         first,
		LastName:          strings.TrimSpace(c.LastName),
		FirstNamePrefix:   normalize.FirstNamePrefix(first, prefixLen),
		FirstNameVariants: variants,
	}
}

// classifyCompany returns the strongest clause of q that rec satisfies.
func classifyCompany(q CompanyQuery, rec CompanyRecord) (MatchReason, bool) {
	switch {
	case q.NormalizedName != "" && rec.NormalizedName == q.NormalizedName:
		return ReasonNormalizedName, true
	case q.NormalizedWebsite != "" && rec.NormalizedWebsite == q.NormalizedWebsite:
		return ReasonNormalizedWebsite, true
	case q.Name != "" && strings.EqualFold(rec.Name, q.Name):
		return ReasonName, true
	case q.Website != "" && strings.EqualFold(rec.Website, q.Website):
		return ReasonWebsite, true
	}
	return "", false
}

// bestCompanyMatch picks the highest-confidence row; ties go to the oldest.
func bestCompanyMatch(q CompanyQuery, rows []CompanyRecord) *CompanyMatch {
	var best *CompanyMatch
	for i := range rows {
		reason, ok := classifyCompany(q, rows[i])
		if !ok {
			continue
		}
		m := &CompanyMatch{Company: &rows[i], Reason: reason, Confidence: reason.Confidence()}
		if best == nil || m.Confidence > best.Confidence ||
			(m.Confidence == best.Confidence && m.Company.ID < best.Company.ID) {
			best = m
		}
	}
	return best
}

// classifyContact returns the strongest clause of q that rec satisfies.
func classifyContact(q ContactQuery, rec Contact) (MatchReason, bool) {
	if q.Email != "" && (rec.NormalizedEmail == q.Email || normalize.Email(rec.Email) == q.Email) &&
		(!q.EmailInCompany || rec.CompanyID == q.CompanyID) {
		return ReasonEmail, true
	}
	if rec.CompanyID != q.CompanyID || q.LastName == "" || !strings.EqualFold(rec.LastName, q.LastName) {
		return "", false
	}
	if q.FirstName != "" && strings.EqualFold(rec.FirstName, q.FirstName) {
		return ReasonFullName, true
	}
	first := strings.ToLower(rec.FirstName)
	if (q.FirstNamePrefix != "" && strings.HasPrefix(first, q.FirstNamePrefix)) ||
		slices.Contains(q.FirstNameVariants, first) {
		return ReasonFirstNamePrefix, true
	}
	return "", false
}

// contactMatches are the matches for one candidate, strongest first.
type contactMatches []*ContactMatch

// rankContactMatches classifies rows and orders them by confidence. Among
// equals a contact of the candidate's own company comes first, then the
// oldest.
func rankContactMatches(q ContactQuery, rows []Contact) contactMatches {
	var matches contactMatches
	for i := range rows {
		reason, ok := classifyContact(q, rows[i])
		if !ok {
			continue
		}
		matches = append(matches, &ContactMatch{
			Contact:      &rows[i],
			Reason:       reason,
			Confidence:   reason.Confidence(),
			CrossCompany: rows[i].CompanyID != q.CompanyID,
		})
	}

	slices.SortFunc(matches, func(a, b *ContactMatch) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		if a.CrossCompany != b.CrossCompany {
			if a.CrossCompany {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Contact.ID, b.Contact.ID)
	})
	return matches
}

// best returns the strongest match, or nil.
func (ms contactMatches) best() *ContactMatch {
	if len(ms) == 0 {
		return nil
	}
	return ms[0]
}

// ownCompany returns the strongest match within the candidate's company.
func (ms contactMatches) ownCompany() *ContactMatch {
	for _, m := range ms {
		if !m.CrossCompany {
			return m
		}
	}
	return nil
}

// crossCompany returns the strongest match owned by another company.
func (ms contactMatches) crossCompany() *ContactMatch {
	for _, m := range ms {
		if m.CrossCompany {
			return m
		}
	}
	return nil
}

// bestContactMatch picks the highest-confidence row.
func bestContactMatch(q ContactQuery, rows []Contact) *ContactMatch {
	return rankContactMatches(q, rows).best()
}

// findCompany runs the company lookup against s.
func (r *Resolver) findCompany(ctx context.Context, s Store, c CompanyCandidate) (*CompanyMatch, error) {
	q := CompanyQueryFor(c)
	if q.Empty() {
		return nil, nil
	}
	rows, err := s.FindCompanyCandidates(ctx, q, r.cfg.MaxCandidates)
	if err != nil {
		return nil, err
	}
	return bestCompanyMatch(q, rows), nil
}

// findContact runs the contact lookup against s.
func (r *Resolver) findContact(ctx context.Context, s Store, c ContactCandidate) (contactMatches, error) {
	q := ContactQueryFor(c, r.scope(), r.cfg.PrefixLen)
	if q.Empty() {
		return nil, nil
	}
	rows, err := s.FindContactCandidates(ctx, q, r.cfg.MaxCandidates)
	if err != nil {
		return nil, err
	}
	return rankContactMatches(q, rows), nil
}
