package company

import (
	"strings"

	"github.com/sells-group/directory-cli/internal/normalize"
)

// MergeCompany fills empty fields of rec from c and back-fills normalized
// columns that legacy rows lack. Populated fields are never overwritten.
// reason is the clause rec matched by. It reports whether rec changed.
func MergeCompany(rec *CompanyRecord, c CompanyCandidate, reason MatchReason) bool {
	changed := fillEmpty(&rec.Website, c.Website)
	changed = fillEmpty(&rec.Phone, c.Phone) || changed
	changed = fillEmpty(&rec.City, c.City) || changed
	changed = fillEmpty(&rec.State, c.State) || changed

	// normalized_name is unique. A raw-name match means rec's key equals the
	// candidate's key, which is locked and held by no other row (that row
	// would have matched on it instead). Any other reason leaves the key
	// unknown, so it is not back-filled.
	if reason == ReasonName {
		changed = fillEmpty(&rec.NormalizedName, normalize.CompanyName(rec.Name)) || changed
	}
	changed = fillEmpty(&rec.NormalizedWebsite, normalize.Website(rec.Website)) || changed
	return changed
}

// MergeContact fills empty fields of rec from c. Names are kept as stored.
// It reports whether rec changed.
func MergeContact(rec *Contact, c ContactCandidate) bool {
	changed := fillEmpty(&rec.Email, c.Email)
	changed = fillEmpty(&rec.Title, c.Title) || changed
	changed = fillEmpty(&rec.Phone, c.Phone) || changed
	changed = fillEmpty(&rec.NormalizedEmail, normalize.Email(rec.Email)) || changed
	return changed
}

func fillEmpty(dst *string, v string) bool {
	v = strings.TrimSpace(v)
	if *dst != "" || v == "" {
		return false
	}
	*dst = v
	return true
}
