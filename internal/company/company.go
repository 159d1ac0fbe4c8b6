// Package company stores companies and their contacts and finds likely
// duplicates before new records are created.
package company

import (
	"time"
)

// CompanyRecord is a persisted company.
type CompanyRecord struct { //nolint:revive // stutters but widely used across codebase
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	NormalizedName    string    `json:"normalized_name,omitempty" db:"normalized_name"`
	Website           string    `json:"website,omitempty" db:"website"`
	NormalizedWebsite string    `json:"normalized_website,omitempty" db:"normalized_website"`
	Phone             string    `json:"phone,omitempty" db:"phone"`
	City              string    `json:"city,omitempty" db:"city"`
	State             string    `json:"state,omitempty" db:"state"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Contact is a person attached to a company.
type Contact struct {
	ID              int64     `json:"id" db:"id"`
	CompanyID       int64     `json:"company_id" db:"company_id"`
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	Email           string    `json:"email,omitempty" db:"email"`
	NormalizedEmail string    `json:"normalized_email,omitempty" db:"normalized_email"`
	Title           string    `json:"title,omitempty" db:"title"`
	Phone           string    `json:"phone,omitempty" db:"phone"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// CompanyCandidate is an incoming company that may already exist. Only Name
// and Website take part in duplicate detection; the other fields are used
// when the candidate is created or merged.
type CompanyCandidate struct { //nolint:revive // stutters but widely used across codebase
	Name    string `json:"name" csv:"name"`
	Website string `json:"website,omitempty" csv:"website,omitempty"`
	Phone   string `json:"phone,omitempty" csv:"phone,omitempty"`
	City    string `json:"city,omitempty" csv:"city,omitempty"`
	State   string `json:"state,omitempty" csv:"state,omitempty"`
}

// ContactCandidate is an incoming contact that may already exist.
type ContactCandidate struct {
	CompanyID int64  `json:"company_id" csv:"company_id,omitempty"`
	FirstName string `json:"first_name" csv:"first_name"`
	LastName  string `json:"last_name" csv:"last_name"`
	Email     string `json:"email,omitempty" csv:"email,omitempty"`
	Title     string `json:"title,omitempty" csv:"title,omitempty"`
	Phone     string `json:"phone,omitempty" csv:"phone,omitempty"`
}

// MatchReason names the clause that matched a persisted record.
type MatchReason string

// Company match reasons.
const (
	ReasonNormalizedName    MatchReason = "normalized_name"
	ReasonNormalizedWebsite MatchReason = "normalized_website"
	ReasonName              MatchReason = "name"
	ReasonWebsite           MatchReason = "website"
)

// Contact match reasons.
const (
	ReasonEmail           MatchReason = "email"
	ReasonFullName        MatchReason = "full_name"
	ReasonFirstNamePrefix MatchReason = "first_name_prefix"
)

// Confidence returns the weight of a match reason. Higher wins when several
// records match one candidate.
func (r MatchReason) Confidence() float64 {
	switch r {
	case ReasonNormalizedName, ReasonEmail:
		return 1.0
	case ReasonNormalizedWebsite:
		return 0.95
	case ReasonName, ReasonFullName:
		return 0.9
	case ReasonWebsite:
		return 0.85
	case ReasonFirstNamePrefix:
		return 0.7
	default:
		return 0
	}
}

// CompanyMatch is the best persisted duplicate for a company candidate.
type CompanyMatch struct { //nolint:revive // stutters but widely used across codebase
	Company    *CompanyRecord `json:"company"`
	Reason     MatchReason    `json:"reason"`
	Confidence float64        `json:"confidence"`
}

// ContactMatch is the best persisted duplicate for a contact candidate.
// CrossCompany is set when the match came from an email owned by a contact
// of a different company.
type ContactMatch struct {
	Contact      *Contact    `json:"contact"`
	Reason       MatchReason `json:"reason"`
	Confidence   float64     `json:"confidence"`
	CrossCompany bool        `json:"cross_company"`
}

// EmailScope controls how far an email match reaches.
type EmailScope string

// Email scopes.
const (
	// EmailScopeGlobal matches an email against contacts of every company.
	EmailScopeGlobal EmailScope = "global"
	// EmailScopeCompany matches an email only within the candidate's company.
	EmailScopeCompany EmailScope = "company"
)

// Outcome is what a resolution did with a candidate.
type Outcome string

// Resolution outcomes.
const (
	OutcomeCreated   Outcome = "created"
	OutcomeMerged    Outcome = "merged"
	OutcomeUnchanged Outcome = "unchanged"
)

// CompanyResolution is the result of ResolveCompany.
type CompanyResolution struct { //nolint:revive // stutters but widely used across codebase
	Company *CompanyRecord `json:"company"`
	Outcome Outcome        `json:"outcome"`
	Match   *CompanyMatch  `json:"match,omitempty"`
}

// ContactResolution is the result of ResolveContact. Match is the
// own-company duplicate that was merged into, if any. CrossCompanyMatch is a
// contact of another company with the same email.
type ContactResolution struct {
	Contact           *Contact      `json:"contact"`
	Outcome           Outcome       `json:"outcome"`
	Match             *ContactMatch `json:"match,omitempty"`
	CrossCompanyMatch *ContactMatch `json:"cross_company_match,omitempty"`
}
