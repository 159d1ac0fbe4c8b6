package company

import "context"

// CompanyQuery holds the lookup keys for a company candidate. Empty keys
// disable their clause.
type CompanyQuery struct { //nolint:revive // stutters but widely used across codebase
	NormalizedName    string
	NormalizedWebsite string
	Name              string
	Website           string
}

// ContactQuery holds the lookup keys for a contact candidate.
type ContactQuery struct {
	CompanyID int64
	// Email is the normalized email; empty disables the email clause.
	Email string
	// EmailInCompany restricts the email clause to CompanyID.
	EmailInCompany bool
	FirstName      string
	LastName       string
	// FirstNamePrefix is the lower case prefix of FirstName for the fuzzy clause.
	FirstNamePrefix string
	// FirstNameVariants are known nicknames or formal forms of FirstName,
	// matched whole in the fuzzy clause.
	FirstNameVariants []string
}

// Empty reports whether no clause is enabled.
func (q CompanyQuery) Empty() bool {
	return q.NormalizedName == "" && q.NormalizedWebsite == "" && q.Name == "" && q.Website == ""
}

// Empty reports whether no clause is enabled.
func (q ContactQuery) Empty() bool {
	return q.Email == "" && (q.LastName == "" || (q.FirstName == "" && q.FirstNamePrefix == "" && len(q.FirstNameVariants) == 0))
}

// Store defines persistence operations for companies and contacts.
type Store interface {
	FindCompanyCandidates(ctx context.Context, q CompanyQuery, limit int) ([]CompanyRecord, error)
	GetCompany(ctx context.Context, id int64) (*CompanyRecord, error)
	CreateCompany(ctx context.Context, c *CompanyRecord) error
	UpdateCompany(ctx context.Context, c *CompanyRecord) error

	FindContactCandidates(ctx context.Context, q ContactQuery, limit int) ([]Contact, error)
	CreateContact(ctx context.Context, c *Contact) error
	UpdateContact(ctx context.Context, c *Contact) error

	// Lock takes a transaction-scoped lock on key. Only meaningful inside
	// WithinTx.
	Lock(ctx context.Context, key string) error
	// WithinTx runs fn with a Store bound to a single transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
