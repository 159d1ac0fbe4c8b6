package company

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-cli/internal/db"
)

// PostgresStore implements Store using pgx. A store created by
// NewPostgresStore runs against the pool; the store handed to a WithinTx
// callback runs against that transaction.
type PostgresStore struct {
	pool db.Pool
	q    db.Querier
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, q: pool}
}

// WithinTx runs fn inside a transaction. Nested calls reuse the open
// transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&PostgresStore{q: tx})
	})
}

// Lock takes a transaction-scoped advisory lock on key.
func (s *PostgresStore) Lock(ctx context.Context, key string) error {
	return db.LockKey(ctx, s.q, key)
}

// FindCompanyCandidates returns companies matching any enabled clause of q.
// Rows are ordered by the strongest clause they satisfy, then oldest first,
// so the limit never drops a stronger match in favour of a weaker one.
func (s *PostgresStore) FindCompanyCandidates(ctx context.Context, q CompanyQuery, limit int) ([]CompanyRecord, error) {
	if q.Empty() {
		return nil, nil
	}

	var a argList
	var clauses []string
	if q.NormalizedName != "" {
		clauses = append(clauses, "normalized_name = "+a.add(q.NormalizedName))
	}
	if q.NormalizedWebsite != "" {
		clauses = append(clauses, "normalized_website = "+a.add(q.NormalizedWebsite))
	}
	if q.Name != "" {
		clauses = append(clauses, "lower(name) = lower("+a.add(q.Name)+")")
	}
	if q.Website != "" {
		clauses = append(clauses, "lower(website) = lower("+a.add(q.Website)+")")
	}

	sql := `SELECT ` + companyColumns + ` FROM companies WHERE ` +
		strings.Join(clauses, " OR ") + ` ORDER BY ` + clauseRank(clauses) + `, id LIMIT ` + a.add(clampLimit(limit))

	rows, err := s.q.Query(ctx, sql, a.args...)
	if err != nil {
		return nil, eris.Wrap(err, "company: find candidates")
	}
	defer rows.Close()
	return scanCompanies(rows)
}

// GetCompany fetches a company by ID.
func (s *PostgresStore) GetCompany(ctx context.Context, id int64) (*CompanyRecord, error) {
	c := &CompanyRecord{}
	err := s.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id=$1`, id).
		Scan(companyDests(c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "company: get %d", id)
	}
	return c, nil
}

// CreateCompany inserts a new company and sets its ID and timestamps.
func (s *PostgresStore) CreateCompany(ctx context.Context, c *CompanyRecord) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO companies (name, normalized_name, website, normalized_website, phone, city, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		c.Name, nilIfEmpty(c.NormalizedName), nilIfEmpty(c.Website), nilIfEmpty(c.NormalizedWebsite),
		nilIfEmpty(c.Phone), nilIfEmpty(c.City), nilIfEmpty(c.State),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return eris.Wrap(err, "company: create")
	}
	return nil
}

// UpdateCompany writes every mutable column of an existing company.
func (s *PostgresStore) UpdateCompany(ctx context.Context, c *CompanyRecord) error {
	err := s.q.QueryRow(ctx, `
		UPDATE companies SET
			name=$2, normalized_name=$3, website=$4, normalized_website=$5,
			phone=$6, city=$7, state=$8, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		c.ID, c.Name, nilIfEmpty(c.NormalizedName), nilIfEmpty(c.Website), nilIfEmpty(c.NormalizedWebsite),
		nilIfEmpty(c.Phone), nilIfEmpty(c.City), nilIfEmpty(c.State),
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return eris.Errorf("company: update %d: not found", c.ID)
		}
		return eris.Wrapf(err, "company: update %d", c.ID)
	}
	return nil
}

// FindContactCandidates returns contacts matching any enabled clause of q.
// Name clauses are always scoped to q.CompanyID. Contacts of q.CompanyID come
// first, then rows are ordered by the strongest clause they satisfy and age.
func (s *PostgresStore) FindContactCandidates(ctx context.Context, q ContactQuery, limit int) ([]Contact, error) {
	if q.Empty() {
		return nil, nil
	}

	var a argList
	company := a.add(q.CompanyID)
	var clauses []string

	if q.Email != "" {
		email := a.add(q.Email)
		clause := "(normalized_email = " + email + " OR lower(btrim(email)) = " + email + ")"
		if q.EmailInCompany {
			clause = "(company_id = " + company + " AND " + clause + ")"
		}
		clauses = append(clauses, clause)
	}
	if q.LastName != "" {
		last := a.add(strings.ToLower(q.LastName))
		if q.FirstName != "" {
			clauses = append(clauses, "(company_id = "+company+
				" AND lower(first_name) = "+a.add(strings.ToLower(q.FirstName))+
				" AND lower(last_name) = "+last+")")
		}
		var fuzzy []string
		if q.FirstNamePrefix != "" {
			fuzzy = append(fuzzy, "lower(first_name) LIKE "+a.add(escapeLike(strings.ToLower(q.FirstNamePrefix))+"%"))
		}
		if len(q.FirstNameVariants) > 0 {
			fuzzy = append(fuzzy, "lower(first_name) = ANY("+a.add(q.FirstNameVariants)+")")
		}
		if len(fuzzy) > 0 {
			clauses = append(clauses, "(company_id = "+company+
				" AND lower(last_name) = "+last+
				" AND ("+strings.Join(fuzzy, " OR ")+"))")
		}
	}

	sql := `SELECT ` + contactColumns + ` FROM contacts WHERE ` +
		strings.Join(clauses, " OR ") + ` ORDER BY company_id <> ` + company + `, ` +
		clauseRank(clauses) + `, id LIMIT ` + a.add(clampLimit(limit))

	rows, err := s.q.Query(ctx, sql, a.args...)
	if err != nil {
		return nil, eris.Wrap(err, "company: find contact candidates")
	}
	defer rows.Close()
	return scanContacts(rows)
}

// CreateContact inserts a new contact and sets its ID and timestamps.
func (s *PostgresStore) CreateContact(ctx context.Context, c *Contact) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO contacts (company_id, first_name, last_name, email, normalized_email, title, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		c.CompanyID, c.FirstName, c.LastName, nilIfEmpty(c.Email), nilIfEmpty(c.NormalizedEmail),
		nilIfEmpty(c.Title), nilIfEmpty(c.Phone),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return eris.Wrap(err, "company: create contact")
	}
	return nil
}

// UpdateContact writes every mutable column of an existing contact.
func (s *PostgresStore) UpdateContact(ctx context.Context, c *Contact) error {
	err := s.q.QueryRow(ctx, `
		UPDATE contacts SET
			first_name=$2, last_name=$3, email=$4, normalized_email=$5,
			title=$6, phone=$7, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		c.ID, c.FirstName, c.LastName, nilIfEmpty(c.Email), nilIfEmpty(c.NormalizedEmail),
		nilIfEmpty(c.Title), nilIfEmpty(c.Phone),
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return eris.Errorf("company: update contact %d: not found", c.ID)
		}
		return eris.Wrapf(err, "company: update contact %d", c.ID)
	}
	return nil
}

// clauseRank returns a sort expression giving each row the index of the
// first clause it satisfies. Clauses are listed strongest first.
func clauseRank(clauses []string) string {
	var b strings.Builder
	b.WriteString("CASE")
	for i, c := range clauses {
		b.WriteString(" WHEN " + c + " THEN " + strconv.Itoa(i))
	}
	b.WriteString(" END")
	return b.String()
}

const maxCandidateLimit = 500

func clampLimit(limit int) int {
	if limit <= 0 {
		return 25
	}
	return min(limit, maxCandidateLimit)
}

// argList collects positional query arguments.
type argList struct {
	args []any
}

// add appends v and returns its placeholder.
func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return "$" + strconv.Itoa(len(a.args))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE metacharacters so s matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

const companyColumns = `id, name, COALESCE(normalized_name, ''), COALESCE(website, ''),
	COALESCE(normalized_website, ''), COALESCE(phone, ''), COALESCE(city, ''),
	COALESCE(state, ''), created_at, updated_at`

func companyDests(c *CompanyRecord) []any {
	return []any{
		&c.ID, &c.Name, &c.NormalizedName, &c.Website,
		&c.NormalizedWebsite, &c.Phone, &c.City,
		&c.State, &c.CreatedAt, &c.UpdatedAt,
	}
}

func scanCompanies(rows pgx.Rows) ([]CompanyRecord, error) {
	var result []CompanyRecord
	for rows.Next() {
		var c CompanyRecord
		if err := rows.Scan(companyDests(&c)...); err != nil {
			return nil, eris.Wrap(err, "company: scan company")
		}
		result = append(result, c)
	}
	return result, eris.Wrap(rows.Err(), "company: iterate companies")
}

const contactColumns = `id, company_id, first_name, last_name, COALESCE(email, ''),
	COALESCE(normalized_email, ''), COALESCE(title, ''), COALESCE(phone, ''),
	created_at, updated_at`

func contactDests(c *Contact) []any {
	return []any{
		&c.ID, &c.CompanyID, &c.FirstName, &c.LastName, &c.Email,
		&c.NormalizedEmail, &c.Title, &c.Phone,
		&c.CreatedAt, &c.UpdatedAt,
	}
}

func scanContacts(rows pgx.Rows) ([]Contact, error) {
	var result []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(contactDests(&c)...); err != nil {
			return nil, eris.Wrap(err, "company: scan contact")
		}
		result = append(result, c)
	}
	return result, eris.Wrap(rows.Err(), "company: iterate contacts")
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
