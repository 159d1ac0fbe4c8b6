package company

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyQueryFor(t *testing.T) {
	q := CompanyQueryFor(CompanyCandidate{Name: " ACME Corp ", Website: "https://www.Acme.com/about"})
	assert.Equal(t, "acme-corp", q.NormalizedName)
	assert.Equal(t, "acme.com", q.NormalizedWebsite)
	assert.Equal(t, "ACME Corp", q.Name)
	assert.Equal(t, "https://www.Acme.com/about", q.Website)
}

func TestCompanyQueryFor_UnnormalizableNameUsesRawClauses(t *testing.T) {
	q := CompanyQueryFor(CompanyCandidate{Name: "!!!"})
	assert.Empty(t, q.NormalizedName)
	assert.Empty(t, q.NormalizedWebsite)
	assert.Equal(t, "!!!", q.Name)
	assert.Empty(t, q.Website)
	assert.False(t, q.Empty())
}

func TestBestCompanyMatch_NormalizedName(t *testing.T) {
	q := CompanyQueryFor(CompanyCandidate{Name: "ACME Corp"})
	m := bestCompanyMatch(q, []CompanyRecord{{ID: 1, Name: "Acme Corp.", NormalizedName: "acme-corp"}})
	require.NotNil(t, m)
	assert.Equal(t, int64(1), m.Company.ID)
	assert.Equal(t, ReasonNormalizedName, m.Reason)
	assert.Equal(t, 1.0, m.Confidence)
}

func TestBestCompanyMatch_StrongestClauseWins(t *testing.T) {
	q := CompanyQueryFor(CompanyCandidate{Name: "Acme", Website: "acme.com"})
	rows := []CompanyRecord{
		{ID: 1, Name: "Other", Website: "ACME.COM"},                           // raw website
		{ID: 2, Name: "Acme Holdings", NormalizedWebsite: "acme.com"},         // normalized website
		{ID: 3, Name: "ACME"},                                                 // raw name on a legacy row
		{ID: 4, Name: "Acme", NormalizedName: "acme"},                         // normalized name
		{ID: 5, Name: "Acme Two", NormalizedName: "acme-two", Website: "x.io"}, // no clause
	}
	m := bestCompanyMatch(q, rows)
	require.NotNil(t, m)
	assert.Equal(t, int64(4), m.Company.ID)
	assert.Equal(t, ReasonNormalizedName, m.Reason)

	m = bestCompanyMatch(q, rows[:3])
	require.NotNil(t, m)
	assert.Equal(t, int64(2), m.Company.ID)
	assert.Equal(t, ReasonNormalizedWebsite, m.Reason)
}

func TestBestCompanyMatch_TieGoesToOldest(t *testing.T) {
	q := CompanyQueryFor(CompanyCandidate{Name: "Acme", Website: "acme.com"})
	m := bestCompanyMatch(q, []CompanyRecord{
		{ID: 9, NormalizedWebsite: "acme.com"},
		{ID: 4, NormalizedWebsite: "acme.com"},
	})
	require.NotNil(t, m)
	assert.Equal(t, int64(4), m.Company.ID)
}

func TestBestCompanyMatch_NoRows(t *testing.T) {
	assert.Nil(t, bestCompanyMatch(CompanyQueryFor(CompanyCandidate{Name: "Novel Co"}), nil))
}

func TestContactQueryFor(t *testing.T) {
	q := ContactQueryFor(ContactCandidate{CompanyID: 7, FirstName: "Mike", LastName: "Smith", Email: " Mike@Acme.COM "}, EmailScopeGlobal, 3)
	assert.Equal(t, int64(7), q.CompanyID)
	assert.Equal(t, "mike@acme.com", q.Email)
	assert.False(t, q.EmailInCompany)
	assert.Equal(t, "mik", q.FirstNamePrefix)
	assert.Equal(t, []string{"michael", "mikey", "mick", "mickey"}, q.FirstNameVariants)

	q = ContactQueryFor(ContactCandidate{CompanyID: 7, Email: "a@b.com"}, EmailScopeCompany, 3)
	assert.True(t, q.EmailInCompany)
}

func TestBestContactMatch_PrefixMatchesNickname(t *testing.T) {
	q := ContactQueryFor(ContactCandidate{CompanyID: 7, FirstName: "Mike", LastName: "Smith"}, EmailScopeGlobal, 3)
	m := bestContactMatch(q, []Contact{{ID: 3, CompanyID: 7, FirstName: "Michael", LastName: "Smith"}})
	require.NotNil(t, m)
	assert.Equal(t, ReasonFirstNamePrefix, m.Reason)
	assert.Equal(t, 0.7, m.Confidence)
	assert.False(t, m.CrossCompany)
}

func TestBestContactMatch_NicknameMatchesOnlyWholeVariants(t *testing.T) {
	cases := []struct {
		candidate, existing string
	}{
		{"Tina", "Christopher"},
		{"Sandra", "Alexander"},
	}
	for _, tc := range cases {
		t.Run(tc.candidate+"/"+tc.existing, func(t *testing.T) {
			q := ContactQueryFor(ContactCandidate{CompanyID: 7, FirstName: tc.candidate, LastName: "Smith"}, EmailScopeGlobal, 3)
			assert.Nil(t, bestContactMatch(q, []Contact{{ID: 3, CompanyID: 7, FirstName: tc.existing, LastName: "Smith"}}))
		})
	}
}

func TestBestContactMatch_NicknameVariantAndOwnPrefix(t *testing.T) {
	q := ContactQueryFor(ContactCandidate{CompanyID: 7, FirstName: "Tina", LastName: "Smith"}, EmailScopeGlobal, 3)
	m := bestContactMatch(q, []Contact{{ID: 3, CompanyID: 7, FirstName: "Christine", LastName: "Smith"}})
	require.NotNil(t, m)
	assert.Equal(t, ReasonFirstNamePrefix, m.Reason)

	q = ContactQueryFor(ContactCandidate{CompanyID: 7, FirstName: "Alexander", LastName: "Smith"}, EmailScopeGlobal, 3)
	m = bestContactMatch(q, []Contact{{ID: 4, CompanyID: 7, FirstName: "Alexandria", LastName: "Smith"}})
	require.NotNil(t, m, "own prefix still catches spelling variants")
	assert.Equal(t, int64(4), m.Contact.ID)
}

func TestBestContactMatch_NameClausesStayInCompany(t *testing.T) {
	q := ContactQueryFor(ContactCandidate{CompanyID: 7, FirstName: "Mike", LastName: "Smith"}, EmailScopeGlobal, 3)
	assert.Nil(t, bestContactMatch(q, []Contact{{ID: 3, CompanyID: 8, FirstName: "Mike", LastName: "Smith"}}))
}

func TestBestContactMatch_GlobalEmailFlagsCrossCompany(t *testing.T) {
	q := ContactQueryFor(ContactCandidate{CompanyID: 7, FirstName: "Ann", LastName: "Lee", Email: "ann@x.com"}, EmailScopeGlobal, 3)
	m := bestContactMatch(q, []Contact{{ID: 11, CompanyID: 8, FirstName: "Ann", LastName: "Lee", NormalizedEmail: "ann@x.com"}})
	require.NotNil(t, m)
	assert.Equal(t, ReasonEmail, m.Reason)
	assert.True(t, m.CrossCompany)
}

func TestBestContactMatch_CompanyScopeIgnoresOtherCompanies(t *testing.T) {
	q := ContactQueryFor(ContactCandidate{CompanyID: 7, Email: "ann@x.com"}, EmailScopeCompany, 3)
	assert.Nil(t, bestContactMatch(q, []Contact{{ID: 11, CompanyID: 8, NormalizedEmail: "ann@x.com"}}))
}

func TestBestContactMatch_PrefersOwnCompanyAmongEqualMatches(t *testing.T) {
	q := ContactQueryFor(ContactCandidate{CompanyID: 7, Email: "ann@x.com"}, EmailScopeGlobal, 3)
	m := bestContactMatch(q, []Contact{
		{ID: 2, CompanyID: 8, NormalizedEmail: "ann@x.com"},
		{ID: 5, CompanyID: 7, Email: "ANN@x.com"}, // legacy row without normalized email
	})
	require.NotNil(t, m)
	assert.Equal(t, int64(5), m.Contact.ID)
	assert.False(t, m.CrossCompany)
}

func TestBestContactMatch_ExactNameBeatsPrefix(t *testing.T) {
	q := ContactQueryFor(ContactCandidate{CompanyID: 7, FirstName: "Mike", LastName: "Smith"}, EmailScopeGlobal, 3)
	m := bestContactMatch(q, []Contact{
		{ID: 1, CompanyID: 7, FirstName: "Michael", LastName: "Smith"},
		{ID: 2, CompanyID: 7, FirstName: "MIKE", LastName: "smith"},
	})
	require.NotNil(t, m)
	assert.Equal(t, int64(2), m.Contact.ID)
	assert.Equal(t, ReasonFullName, m.Reason)
}

func TestMatchReason_Confidence(t *testing.T) {
	assert.Equal(t, 1.0, ReasonNormalizedName.Confidence())
	assert.Equal(t, 0.95, ReasonNormalizedWebsite.Confidence())
	assert.Equal(t, 0.9, ReasonName.Confidence())
	assert.Equal(t, 0.85, ReasonWebsite.Confidence())
	assert.Equal(t, 1.0, ReasonEmail.Confidence())
	assert.Equal(t, 0.9, ReasonFullName.Confidence())
	assert.Equal(t, 0.7, ReasonFirstNamePrefix.Confidence())
	assert.Equal(t, 0.0, MatchReason("bogus").Confidence())
}
