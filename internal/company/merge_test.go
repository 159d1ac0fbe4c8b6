package company

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeCompany_FillsEmptyFieldsOnly(t *testing.T) {
	rec := &CompanyRecord{Name: "Acme Corp", NormalizedName: "acme-corp", City: "Austin"}
	changed := MergeCompany(rec, CompanyCandidate{Name: "ACME", Website: "https://acme.com", City: "Dallas", State: "TX"}, ReasonNormalizedName)

	assert.True(t, changed)
	assert.Equal(t, "Acme Corp", rec.Name)
	assert.Equal(t, "Austin", rec.City)
	assert.Equal(t, "TX", rec.State)
	assert.Equal(t, "https://acme.com", rec.Website)
	assert.Equal(t, "acme.com", rec.NormalizedWebsite)
}

func TestMergeCompany_BackfillsLegacyRow(t *testing.T) {
	rec := &CompanyRecord{Name: "Smith & Sons", Website: "www.smith.com", City: "Reno"}
	changed := MergeCompany(rec, CompanyCandidate{Name: "smith & sons"}, ReasonName)

	assert.True(t, changed)
	assert.Equal(t, "smith-and-sons", rec.NormalizedName)
	assert.Equal(t, "smith.com", rec.NormalizedWebsite)
}

func TestMergeCompany_WebsiteMatchLeavesNormalizedNameEmpty(t *testing.T) {
	rec := &CompanyRecord{Name: "ACME, Inc.", Website: "acme.com"}
	changed := MergeCompany(rec, CompanyCandidate{Name: "Acme Holdings", Website: "acme.com"}, ReasonWebsite)

	assert.True(t, changed)
	assert.Empty(t, rec.NormalizedName)
	assert.Equal(t, "acme.com", rec.NormalizedWebsite)
}

func TestMergeCompany_NothingNew(t *testing.T) {
	rec := &CompanyRecord{Name: "Acme", NormalizedName: "acme", Website: "acme.com", NormalizedWebsite: "acme.com"}
	assert.False(t, MergeCompany(rec, CompanyCandidate{Name: "Acme", Website: "acme.com", Phone: "  "}, ReasonNormalizedName))
}

func TestMergeContact(t *testing.T) {
	rec := &Contact{FirstName: "Michael", LastName: "Smith", Title: "CEO"}
	changed := MergeContact(rec, ContactCandidate{FirstName: "Mike", LastName: "Smith", Email: " Mike@Acme.com ", Title: "Founder"})

	assert.True(t, changed)
	assert.Equal(t, "Michael", rec.FirstName)
	assert.Equal(t, "CEO", rec.Title)
	assert.Equal(t, "Mike@Acme.com", rec.Email)
	assert.Equal(t, "mike@acme.com", rec.NormalizedEmail)

	assert.False(t, MergeContact(rec, ContactCandidate{Email: "other@acme.com"}))
}
