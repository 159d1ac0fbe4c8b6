package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompanyName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ACME Corp", "acme-corp"},
		{"  Acme   Corp. ", "acme-corp"},
		{"acme-corp", "acme-corp"},
		{"Café Olé, LLC", "cafe-ole-llc"},
		{"Smith & Sons", "smith-and-sons"},
		{"3M", "3m"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CompanyName(tt.in))
		})
	}
}

func TestCompanyName_SameKeyForVariants(t *testing.T) {
	assert.Equal(t, CompanyName("ACME Corp"), CompanyName("Acme, Corp"))
	assert.NotEqual(t, CompanyName("Acme"), CompanyName("Acme Corp"))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "santa-rosa-beach", Slug("Santa Rosa Beach"))
	assert.Equal(t, "ile-de-france", Slug("Île-de-France"))
	assert.Equal(t, "r-and-b", Slug("R and B"))
}

func TestWebsite(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.Acme.com/about?x=1#top", "acme.com"},
		{"acme.com", "acme.com"},
		{"www.acme.com/", "acme.com"},
		{"//acme.com", "acme.com"},
		{"HTTP://user:pw@shop.acme.com:8080/", "shop.acme.com"},
		{"https://acme.com.", "acme.com"},
		{"not a url", ""},
		{"localhost", ""},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Website(tt.in))
		})
	}
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", Email("  A@B.com "))
	assert.Equal(t, "", Email("   "))
}

func TestNameVariants(t *testing.T) {
	v := NameVariants("Mike")
	assert.Equal(t, "mike", v[0])
	assert.Contains(t, v, "michael")
	assert.Equal(t, []string{"zebediah"}, NameVariants("Zebediah"))
	assert.Nil(t, NameVariants("  "))
}

func TestFirstNamePrefix(t *testing.T) {
	assert.Equal(t, "mik", FirstNamePrefix(" Mike ", 3))
	assert.Equal(t, "al", FirstNamePrefix("Al", 3))
	assert.Equal(t, "zeb", FirstNamePrefix("Zebediah", 0), "non-positive length falls back to 3")
	assert.Equal(t, "jos", FirstNamePrefix("José", 3))
	assert.Empty(t, FirstNamePrefix("", 3))
}

func TestNameVariants_SharedNickname(t *testing.T) {
	// "chris" belongs to two groups.
	v := NameVariants("Chris")
	assert.Contains(t, v, "christine")
	assert.Contains(t, v, "christopher")
}
