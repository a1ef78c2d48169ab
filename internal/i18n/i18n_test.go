package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT_Interpolates(t *testing.T) {
	got := T(LangEN, "notifications.loadAssignedToYou", map[string]interface{}{
		"loadNumber": "AB12CD34",
		"pickup":     "Athens",
		"dropoff":    "Patras",
	})
	assert.Equal(t, "You have been assigned load #AB12CD34 from Athens to Patras", got)
}

func TestT_FallsBackToEnglish(t *testing.T) {
	// documentsUploaded exists only in the English catalogue.
	got := T(LangEL, "notifications.documentsUploaded", nil)
	assert.Equal(t, "Documents Uploaded", got)
}

func TestT_UnknownKeyReturnsKey(t *testing.T) {
	assert.Equal(t, "nope.missing", T(LangEN, "nope.missing", nil))
	assert.Equal(t, "nope.missing", T("fr", "nope.missing", nil))
}

func TestT_UnknownLanguageUsesEnglish(t *testing.T) {
	assert.Equal(t, "Load Accepted", T("fr", "notifications.loadAccepted", nil))
}

func TestNegotiate(t *testing.T) {
	cases := map[string]string{
		"":                   LangEN,
		"el":                 LangEL,
		"el-GR,en;q=0.8":     LangEL,
		"en-US,en;q=0.9":     LangEN,
		"de-DE":              LangEN,
		"fr;q=0.9, el;q=0.5": LangEL,
		";;;":                LangEN,
	}
	for header, want := range cases {
		assert.Equal(t, want, Negotiate(header), "header %q", header)
	}
}
