package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arefin-labs/clir-engine/internal/ingestion"
)

func validRequest() *ingestion.IngestRequest {
	return &ingestion.IngestRequest{
		URL:   "https://news.example.com/articles/42",
		Title: "Flood warning",
		Body:  "rivers are rising across the district",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestValidRequestPasses(t *testing.T) {
	assert.NoError(t, ValidateIngestRequest(validRequest()))

	// A language tag that matches the script is also fine.
	req := validRequest()
	req.Language = "en"
	assert.NoError(t, ValidateIngestRequest(req))

	bn := validRequest()
	bn.Body = "ঢাকায় বন্যা পরিস্থিতির অবনতি হয়েছে"
	bn.Language = "bn"
	assert.NoError(t, ValidateIngestRequest(bn))

	// Untagged requests skip the script check; inference happens downstream.
	untagged := validRequest()
	untagged.Body = "ঢাকায় বন্যা"
	assert.NoError(t, ValidateIngestRequest(untagged))
}

func TestMissingFields(t *testing.T) {
	req := &ingestion.IngestRequest{URL: "  ", Body: "   "}
	fields := fieldErrors(t, ValidateIngestRequest(req))
	assert.Contains(t, fields, "url")
	assert.Contains(t, fields, "body")
}

func TestLengthLimits(t *testing.T) {
	req := validRequest()
	req.URL = "https://example.com/" + strings.Repeat("x", 2048)
	fields := fieldErrors(t, ValidateIngestRequest(req))
	assert.Contains(t, fields, "url")

	req = validRequest()
	req.Title = strings.Repeat("t", 1025)
	fields = fieldErrors(t, ValidateIngestRequest(req))
	assert.Contains(t, fields, "title")

	req = validRequest()
	req.Body = strings.Repeat("b", 1048577)
	fields = fieldErrors(t, ValidateIngestRequest(req))
	assert.Contains(t, fields, "body")
}

func TestUnsupportedLanguage(t *testing.T) {
	req := validRequest()
	req.Language = "de"
	fields := fieldErrors(t, ValidateIngestRequest(req))
	assert.Contains(t, fields["language"], "unsupported")
}

func TestScriptDisagreement(t *testing.T) {
	// Bangla script under an English tag.
	req := validRequest()
	req.Body = "ঢাকায় বন্যা পরিস্থিতির অবনতি হয়েছে"
	req.Language = "en"
	fields := fieldErrors(t, ValidateIngestRequest(req))
	assert.Contains(t, fields["language"], "Bangla script")

	// Latin script under a Bangla tag.
	req = validRequest()
	req.Language = "bn"
	fields = fieldErrors(t, ValidateIngestRequest(req))
	assert.Contains(t, fields["language"], "not Bangla script")
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidateIngestRequest(&ingestion.IngestRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")
}
