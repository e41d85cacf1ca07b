// Package validator provides input validation for ingestion requests. It
// enforces field length constraints, checks the language tag against the
// supported analyzers, and catches tag/script disagreement before a
// mis-tagged article poisons the index.
package validator

import (
	"fmt"
	"strings"

	"github.com/arefin-labs/clir-engine/internal/analyzer"
	"github.com/arefin-labs/clir-engine/internal/ingestion"
)

const (
	maxURLLength   = 2048
	maxTitleLength = 1024
	maxBodyLength  = 1048576
	minBodyLength  = 1

	// scriptAgreementThreshold is the Bangla-script letter ratio above which
	// text is considered Bangla for tag/script agreement checks.
	scriptAgreementThreshold = 0.5
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest checks the request's field constraints and, when a
// language tag is present, that the tag is supported and agrees with the
// script of the body text.
func ValidateIngestRequest(req *ingestion.IngestRequest) error {
	errs := make(map[string]string)

	url := strings.TrimSpace(req.URL)
	if url == "" {
		errs["url"] = "url is required"
	} else if len(url) > maxURLLength {
		errs["url"] = fmt.Sprintf("url must be at most %d characters", maxURLLength)
	}
	title := strings.TrimSpace(req.Title)
	if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	body := strings.TrimSpace(req.Body)
	if len(body) < minBodyLength {
		errs["body"] = "body is required and must not be empty"
	} else if len(body) > maxBodyLength {
		errs["body"] = fmt.Sprintf("body must be at most %d characters", maxBodyLength)
	}

	if req.Language != "" {
		if !analyzer.Supported(req.Language) {
			errs["language"] = fmt.Sprintf("unsupported language %q", req.Language)
		} else if body != "" {
			looksBangla := analyzer.IsBanglaText(body, scriptAgreementThreshold)
			if looksBangla && req.Language != analyzer.LangBangla {
				errs["language"] = "text is Bangla script but language tag is not bn"
			} else if !looksBangla && req.Language == analyzer.LangBangla {
				errs["language"] = "language tag is bn but text is not Bangla script"
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
