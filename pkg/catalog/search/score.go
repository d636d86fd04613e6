package search

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/cosmetia/cosmetia/pkg/catalog"
)

// defaultScoreTemplate is the built-in match-score expression. It weights
// keyword occurrences by prominence: name 10x, brand 5x, description 1x.
//
//go:embed score_template.json
var defaultScoreTemplate string

// ScoreTemplate renders the aggregation expression that computes the
// transient match score. The template is extended JSON with %[1]s
// placeholders for the JSON-encoded keyword regex; it is validated once at
// construction so malformed content fails at startup, not per request.
type ScoreTemplate struct {
	content string
}

// NewScoreTemplate validates content and returns the template. Errors wrap
// catalog.ErrScoreTemplate.
func NewScoreTemplate(content string) (*ScoreTemplate, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty template", catalog.ErrScoreTemplate)
	}
	if !strings.Contains(content, "%[1]s") {
		return nil, fmt.Errorf("%w: missing keyword pattern placeholder", catalog.ErrScoreTemplate)
	}
	t := &ScoreTemplate{content: content}
	if _, err := t.Expression(KeywordPattern([]string{"probe"})); err != nil {
		return nil, err
	}
	return t, nil
}

// DefaultScoreTemplate returns the embedded template.
func DefaultScoreTemplate() (*ScoreTemplate, error) {
	return NewScoreTemplate(defaultScoreTemplate)
}

// LoadScoreTemplate builds the template from the override file when path
// is non-empty, otherwise from the embedded default.
func LoadScoreTemplate(path string) (*ScoreTemplate, error) {
	if path == "" {
		return DefaultScoreTemplate()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %v", catalog.ErrScoreTemplate, path, err)
	}
	return NewScoreTemplate(string(content))
}

// Expression renders the template with the given keyword regex into the
// aggregation expression document for the $addFields stage.
func (t *ScoreTemplate) Expression(pattern string) (bson.D, error) {
	quoted, err := json.Marshal(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot encode keyword pattern: %v", catalog.ErrScoreTemplate, err)
	}

	rendered := fmt.Sprintf(t.content, string(quoted))
	var expr bson.D
	if err := bson.UnmarshalExtJSON([]byte(rendered), false, &expr); err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrScoreTemplate, err)
	}
	return expr, nil
}

// KeywordPattern compiles keywords into a single word-boundary-anchored
// alternation. Keywords are regex-quoted, so user input cannot inject
// pattern syntax.
func KeywordPattern(keywords []string) string {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return `\b(` + strings.Join(quoted, "|") + `)\b`
}
