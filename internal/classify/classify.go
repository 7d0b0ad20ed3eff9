// Package classify turns raw catalog API bodies into typed lookup results.
package classify

import (
	"fmt"

	"catalog-report/internal/entity"
	"catalog-report/internal/logging"
	"catalog-report/internal/util"

	"github.com/tidwall/gjson"
)

// Kind is the outcome category of one lookup.
type Kind int

const (
	// Malformed: the body could not be parsed or lacks required fields.
	Malformed Kind = iota
	// Found: code 200 with at least one result. Entity is set.
	Found
	// NoMatch: code 200 with count 0, a valid request with no matching entity.
	NoMatch
	// NotFound: code 409, the API rejected the query.
	NotFound
	// RateLimited: the API throttled the caller.
	RateLimited
	// APIError: any other API-level error code.
	APIError
	// TransportError: no body was obtained. Never produced by Classify itself.
	TransportError
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case NoMatch:
		return "no-match"
	case NotFound:
		return "not-found"
	case RateLimited:
		return "rate-limited"
	case APIError:
		return "api-error"
	case TransportError:
		return "transport-error"
	default:
		return "malformed"
	}
}

// Codes the catalog API uses in the top-level "code" field.
const (
	codeOK          = 200
	codeConflict    = 409
	codeThrottled   = 429
	throttledString = "RequestThrottled"
)

// Result is the classification of one body. Entity is non-nil only when Kind is Found.
// Message carries the API's diagnostic text ("status" or "message") when present.
type Result struct {
	Kind    Kind
	Entity  *entity.Entity
	Code    string
	Message string
}

// OK reports whether the result carries an entity.
func (r Result) OK() bool {
	return r.Kind == Found && r.Entity != nil
}

// JSON is the default classifier for catalog API JSON bodies.
type JSON struct{}

// Classify implements the lookup classifier contract using the package-level Classify.
func (JSON) Classify(body []byte) Result {
	return Classify(body)
}

// Classify parses body and classifies it. It never panics on bad input:
// anything that cannot be understood yields a Malformed result.
func Classify(body []byte) Result {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		logging.Logf(logging.Warning, "Classifier: body is not valid JSON: %s", util.Snippet(body))
		return Result{Kind: Malformed}
	}

	root := gjson.ParseBytes(body)
	code := root.Get("code")
	if !code.Exists() {
		logging.Logf(logging.Warning, "Classifier: body has no 'code' field: %s", util.Snippet(body))
		return Result{Kind: Malformed}
	}

	// Errors raised by the gateway before reaching the API use string codes.
	if code.Type == gjson.String {
		msg := firstString(root, "message", "status")
		kind := APIError
		if code.Str == throttledString {
			kind = RateLimited
		}
		logging.Logf(logging.Warning, "Classifier: API returned %s (%s): %s", code.Str, kind, msg)
		return Result{Kind: kind, Code: code.Str, Message: msg}
	}
	if code.Type != gjson.Number {
		logging.Logf(logging.Warning, "Classifier: 'code' field has unexpected type %s", code.Type)
		return Result{Kind: Malformed}
	}

	// Compare numerically so 200 and 200.0 are the same code.
	num := code.Num
	codeStr := code.Raw
	switch num {
	case codeConflict:
		msg := firstString(root, "status", "message")
		logging.Logf(logging.Warning, "Classifier: API returned 409: %s", msg)
		return Result{Kind: NotFound, Code: codeStr, Message: msg}
	case codeThrottled:
		msg := firstString(root, "message", "status")
		logging.Logf(logging.Warning, "Classifier: API throttled the request: %s", msg)
		return Result{Kind: RateLimited, Code: codeStr, Message: msg}
	case codeOK:
		return classifyData(root, codeStr)
	default:
		msg := firstString(root, "status", "message")
		logging.Logf(logging.Warning, "Classifier: API returned code %s: %s", codeStr, msg)
		return Result{Kind: APIError, Code: codeStr, Message: msg}
	}
}

func classifyData(root gjson.Result, codeStr string) Result {
	count := root.Get("data.count")
	if count.Type != gjson.Number {
		logging.Logf(logging.Warning, "Classifier: code 200 without numeric data.count")
		return Result{Kind: Malformed, Code: codeStr}
	}
	if count.Num == 0 {
		logging.Logf(logging.Debug, "Classifier: request valid, no match")
		return Result{Kind: NoMatch, Code: codeStr}
	}

	// The API returns at most one relevant match per exact-name query.
	first := root.Get("data.results.0")
	if !first.IsObject() {
		logging.Logf(logging.Warning, "Classifier: data.count is %v but data.results[0] is missing", count.Num)
		return Result{Kind: Malformed, Code: codeStr}
	}

	e, err := Build(first)
	if err != nil {
		logging.Logf(logging.Warning, "Classifier: %v", err)
		return Result{Kind: Malformed, Code: codeStr}
	}
	logging.Logf(logging.Debug, "Classifier: found entity %d (%s)", e.ID, e.Name)
	return Result{Kind: Found, Entity: e, Code: codeStr}
}

// Build extracts an Entity from one element of data.results.
func Build(r gjson.Result) (*entity.Entity, error) {
	id := r.Get("id")
	if id.Type != gjson.Number {
		return nil, fmt.Errorf("result has no numeric id")
	}

	e := &entity.Entity{
		ID:          id.Int(),
		Name:        r.Get("name").String(),
		Description: r.Get("description").String(),
		Modified:    r.Get("modified").String(),
		Comics:      related("comics", r.Get("comics")),
		Stories:     related("stories", r.Get("stories")),
		Events:      related("events", r.Get("events")),
		Series:      related("series", r.Get("series")),
	}

	if th := r.Get("thumbnail"); th.IsObject() {
		e.Thumbnail = &entity.Thumbnail{
			Path:      th.Get("path").String(),
			Extension: th.Get("extension").String(),
		}
	}

	r.Get("urls").ForEach(func(_, u gjson.Result) bool {
		e.URLs = append(e.URLs, entity.Link{
			Type: u.Get("type").String(),
			URL:  u.Get("url").String(),
		})
		return true
	})

	return e, nil
}

// related reads one {available, items} category. Type is only present on story items.
// Available is taken from the API as-is, even when the preview is longer.
func related(category string, cat gjson.Result) entity.Related {
	var rel entity.Related
	cat.Get("items").ForEach(func(_, it gjson.Result) bool {
		rel.Items = append(rel.Items, entity.Resource{
			Name:        it.Get("name").String(),
			Type:        it.Get("type").String(),
			ResourceURI: it.Get("resourceURI").String(),
		})
		return true
	})

	rel.Available = int(cat.Get("available").Int())
	if len(rel.Items) > rel.Available {
		logging.Logf(logging.Warning, "Classifier: %s preview has %d items but available is %d", category, len(rel.Items), rel.Available)
	}
	return rel
}

func firstString(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := root.Get(p); v.Exists() {
			return v.String()
		}
	}
	return ""
}
