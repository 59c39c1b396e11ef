// Package extract turns free-text chat messages into structured profile
// fields using ordered regex rules with first-match-wins semantics.
//
// Rule order is part of the contract: labelled phrasing ("my email is ...")
// always beats generic positional heuristics, so free text is not
// mis-extracted as the wrong field. When no rule matches anything, an
// optional text-generation service can be consulted as a last resort.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode"

	"github.com/asadrizvi64/agentic-voice/internal/profile"
)

var errMalformedReply = errors.New("generator reply contains no JSON object")

// Generator is the optional text-generation service used as an extraction
// fallback. It is treated as an unreliable free-text oracle: any error or
// malformed reply simply leaves the rule-based result unchanged.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Extractor applies the ordered rule lists. The zero value is not usable;
// construct with New or NewWithGenerator.
type Extractor struct {
	generator Generator
}

// New creates an Extractor with no fallback generator.
func New() *Extractor {
	return &Extractor{}
}

// NewWithGenerator creates an Extractor that falls back to the given
// generator when the rule pass finds no entities. A nil generator is
// equivalent to New().
func NewWithGenerator(g Generator) *Extractor {
	return &Extractor{generator: g}
}

var (
	nameRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)name\s+(?:is\s+)?([a-zA-Z][a-zA-Z \-'.]*?)(?:,|\.|$| and\b)`),
		regexp.MustCompile(`(?i)\b(?:i am|i'm|call me)\s+([a-zA-Z][a-zA-Z \-']*?)(?:,|\.|$)`),
	}

	emailRule = regexp.MustCompile(`([a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+)`)

	phoneRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)phone\s+(?:number\s+)?(?:is\s+)?([0-9 ()+\-]{7,})`),
		regexp.MustCompile(`(?:^|\s)(\+?[0-9][0-9 ()\-]{6,})`),
	}

	addressLabelRule   = regexp.MustCompile(`(?i)address\s+(?:is\s+)?(.+?)(?:\.|$)`)
	addressKeywordRule = regexp.MustCompile(`(?i)(?:live at|living at|at|on)\s+([0-9]+\s+[a-zA-Z ,.]+)`)
	addressStreetRule  = regexp.MustCompile(`(?i)\b([0-9]+\s+(?:[a-zA-Z]+\s+){0,4}(?:st|street|ave|avenue|rd|road|blvd|boulevard|lane|ln|dr|drive|way|court|ct)\b\.?)`)

	passwordRule = regexp.MustCompile(`(?i)password\s+(?:is\s+)?([a-zA-Z0-9 \-'.!@#$%^&*()]{6,})(?:,|\.|$)`)

	// standalonePassword matches a whole message that looks like a bare
	// credential token. Only consulted when nothing else was extracted,
	// so a lone name or city is not swallowed as a password.
	standalonePassword = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*()\-_.+]{6,20}$`)
)

// denylist rejects name candidates that are instruction words rather than
// actual names.
var denylist = map[string]bool{
	"please":       true,
	"profile":      true,
	"account":      true,
	"register":     true,
	"registration": true,
	"update":       true,
	"information":  true,
	"password":     true,
	"email":        true,
	"phone":        true,
	"address":      true,
	"hello":        true,
	"hi":           true,
	"hey":          true,
	"thanks":       true,
	"thank":        true,
	"help":         true,
	"yes":          true,
	"no":           true,
	"ok":           true,
	"okay":         true,
	"confirm":      true,
	"correct":      true,
}

// Extract runs the pure rule pass over the message. It never fails; fields
// without a match are simply absent from the result.
func (e *Extractor) Extract(text string) profile.Profile {
	entities := make(profile.Profile)

	if name := extractName(text); name != "" {
		entities[profile.FieldName] = name
	}
	if m := emailRule.FindStringSubmatch(text); m != nil {
		entities[profile.FieldEmail] = m[1]
	}
	if phone := extractPhone(text); phone != "" {
		entities[profile.FieldPhone] = phone
	}
	if addr := extractAddress(text); addr != "" {
		entities[profile.FieldAddress] = addr
	}
	if m := passwordRule.FindStringSubmatch(text); m != nil {
		entities[profile.FieldPassword] = strings.TrimSpace(m[1])
	}

	// Whole-message password heuristic: fires only when the turn produced
	// no other entity.
	if len(entities) == 0 {
		trimmed := strings.TrimSpace(text)
		if standalonePassword.MatchString(trimmed) && !isDenied(trimmed) {
			entities[profile.FieldPassword] = trimmed
		}
	}

	return entities
}

// ExtractWithFallback runs the rule pass and, when it finds nothing and a
// generator is configured, asks the text-generation service for a structured
// field mapping. Generator failures are logged and ignored.
func (e *Extractor) ExtractWithFallback(ctx context.Context, text string) profile.Profile {
	entities := e.Extract(text)
	if len(entities) > 0 || e.generator == nil {
		return entities
	}

	fallback, err := e.generatorExtract(ctx, text)
	if err != nil {
		log.Printf("extract: generator fallback failed: %v", err)
		return entities
	}
	return fallback
}

func extractName(text string) string {
	for _, rule := range nameRules {
		if m := rule.FindStringSubmatch(text); m != nil {
			candidate := strings.TrimSpace(m[1])
			if candidate != "" && !isDenied(candidate) {
				return candidate
			}
		}
	}

	// Comma-list heuristic: a short alphabetic first segment of a
	// comma-separated message is treated as the name.
	if idx := strings.Index(text, ","); idx > 0 {
		segment := strings.TrimSpace(text[:idx])
		words := strings.Fields(segment)
		if len(words) >= 1 && len(words) <= 3 && isAlphabetic(segment) && !isDenied(segment) {
			return segment
		}
	}
	return ""
}

func extractPhone(text string) string {
	for _, rule := range phoneRules {
		if m := rule.FindStringSubmatch(text); m != nil {
			candidate := strings.TrimSpace(m[1])
			if digitCount(candidate) >= 7 {
				return candidate
			}
			// Too few digits: discard and try the next rule.
		}
	}
	return ""
}

func extractAddress(text string) string {
	if m := addressLabelRule.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if len(candidate) > 5 && hasDigit(candidate) {
			return candidate
		}
	}
	if m := addressKeywordRule.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := addressStreetRule.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func isDenied(candidate string) bool {
	for _, w := range strings.Fields(strings.ToLower(candidate)) {
		if denylist[strings.Trim(w, ".,!?")] {
			return true
		}
	}
	return false
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return false
		}
	}
	return s != ""
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func hasDigit(s string) bool {
	return digitCount(s) > 0
}

const extractPrompt = `You are an entity extraction service for a user registration system.
Extract the user's name, email, phone, address and password from the message below.

RULES:
1. Respond ONLY with a single, minified JSON object. Do not include markdown ticks, "json", or any other conversational text.
2. The JSON format MUST be: {"name":null,"email":null,"phone":null,"address":null,"password":null}
3. Use null for any field not present in the message.

Message: %q`

// generatorResponse is the fixed-schema mapping the fallback prompt demands.
type generatorResponse struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Password *string `json:"password"`
}

func (e *Extractor) generatorExtract(ctx context.Context, text string) (profile.Profile, error) {
	reply, err := e.generator.Generate(ctx, fmt.Sprintf(extractPrompt, text))
	if err != nil {
		return nil, err
	}

	// Models occasionally wrap the object in prose or fences despite the
	// prompt; parse the outermost braces.
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, errMalformedReply
	}

	var resp generatorResponse
	if err := json.Unmarshal([]byte(reply[start:end+1]), &resp); err != nil {
		return nil, err
	}

	entities := make(profile.Profile)
	put := func(f profile.Field, v *string) {
		if v == nil {
			return
		}
		val := strings.TrimSpace(*v)
		switch strings.ToLower(val) {
		case "", "null", "none", "n/a", "unknown":
			return
		}
		entities[f] = val
	}
	put(profile.FieldName, resp.Name)
	put(profile.FieldEmail, resp.Email)
	put(profile.FieldPhone, resp.Phone)
	put(profile.FieldAddress, resp.Address)
	put(profile.FieldPassword, resp.Password)

	return entities, nil
}
