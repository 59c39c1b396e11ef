package extract

import "regexp"

// Intent classifies what the user is trying to do with a message.
type Intent string

const (
	IntentRegister Intent = "register"
	IntentUpdate   Intent = "update_information"
	IntentView     Intent = "view_profile"
	IntentUnknown  Intent = "unknown"
)

// intentPatterns is ordered so that ties resolve the same way every time.
var intentPatterns = []struct {
	intent   Intent
	patterns []*regexp.Regexp
}{
	{IntentRegister, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(register|sign up|create account)`),
		regexp.MustCompile(`(?i)want.*to.*(register|complete profile)`),
		regexp.MustCompile(`(?i)complete.*(registration|profile)`),
	}},
	{IntentUpdate, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(update|change|modify).*(profile|information)`),
		regexp.MustCompile(`(?i)edit.*profile`),
	}},
	{IntentView, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(view|see|get|my).*(profile|information)`),
		regexp.MustCompile(`(?i)show.*profile`),
	}},
}

var fieldMention = regexp.MustCompile(`(?i)\b(name|email|phone|address)\b`)

// DetectIntent scores each intent pattern against the message and returns
// the best match with a rough confidence. A message that mentions profile
// fields without matching any pattern defaults to the register intent.
func DetectIntent(text string) (Intent, float64) {
	best := IntentUnknown
	confidence := 0.0

	for _, entry := range intentPatterns {
		for _, p := range entry.patterns {
			loc := p.FindStringIndex(text)
			if loc == nil {
				continue
			}
			score := 0.5 + float64(loc[1]-loc[0])/float64(len(text))*0.5
			if score > 0.95 {
				score = 0.95
			}
			if score > confidence {
				confidence = score
				best = entry.intent
			}
		}
	}

	if best == IntentUnknown && fieldMention.MatchString(text) {
		return IntentRegister, 0.7
	}
	return best, confidence
}
