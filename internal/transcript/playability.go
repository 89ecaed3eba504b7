package transcript

import "strings"

// Playability status values returned by the player endpoint.
const (
	statusOK            = "OK"
	statusError         = "ERROR"
	statusLoginRequired = "LOGIN_REQUIRED"
)

// Reason texts YouTube uses for the cases we classify.
const (
	reasonBotDetected   = "Sign in to confirm you’re not a bot"
	reasonAgeRestricted = "This video may be inappropriate for some users."
	reasonUnavailable   = "This video is unavailable"
)

// Outcome is the coarse verdict of a playability status.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeLoginRequired
	OutcomeError
	OutcomeUnplayable
)

// PlayabilityStatus is the playabilityStatus object of a player response.
type PlayabilityStatus struct {
	Status      string       `json:"status"`
	Reason      string       `json:"reason"`
	ErrorScreen *errorScreen `json:"errorScreen"`
}

type errorScreen struct {
	PlayerErrorMessageRenderer *struct {
		Subreason *formattedText `json:"subreason"`
	} `json:"playerErrorMessageRenderer"`
}

// formattedText is YouTube's formatted string: either simpleText or a list of runs.
type formattedText struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t *formattedText) String() string {
	if t == nil {
		return ""
	}
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Outcome classifies the status string. A missing status counts as OK.
func (p *PlayabilityStatus) Outcome() Outcome {
	if p == nil {
		return OutcomeOK
	}
	switch p.Status {
	case "", statusOK:
		return OutcomeOK
	case statusLoginRequired:
		return OutcomeLoginRequired
	case statusError:
		return OutcomeError
	}
	return OutcomeUnplayable
}

// SubReasons returns the non-empty sub-reason lines of the error screen.
func (p *PlayabilityStatus) SubReasons() []string {
	if p == nil || p.ErrorScreen == nil || p.ErrorScreen.PlayerErrorMessageRenderer == nil {
		return nil
	}
	sub := p.ErrorScreen.PlayerErrorMessageRenderer.Subreason
	if sub == nil {
		return nil
	}
	var out []string
	for _, r := range sub.Runs {
		if r.Text != "" {
			out = append(out, r.Text)
		}
	}
	if len(out) == 0 && sub.SimpleText != "" {
		out = append(out, sub.SimpleText)
	}
	return out
}

// isBotCheck matches the bot wall reason. YouTube sends a typographic
// apostrophe; older clients and some locales use the ASCII one.
func isBotCheck(reason string) bool {
	return strings.ReplaceAll(reason, "'", "’") == reasonBotDetected
}

// CheckPlayability returns nil if captions may be served, or the matching
// failure otherwise. Rules are evaluated in order; anything that matches
// no known phrase is unplayable.
func CheckPlayability(videoID string, p *PlayabilityStatus) error {
	outcome := p.Outcome()
	if outcome == OutcomeOK {
		return nil
	}
	ve := videoError{videoID}

	switch outcome {
	case OutcomeLoginRequired:
		if isBotCheck(p.Reason) {
			return &RequestBlockedError{videoError: ve}
		}
		if p.Reason == reasonAgeRestricted {
			return &AgeRestrictedError{ve}
		}
	case OutcomeError:
		if p.Reason == reasonUnavailable {
			if strings.HasPrefix(videoID, "http://") || strings.HasPrefix(videoID, "https://") {
				return &InvalidVideoIDError{ve}
			}
			return &VideoUnavailableError{ve}
		}
	}
	return &VideoUnplayableError{videoError: ve, Reason: p.Reason, SubReasons: p.SubReasons()}
}
