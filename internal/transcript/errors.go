package transcript

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/proxy"
)

// Kind classifies a transcript retrieval failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidVideoID
	KindVideoUnavailable
	KindVideoUnplayable
	KindTranscriptsDisabled
	KindAgeRestricted
	KindPoTokenRequired
	KindNoTranscriptFound
	KindNotTranslatable
	KindTranslationLanguageNotAvailable
	KindRequestFailed
	KindIPBlocked
	KindRequestBlocked
	KindDataUnparsable
	KindConsentCookie
)

var kindNames = map[Kind]string{
	KindUnknown:                         "unknown",
	KindInvalidVideoID:                  "invalid_video_id",
	KindVideoUnavailable:                "video_unavailable",
	KindVideoUnplayable:                 "video_unplayable",
	KindTranscriptsDisabled:             "transcripts_disabled",
	KindAgeRestricted:                   "age_restricted",
	KindPoTokenRequired:                 "po_token_required",
	KindNoTranscriptFound:               "no_transcript_found",
	KindNotTranslatable:                 "not_translatable",
	KindTranslationLanguageNotAvailable: "translation_language_not_available",
	KindRequestFailed:                   "request_failed",
	KindIPBlocked:                       "ip_blocked",
	KindRequestBlocked:                  "request_blocked",
	KindDataUnparsable:                  "data_unparsable",
	KindConsentCookie:                   "consent_cookie_failed",
}

func (k Kind) String() string { return kindNames[k] }

// Error is implemented by every failure this package returns.
type Error interface {
	error
	VideoID() string
	Kind() Kind
}

// KindOf returns the Kind of the first transcript Error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return KindUnknown
}

// WatchURL is the public watch page of a video.
func WatchURL(videoID string) string {
	return fmt.Sprintf(watchURLFormat, videoID)
}

const (
	watchURLFormat = "https://www.youtube.com/watch?v=%s"

	issueHint = "If you are sure the cause above does not apply and a transcript should be " +
		"retrievable, open the watch page in a browser and check whether captions show up there. " +
		"If they do, YouTube has probably changed its internal API and this client needs an update."
)

// render builds the user-facing message shared by all failures.
func render(videoID, cause string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "could not retrieve a transcript for the video %s!", WatchURL(videoID))
	if cause != "" {
		sb.WriteString(" This is most likely caused by:\n\n")
		sb.WriteString(cause)
	}
	sb.WriteString("\n\n")
	sb.WriteString(issueHint)
	return sb.String()
}

type videoError struct {
	videoID string
}

func (e videoError) VideoID() string { return e.videoID }

// InvalidVideoIDError means a URL was passed where a video id was expected.
type InvalidVideoIDError struct{ videoError }

func (e *InvalidVideoIDError) Kind() Kind { return KindInvalidVideoID }
func (e *InvalidVideoIDError) Error() string {
	return render(e.videoID, "You provided an invalid video id. Make sure you are using the video id and NOT the url!\n\n"+
		`Do NOT run: Fetch("https://www.youtube.com/watch?v=1234")`+"\n"+
		`Instead run: Fetch("1234")`)
}

// VideoUnavailableError means the video does not exist or was removed.
type VideoUnavailableError struct{ videoError }

func (e *VideoUnavailableError) Kind() Kind { return KindVideoUnavailable }
func (e *VideoUnavailableError) Error() string {
	return render(e.videoID, "The video is no longer available")
}

// VideoUnplayableError carries YouTube's own explanation for refusing playback.
type VideoUnplayableError struct {
	videoError
	Reason     string
	SubReasons []string
}

func (e *VideoUnplayableError) Kind() Kind { return KindVideoUnplayable }
func (e *VideoUnplayableError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "No reason specified!"
	}
	var sb strings.Builder
	sb.WriteString("The video is unplayable for the following reason: ")
	sb.WriteString(reason)
	if len(e.SubReasons) > 0 {
		sb.WriteString("\n\nAdditional Details:\n")
		for i, sub := range e.SubReasons {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(" - ")
			sb.WriteString(sub)
		}
	}
	return render(e.videoID, sb.String())
}

// TranscriptsDisabledError means the uploader turned captions off.
type TranscriptsDisabledError struct{ videoError }

func (e *TranscriptsDisabledError) Kind() Kind { return KindTranscriptsDisabled }
func (e *TranscriptsDisabledError) Error() string {
	return render(e.videoID, "Subtitles are disabled for this video")
}

// AgeRestrictedError means the video requires a signed-in adult account.
type AgeRestrictedError struct{ videoError }

func (e *AgeRestrictedError) Kind() Kind { return KindAgeRestricted }
func (e *AgeRestrictedError) Error() string {
	return render(e.videoID, "This video is age-restricted. Therefore, you are unable to retrieve "+
		"transcripts for it without authenticating yourself.\n\n"+
		"Authentication is not supported by this client.")
}

// PoTokenRequiredError means the caption URL needs a proof-of-origin token
// that only a real browser session can mint.
type PoTokenRequiredError struct{ videoError }

func (e *PoTokenRequiredError) Kind() Kind { return KindPoTokenRequired }
func (e *PoTokenRequiredError) Error() string {
	return render(e.videoID, "The requested video cannot be retrieved without a PO Token. "+
		"This client cannot produce one; retry later, YouTube only requires it for some sessions.")
}

// NoTranscriptFoundError means none of the requested languages exist.
type NoTranscriptFoundError struct {
	videoError
	RequestedLanguages []string
	Catalog            string
}

func (e *NoTranscriptFoundError) Kind() Kind { return KindNoTranscriptFound }
func (e *NoTranscriptFoundError) Error() string {
	return render(e.videoID, fmt.Sprintf(
		"No transcripts were found for any of the requested language codes: %v\n\n%s",
		e.RequestedLanguages, e.Catalog))
}

// NotTranslatableError means the track has no translation targets.
type NotTranslatableError struct{ videoError }

func (e *NotTranslatableError) Kind() Kind { return KindNotTranslatable }
func (e *NotTranslatableError) Error() string {
	return render(e.videoID, "The requested language is not translatable")
}

// TranslationLanguageNotAvailableError means the track cannot be translated
// into the requested language.
type TranslationLanguageNotAvailableError struct {
	videoError
	LanguageCode string
}

func (e *TranslationLanguageNotAvailableError) Kind() Kind {
	return KindTranslationLanguageNotAvailable
}
func (e *TranslationLanguageNotAvailableError) Error() string {
	return render(e.videoID, fmt.Sprintf("The requested translation language %q is not available", e.LanguageCode))
}

// RequestFailedError wraps a non-2xx answer from YouTube.
type RequestFailedError struct {
	videoError
	StatusCode int
	Reason     string
}

func (e *RequestFailedError) Kind() Kind { return KindRequestFailed }
func (e *RequestFailedError) Error() string {
	return render(e.videoID, fmt.Sprintf("Request to YouTube failed: HTTP %d %s", e.StatusCode, e.Reason))
}

// DataUnparsableError means the watch page did not look like a watch page.
type DataUnparsableError struct{ videoError }

func (e *DataUnparsableError) Kind() Kind { return KindDataUnparsable }
func (e *DataUnparsableError) Error() string {
	return render(e.videoID, "The data required to fetch the transcript is not parsable. This should "+
		"not happen, please check the watch page for a change in YouTube's page layout.")
}

// ConsentCookieError means the consent wall survived the cookie handshake.
type ConsentCookieError struct{ videoError }

func (e *ConsentCookieError) Kind() Kind { return KindConsentCookie }
func (e *ConsentCookieError) Error() string {
	return render(e.videoID, "Failed to automatically give consent to saving cookies")
}

// Blocking failures.

const (
	blockedIntro = "YouTube is blocking requests from your IP. This usually is due to one of the " +
		"following reasons:\n" +
		"- You have done too many requests and your IP has been blocked by YouTube\n" +
		"- You are doing requests from an IP belonging to a cloud provider (like AWS, Google Cloud " +
		"Platform, Azure, etc.). Unfortunately, most IPs from cloud providers are blocked by YouTube.\n\n"

	blockedNoProxy = "There are two things you can do to work around this:\n" +
		"1. Use proxies to hide your IP address. Set PROXY_HTTP_URL/PROXY_HTTPS_URL for a generic " +
		"proxy or WEBSHARE_PROXY_USERNAME/WEBSHARE_PROXY_PASSWORD for rotating residential proxies.\n" +
		"2. Slow down. Lower RATE_LIMIT_RPS and spread requests out over time."

	blockedGenericProxy = "YouTube is blocking your requests, despite you using proxies. Keep in mind " +
		"a proxy is just a way to hide your real IP behind the IP of that proxy, but there is no " +
		"guarantee that the IP of that proxy won't be blocked as well.\n\n" +
		"The only truly reliable way to prevent IP blocks is rotating through a large pool of " +
		"residential IPs, for example with Webshare rotating residential proxies."

	blockedWebshareProxy = "YouTube is blocking your request, despite you using Webshare proxies. " +
		"Please make sure that you have purchased \"Residential\" proxies and NOT \"Proxy Server\" or " +
		"\"Static Residential\", as those won't work as reliably! The free tier also uses \"Proxy " +
		"Server\" and will NOT work!\n\n" +
		"The only reliable option is using \"Residential\" proxies (not \"Static Residential\"), as " +
		"this allows you to rotate through a pool of over 30M IPs, which makes it highly unlikely " +
		"that YouTube identifies your requests as coming from a proxy."
)

// renderBlocked picks the remediation paragraph for the proxy in use.
func renderBlocked(videoID, intro string, cfg proxy.Config) string {
	switch {
	case cfg == nil:
		return render(videoID, intro+blockedNoProxy)
	case cfg.Kind() == proxy.KindWebshare:
		return render(videoID, blockedWebshareProxy)
	default:
		return render(videoID, blockedGenericProxy)
	}
}

// Blocked is implemented by the failures that mean YouTube refused to talk
// to this IP. Only these are retried by the list fetcher.
type Blocked interface {
	Error
	// WithProxy returns a copy of the error whose message accounts for the
	// proxy that was in use.
	WithProxy(cfg proxy.Config) error
}

// RequestBlockedError is YouTube's bot check on the player endpoint.
type RequestBlockedError struct {
	videoError
	Proxy proxy.Config
}

func (e *RequestBlockedError) Kind() Kind { return KindRequestBlocked }
func (e *RequestBlockedError) Error() string {
	return renderBlocked(e.videoID, blockedIntro, e.Proxy)
}

func (e *RequestBlockedError) WithProxy(cfg proxy.Config) error {
	c := *e
	c.Proxy = cfg
	return &c
}

// IPBlockedError is a CAPTCHA page or an HTTP 429.
type IPBlockedError struct {
	videoError
	Proxy proxy.Config
}

func (e *IPBlockedError) Kind() Kind { return KindIPBlocked }
func (e *IPBlockedError) Error() string {
	return renderBlocked(e.videoID, blockedIntro, e.Proxy)
}

func (e *IPBlockedError) WithProxy(cfg proxy.Config) error {
	c := *e
	c.Proxy = cfg
	return &c
}

// IsBlocked reports whether err means YouTube is blocking this client.
func IsBlocked(err error) bool {
	var b Blocked
	return errors.As(err, &b)
}
