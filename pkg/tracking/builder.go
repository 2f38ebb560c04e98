// Package tracking builds tagged outbound URLs for redirect links.
package tracking

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Reserved query keys. Values already present on a destination are replaced.
const (
	ParamSource   = "utm_source"
	ParamMedium   = "utm_medium"
	ParamCampaign = "utm_campaign"
	ParamContent  = "utm_content"
	ParamTerm     = "utm_term"

	SourceValue = "youtube"
	MediumValue = "video_description"
)

var reserved = map[string]bool{
	ParamSource:   true,
	ParamMedium:   true,
	ParamCampaign: true,
	ParamContent:  true,
	ParamTerm:     true,
}

var ErrInvalidDestination = errors.New("destination must be an absolute http(s) URL")

// ValidateDestination checks that a destination can be tagged and redirected to.
func ValidateDestination(destination string) error {
	_, err := parseDestination(destination)
	return err
}

func parseDestination(destination string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(destination))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, ErrInvalidDestination
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidDestination
	}
	return u, nil
}

// BuildRedirectURL appends the tracking parameters to destination.
// Non-reserved parameters keep their original order and encoding; reserved
// ones are dropped and re-appended in canonical order. utm_term is only
// emitted when sessionID is non-empty.
func BuildRedirectURL(destination, videoSlug, linkLabel, sessionID string) (string, error) {
	u, err := parseDestination(destination)
	if err != nil {
		return "", err
	}

	pairs := make([]string, 0, 8)
	if u.RawQuery != "" {
		for _, pair := range strings.Split(u.RawQuery, "&") {
			if pair == "" {
				continue
			}
			key := pair
			if i := strings.IndexByte(pair, '='); i >= 0 {
				key = pair[:i]
			}
			if unescaped, err := url.QueryUnescape(key); err == nil {
				key = unescaped
			}
			if reserved[key] {
				continue
			}
			pairs = append(pairs, pair)
		}
	}

	pairs = append(pairs,
		ParamSource+"="+url.QueryEscape(SourceValue),
		ParamMedium+"="+url.QueryEscape(MediumValue),
		ParamCampaign+"="+url.QueryEscape(videoSlug),
		ParamContent+"="+url.QueryEscape(linkLabel),
	)
	if sessionID != "" {
		pairs = append(pairs, ParamTerm+"="+url.QueryEscape(sessionID))
	}

	u.RawQuery = strings.Join(pairs, "&")
	u.ForceQuery = false
	return u.String(), nil
}
