package flow

import (
	"net/url"
	"strings"
)

var (
	referralQueryKeys    = []string{"ref", "referral", "referralCode", "code"}
	referralPathPrefixes = map[string]struct{}{"ref": {}, "referral": {}, "invite": {}, "code": {}}
)

// Referral is the referral code captured from the signup URL.
type Referral struct {
	Code string
	// Locked is true when the code came from the URL; the field is then
	// read-only and submitted values are ignored.
	Locked bool
}

// ResolveReferral derives the referral code from a raw (still escaped) URL
// path and its query. Query parameters win over the path. The path counts
// when it is a single segment, or a ref/referral/invite/code prefix followed
// by the code.
func ResolveReferral(rawPath string, query url.Values) Referral {
	var candidate string
	for _, key := range referralQueryKeys {
		if v := query.Get(key); v != "" {
			candidate = v
			break
		}
	}
	if candidate == "" {
		candidate = pathReferral(rawPath)
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return Referral{}
	}
	decoded, err := url.PathUnescape(candidate)
	if err != nil {
		decoded = candidate
	}
	return Referral{Code: decoded, Locked: true}
}

func pathReferral(rawPath string) string {
	var parts []string
	for _, part := range strings.Split(strings.TrimLeft(rawPath, "/"), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	switch {
	case len(parts) == 1:
		return parts[0]
	case len(parts) > 1:
		if _, ok := referralPathPrefixes[strings.ToLower(parts[0])]; ok {
			return strings.Join(parts[1:], "/")
		}
	}
	return ""
}
