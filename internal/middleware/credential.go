package middleware

import "strings"

// CookieName is the cookie that carries the credential for browser clients.
const CookieName = "auth_token"

const bearerPrefix = "Bearer "

// FromAuthorizationHeader returns the credential from an "Authorization: Bearer <token>" value.
func FromAuthorizationHeader(value string) (string, bool) {
	token, found := strings.CutPrefix(value, bearerPrefix)
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// FromCookieHeader returns the auth_token value from a raw Cookie header.
// The first matching pair wins.
func FromCookieHeader(value string) (string, bool) {
	for _, pair := range strings.Split(value, ";") {
		name, val, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || name != CookieName {
			continue
		}
		if val == "" {
			return "", false
		}
		return val, true
	}
	return "", false
}

// ResolveCredential prefers a bearer token over the cookie.
func ResolveCredential(authorization, cookie string) (string, bool) {
	if token, ok := FromAuthorizationHeader(authorization); ok {
		return token, true
	}
	return FromCookieHeader(cookie)
}
