package models

import (
	"net/url"
	"regexp"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

const SlugMax = 64

// ValidSlug accepts lowercase ASCII letters, digits and hyphens.
func ValidSlug(s string) bool {
	return len(s) <= SlugMax && slugPattern.MatchString(s)
}

// ValidColor accepts #RRGGBB.
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// ValidLogoURL accepts absolute http(s) URLs.
func ValidLogoURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}
