// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package ring

import (
	"net/url"

	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/validate"
)

// Normalisation failure codes.
const (
	CodeInvalidRingName = "INVALID_RING_NAME"
	CodeInvalidRingURL  = "INVALID_RING_URL"
	CodeInvalidSiteName = "INVALID_SITE_NAME"
	CodeInvalidTagName  = "INVALID_TAG_NAME"
)

var (
	webringNameNormaliser = validate.Normaliser{InvalidCode: CodeInvalidRingName, Field: "webring name"}
	webringURLNormaliser  = validate.Normaliser{InvalidCode: CodeInvalidRingURL, Field: "webring url", Fold: true}
	siteNameNormaliser    = validate.Normaliser{InvalidCode: CodeInvalidSiteName, Field: "site name"}
	tagNameNormaliser     = validate.Normaliser{InvalidCode: CodeInvalidTagName, Field: "tag name", Fold: true}
)

// NormaliseWebringName trims a webring display name.
func NormaliseWebringName(name string) (string, error) {
	return webringNameNormaliser.Normalise(name)
}

// NormaliseWebringURL trims and lower-cases a webring's URL slug.
func NormaliseWebringURL(slug string) (string, error) {
	return webringURLNormaliser.Normalise(slug)
}

// NormaliseSiteName trims a site display name.
func NormaliseSiteName(name string) (string, error) {
	return siteNameNormaliser.Normalise(name)
}

// NormaliseTagName trims and lower-cases a tag name.
func NormaliseTagName(name string) (string, error) {
	return tagNameNormaliser.Normalise(name)
}

// Limits holds the configurable field constraints for webrings, sites and tags.
type Limits struct {
	WebringNameMin int
	WebringNameMax int
	WebringURLMin  int
	WebringURLMax  int
	DescriptionMax int
	SiteNameMin    int
	SiteNameMax    int
	SiteURLMax     int
	TagNameMin     int
	TagNameMax     int
}

// DefaultLimits returns the stock constraints.
func DefaultLimits() Limits {
	return Limits{
		WebringNameMin: 1,
		WebringNameMax: 100,
		WebringURLMin:  3,
		WebringURLMax:  50,
		DescriptionMax: 4000,
		SiteNameMin:    1,
		SiteNameMax:    100,
		SiteURLMax:     2048,
		TagNameMin:     2,
		TagNameMax:     30,
	}
}

// ValidateWebringName checks a webring display name.
func (l Limits) ValidateWebringName(name string) error {
	return validate.Rule{Code: "WEBRING_NAME", Field: "webring name", Min: l.WebringNameMin, Max: l.WebringNameMax}.Check(name)
}

// ValidateWebringURL checks a webring slug: letters, digits and underscores.
func (l Limits) ValidateWebringURL(slug string) error {
	return validate.Rule{
		Code:    "WEBRING_URL",
		Field:   "webring url",
		Min:     l.WebringURLMin,
		Max:     l.WebringURLMax,
		Charset: validate.Identifier,
	}.Check(slug)
}

// ValidateDescription checks a webring description. Empty is allowed.
func (l Limits) ValidateDescription(description string) error {
	if description == "" {
		return nil
	}
	return validate.Rule{Code: "DESCRIPTION", Field: "description", Max: l.DescriptionMax}.Check(description)
}

// ValidateSiteName checks a site display name.
func (l Limits) ValidateSiteName(name string) error {
	return validate.Rule{Code: "SITE_NAME", Field: "site name", Min: l.SiteNameMin, Max: l.SiteNameMax}.Check(name)
}

// ValidateSiteURL checks that a site address is an absolute http or https URL.
func (l Limits) ValidateSiteURL(raw string) error {
	if err := (validate.Rule{Code: "SITE_URL", Field: "site url", Max: l.SiteURLMax}).Check(raw); err != nil {
		return err
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return oops.Code("SITE_URL_INVALID_FORMAT").
			With("field", "site url").
			Errorf("site url must be an absolute http or https URL")
	}
	return nil
}

// ValidateTagName checks a tag name: letters, digits and underscores.
func (l Limits) ValidateTagName(name string) error {
	return validate.Rule{
		Code:    "TAG_NAME",
		Field:   "tag name",
		Min:     l.TagNameMin,
		Max:     l.TagNameMax,
		Charset: validate.Identifier,
	}.Check(name)
}
