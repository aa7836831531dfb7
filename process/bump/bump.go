// Package bump implements C8: comparing x-version-* fields of two OpenAPI
// documents' info objects and bumping the top-level info.version
// accordingly.
package bump

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/schemaerr"
)

// Kind is the bump strategy. XVersion is the only live strategy; see
// DESIGN.md's "Open question resolutions" for why the original's
// Undefined dead arm is not carried into this API.
type Kind int

// XVersion is the sole defined Kind.
const XVersion Kind = 1

// Bump compares every "x-version-*" key present on original's info object
// against recent's info object, accumulating major/minor/patch flags by OR
// across keys with strict priority (a major difference suppresses
// minor/patch), then increments original's info.version accordingly and
// stores the result into recent.info.version.
func Bump(original, recent interface{}, _ Kind) error {
	originalInfo, ok := infoOf(original)
	if !ok {
		return fmt.Errorf("%w: original document has no info object", schemaerr.ErrInvalidOpenapiRoot)
	}
	recentInfo, ok := infoOf(recent)
	if !ok {
		return fmt.Errorf("%w: recent document has no info object", schemaerr.ErrInvalidOpenapiRoot)
	}

	var major, minor, patch bool
	for _, key := range originalInfo.Keys() {
		if !strings.HasPrefix(key, "x-version-") {
			continue
		}
		ov, _ := originalInfo.Get(key)
		rv, ok := recentInfo.Get(key)
		if !ok {
			continue
		}

		oVer, err := parseSemver(ov)
		if err != nil {
			return err
		}
		rVer, err := parseSemver(rv)
		if err != nil {
			return err
		}

		if oVer.Major() < rVer.Major() {
			major = true
		}
		if oVer.Minor() < rVer.Minor() {
			minor = true
		}
		if oVer.Patch() < rVer.Patch() {
			patch = true
		}
	}

	versionVal, ok := originalInfo.Get("version")
	if !ok {
		return fmt.Errorf("%w: original info.version missing", schemaerr.ErrMalformedSemver)
	}
	base, err := parseSemver(versionVal)
	if err != nil {
		return err
	}

	var bumped semver.Version
	switch {
	case major:
		bumped = base.IncMajor()
	case minor:
		bumped = base.IncMinor()
	case patch:
		bumped = base.IncPatch()
	default:
		bumped = *base
	}

	recentInfo.Set("version", bumped.String())
	return nil
}

func infoOf(doc interface{}) (*schemadoc.OrderedMap, bool) {
	root, ok := schemadoc.ToOrderedMap(doc)
	if !ok {
		return nil, false
	}
	infoVal, ok := root.Get("info")
	if !ok {
		return nil, false
	}
	return schemadoc.ToOrderedMap(infoVal)
}

func parseSemver(v interface{}) (*semver.Version, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: expected string version, got %T", schemaerr.ErrMalformedSemver, v)
	}
	ver, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemaerr.ErrMalformedSemver, err)
	}
	return ver, nil
}
