package errors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// hexColorRegex matches #rgb and #rrggbb colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// namedColorRegex matches CSS color keywords such as "teal".
var namedColorRegex = regexp.MustCompile(`^[a-z]{3,20}$`)

// ValidateColor checks that a line color is safe to embed in SVG attributes.
// Empty colors are allowed; renderers pick a palette color instead.
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if hexColorRegex.MatchString(color) || namedColorRegex.MatchString(color) {
		return nil
	}
	return New(ErrCodeInvalidColor, "invalid color %q (want #rgb, #rrggbb or a color name)", color)
}

// ValidateMapID checks that id is a UUID as issued by the map store.
func ValidateMapID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidMapID, "map id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidMapID, err, "invalid map id %q", id)
	}
	return nil
}

// ValidateStationID checks a station id taken from user input, such as the
// highlighted "you are here" station.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No quotes or angle brackets (ids end up in SVG attributes)
//   - Maximum length of 256 characters
func ValidateStationID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidStation, "station id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidStation, "station id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidStation, "station id contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, `"'<>&`) {
		return New(ErrCodeInvalidStation, "station id contains markup characters")
	}
	return nil
}
