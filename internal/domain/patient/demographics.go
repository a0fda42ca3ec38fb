// Package patient holds the demographic attributes a caller may attach to a query.
package patient

import "strings"

// MaxAge is the largest age accepted as a known value.
const MaxAge = 130

// Gender is the caller-reported gender.
type Gender string

// Gender constants.
const (
	Male    Gender = "male"
	Female  Gender = "female"
	Unknown Gender = "unknown"
)

// ParseGender maps a free-form token onto a known gender.
// Anything unrecognized (including empty) maps to Unknown.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male
	case "female", "f":
		return Female
	default:
		return Unknown
	}
}

// IsKnown reports whether g is male or female.
func (g Gender) IsKnown() bool { return g == Male || g == Female }

// Demographics is an immutable age/gender pair. Both attributes are optional.
type Demographics struct {
	age    int
	hasAge bool
	gender Gender
}

// NewDemographics builds demographics from optional caller input.
// Negative or implausible ages are treated as absent.
func NewDemographics(age *int, gender string) Demographics {
	d := Demographics{gender: ParseGender(gender)}
	if age != nil && *age >= 0 && *age <= MaxAge {
		d.age = *age
		d.hasAge = true
	}
	return d
}

// None returns demographics with no known attribute.
func None() Demographics { return Demographics{gender: Unknown} }

// Age returns the age and whether it is known.
func (d Demographics) Age() (int, bool) { return d.age, d.hasAge }

// Gender returns the gender (Unknown when absent).
func (d Demographics) Gender() Gender {
	if d.gender == "" {
		return Unknown
	}
	return d.gender
}

// IsEmpty reports whether neither attribute is known.
func (d Demographics) IsEmpty() bool { return !d.hasAge && !d.Gender().IsKnown() }
