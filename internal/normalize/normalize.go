// Package normalize turns free-text menu fragments into typed values.
//
// Every parser returns nil when the value cannot be recovered, so callers can
// tell an unknown price apart from a free one.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// OuncesPerMilliliter is the fixed milliliter to US fluid ounce factor.
const OuncesPerMilliliter = 0.033814

const (
	// DraftVolumeOz is assumed for draft/tap pours with no stated size.
	DraftVolumeOz = 16.0
	// PackagedVolumeOz is assumed for everything else (bottle or can).
	PackagedVolumeOz = 12.0
)

const number = `(\d+(?:\.\d+)?|\.\d+)`

var (
	reNumber = regexp.MustCompile(number)
	// Unit markers carry no trailing boundary: goquery joins sibling elements
	// without a separator, so "16oz" is often glued to the next field.
	reOunces = regexp.MustCompile(`(?i)` + number + `\s*(?:fl\.?\s*)?(?:ounces?|oz)`)
	reMillis = regexp.MustCompile(`(?i)` + number + `\s*(?:millilit(?:er|re)s?|ml)`)
	reABV    = regexp.MustCompile(number + `%`)
	rePrice  = regexp.MustCompile(`[$€£]\s?` + number)
	// Letters may not touch the word on either side ("Tapioca"), digits and
	// punctuation may ("$7Draft").
	reDraft  = regexp.MustCompile(`(?i)(?:^|[^a-zA-Z])(?:draft|draught|taps?|pints?)(?:[^a-zA-Z]|$)`)
)

// Volume returns the serving size in ounces, or nil if no unit marker is present.
func Volume(text string) *float64 {
	if v := capture(reOunces, text); v != nil {
		return v
	}
	if v := capture(reMillis, text); v != nil {
		oz := MillilitersToOunces(*v)
		return &oz
	}
	return nil
}

// MillilitersToOunces converts a metric serving size.
func MillilitersToOunces(ml float64) float64 {
	return ml * OuncesPerMilliliter
}

// ABV returns a percentage written as "6.5%".
func ABV(text string) *float64 {
	return capture(reABV, text)
}

// Price returns an amount written after a currency marker, e.g. "$8" or "€ 6.50".
func Price(text string) *float64 {
	return capture(rePrice, strings.ReplaceAll(text, ",", ""))
}

// Number returns the first numeric token in text.
func Number(text string) *float64 {
	return capture(reNumber, strings.ReplaceAll(text, ",", ""))
}

// DefaultVolume guesses the serving size from how the item is described.
func DefaultVolume(context string) float64 {
	if reDraft.MatchString(context) {
		return DraftVolumeOz
	}
	return PackagedVolumeOz
}

// VolumeOrDefault parses fragment and falls back to the serving-format guess over context.
func VolumeOrDefault(fragment, context string) float64 {
	if v := Volume(fragment); v != nil {
		return *v
	}
	return DefaultVolume(context)
}

func capture(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}
