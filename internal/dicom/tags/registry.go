// Package tags wraps parsed DICOM datasets behind typed, scalar-safe
// attribute lookups, either by name or by numeric (group, element) pair.
package tags

import (
	"fmt"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// TagScope represents the DICOM hierarchy level at which an attribute is
// expected to be consistent.
type TagScope int

const (
	// ScopeStudy indicates attributes that should be consistent within a study.
	ScopeStudy TagScope = iota
	// ScopeSeries indicates attributes that should be consistent within a series.
	ScopeSeries
	// ScopeImage indicates attributes that can vary per image.
	ScopeImage
)

// String returns the string representation of a TagScope.
func (s TagScope) String() string {
	switch s {
	case ScopeStudy:
		return "Study"
	case ScopeSeries:
		return "Series"
	case ScopeImage:
		return "Image"
	default:
		return "Unknown"
	}
}

// TagInfo contains information about a DICOM attribute, including the
// hierarchy scope at which it is expected to stay constant.
type TagInfo struct {
	Name  string
	Tag   tag.Tag
	Scope TagScope
}

// tagRegistry maps lowercase attribute names to their TagInfo. It covers the
// attributes the gatherer reads by name; vendor-private attributes are
// addressed by numeric pair instead.
var tagRegistry = map[string]TagInfo{
	// Study level attributes
	"studydescription": {Name: "StudyDescription", Tag: tag.StudyDescription, Scope: ScopeStudy},

	// Series level attributes
	"seriesnumber":          {Name: "SeriesNumber", Tag: tag.SeriesNumber, Scope: ScopeSeries},
	"seriesdescription":     {Name: "SeriesDescription", Tag: tag.SeriesDescription, Scope: ScopeSeries},
	"seriesdate":            {Name: "SeriesDate", Tag: tag.SeriesDate, Scope: ScopeSeries},
	"seriestime":            {Name: "SeriesTime", Tag: tag.SeriesTime, Scope: ScopeSeries},
	"mracquisitiontype":     {Name: "MRAcquisitionType", Tag: tag.MRAcquisitionType, Scope: ScopeSeries},
	"imagetype":             {Name: "ImageType", Tag: tag.ImageType, Scope: ScopeSeries},
	"acquisitionmatrix":     {Name: "AcquisitionMatrix", Tag: tag.AcquisitionMatrix, Scope: ScopeSeries},
	"pixelspacing":          {Name: "PixelSpacing", Tag: tag.PixelSpacing, Scope: ScopeSeries},
	"slicethickness":        {Name: "SliceThickness", Tag: tag.SliceThickness, Scope: ScopeSeries},
	"spacingbetweenslices":  {Name: "SpacingBetweenSlices", Tag: tag.SpacingBetweenSlices, Scope: ScopeSeries},
	"inversiontime":         {Name: "InversionTime", Tag: tag.InversionTime, Scope: ScopeSeries},
	"echotime":              {Name: "EchoTime", Tag: tag.EchoTime, Scope: ScopeSeries},
	"repetitiontime":        {Name: "RepetitionTime", Tag: tag.RepetitionTime, Scope: ScopeSeries},
	"flipangle":             {Name: "FlipAngle", Tag: tag.FlipAngle, Scope: ScopeSeries},
	"numberofaverages":      {Name: "NumberOfAverages", Tag: tag.NumberOfAverages, Scope: ScopeSeries},
	"pixelbandwidth":        {Name: "PixelBandwidth", Tag: tag.PixelBandwidth, Scope: ScopeSeries},
	"receivecoilname":       {Name: "ReceiveCoilName", Tag: tag.ReceiveCoilName, Scope: ScopeSeries},
	"magneticfieldstrength": {Name: "MagneticFieldStrength", Tag: tag.MagneticFieldStrength, Scope: ScopeSeries},

	// Image level attributes
	"rows":                 {Name: "Rows", Tag: tag.Rows, Scope: ScopeImage},
	"columns":              {Name: "Columns", Tag: tag.Columns, Scope: ScopeImage},
	"imagepositionpatient": {Name: "ImagePositionPatient", Tag: tag.ImagePositionPatient, Scope: ScopeImage},
	"instancenumber":       {Name: "InstanceNumber", Tag: tag.InstanceNumber, Scope: ScopeImage},
	"diffusionbvalue":      {Name: "DiffusionBValue", Tag: tag.DiffusionBValue, Scope: ScopeImage},
}

// GetTagByName returns TagInfo for a given attribute name.
// The lookup is case-insensitive. If the attribute is not found, an error is
// returned with a suggestion for the closest matching name (using Levenshtein
// distance).
func GetTagByName(name string) (TagInfo, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))

	if info, ok := tagRegistry[normalizedName]; ok {
		return info, nil
	}

	suggestion := findClosestTagName(normalizedName)
	if suggestion != "" {
		return TagInfo{}, fmt.Errorf("unknown attribute %q, did you mean %q?", name, suggestion)
	}

	return TagInfo{}, fmt.Errorf("unknown attribute %q", name)
}

// MustTag resolves an attribute name through the registry, panicking if the
// name is unknown. Intended for package-level lookups of well-known names.
func MustTag(name string) tag.Tag {
	info, err := GetTagByName(name)
	if err != nil {
		panic(err)
	}
	return info.Tag
}

// findClosestTagName finds the closest matching attribute name using
// Levenshtein distance. Returns empty string if no close match is found
// (distance > 5).
func findClosestTagName(input string) string {
	const maxDistance = 5
	bestDistance := maxDistance + 1
	var bestMatch string

	for key, info := range tagRegistry {
		distance := levenshteinDistance(input, key)
		if distance < bestDistance {
			bestDistance = distance
			bestMatch = info.Name
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance calculates the Levenshtein distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
