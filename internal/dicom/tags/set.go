package tags

import (
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Set provides typed lookups over one parsed DICOM dataset. Multi-valued
// attributes are exposed as slices; the singular accessors always reduce to
// the first value so callers never propagate list-valued fields.
type Set struct {
	ds dicom.Dataset
}

// NewSet wraps an already-parsed dataset.
func NewSet(ds dicom.Dataset) *Set {
	return &Set{ds: ds}
}

// ParseSet parses the DICOM file at path, skipping pixel data, and wraps the
// resulting dataset.
func ParseSet(path string) (*Set, error) {
	ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return nil, err
	}
	return &Set{ds: ds}, nil
}

// Pair returns the tag for a raw (group, element) pair, used for
// vendor-private attributes that have no name in the registry.
func Pair(group, element uint16) tag.Tag {
	return tag.Tag{Group: group, Element: element}
}

// Has reports whether the attribute is present in the dataset.
func (s *Set) Has(t tag.Tag) bool {
	_, ok := s.value(t)
	return ok
}

func (s *Set) value(t tag.Tag) (any, bool) {
	elem, err := s.ds.FindElementByTag(t)
	if err != nil || elem == nil || elem.Value == nil {
		return nil, false
	}
	return elem.Value.GetValue(), true
}

// Strings returns the attribute as a string slice.
func (s *Set) Strings(t tag.Tag) ([]string, bool) {
	v, ok := s.value(t)
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case []string:
		return val, len(val) > 0
	case []byte:
		return []string{string(val)}, true
	case []int:
		out := make([]string, len(val))
		for i, n := range val {
			out[i] = strconv.Itoa(n)
		}
		return out, len(out) > 0
	case []float64:
		out := make([]string, len(val))
		for i, f := range val {
			out[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return out, len(out) > 0
	}
	return nil, false
}

// String returns the first value of the attribute as a trimmed string.
func (s *Set) String(t tag.Tag) (string, bool) {
	vals, ok := s.Strings(t)
	if !ok || len(vals) == 0 {
		return "", false
	}
	return strings.TrimSpace(vals[0]), true
}

// Ints returns the attribute as an int slice.
func (s *Set) Ints(t tag.Tag) ([]int, bool) {
	v, ok := s.value(t)
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case []int:
		return val, len(val) > 0
	case []float64:
		out := make([]int, len(val))
		for i, f := range val {
			out[i] = int(f)
		}
		return out, len(out) > 0
	case []string:
		out := make([]int, 0, len(val))
		for _, raw := range val {
			n, err := parseInt(raw)
			if err != nil {
				return nil, false
			}
			out = append(out, n)
		}
		return out, len(out) > 0
	case []byte:
		n, err := parseInt(string(val))
		if err != nil {
			return nil, false
		}
		return []int{n}, true
	}
	return nil, false
}

// Int returns the first value of the attribute as an int.
func (s *Set) Int(t tag.Tag) (int, bool) {
	v, ok := s.value(t)
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case []int:
		if len(val) == 0 {
			return 0, false
		}
		return val[0], true
	case []float64:
		if len(val) == 0 {
			return 0, false
		}
		return int(val[0]), true
	case []string:
		if len(val) == 0 {
			return 0, false
		}
		n, err := parseInt(val[0])
		if err != nil {
			return 0, false
		}
		return n, true
	case []byte:
		n, err := parseInt(string(val))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Floats returns the attribute as a float64 slice.
func (s *Set) Floats(t tag.Tag) ([]float64, bool) {
	v, ok := s.value(t)
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case []float64:
		return val, len(val) > 0
	case []int:
		out := make([]float64, len(val))
		for i, n := range val {
			out[i] = float64(n)
		}
		return out, len(out) > 0
	case []string:
		out := make([]float64, 0, len(val))
		for _, raw := range val {
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, false
			}
			out = append(out, f)
		}
		return out, len(out) > 0
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		if err != nil {
			return nil, false
		}
		return []float64{f}, true
	}
	return nil, false
}

// Float returns the first value of the attribute as a float64.
func (s *Set) Float(t tag.Tag) (float64, bool) {
	vals, ok := s.Floats(t)
	if !ok || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

// Bytes returns the raw byte content of the attribute. String-valued
// attributes are joined back into one blob.
func (s *Set) Bytes(t tag.Tag) ([]byte, bool) {
	v, ok := s.value(t)
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case []byte:
		return val, len(val) > 0
	case []string:
		joined := strings.Join(val, "")
		return []byte(joined), len(joined) > 0
	}
	return nil, false
}

// parseInt parses integer strings, tolerating decimal-string values that some
// vendors store in integer-string slots.
func parseInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
