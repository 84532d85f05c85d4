package dicom

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// readBValueSidecar looks for a .bval file next to the series and returns
// the per-volume b-values it lists. An unreadable or malformed sidecar is
// reported and ignored so the header-based detection can take over.
func readBValueSidecar(folder string, logf Progressf) ([]float64, bool) {
	matches, err := filepath.Glob(filepath.Join(folder, "*.bval"))
	if err != nil || len(matches) == 0 {
		return nil, false
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		logf.Printf("    warning: error reading .bval file %s: %v", matches[0], err)
		return nil, false
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return nil, false
	}
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			logf.Printf("    warning: malformed .bval file %s: %v", matches[0], err)
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}
