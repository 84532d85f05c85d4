// Package report serializes gathered series records to CSV, one file per
// series plus a merged summary table.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/mrsinham/dicomgather/internal/dicom"
)

// SummaryFileName is the merged summary written next to the per-series CSVs.
const SummaryFileName = "dicom_info_summary.csv"

// WriteSeriesCSV writes one record as a single-row CSV named after its
// folder and returns the file path.
func WriteSeriesCSV(outputDir string, rec *dicom.SeriesRecord) (string, error) {
	path := filepath.Join(outputDir, rec.FolderName+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := gocsv.Marshal([]*dicom.SeriesRecord{rec}, f); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// seriesOrder reports whether a should sort before b. Numeric series
// numbers sort ascending and come before non-numeric ones ("Unknown"
// included), which sort lexically among themselves.
func seriesOrder(a, b *dicom.SeriesRecord) bool {
	na, errA := strconv.ParseFloat(a.SeriesNumber, 64)
	nb, errB := strconv.ParseFloat(b.SeriesNumber, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a.SeriesNumber < b.SeriesNumber
	}
}

// Merge deduplicates records by folder name, keeping the first occurrence,
// and sorts them by series number. The input slice is not modified.
func Merge(records []*dicom.SeriesRecord) []*dicom.SeriesRecord {
	seen := make(map[string]struct{}, len(records))
	merged := make([]*dicom.SeriesRecord, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.FolderName]; dup {
			continue
		}
		seen[rec.FolderName] = struct{}{}
		merged = append(merged, rec)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return seriesOrder(merged[i], merged[j])
	})
	return merged
}

// WriteSummary merges the records and writes the summary CSV into
// outputDir, returning its path.
func WriteSummary(outputDir string, records []*dicom.SeriesRecord) (string, error) {
	path := filepath.Join(outputDir, SummaryFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	merged := Merge(records)
	if err := gocsv.Marshal(&merged, f); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ReadRecords loads records back from a CSV produced by this package.
func ReadRecords(path string) ([]*dicom.SeriesRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var records []*dicom.SeriesRecord
	if err := gocsv.Unmarshal(f, &records); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

// RemoveSeriesCSVs deletes the per-series CSV files from outputDir after a
// successful merge, leaving the summary in place. It returns the number of
// files removed.
func RemoveSeriesCSVs(outputDir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, "*.csv"))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range matches {
		if filepath.Base(path) == SummaryFileName {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
