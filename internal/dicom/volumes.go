package dicom

import (
	"math"
	"strings"

	"github.com/mrsinham/dicomgather/internal/dicom/tags"
)

const (
	// statsSampleLimit caps the single statistics pass over one series.
	statsSampleLimit = 500
	// fullBValueScanLimit is the largest series for which every file is
	// read to count b-values exactly; larger series are estimated from
	// the sample.
	fullBValueScanLimit = 500
	bvalueSampleLimit   = 100
	fmriSampleLimit     = 200
)

// seriesStats aggregates the per-file attributes collected in a single
// sampled pass over one series. Slice positions are rounded to 2 decimal
// places so jitter in patient coordinates does not inflate the count.
type seriesStats struct {
	slicePositions    map[float64]struct{}
	instanceNumbers   map[int]struct{}
	temporalPositions map[int]struct{}
	bvalueFiles       map[float64]map[string]struct{}
}

func newSeriesStats() *seriesStats {
	return &seriesStats{
		slicePositions:    make(map[float64]struct{}),
		instanceNumbers:   make(map[int]struct{}),
		temporalPositions: make(map[int]struct{}),
		bvalueFiles:       make(map[float64]map[string]struct{}),
	}
}

func (s *seriesStats) addBValue(bval float64, path string) {
	files, ok := s.bvalueFiles[bval]
	if !ok {
		files = make(map[string]struct{})
		s.bvalueFiles[bval] = files
	}
	files[path] = struct{}{}
}

// fileBValue reads the diffusion b-value of one file, preferring the
// standard attribute over the Siemens private slot.
func fileBValue(set *tags.Set) (float64, bool) {
	if v, ok := set.Float(tagDiffusionBValue); ok {
		return v, true
	}
	return set.Float(siemensBValue)
}

func collectSeriesStats(files []string, cache *seriesCache) *seriesStats {
	stats := newSeriesStats()
	sampleSize := len(files)
	if sampleSize > statsSampleLimit {
		sampleSize = statsSampleLimit
	}
	for _, idx := range sampleIndices(len(files), sampleSize) {
		set := cache.get(files[idx])
		if set == nil {
			continue
		}
		if pos, ok := set.Floats(tagImagePositionPatient); ok && len(pos) >= 3 {
			stats.slicePositions[math.Round(pos[2]*100)/100] = struct{}{}
		}
		if n, ok := set.Int(tagInstanceNumber); ok {
			stats.instanceNumbers[n] = struct{}{}
		}
		if tp, ok := set.Int(temporalPositionIndex); ok {
			stats.temporalPositions[tp] = struct{}{}
		}
		if bval, ok := fileBValue(set); ok {
			stats.addBValue(bval, files[idx])
		}
	}
	return stats
}

// resolveZDim derives the per-volume slice count from the collected
// statistics: distinct slice positions first, distinct instance numbers as
// long as they do not exceed the file count, and the file count itself as a
// last resort.
func resolveZDim(stats *seriesStats, fileCount int) int {
	if n := len(stats.slicePositions); n > 0 {
		return n
	}
	if n := len(stats.instanceNumbers); n > 0 && n <= fileCount {
		return n
	}
	return fileCount
}

// volumeInfo is the outcome of the temporal-dimension resolution.
// Volumes is zero when the series could not be identified as multi-volume.
type volumeInfo struct {
	Volumes   int
	B0s       int
	Diffusion bool
}

func functionalSeries(description string) bool {
	desc := strings.ToLower(description)
	return strings.Contains(desc, "fmri") ||
		strings.Contains(desc, "functional") ||
		strings.Contains(desc, "bold")
}

// estimateB0Volumes converts a count of b0 files into a count of b0
// volumes, assuming every volume carries roughly the same number of slices.
func estimateB0Volumes(fileCount, uniqueBValues, b0Files int) int {
	if b0Files == 0 {
		return 0
	}
	perVolume := fileCount / max(1, uniqueBValues)
	return max(1, b0Files/max(1, perVolume))
}

// resolveVolumes determines whether the series is multi-volume and, for
// diffusion series, how many b0 volumes it holds. A .bval sidecar is
// authoritative when present; otherwise b-values in the headers mark a
// diffusion series, and fMRI-looking descriptions fall back to temporal
// position or instance-number heuristics.
func resolveVolumes(folder string, files []string, cache *seriesCache, stats *seriesStats, zDim int, seriesDesc string, logf Progressf) volumeInfo {
	var out volumeInfo

	if bvals, ok := readBValueSidecar(folder, logf); ok {
		out.Diffusion = true
		out.Volumes = len(bvals)
		for _, v := range bvals {
			if v == 0 {
				out.B0s++
			}
		}
		logf.Printf("    read from .bval file: %d volumes, %d b0s", out.Volumes, out.B0s)
		return out
	}

	if len(files) <= 1 {
		return out
	}

	bvalueFiles := stats.bvalueFiles
	if len(bvalueFiles) == 0 && len(files) > statsSampleLimit {
		bvalueFiles = sampleBValueFiles(files, cache)
	}

	if len(bvalueFiles) > 0 {
		out.Diffusion = true
		if len(files) <= fullBValueScanLimit {
			unique, b0Files := scanAllBValues(files, cache)
			out.Volumes = unique
			out.B0s = estimateB0Volumes(len(files), unique, b0Files)
		} else {
			out.Volumes = len(bvalueFiles)
			out.B0s = estimateB0Volumes(len(files), len(bvalueFiles), len(bvalueFiles[0]))
		}
		logf.Printf("    diffusion MRI detected: %d volumes, %d b0s", out.Volumes, out.B0s)
		return out
	}

	if !functionalSeries(seriesDesc) {
		return out
	}

	temporal := stats.temporalPositions
	instances := stats.instanceNumbers
	if len(temporal) == 0 && len(instances) == 0 {
		temporal, instances = sampleTemporalStats(files, cache)
	}
	if len(temporal) > 1 {
		out.Volumes = len(temporal)
		logf.Printf("    fMRI/multi-volume detected: %d volumes (from temporal positions)", out.Volumes)
		return out
	}
	if len(instances) > zDim {
		maxInstance := 0
		for n := range instances {
			if n > maxInstance {
				maxInstance = n
			}
		}
		if estimated := maxInstance / max(1, zDim); estimated > 1 {
			out.Volumes = estimated
			logf.Printf("    multi-volume sequence detected: %d volumes (estimated)", out.Volumes)
		}
	}
	return out
}

// scanAllBValues reads every file of the series for an exact b-value
// distribution.
func scanAllBValues(files []string, cache *seriesCache) (unique, b0Files int) {
	seen := make(map[float64]struct{})
	for _, path := range files {
		set := cache.get(path)
		if set == nil {
			continue
		}
		bval, ok := fileBValue(set)
		if !ok {
			continue
		}
		seen[bval] = struct{}{}
		if bval == 0 {
			b0Files++
		}
	}
	return len(seen), b0Files
}

func sampleBValueFiles(files []string, cache *seriesCache) map[float64]map[string]struct{} {
	out := make(map[float64]map[string]struct{})
	sampleSize := len(files)
	if sampleSize > bvalueSampleLimit {
		sampleSize = bvalueSampleLimit
	}
	for _, idx := range sampleIndices(len(files), sampleSize) {
		set := cache.get(files[idx])
		if set == nil {
			continue
		}
		if bval, ok := fileBValue(set); ok {
			files2, ok := out[bval]
			if !ok {
				files2 = make(map[string]struct{})
				out[bval] = files2
			}
			files2[files[idx]] = struct{}{}
		}
	}
	return out
}

func sampleTemporalStats(files []string, cache *seriesCache) (temporal map[int]struct{}, instances map[int]struct{}) {
	temporal = make(map[int]struct{})
	instances = make(map[int]struct{})
	sampleSize := len(files)
	if sampleSize > fmriSampleLimit {
		sampleSize = fmriSampleLimit
	}
	for _, idx := range sampleIndices(len(files), sampleSize) {
		set := cache.get(files[idx])
		if set == nil {
			continue
		}
		if n, ok := set.Int(tagInstanceNumber); ok {
			instances[n] = struct{}{}
		}
		if tp, ok := set.Int(temporalPositionIndex); ok {
			temporal[tp] = struct{}{}
		}
	}
	return temporal, instances
}
