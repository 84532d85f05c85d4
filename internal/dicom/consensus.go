package dicom

// Bounds for plausible MRI in-plane dimensions. Values outside this range
// are treated as artifacts (localizer overlays, mosaic grids, corrupt
// headers) and excluded from the vote.
const (
	minPlausibleDim = 32
	maxPlausibleDim = 8192
)

type dimensionPair struct {
	rows, cols int
}

func plausibleDim(v int) bool {
	return v >= minPlausibleDim && v <= maxPlausibleDim
}

// sampleIndices returns sampleSize evenly spaced indices into a slice of
// length total, or every index when the slice is small enough.
func sampleIndices(total, sampleSize int) []int {
	if total <= 0 {
		return nil
	}
	if sampleSize >= total {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	indices := make([]int, 0, sampleSize)
	for i := 0; i < sampleSize; i++ {
		indices = append(indices, i*total/sampleSize)
	}
	return indices
}

// consensusDimensions votes over a sample of the series to pick the most
// common (rows, cols) pair, protecting against a first file that happens to
// be a localizer or otherwise unrepresentative. Ties keep the first pair
// encountered. When no sampled file yields plausible dimensions the
// first-file values are returned unchanged.
func consensusDimensions(files []string, cache *seriesCache, rows, cols int, logf Progressf) (int, int) {
	sampleSize := len(files) / 5
	if sampleSize < 10 {
		sampleSize = 10
	}
	if sampleSize > 100 {
		sampleSize = 100
	}

	counts := make(map[dimensionPair]int)
	var order []dimensionPair
	sampled := 0
	for _, idx := range sampleIndices(len(files), sampleSize) {
		set := cache.get(files[idx])
		if set == nil {
			continue
		}
		r, okR := set.Int(tagRows)
		c, okC := set.Int(tagColumns)
		if !okR || !okC || !plausibleDim(r) || !plausibleDim(c) {
			continue
		}
		key := dimensionPair{rows: r, cols: c}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
		sampled++
	}

	if len(order) == 0 {
		if rows != 0 && cols != 0 && (!plausibleDim(rows) || !plausibleDim(cols)) {
			logf.Printf("    warning: dimensions %dx%d are outside the typical range and no alternative was found in sampled files", rows, cols)
		}
		return rows, cols
	}

	best := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[best] {
			best = key
		}
	}
	if best.rows != rows || best.cols != cols {
		logf.Printf("    using consensus dimensions %dx%d (%d/%d sampled files), rejected first-file %dx%d",
			best.rows, best.cols, counts[best], sampled, rows, cols)
	}
	return best.rows, best.cols
}
