package dicom

import (
	"strconv"
	"strings"

	"github.com/mrsinham/dicomgather/internal/dicom/tags"
)

// mosaicInfo describes a Siemens mosaic series. Mosaic files tile a whole
// volume into one large image, so the stored Rows/Columns describe the tile
// grid rather than the acquisition matrix. Rows and Cols here are the
// corrected in-plane dimensions; Slices is the per-volume slice count taken
// from NumberOfImagesInMosaic when present.
type mosaicInfo struct {
	Mosaic    bool
	Rows      int
	Cols      int
	Slices    int
	HasSlices bool
}

func detectMosaic(rep *tags.Set, rows, cols int, logf Progressf) mosaicInfo {
	info := mosaicInfo{Rows: rows, Cols: cols}

	values, ok := rep.Strings(tagImageType)
	if !ok {
		return info
	}
	for _, v := range values {
		if strings.Contains(strings.ToUpper(v), "MOSAIC") {
			info.Mosaic = true
			break
		}
	}
	if !info.Mosaic {
		return info
	}
	logf.Printf("    detected mosaic format, image type %v", values)

	if r, c, ok := mosaicMatrixDims(rep); ok {
		logf.Printf("    corrected dimensions from %dx%d (mosaic) to %dx%d (actual)", rows, cols, r, c)
		info.Rows, info.Cols = r, c
	}

	if n, ok := rep.Int(siemensImagesInMosaic); ok && n > 0 {
		info.Slices = n
		info.HasSlices = true
	}
	return info
}

// mosaicMatrixDims recovers the true acquisition matrix, preferring the
// standard AcquisitionMatrix quad [freqRows, freqCols, phaseRows, phaseCols]
// and falling back to the Siemens "<N>p*<M>" matrix-size string.
func mosaicMatrixDims(rep *tags.Set) (int, int, bool) {
	if am, ok := rep.Ints(tagAcquisitionMatrix); ok && len(am) >= 4 {
		switch {
		case am[0] > 0:
			cols := am[3]
			if cols <= 0 {
				cols = am[0]
			}
			return am[0], cols, true
		case am[1] > 0:
			rows := am[2]
			if rows <= 0 {
				rows = am[1]
			}
			return rows, am[1], true
		}
	}

	matrix, ok := rep.String(siemensMatrixSize)
	if !ok || !strings.Contains(matrix, "p*") {
		return 0, 0, false
	}
	parts := strings.Split(strings.ReplaceAll(matrix, "p", ""), "*")
	if len(parts) != 2 {
		return 0, 0, false
	}
	rows, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	cols, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return rows, cols, true
}
