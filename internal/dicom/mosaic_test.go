package dicom

import (
	"testing"

	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomgather/internal/dicom/tags"
)

func TestDetectMosaic(t *testing.T) {
	tests := []struct {
		name      string
		set       *tags.Set
		rows      int
		cols      int
		wantRows  int
		wantCols  int
		wantFlag  bool
		wantZ     int
		wantHasZ  bool
	}{
		{
			name: "non-mosaic series untouched",
			set: newTestSet(
				mustNewElement(tag.ImageType, []string{"ORIGINAL", "PRIMARY", "M", "ND"}),
			),
			rows: 256, cols: 256,
			wantRows: 256, wantCols: 256,
		},
		{
			name:     "no image type",
			set:      newTestSet(),
			rows:     128, cols: 128,
			wantRows: 128, wantCols: 128,
		},
		{
			name: "mosaic corrected from acquisition matrix",
			set: newTestSet(
				mustNewElement(tag.ImageType, []string{"ORIGINAL", "PRIMARY", "M", "MOSAIC"}),
				mustNewElement(tag.AcquisitionMatrix, []int{160, 0, 0, 160}),
			),
			rows: 800, cols: 800,
			wantRows: 160, wantCols: 160, wantFlag: true,
		},
		{
			name: "mosaic corrected from column-major matrix",
			set: newTestSet(
				mustNewElement(tag.ImageType, []string{"ORIGINAL", "PRIMARY", "M", "MOSAIC"}),
				mustNewElement(tag.AcquisitionMatrix, []int{0, 128, 96, 0}),
			),
			rows: 640, cols: 640,
			wantRows: 96, wantCols: 128, wantFlag: true,
		},
		{
			name: "mosaic falls back to matrix-size string",
			set: newTestSet(
				mustNewElement(tag.ImageType, []string{"ORIGINAL", "PRIMARY", "M", "MOSAIC"}),
				mustNewElement(tag.AcquisitionMatrix, []int{0, 0, 0, 0}),
				mustNewPrivateElement(tags.Pair(0x0051, 0x100B), "LO", []string{"160p*160"}),
			),
			rows: 800, cols: 800,
			wantRows: 160, wantCols: 160, wantFlag: true,
		},
		{
			name: "mosaic slice count from private tag",
			set: newTestSet(
				mustNewElement(tag.ImageType, []string{"ORIGINAL", "PRIMARY", "M", "MOSAIC"}),
				mustNewElement(tag.AcquisitionMatrix, []int{160, 0, 0, 160}),
				mustNewPrivateElement(tags.Pair(0x0019, 0x100A), "IS", []string{"60"}),
			),
			rows: 800, cols: 800,
			wantRows: 160, wantCols: 160, wantFlag: true,
			wantZ: 60, wantHasZ: true,
		},
		{
			name: "mosaic without usable matrix keeps tiled dims",
			set: newTestSet(
				mustNewElement(tag.ImageType, []string{"ORIGINAL", "PRIMARY", "M", "MOSAIC"}),
			),
			rows: 800, cols: 800,
			wantRows: 800, wantCols: 800, wantFlag: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := detectMosaic(tt.set, tt.rows, tt.cols, nil)
			if info.Mosaic != tt.wantFlag {
				t.Errorf("Mosaic = %v, want %v", info.Mosaic, tt.wantFlag)
			}
			if info.Rows != tt.wantRows || info.Cols != tt.wantCols {
				t.Errorf("dims = %dx%d, want %dx%d", info.Rows, info.Cols, tt.wantRows, tt.wantCols)
			}
			if info.HasSlices != tt.wantHasZ {
				t.Errorf("HasSlices = %v, want %v", info.HasSlices, tt.wantHasZ)
			}
			if tt.wantHasZ && info.Slices != tt.wantZ {
				t.Errorf("Slices = %d, want %d", info.Slices, tt.wantZ)
			}
		})
	}
}
