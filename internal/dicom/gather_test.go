package dicom

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomgather/internal/dicom/tags"
)

func TestFormatAcqTime(t *testing.T) {
	tests := []struct {
		date, tm, want string
	}{
		{"20240115", "103045.123", "2024-01-15-10:30"},
		{"20240115", "1030", "2024-01-15-10:30"},
		{"", "103045", ""},
		{"20240115", "", ""},
		{"2024", "103045", ""},
	}
	for _, tt := range tests {
		if got := formatAcqTime(tt.date, tt.tm); got != tt.want {
			t.Errorf("formatAcqTime(%q, %q) = %q, want %q", tt.date, tt.tm, got, tt.want)
		}
	}
}

func writeStructuralSeries(t *testing.T, dir string, count int, perFile func(i int) []*dicom.Element) []string {
	t.Helper()
	files := make([]string, 0, count)
	for i := 0; i < count; i++ {
		extra := []*dicom.Element{
			mustNewElement(tag.Rows, []int{64}),
			mustNewElement(tag.Columns, []int{64}),
		}
		if perFile != nil {
			extra = append(extra, perFile(i)...)
		}
		files = append(files, writeSeriesFile(t, dir, fmt.Sprintf("img%04d.dcm", i), "9", "ep2d_diff_dti", i+1, extra...))
	}
	return files
}

func TestBuildSeriesRecordBasic(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 3; i++ {
		files = append(files, writeSeriesFile(t, dir, fmt.Sprintf("img%03d.dcm", i), "7", "t1_mprage_sag", i+1,
			mustNewElement(tag.StudyDescription, []string{"BRAIN_ROUTINE"}),
			mustNewElement(tag.MRAcquisitionType, []string{"3D"}),
			mustNewElement(tag.Rows, []int{256}),
			mustNewElement(tag.Columns, []int{240}),
			mustNewElement(tag.PixelSpacing, []string{"0.9", "0.95"}),
			mustNewElement(tag.SliceThickness, []string{"1.2"}),
			mustNewElement(tag.SpacingBetweenSlices, []string{"1.2"}),
			mustNewElement(tag.EchoTime, []string{"2.96"}),
			mustNewElement(tag.RepetitionTime, []string{"2300"}),
			mustNewElement(tag.InversionTime, []string{"900"}),
			mustNewElement(tag.FlipAngle, []string{"9"}),
			mustNewElement(tag.SeriesDate, []string{"20240115"}),
			mustNewElement(tag.SeriesTime, []string{"103045.123000"}),
			mustNewElement(tag.ImagePositionPatient, []string{"-120.5", "-98.25", fmt.Sprintf("%d", i*2)}),
			mustNewElement(tag.NumberOfAverages, []string{"1"}),
			mustNewElement(tag.PixelBandwidth, []string{"240"}),
			mustNewElement(tag.MagneticFieldStrength, []string{"3"}),
			mustNewPrivateElement(tags.Pair(0x0018, 0x1312), "CS", []string{"ROW"}),
			mustNewPrivateElement(tags.Pair(0x0018, 0x5100), "CS", []string{"HFS"}),
			mustNewPrivateElement(tags.Pair(0x0018, 0x0094), "DS", []string{"87.5"}),
			mustNewPrivateElement(tags.Pair(0x0018, 0x0093), "DS", []string{"100"}),
		))
	}

	rec, err := BuildSeriesRecord(dir, "7_t1_mprage_sag", files, nil)
	if err != nil {
		t.Fatal(err)
	}

	if rec.SeriesNumber != "7" {
		t.Errorf("SeriesNumber = %q", rec.SeriesNumber)
	}
	if rec.FolderName != "7_t1_mprage_sag" {
		t.Errorf("FolderName = %q", rec.FolderName)
	}
	if rec.SeriesDescription != "t1_mprage_sag" || rec.StudyDescription != "BRAIN_ROUTINE" {
		t.Errorf("descriptions = %q / %q", rec.SeriesDescription, rec.StudyDescription)
	}
	if rec.MRAcquisitionType != "3D" {
		t.Errorf("MRAcquisitionType = %q", rec.MRAcquisitionType)
	}
	if rec.XDim == nil || *rec.XDim != 240 {
		t.Errorf("XDim = %v, want 240", rec.XDim)
	}
	if rec.YDim == nil || *rec.YDim != 256 {
		t.Errorf("YDim = %v, want 256", rec.YDim)
	}
	// Three distinct slice positions.
	if rec.ZDim == nil || *rec.ZDim != 3 {
		t.Errorf("ZDim = %v, want 3", rec.ZDim)
	}
	if rec.XVoxel == nil || *rec.XVoxel != 0.9 || rec.YVoxel == nil || *rec.YVoxel != 0.95 {
		t.Errorf("voxels = %v / %v", rec.XVoxel, rec.YVoxel)
	}
	if rec.ZVoxel == nil || *rec.ZVoxel != 1.2 {
		t.Errorf("ZVoxel = %v", rec.ZVoxel)
	}
	if rec.EchoTime == nil || *rec.EchoTime != 2.96 {
		t.Errorf("EchoTime = %v", rec.EchoTime)
	}
	if rec.Position != "-120.5000,-98.2500,0.0000" {
		t.Errorf("Position = %q", rec.Position)
	}
	if rec.SeriesAcqTime != "2024-01-15-10:30" {
		t.Errorf("SeriesAcqTime = %q", rec.SeriesAcqTime)
	}
	if rec.NumberOfVolumes != nil {
		t.Errorf("single-volume series got NumberOfVolumes = %v", *rec.NumberOfVolumes)
	}
	if rec.NumberOfB0s != nil {
		t.Errorf("non-diffusion series got NumberOfB0s = %v", *rec.NumberOfB0s)
	}
	if rec.PhaseEncodingDirection != "ROW" || rec.SliceOrientation != "HFS" {
		t.Errorf("aux strings = %q / %q", rec.PhaseEncodingDirection, rec.SliceOrientation)
	}
	if rec.PercentPhaseFOV == nil || *rec.PercentPhaseFOV != 87.5 {
		t.Errorf("PercentPhaseFOV = %v", rec.PercentPhaseFOV)
	}
}

func TestBuildSeriesRecordBValSidecar(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dti.bval"), []byte("0 0 1000 1000 2000 2000"), 0o644); err != nil {
		t.Fatal(err)
	}
	files := writeStructuralSeries(t, dir, 60, nil)

	rec, err := BuildSeriesRecord(dir, "9_ep2d_diff_dti", files, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.NumberOfVolumes == nil || *rec.NumberOfVolumes != 6 {
		t.Fatalf("NumberOfVolumes = %v, want 6", rec.NumberOfVolumes)
	}
	if rec.NumberOfB0s == nil || *rec.NumberOfB0s != 2 {
		t.Fatalf("NumberOfB0s = %v, want 2", rec.NumberOfB0s)
	}
	// 60 files over 6 volumes.
	if rec.ZDim == nil || *rec.ZDim != 10 {
		t.Fatalf("ZDim = %v, want 10", rec.ZDim)
	}
}

func TestBuildSeriesRecordDiffusionFromHeaders(t *testing.T) {
	dir := t.TempDir()
	bvals := []float64{0, 1000, 2000}
	files := writeStructuralSeries(t, dir, 12, func(i int) []*dicom.Element {
		return []*dicom.Element{
			mustNewPrivateElement(tags.Pair(0x0018, 0x9087), "FD", []float64{bvals[i%3]}),
		}
	})

	rec, err := BuildSeriesRecord(dir, "9_ep2d_diff_dti", files, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.NumberOfVolumes == nil || *rec.NumberOfVolumes != 3 {
		t.Fatalf("NumberOfVolumes = %v, want 3", rec.NumberOfVolumes)
	}
	// 4 b0 files, 4 files per volume.
	if rec.NumberOfB0s == nil || *rec.NumberOfB0s != 1 {
		t.Fatalf("NumberOfB0s = %v, want 1", rec.NumberOfB0s)
	}
	if rec.DiffusionBValue == nil || *rec.DiffusionBValue != 0 {
		t.Fatalf("DiffusionBValue = %v, want 0 from first file", rec.DiffusionBValue)
	}
	if rec.ZDim == nil || *rec.ZDim != 4 {
		t.Fatalf("ZDim = %v, want 4", rec.ZDim)
	}
}

func TestBuildSeriesRecordMosaicSliceCountPreserved(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "run.bval"), []byte("0 1000 1000 1000 1000"), 0o644); err != nil {
		t.Fatal(err)
	}
	var files []string
	for i := 0; i < 5; i++ {
		files = append(files, writeSeriesFile(t, dir, fmt.Sprintf("mosaic%02d.dcm", i), "11", "ep2d_diff_mosaic", i+1,
			mustNewElement(tag.ImageType, []string{"ORIGINAL", "PRIMARY", "M", "MOSAIC"}),
			mustNewElement(tag.Rows, []int{800}),
			mustNewElement(tag.Columns, []int{800}),
			mustNewElement(tag.AcquisitionMatrix, []int{160, 0, 0, 160}),
			mustNewPrivateElement(tags.Pair(0x0019, 0x100A), "IS", []string{"60"}),
		))
	}

	rec, err := BuildSeriesRecord(dir, "11_ep2d_diff_mosaic", files, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.XDim == nil || *rec.XDim != 160 || rec.YDim == nil || *rec.YDim != 160 {
		t.Fatalf("dims = %v x %v, want 160x160", rec.XDim, rec.YDim)
	}
	if rec.NumberOfVolumes == nil || *rec.NumberOfVolumes != 5 {
		t.Fatalf("NumberOfVolumes = %v, want 5", rec.NumberOfVolumes)
	}
	// The mosaic slice count must survive the volume correction: 5 files /
	// 5 volumes would say 1 slice, which is wrong for tiled files.
	if rec.ZDim == nil || *rec.ZDim != 60 {
		t.Fatalf("ZDim = %v, want 60", rec.ZDim)
	}
}

func TestBuildSeriesRecordUnknownSeriesNumber(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anon.dcm")
	writeTestFile(t, path, []*dicom.Element{
		mustNewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
		mustNewElement(tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.4"}),
		mustNewElement(tag.SOPInstanceUID, []string{"1.2.826.0.1.3680043.8.498.77"}),
		mustNewElement(tag.Rows, []int{64}),
		mustNewElement(tag.Columns, []int{64}),
	})

	rec, err := BuildSeriesRecord(dir, "folder", []string{path}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.SeriesNumber != "Unknown" {
		t.Fatalf("SeriesNumber = %q, want Unknown", rec.SeriesNumber)
	}
}

func TestBuildSeriesRecordIdempotent(t *testing.T) {
	dir := t.TempDir()
	files := writeStructuralSeries(t, dir, 8, func(i int) []*dicom.Element {
		return []*dicom.Element{
			mustNewElement(tag.ImagePositionPatient, []string{"0", "0", fmt.Sprintf("%d", i)}),
		}
	})

	first, err := BuildSeriesRecord(dir, "9_ep2d_diff_dti", files, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := BuildSeriesRecord(dir, "9_ep2d_diff_dti", files, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("records differ between runs:\n%+v\n%+v", first, second)
	}
}

func TestGatherFolders(t *testing.T) {
	base := t.TempDir()
	for _, series := range []struct {
		folder, num, desc string
	}{
		{"7_t1", "7", "t1"},
		{"2_loc", "2", "loc"},
	} {
		dir := filepath.Join(base, series.folder)
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 2; i++ {
			writeSeriesFile(t, dir, fmt.Sprintf("f%02d.dcm", i), series.num, series.desc, i+1,
				mustNewElement(tag.Rows, []int{64}),
				mustNewElement(tag.Columns, []int{64}),
			)
		}
	}
	// A folder with no DICOM content is skipped, not fatal.
	if err := os.Mkdir(filepath.Join(base, "notes"), 0o755); err != nil {
		t.Fatal(err)
	}

	records, err := GatherFolders(base, Options{Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	seen := map[string]bool{}
	for _, rec := range records {
		seen[rec.FolderName] = true
	}
	if !seen["7_t1"] || !seen["2_loc"] {
		t.Fatalf("unexpected folders %v", seen)
	}
}
