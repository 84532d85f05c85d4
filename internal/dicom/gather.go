package dicom

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mrsinham/dicomgather/internal/util"
)

// Progressf receives human-readable progress and warning lines. A nil
// Progressf discards them.
type Progressf func(format string, args ...any)

func (f Progressf) Printf(format string, args ...any) {
	if f != nil {
		f(format, args...)
	}
}

// Options configures a gather run.
type Options struct {
	// Workers sets the folder-level worker pool size. Zero or negative
	// selects util.WorkerCount().
	Workers int
	// Logf receives progress output.
	Logf Progressf
}

// minParallelFolders is the folder count above which GatherFolders fans out
// to a worker pool.
const minParallelFolders = 5

// BuildSeriesRecord infers the summary record for one series folder. The
// first file acts as representative for header attributes that are constant
// across the series; dimensions, slice counts and volume counts go through
// the sampling passes because first-file values are regularly wrong on
// mixed or mosaic series.
func BuildSeriesRecord(folderPath, folderName string, files []string, logf Progressf) (*SeriesRecord, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no DICOM files in %s", folderPath)
	}

	cache := newSeriesCache()
	rep := cache.get(files[0])
	if rep == nil {
		return nil, fmt.Errorf("unreadable representative file %s", files[0])
	}

	rec := &SeriesRecord{FolderName: folderName}
	if num, ok := rep.String(tagSeriesNumber); ok && num != "" {
		rec.SeriesNumber = num
	} else {
		rec.SeriesNumber = "Unknown"
	}
	rec.SeriesDescription, _ = rep.String(tagSeriesDescription)
	rec.StudyDescription, _ = rep.String(tagStudyDescription)
	rec.MRAcquisitionType, _ = rep.String(tagMRAcquisitionType)

	rows, _ := rep.Int(tagRows)
	cols, _ := rep.Int(tagColumns)

	mosaic := detectMosaic(rep, rows, cols, logf)
	rows, cols = mosaic.Rows, mosaic.Cols
	if !mosaic.Mosaic {
		rows, cols = consensusDimensions(files, cache, rows, cols, logf)
	} else {
		logf.Printf("    skipping dimension sampling, mosaic correction is authoritative: %dx%d", rows, cols)
	}
	if cols > 0 {
		rec.XDim = intPtr(cols)
	}
	if rows > 0 {
		rec.YDim = intPtr(rows)
	}

	stats := collectSeriesStats(files, cache)
	var zDim int
	if mosaic.HasSlices {
		zDim = mosaic.Slices
		logf.Printf("    mosaic slice count from header: %d slices per volume", zDim)
	} else {
		zDim = resolveZDim(stats, len(files))
	}

	vols := resolveVolumes(folderPath, files, cache, stats, zDim, rec.SeriesDescription, logf)
	if vols.Volumes > 1 {
		rec.NumberOfVolumes = intPtr(vols.Volumes)
		if !mosaic.Mosaic {
			if recalc := len(files) / vols.Volumes; recalc > 0 {
				zDim = recalc
				logf.Printf("    corrected slice count: %d slices per volume (%d files, %d volumes)", zDim, len(files), vols.Volumes)
			}
		}
	}
	if vols.Diffusion {
		rec.NumberOfB0s = intPtr(vols.B0s)
	}
	if zDim > 0 {
		rec.ZDim = intPtr(zDim)
	}

	if spacing, ok := rep.Floats(tagPixelSpacing); ok && len(spacing) >= 2 {
		rec.XVoxel = floatPtr(spacing[0])
		rec.YVoxel = floatPtr(spacing[1])
	}
	if v, ok := rep.Float(tagSliceThickness); ok {
		rec.ZVoxel = floatPtr(v)
	}
	if v, ok := rep.Float(tagSpacingBetweenSlices); ok {
		rec.SliceGap = floatPtr(v)
	}
	if v, ok := rep.Float(tagInversionTime); ok {
		rec.InversionTime = floatPtr(v)
	}
	if v, ok := rep.Float(tagEchoTime); ok {
		rec.EchoTime = floatPtr(v)
	}
	if v, ok := rep.Float(tagRepetitionTime); ok {
		rec.RepetitionTime = floatPtr(v)
	}
	if v, ok := rep.Float(tagFlipAngle); ok {
		rec.FlipAngle = floatPtr(v)
	}
	if pos, ok := rep.Floats(tagImagePositionPatient); ok && len(pos) >= 3 {
		rec.Position = fmt.Sprintf("%.4f,%.4f,%.4f", pos[0], pos[1], pos[2])
	}

	date, _ := rep.String(tagSeriesDate)
	tm, _ := rep.String(tagSeriesTime)
	rec.SeriesAcqTime = formatAcqTime(date, tm)

	if bval, ok := fileBValue(rep); ok {
		rec.DiffusionBValue = floatPtr(bval)
	}
	if v, ok := resolveMultiband(rep); ok {
		rec.MultibandFactor = floatPtr(v)
	}
	if v, ok := resolveInPlane(rep, mosaic.Mosaic); ok {
		rec.InplaneAccelFactor = floatPtr(v)
	}

	rec.PhaseEncodingDirection, _ = rep.String(inPlanePhaseEncDirection)
	if v, ok := rep.Float(tagNumberOfAverages); ok {
		rec.NumberOfAverages = floatPtr(v)
	}
	if v, ok := rep.Float(tagPixelBandwidth); ok {
		rec.Bandwidth = floatPtr(v)
	}
	rec.CoilName, _ = rep.String(tagReceiveCoilName)
	rec.SliceOrientation, _ = rep.String(patientPosition)
	if v, ok := rep.Float(tagMagneticFieldStrength); ok {
		rec.MagneticFieldStrength = floatPtr(v)
	}
	if v, ok := rep.Float(percentPhaseFOV); ok {
		rec.PercentPhaseFOV = floatPtr(v)
	}
	if v, ok := rep.Float(percentSampling); ok {
		rec.PercentSampling = floatPtr(v)
	}

	return rec, nil
}

// formatAcqTime renders SeriesDate "YYYYMMDD" plus SeriesTime "HHMMSS..."
// as "YYYY-MM-DD-HH:MM". Either part missing or too short yields "".
func formatAcqTime(date, tm string) string {
	if len(date) < 8 || len(tm) < 4 {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s-%s:%s", date[:4], date[4:6], date[6:8], tm[:2], tm[2:4])
}

// GatherFolders builds one record per series subfolder of base. Folders are
// processed by a worker pool when there are enough of them; folders without
// DICOM files are skipped, and a folder that fails to process is reported
// without aborting the rest.
func GatherFolders(base string, opts Options) ([]*SeriesRecord, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", base, err)
	}
	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	opts.Logf.Printf("  Found %d folders to process", len(folders))
	if len(folders) == 0 {
		return nil, nil
	}

	records := make([]*SeriesRecord, len(folders))
	processFolder := func(i int) {
		folderPath := filepath.Join(base, folders[i])
		files, err := FindDICOMFiles(folderPath, false, opts.Logf)
		if err != nil {
			opts.Logf.Printf("  Error scanning folder %s: %v", folders[i], err)
			return
		}
		if len(files) == 0 {
			return
		}
		opts.Logf.Printf("  Processing folder %s (%d DICOM files)...", folders[i], len(files))
		rec, err := BuildSeriesRecord(folderPath, folders[i], files, opts.Logf)
		if err != nil {
			opts.Logf.Printf("  Error processing folder %s: %v", folders[i], err)
			return
		}
		records[i] = rec
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = util.WorkerCount()
	}
	if numWorkers > len(folders) {
		numWorkers = len(folders)
	}

	if numWorkers > 1 && len(folders) > minParallelFolders {
		opts.Logf.Printf("  Using %d parallel workers...", numWorkers)
		taskChan := make(chan int, len(folders))
		var wg sync.WaitGroup
		for w := 0; w < numWorkers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range taskChan {
					processFolder(i)
				}
			}()
		}
		for i := range folders {
			taskChan <- i
		}
		close(taskChan)
		wg.Wait()
	} else {
		for i := range folders {
			processFolder(i)
		}
	}

	var out []*SeriesRecord
	for _, rec := range records {
		if rec != nil {
			out = append(out, rec)
		}
	}
	opts.Logf.Printf("Processed %d folders, gathered %d series", len(folders), len(out))
	return out, nil
}
