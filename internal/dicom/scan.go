package dicom

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/mrsinham/dicomgather/internal/dicom/tags"
	"github.com/mrsinham/dicomgather/internal/util"
)

// minDICOMFileSize filters out sidecars and truncated files before paying
// for a header parse. A valid Part 10 file carries a 128-byte preamble plus
// meta group, so anything under 1 KiB cannot be a usable image.
const minDICOMFileSize = 1024

// parallelScanThreshold is the file count below which the worker pool costs
// more than it saves.
const parallelScanThreshold = 10

// IsDICOMFile reports whether path holds a readable DICOM file.
func IsDICOMFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() < minDICOMFileSize {
		return false
	}
	_, err = tags.ParseSet(path)
	return err == nil
}

// FindDICOMFiles returns the DICOM files directly inside dir, sorted by
// name. Validation parses each candidate header, so large directories are
// checked by a worker pool when parallel is set.
func FindDICOMFiles(dir string, parallel bool, logf Progressf) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, entry.Name()))
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	valid := make([]bool, len(candidates))
	if parallel && len(candidates) > parallelScanThreshold {
		numWorkers := util.WorkerCount()
		if numWorkers > len(candidates) {
			numWorkers = len(candidates)
		}
		taskChan := make(chan int, len(candidates))
		var wg sync.WaitGroup
		for w := 0; w < numWorkers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range taskChan {
					valid[i] = IsDICOMFile(candidates[i])
				}
			}()
		}
		for i := range candidates {
			taskChan <- i
		}
		close(taskChan)
		wg.Wait()
	} else {
		for i, path := range candidates {
			valid[i] = IsDICOMFile(path)
		}
	}

	var files []string
	for i, ok := range valid {
		if ok {
			files = append(files, candidates[i])
		}
	}
	logf.Printf("  %s: %d DICOM files out of %d candidates", dir, len(files), len(candidates))
	return files, nil
}
