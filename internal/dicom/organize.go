package dicom

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mrsinham/dicomgather/internal/dicom/tags"
	"github.com/mrsinham/dicomgather/internal/util"
)

// AlreadyOrganized reports whether base already holds one-folder-per-series
// layout. DICOM files sitting directly in base mean the tree still needs
// sorting; subfolders containing DICOM files mean it is done. Only a handful
// of files per location are probed to keep the check cheap.
func AlreadyOrganized(base string) (bool, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return false, err
	}
	if len(entries) == 0 {
		return false, nil
	}

	rootProbed := 0
	for _, entry := range entries {
		if entry.IsDir() || rootProbed >= 10 {
			continue
		}
		rootProbed++
		if IsDICOMFile(filepath.Join(base, entry.Name())) {
			return false, nil
		}
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(base, entry.Name())
		subEntries, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		probed := 0
		for _, subEntry := range subEntries {
			if subEntry.IsDir() || probed >= 5 {
				continue
			}
			probed++
			if IsDICOMFile(filepath.Join(sub, subEntry.Name())) {
				return true, nil
			}
		}
	}
	return false, nil
}

// seriesFolderName builds the destination folder for one file from its
// series number and description, both defaulting to "Unknown".
func seriesFolderName(set *tags.Set) string {
	num, ok := set.String(tagSeriesNumber)
	if !ok || num == "" {
		num = "Unknown"
	}
	desc, ok := set.String(tagSeriesDescription)
	if !ok || desc == "" {
		desc = "Unknown"
	}
	return util.SanitizeFolderName(fmt.Sprintf("%s_%s", num, desc))
}

// OrganizeFiles moves loose DICOM files into per-series subfolders of base
// named "<SeriesNumber>_<SeriesDescription>". Header reads run in parallel;
// the moves themselves are serialized so concurrent renames cannot race on
// folder creation.
func OrganizeFiles(base string, files []string, parallel bool, logf Progressf) {
	logf.Printf("  Organizing %d DICOM files...", len(files))

	folderNames := make([]string, len(files))
	readFolderName := func(i int) {
		set, err := tags.ParseSet(files[i])
		if err != nil {
			return
		}
		folderNames[i] = seriesFolderName(set)
	}

	if parallel && len(files) > parallelScanThreshold {
		numWorkers := util.WorkerCount()
		if numWorkers > len(files) {
			numWorkers = len(files)
		}
		logf.Printf("  Using %d parallel workers...", numWorkers)
		taskChan := make(chan int, len(files))
		var wg sync.WaitGroup
		for w := 0; w < numWorkers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range taskChan {
					readFolderName(i)
				}
			}()
		}
		for i := range files {
			taskChan <- i
		}
		close(taskChan)
		wg.Wait()
	} else {
		for i := range files {
			readFolderName(i)
		}
	}

	for i, path := range files {
		if folderNames[i] == "" {
			logf.Printf("  Warning: could not read series attributes of %s, leaving in place", path)
			continue
		}
		dest := filepath.Join(base, folderNames[i])
		if err := os.MkdirAll(dest, 0o755); err != nil {
			logf.Printf("  Warning: error creating %s: %v", dest, err)
			continue
		}
		if err := os.Rename(path, filepath.Join(dest, filepath.Base(path))); err != nil {
			logf.Printf("  Warning: error moving %s: %v", path, err)
		}
	}
}
