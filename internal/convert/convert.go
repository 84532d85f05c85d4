// Package convert drives dcm2niix over organized series folders, one
// invocation per folder so a failing series cannot poison the rest.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mrsinham/dicomgather/internal/dicom"
	"github.com/mrsinham/dicomgather/internal/util"
)

// folderTimeout bounds one dcm2niix invocation.
const folderTimeout = 5 * time.Minute

// Options configures a conversion run.
type Options struct {
	// Dcm2niixPath is the executable to invoke, "dcm2niix" by default.
	Dcm2niixPath string
	// Workers caps the folder-level pool; zero selects util.WorkerCount().
	Workers int
	Logf    dicom.Progressf
}

// Result describes the outcome for one folder.
type Result struct {
	Folder string
	Err    error
}

// Available reports whether the configured dcm2niix executable can be found.
func Available(path string) bool {
	if path == "" {
		path = "dcm2niix"
	}
	_, err := exec.LookPath(path)
	return err == nil
}

// OutputDir returns the NIfTI base directory for an organized tree: a
// sibling of base named "<base>_nii".
func OutputDir(base string) string {
	abs := filepath.Clean(base)
	return filepath.Join(filepath.Dir(abs), filepath.Base(abs)+"_nii")
}

func convertFolder(ctx context.Context, dcm2niix, folderPath, outputDir string, logf dicom.Progressf) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outputDir, err)
	}

	ctx, cancel := context.WithTimeout(ctx, folderTimeout)
	defer cancel()

	// -z y compress, -b y BIDS sidecar (with .bval/.bvec for diffusion),
	// -s y single file, -m y merge 2D slices, -ba n keep subject info,
	// -f %d_%t_%3s names outputs Date_Time_SeriesNumber.
	cmd := exec.CommandContext(ctx, dcm2niix,
		"-z", "y",
		"-b", "y",
		"-s", "y",
		"-m", "y",
		"-ba", "n",
		"-f", "%d_%t_%3s",
		"-o", outputDir,
		folderPath,
	)
	cmd.Dir = folderPath
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("timeout after %s", folderTimeout)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 200 {
			msg = msg[:200]
		}
		if msg != "" {
			return fmt.Errorf("dcm2niix: %w: %s", err, msg)
		}
		return fmt.Errorf("dcm2niix: %w", err)
	}

	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.Contains(line, "Convert") || strings.Contains(line, "Saving") {
			logf.Printf("    %s", line)
		}
	}
	return nil
}

// Run converts every series folder under base that holds DICOM files,
// writing NIfTI output into OutputDir(base)/<folder>. Folders are converted
// in parallel; each result carries its own error so one bad series does not
// abort the run.
func Run(ctx context.Context, base string, opts Options) ([]Result, error) {
	dcm2niix := opts.Dcm2niixPath
	if dcm2niix == "" {
		dcm2niix = "dcm2niix"
	}
	if !Available(dcm2niix) {
		return nil, fmt.Errorf("dcm2niix executable %q not found in PATH", dcm2niix)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", base, err)
	}
	var folders []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, err := dicom.FindDICOMFiles(filepath.Join(base, entry.Name()), false, nil)
		if err != nil || len(files) == 0 {
			continue
		}
		folders = append(folders, entry.Name())
	}
	if len(folders) == 0 {
		return nil, nil
	}

	niiBase := OutputDir(base)
	if err := os.MkdirAll(niiBase, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", niiBase, err)
	}
	opts.Logf.Printf("Found %d folders with DICOM files", len(folders))
	opts.Logf.Printf("Running dcm2niix on each folder separately...")

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = util.WorkerCount()
	}
	if numWorkers > len(folders) {
		numWorkers = len(folders)
	}

	results := make([]Result, len(folders))
	taskChan := make(chan int, len(folders))
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range taskChan {
				folder := folders[i]
				opts.Logf.Printf("Processing folder: %s", folder)
				err := convertFolder(ctx, dcm2niix, filepath.Join(base, folder), filepath.Join(niiBase, folder), opts.Logf)
				if err != nil {
					opts.Logf.Printf("  error processing %s: %v", folder, err)
				} else {
					opts.Logf.Printf("  converted %s", folder)
				}
				results[i] = Result{Folder: folder, Err: err}
			}
		}()
	}
	for i := range folders {
		taskChan <- i
	}
	close(taskChan)
	wg.Wait()

	return results, nil
}
