package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mrsinham/dicomgather/internal/config"
	"github.com/mrsinham/dicomgather/internal/convert"
	"github.com/mrsinham/dicomgather/internal/dicom"
	"github.com/mrsinham/dicomgather/internal/report"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Define command-line flags
	inputDir := flag.String("input", "", "Directory holding DICOM files, flat or organized (required)")
	outputDir := flag.String("output", "", "Directory for the summary CSV (default: input directory)")
	workers := flag.Int("workers", 0, fmt.Sprintf("Number of parallel workers (default: %d = CPU cores)", runtime.NumCPU()))
	doConvert := flag.Bool("convert", false, "Run dcm2niix on each series folder after gathering")
	dcm2niixPath := flag.String("dcm2niix", "", "dcm2niix executable (default: 'dcm2niix' from PATH)")
	overwrite := flag.Bool("overwrite", false, "Replace an existing summary without prompting")
	quiet := flag.Bool("quiet", false, "Suppress per-series progress output")

	// Config file options
	configFile := flag.String("config", "", "Load configuration from YAML file")
	saveConfig := flag.String("save-config", "", "Save effective configuration to YAML file")

	help := flag.Bool("help", false, "Show help message")
	showVersion := flag.Bool("version", false, "Show version")

	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("dicomgather %s\n", version)
		os.Exit(0)
	}

	// Show help
	if *help {
		printHelp()
		os.Exit(0)
	}

	// Start from the config file, then let explicitly set flags override it.
	cfg := &config.Config{}
	if *configFile != "" {
		loaded, err := config.LoadFromYAML(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputDir = *inputDir
		case "output":
			cfg.OutputDir = *outputDir
		case "workers":
			cfg.Workers = *workers
		case "convert":
			cfg.Convert = *doConvert
		case "dcm2niix":
			cfg.Dcm2niixPath = *dcm2niixPath
		case "overwrite":
			cfg.Overwrite = *overwrite
		case "quiet":
			cfg.Quiet = *quiet
		}
	})

	// Positional argument is an alternative to --input
	if cfg.InputDir == "" && flag.NArg() > 0 {
		cfg.InputDir = flag.Arg(0)
	}

	if cfg.InputDir == "" {
		fmt.Fprintf(os.Stderr, "Error: --input is required\n")
		printUsage()
		os.Exit(1)
	}

	info, err := os.Stat(cfg.InputDir)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: input directory %q does not exist\n", cfg.InputDir)
		os.Exit(1)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.InputDir
	}

	if *saveConfig != "" {
		if err := config.SaveToYAML(cfg, *saveConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save config: %v\n", err)
		} else {
			fmt.Printf("Configuration saved to %s\n", *saveConfig)
		}
	}

	logf := dicom.Progressf(func(format string, args ...any) {
		fmt.Printf(format+"\n", args...)
	})
	if cfg.Quiet {
		logf = nil
	}

	if err := run(cfg, logf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logf dicom.Progressf) error {
	fmt.Println("dicomgather")
	fmt.Println("===========")
	fmt.Println()

	// Refuse to clobber a previous run unless told to.
	summaryPath := filepath.Join(cfg.OutputDir, report.SummaryFileName)
	if _, err := os.Stat(summaryPath); err == nil && !cfg.Overwrite {
		if !confirm(fmt.Sprintf("%s already exists. Overwrite?", summaryPath)) {
			return fmt.Errorf("aborted, %s already exists", summaryPath)
		}
	}

	organized, err := dicom.AlreadyOrganized(cfg.InputDir)
	if err != nil {
		return err
	}
	if organized {
		logf.Printf("Input already organized into series folders")
	} else {
		logf.Printf("Scanning %s for DICOM files...", cfg.InputDir)
		files, err := dicom.FindDICOMFiles(cfg.InputDir, true, logf)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no DICOM files found in %s", cfg.InputDir)
		}
		logf.Printf("Found %d DICOM files, organizing into series folders...", len(files))
		dicom.OrganizeFiles(cfg.InputDir, files, true, logf)
	}

	records, err := dicom.GatherFolders(cfg.InputDir, dicom.Options{
		Workers: cfg.Workers,
		Logf:    logf,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no series found in %s", cfg.InputDir)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", cfg.OutputDir, err)
	}
	for _, rec := range records {
		if _, err := report.WriteSeriesCSV(cfg.OutputDir, rec); err != nil {
			logf.Printf("Warning: %v", err)
		}
	}

	merged := report.Merge(records)
	if _, err := report.WriteSummary(cfg.OutputDir, merged); err != nil {
		return err
	}
	removed, err := report.RemoveSeriesCSVs(cfg.OutputDir)
	if err != nil {
		logf.Printf("Warning: %v", err)
	} else if removed > 0 {
		logf.Printf("Removed %d per-series CSV files", removed)
	}

	fmt.Println()
	fmt.Printf("✓ Gathered %d series\n", len(merged))
	fmt.Printf("  Summary: %s\n", summaryPath)

	if cfg.Convert {
		fmt.Println()
		results, err := convert.Run(context.Background(), cfg.InputDir, convert.Options{
			Dcm2niixPath: cfg.Dcm2niixPath,
			Workers:      cfg.Workers,
			Logf:         logf,
		})
		if err != nil {
			return err
		}
		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
			}
		}
		fmt.Printf("✓ Converted %d/%d folders\n", len(results)-failed, len(results))
		fmt.Printf("  NIfTI output: %s\n", convert.OutputDir(cfg.InputDir))
		if failed > 0 {
			return fmt.Errorf("%d folders failed to convert", failed)
		}
	}
	return nil
}

// confirm asks a yes/no question on stdin.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage:")
	fmt.Fprintln(os.Stderr, "  dicomgather --input <DIR> [options]")
	fmt.Fprintln(os.Stderr, "\nOptions:")
	flag.PrintDefaults()
}

func printHelp() {
	fmt.Println("dicomgather")
	fmt.Println("===========")
	fmt.Println()
	fmt.Println("Organize DICOM files into series folders and gather their acquisition")
	fmt.Println("metadata into a summary CSV, with optional NIfTI conversion.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  dicomgather --input <DIR> [options]")
	fmt.Println("  dicomgather <DIR> [options]")
	fmt.Println()
	fmt.Println("Required arguments:")
	fmt.Println("  --input <DIR>         Directory holding DICOM files, flat or already")
	fmt.Println("                        organized into one folder per series")
	fmt.Println()
	fmt.Println("Optional arguments:")
	fmt.Println("  --output <DIR>        Directory for the summary CSV (default: input directory)")
	fmt.Printf("  --workers <N>         Number of parallel workers (default: %d = CPU cores)\n", runtime.NumCPU())
	fmt.Println("  --convert             Run dcm2niix on each series folder after gathering")
	fmt.Println("  --dcm2niix <PATH>     dcm2niix executable (default: 'dcm2niix' from PATH)")
	fmt.Println("  --overwrite           Replace an existing summary without prompting")
	fmt.Println("  --quiet               Suppress per-series progress output")
	fmt.Println("  --config <FILE>       Load configuration from YAML file")
	fmt.Println("  --save-config <FILE>  Save effective configuration to YAML file")
	fmt.Println("  --version             Show version")
	fmt.Println("  --help                Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Gather metadata from a flat export")
	fmt.Println("  dicomgather --input ./dicom_export")
	fmt.Println()
	fmt.Println("  # Gather and convert to NIfTI with 4 workers")
	fmt.Println("  dicomgather --input ./dicom_export --convert --workers 4")
	fmt.Println()
	fmt.Println("  # Re-run without the overwrite prompt, summary in a separate directory")
	fmt.Println("  dicomgather --input ./dicom_export --output ./reports --overwrite")
	fmt.Println()
	fmt.Println("Output:")
	fmt.Println("  The program leaves the input organized as <SeriesNumber>_<Description>/")
	fmt.Println("  folders and writes one summary CSV row per series covering dimensions,")
	fmt.Println("  voxel sizes, timing parameters, diffusion and acceleration factors.")
	fmt.Println("  With --convert, NIfTI files land in a sibling <input>_nii/ directory.")
}
