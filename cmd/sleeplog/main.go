package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sleeplog/internal/config"
	"sleeplog/internal/pipeline"
	"sleeplog/internal/sheets"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "sleeplog",
	Short:   "Sleep log analysis",
	Long:    "Sleeplog parses hand-written sleep logs and questionnaire exports, aggregates them per week, and writes statistics tables, annotations, and an HTML report.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fetchCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sleeplog", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/sleeplog/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to adjust question mappings, expected times, and output options.")
		return nil
	},
}

// --- inspect command ---

var inspectCmd = &cobra.Command{
	Use:   "inspect <logfile>",
	Short: "Parse a log file and report what it contains, without writing output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := pipeline.New(cfg)
		if err != nil {
			return err
		}

		result := pipe.DryRun(cmd.Context(), pipeline.Inputs{
			LogFile:   args[0],
			OutputDir: outputDir(),
		})
		printSteps(result)
		if err := firstError(result); err != nil {
			return err
		}

		fmt.Printf("\n%d records parsed.\n", len(result.Records))
		return nil
	},
}

// --- run command ---

var (
	logFile    string
	csvFile    string
	xlsxFile   string
	sheetsURL  string
	outDir     string
	labelFiles bool
	dryRun     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: load -> validate -> aggregate -> export",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := pipeline.New(cfg)
		if err != nil {
			return err
		}

		in := pipeline.Inputs{
			LogFile:    logFile,
			CSVFile:    csvFile,
			XLSXFile:   xlsxFile,
			SheetsURL:  sheetsURL,
			OutputDir:  outputDir(),
			LabelFiles: labelFiles || cfg.Output.LabelFiles,
		}

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun(cmd.Context(), in)
		} else {
			result = pipe.Run(cmd.Context(), in)
		}
		printSteps(result)
		if err := firstError(result); err != nil {
			return err
		}

		if !dryRun {
			fmt.Printf("\nDone. %d file(s) written to %s\n", len(result.Written), in.OutputDir)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&logFile, "logfile", "", "Indented sleep log file to parse")
	runCmd.Flags().StringVar(&csvFile, "csv-file", "", "Google Forms CSV export to parse")
	runCmd.Flags().StringVar(&xlsxFile, "xlsx-file", "", "Google Forms XLSX export to parse")
	runCmd.Flags().StringVar(&sheetsURL, "sheets-url", "", "Google Sheets URL to download and parse")
	runCmd.Flags().StringVarP(&outDir, "output-dir", "o", "", "Directory for output files (default from config)")
	runCmd.Flags().BoolVar(&labelFiles, "label-files", false, "Append the covered date range to output file names")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without writing files")
}

// --- fetch command ---

var fetchDest string

var fetchCmd = &cobra.Command{
	Use:   "fetch <sheets-url>",
	Short: "Download a Google Sheets spreadsheet as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := fetchDest
		if dest == "" {
			dest = "sheet.csv"
		}
		if err := sheets.Download(cmd.Context(), args[0], dest); err != nil {
			return err
		}
		fmt.Printf("Downloaded to %s\n", dest)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchDest, "dest", "d", "", "Destination file (default sheet.csv)")
}

func outputDir() string {
	if outDir != "" {
		return outDir
	}
	if cfg != nil && cfg.Output.Dir != "" {
		return cfg.Output.Dir
	}
	return "output"
}

func printSteps(result *pipeline.Result) {
	for i, step := range result.Steps {
		fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
		if step.Err != nil {
			fmt.Printf("  Error: %v\n", step.Err)
		} else {
			fmt.Printf("  %s\n", step.Summary)
		}
	}
}

func firstError(result *pipeline.Result) error {
	for _, step := range result.Steps {
		if step.Err != nil {
			return fmt.Errorf("%s: %w", step.Name, step.Err)
		}
	}
	return nil
}
