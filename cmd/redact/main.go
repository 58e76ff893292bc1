// Command redact masks sensitive data in a CV file or standard input.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raaihank/scandidate/internal/config"
	"github.com/raaihank/scandidate/internal/extract"
	"github.com/raaihank/scandidate/internal/logger"
	"github.com/raaihank/scandidate/internal/privacy"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		detectors  = flag.String("detectors", "", "Comma-separated detectors to enable (default from config)")
		report     = flag.Bool("report", true, "Print the detection summary to stderr")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		listRules  = flag.Bool("list", false, "List detector names in the order they run and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [file]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nReads a .txt, .pdf or .docx file, or standard input when no file is given.\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *listRules {
		for _, name := range privacy.ListRules() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *detectors != "" {
		cfg.Privacy.Detectors = nil
		for _, name := range strings.Split(*detectors, ",") {
			cfg.Privacy.Detectors = append(cfg.Privacy.Detectors, strings.TrimSpace(name))
		}
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	detector, err := privacy.New(cfg.Privacy, log.WithComponent("privacy").Logger)
	if err != nil {
		log.Fatal("Failed to create detector", zap.Error(err))
	}

	text, err := readInput(flag.Arg(0))
	if err != nil {
		log.Fatal("Failed to read input", zap.Error(err))
	}

	result, err := detector.Redact(text)
	if err != nil {
		log.Fatal("Failed to redact input", zap.Error(err))
	}

	fmt.Fprintln(os.Stdout, result.MaskedText)

	if *report {
		if len(result.Report) == 0 {
			fmt.Fprintln(os.Stderr, "No sensitive data found")
			return
		}
		fmt.Fprintf(os.Stderr, "Protected %d item(s):\n", result.Report.Total())
		for _, line := range result.Report.Lines() {
			fmt.Fprintf(os.Stderr, "  %s\n", line)
		}
	}
}

// readInput returns the text of path, or of stdin when path is empty or "-"
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return extract.Text(data)
}
