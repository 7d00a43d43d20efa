package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrNoDocuments        = errors.New("no HTML documents found")
	ErrInvalidExtension   = errors.New("file must have .html or .htm extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToCapture represents a single document to snapshot.
type FileToCapture struct {
	InputPath  string
	OutputPath string
}

// discoverFiles finds all HTML documents to capture. A file argument
// yields exactly one entry; a directory is walked recursively.
func discoverFiles(inputPath, outputDir string) ([]FileToCapture, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateHTMLExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToCapture{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToCapture
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		if !isHTMLExtension(filepath.Ext(path)) {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		files = append(files, FileToCapture{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the PNG output path for a document.
// An outputDir ending in .png names the file directly; otherwise the
// document's relative layout is mirrored under outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".png")
	}

	if strings.HasSuffix(outputDir, ".png") {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(outputDir, relDir, base+".png")
		}
	}

	return filepath.Join(outputDir, base+".png")
}

func isHTMLExtension(ext string) bool {
	return ext == ".html" || ext == ".htm"
}

// validateHTMLExtension checks that the file has a .html or .htm extension.
func validateHTMLExtension(path string) error {
	if ext := filepath.Ext(path); !isHTMLExtension(ext) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// validateWorkers rejects negative worker counts.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, n)
	}
	return nil
}
