// Package resave re-saves a directory of HTML exports as Word documents
// using an office suite in headless mode.
package resave

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmylchreest/richconv/internal/logger"
)

// Scan lists the .html files directly inside dir, skipping names that start
// with "~" (lock and temporary files). The result is sorted.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".html" || strings.HasPrefix(name, "~") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath returns the .doc sibling written for file.
func OutputPath(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file)) + ".doc"
}

// Saver re-saves one HTML file as a .doc next to it.
type Saver interface {
	Save(ctx context.Context, file string) error
}

// CommandRunner runs an external command.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner implements CommandRunner with os/exec.
type ExecRunner struct{}

// Run executes name with args, killing it when ctx is done.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// SofficeSaver converts files with "soffice --headless --convert-to doc".
type SofficeSaver struct {
	// Bin is the office binary. Default: soffice.
	Bin string
	// Timeout bounds a single conversion. Zero means no limit.
	Timeout time.Duration
	Runner  CommandRunner
}

// NewSofficeSaver creates a saver running bin.
func NewSofficeSaver(bin string, timeout time.Duration) *SofficeSaver {
	if bin == "" {
		bin = "soffice"
	}
	return &SofficeSaver{Bin: bin, Timeout: timeout, Runner: ExecRunner{}}
}

// Save converts file, writing the .doc into the file's directory.
func (s *SofficeSaver) Save(ctx context.Context, file string) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	args := []string{"--headless", "--convert-to", "doc", "--outdir", filepath.Dir(file), file}
	logger.Debug("running office converter", "bin", s.Bin, "args", args)

	_, stderr, err := s.Runner.Run(ctx, s.Bin, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("save %s: %w", file, ctxErr)
		}
		return fmt.Errorf("save %s: %s: %w", file, strings.TrimSpace(stderr), err)
	}
	return nil
}

// Run saves each file in order, writing "\rSaved as HTML: i/total" to
// progress after each one. It stops at the first failure or when ctx is done.
// A nil progress writer is allowed.
func Run(ctx context.Context, files []string, saver Saver, progress io.Writer) error {
	if progress == nil {
		progress = io.Discard
	}
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := saver.Save(ctx, f); err != nil {
			return err
		}
		fmt.Fprintf(progress, "\rSaved as HTML: %d/%d", i+1, len(files))
	}
	if len(files) > 0 {
		fmt.Fprintln(progress)
	}
	return nil
}
