package resave

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("<p>x</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.html", "a.html", "~lock.html", "notes.htm", "page.HTML", "readme.md"} {
		touch(t, dir, name)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.html"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "sub.html"), "nested.html")

	files, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.html"), filepath.Join(dir, "b.html")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Scan() = %v, want %v", files, want)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath("/x/page.html"); got != "/x/page.doc" {
		t.Errorf("OutputPath() = %q", got)
	}
}

type fakeSaver struct {
	saved  []string
	failOn string
}

func (f *fakeSaver) Save(_ context.Context, file string) error {
	if file == f.failOn {
		return errors.New("cannot open " + file)
	}
	f.saved = append(f.saved, file)
	return nil
}

func TestRunProgress(t *testing.T) {
	saver := &fakeSaver{}
	var progress bytes.Buffer

	err := Run(context.Background(), []string{"a.html", "b.html", "c.html"}, saver, &progress)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(saver.saved) != 3 {
		t.Errorf("saved %v", saver.saved)
	}
	want := "\rSaved as HTML: 1/3\rSaved as HTML: 2/3\rSaved as HTML: 3/3\n"
	if progress.String() != want {
		t.Errorf("progress = %q, want %q", progress.String(), want)
	}
}

func TestRunEmpty(t *testing.T) {
	var progress bytes.Buffer
	if err := Run(context.Background(), nil, &fakeSaver{}, &progress); err != nil {
		t.Fatal(err)
	}
	if progress.Len() != 0 {
		t.Errorf("expected no progress output, got %q", progress.String())
	}
}

func TestRunStopsOnFailure(t *testing.T) {
	saver := &fakeSaver{failOn: "b.html"}
	err := Run(context.Background(), []string{"a.html", "b.html", "c.html"}, saver, nil)
	if err == nil || !strings.Contains(err.Error(), "b.html") {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(saver.saved, []string{"a.html"}) {
		t.Errorf("saved %v", saver.saved)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	saver := &fakeSaver{}
	if err := Run(ctx, []string{"a.html"}, saver, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v", err)
	}
	if len(saver.saved) != 0 {
		t.Errorf("nothing should be saved, got %v", saver.saved)
	}
}

type fakeRunner struct {
	name   string
	args   []string
	stderr string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, string, error) {
	f.name, f.args = name, args
	return "", f.stderr, f.err
}

func TestSofficeSaver(t *testing.T) {
	runner := &fakeRunner{}
	s := NewSofficeSaver("", time.Minute)
	s.Runner = runner

	file := filepath.Join("exports", "voyage.html")
	if err := s.Save(context.Background(), file); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if runner.name != "soffice" {
		t.Errorf("binary = %q", runner.name)
	}
	want := []string{"--headless", "--convert-to", "doc", "--outdir", "exports", file}
	if !reflect.DeepEqual(runner.args, want) {
		t.Errorf("args = %v, want %v", runner.args, want)
	}
}

func TestSofficeSaverError(t *testing.T) {
	runner := &fakeRunner{stderr: "source file could not be loaded\n", err: errors.New("exit status 1")}
	s := NewSofficeSaver("/opt/office/soffice", 0)
	s.Runner = runner

	err := s.Save(context.Background(), "x.html")
	if err == nil {
		t.Fatal("expected error")
	}
	if runner.name != "/opt/office/soffice" {
		t.Errorf("binary = %q", runner.name)
	}
	for _, want := range []string{"x.html", "could not be loaded", "exit status 1"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should contain %q", err, want)
		}
	}
}
