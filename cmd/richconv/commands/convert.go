package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/richconv/internal/batch"
	"github.com/jmylchreest/richconv/internal/logger"
	"github.com/jmylchreest/richconv/internal/output"
	"github.com/jmylchreest/richconv/pkg/convert"
	"github.com/jmylchreest/richconv/pkg/htmlmd"
	"github.com/jmylchreest/richconv/pkg/richtext"
)

// convertRecord is one converted input in structured output.
type convertRecord struct {
	Input    string           `json:"input" yaml:"input"`
	Route    convert.Route    `json:"route" yaml:"route"`
	Markdown string           `json:"markdown,omitempty" yaml:"markdown,omitempty"`
	Document *richtext.Node   `json:"document,omitempty" yaml:"document,omitempty"`
	Stats    *htmlmd.Stats    `json:"stats,omitempty" yaml:"stats,omitempty"`
	Warnings []htmlmd.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert HTML or Markdown files",
	Long: `Convert HTML to Markdown, or HTML and Markdown to a rich-text document.

Input is read from the given files, or from stdin when none are given.
A file named more than once is converted once.

Examples:
  richconv convert page.html
  richconv convert --to richtext --format yaml page.html
  richconv convert --from markdown --to richtext notes.md --dump
  cat page.html | richconv convert --engine library`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.String("from", "html", "input format: html, markdown")
	flags.String("to", "markdown", "output format: markdown, richtext")
	flags.String("engine", "", "HTML converter: native, library")
	flags.String("format", "", "output encoding: text, json, jsonl, yaml (default: text for markdown, json for richtext)")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.Bool("stats", false, "print HTML conversion stats to stderr")
	flags.Bool("dump", false, "pretty-print document trees to stderr")
	flags.IntP("concurrency", "c", runtime.GOMAXPROCS(0), "concurrent conversions")

	_ = viper.BindPFlag("convert.engine", flags.Lookup("engine"))
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Debug("convert command starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	flags := cmd.Flags()
	from, _ := flags.GetString("from")
	to, _ := flags.GetString("to")
	formatStr, _ := flags.GetString("format")
	outPath, _ := flags.GetString("output")
	showStats, _ := flags.GetBool("stats")
	dump, _ := flags.GetBool("dump")
	concurrency, _ := flags.GetInt("concurrency")

	conv, err := htmlmd.NewConverter(&cfg.Convert)
	if err != nil {
		return err
	}
	p := convert.New(convert.WithConverter(conv))
	logger.Debug("pipeline ready", "engine", conv.Name())

	items := queueInputs(args)
	reqs := make([]convert.Request, 0, len(items))
	for _, item := range items {
		b, err := batch.ReadItem(item)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		logger.Debug("input read", "path", item.Path, "size", humanize.Bytes(uint64(len(b))))
		reqs = append(reqs, buildRequest(from, to, string(b)))
	}

	out := io.Writer(os.Stdout)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	writer, err := output.NewWriter(out, resolveFormat(formatStr, to))
	if err != nil {
		return err
	}

	results := make([]*convert.BatchResult, len(reqs))
	for r := range p.ConvertMany(ctx, reqs, concurrency) {
		results[r.Index] = r
	}

	// Dumps go to stderr, which may be a file.
	pp.ColoringEnabled = false

	failed := 0
	for i, r := range results {
		name := items[i].Arg
		if r.Error != nil {
			failed++
			logger.Error("conversion failed", "input", name, "kind", convert.KindOf(r.Error), "error", r.Error)
			continue
		}

		rec := convertRecord{
			Input:    name,
			Route:    r.Result.Route,
			Markdown: r.Result.Markdown,
			Document: r.Result.Document,
		}
		if showStats {
			attachStats(&rec, conv, reqs[i])
		}
		if dump && rec.Document != nil {
			_, _ = pp.Fprintln(os.Stderr, rec.Document)
		}
		if err := writer.Write(outputValue(writer, rec)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(reqs))
	}
	logInfo("Converted %d input(s)", len(reqs))
	return nil
}

// queueInputs deduplicates args, reading stdin when there are none.
func queueInputs(args []string) []batch.Item {
	q := batch.NewQueue()
	if len(args) == 0 {
		q.Add(batch.Stdin)
	}
	for _, a := range args {
		if !q.Add(a) {
			logger.Debug("skipping duplicate input", "path", a)
		}
	}
	return q.Drain()
}

func buildRequest(from, to, body string) convert.Request {
	req := convert.Request{From: from, To: to}
	switch convert.Format(from) {
	case convert.FormatHTML:
		req.HTML = &body
	case convert.FormatMarkdown:
		req.Markdown = &body
	}
	return req
}

// resolveFormat picks text for Markdown output and JSON for documents unless
// a format was given.
func resolveFormat(format, to string) output.Format {
	if format != "" {
		return output.Format(format)
	}
	if convert.Format(to) == convert.FormatRichText {
		return output.FormatJSON
	}
	return output.FormatText
}

// outputValue returns what the writer should receive for rec: the bare
// Markdown or document for text output, the full record otherwise.
func outputValue(w output.Writer, rec convertRecord) any {
	if _, ok := w.(*output.TextWriter); ok {
		if rec.Document != nil {
			return rec.Document
		}
		return rec.Markdown
	}
	return rec
}

// attachStats runs the HTML conversion again with stats collection and
// reports them on stderr.
func attachStats(rec *convertRecord, conv htmlmd.Converter, req convert.Request) {
	sc, ok := conv.(htmlmd.StatsConverter)
	if !ok || req.HTML == nil {
		return
	}
	res := sc.ConvertWithStats(*req.HTML)
	rec.Stats = res.Stats
	rec.Warnings = res.Warnings
	fmt.Fprintf(os.Stderr, "%s (%s engine)\n%s", rec.Input, conv.Name(), res.Stats)
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
