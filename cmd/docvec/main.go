// Command docvec ingests PDF documents into per-document vector indexes and
// searches them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/viant/docvec/config"
	"github.com/viant/docvec/retrieval"
)

const usage = `Usage: docvec [-config docvec.yaml] <command> [args]

Commands:
  ingest <file.pdf>...          index PDF files
  search [-k N] [-json] <text>  search every indexed document
  list                          list documents and their artifacts
  stats [doc_id]                corpus summary, or statistics of one document
  delete <doc_id>               remove a document
  cleanup [-dry-run]            remove incomplete documents
  config                        print the effective configuration
`

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("docvec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	cfgPath := fs.String("config", "docvec.yaml", "path to YAML config file (optional)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "docvec: %v\n", err)
		return 1
	}
	cmd, cmdArgs := rest[0], rest[1:]
	if cmd == "config" {
		return printYAML(stdout, stderr, cfg)
	}

	a, err := newApp(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "docvec: %v\n", err)
		return 1
	}
	defer a.Close()

	switch cmd {
	case "ingest":
		err = a.ingest(ctx, stdout, cmdArgs)
	case "search":
		err = a.search(ctx, stdout, stderr, cmdArgs)
	case "list":
		err = a.list(ctx, stdout)
	case "stats":
		err = a.stats(ctx, stdout, cmdArgs)
	case "delete":
		err = a.delete(ctx, stdout, cmdArgs)
	case "cleanup":
		err = a.cleanup(ctx, stdout, stderr, cmdArgs)
	default:
		fmt.Fprintf(stderr, "docvec: unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}
	if err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			return 2
		}
		fmt.Fprintf(stderr, "docvec %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func (a *app) ingest(ctx context.Context, stdout io.Writer, paths []string) error {
	if len(paths) == 0 {
		return errUsage
	}
	var errs []error
	for _, path := range paths {
		report, err := a.pipeline.IngestFile(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if err := printJSON(stdout, report); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

func (a *app) search(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(stderr)
	k := fs.Int("k", 0, "number of results (default from config)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	question := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(question) == "" {
		return errUsage
	}
	hits, err := a.retriever.Retrieve(ctx, question, *k)
	if err != nil {
		return err
	}
	sources := retrieval.Sources(hits)
	if *asJSON {
		return printJSON(stdout, sources)
	}
	if len(sources) == 0 {
		fmt.Fprintln(stdout, "no results")
		return nil
	}
	for i, s := range sources {
		fmt.Fprintf(stdout, "%d. %s page %d chunk %d score %.4f\n   %s\n",
			i+1, s.DocID, s.Page, s.ChunkID, s.Score, retrieval.Preview(strings.Join(strings.Fields(s.Content), " "), 200))
	}
	return nil
}

func (a *app) list(ctx context.Context, stdout io.Writer) error {
	docs, err := a.registry.Documents(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DOC_ID\tSTATUS\tSOURCE\tSIZE\tUPDATED")
	for _, d := range docs {
		status := "complete"
		if !d.Complete() {
			status = "incomplete"
		}
		updated := "-"
		if !d.UpdatedAt.IsZero() {
			updated = d.UpdatedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\n", d.DocID, status, d.HasSource, d.Size, updated)
	}
	return w.Flush()
}

func (a *app) stats(ctx context.Context, stdout io.Writer, args []string) error {
	switch len(args) {
	case 0:
		summary, err := a.registry.Summary(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, summary)
	case 1:
		stats, err := a.registry.Inspect(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(stdout, stats)
	default:
		return errUsage
	}
}

func (a *app) delete(ctx context.Context, stdout io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	info, err := a.registry.Store().Stat(ctx, args[0])
	if err != nil {
		return err
	}
	if !info.Exists() {
		return fmt.Errorf("document %s not found", args[0])
	}
	if err := a.registry.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "deleted %s\n", args[0])
	return nil
}

func (a *app) cleanup(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dryRun := fs.Bool("dry-run", false, "only report incomplete documents")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	ids, err := a.registry.Cleanup(ctx, *dryRun)
	verb := "removed"
	if *dryRun {
		verb = "incomplete"
	}
	for _, id := range ids {
		fmt.Fprintf(stdout, "%s %s\n", verb, id)
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printYAML(stdout, stderr io.Writer, cfg *config.Config) int {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "docvec: %v\n", err)
		return 1
	}
	_, _ = stdout.Write(data)
	return 0
}
