// Command tablegen generates table artifacts from a schema file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/compiler/gen/golang"
	"github.com/syssam/tablegen/compiler/load"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tablegen",
		Short: "tablegen derives DTOs, repositories and live entities from table declarations",
		Long: `tablegen compiles table declarations into Go artifacts: transfer
structs with create/full shapes, mapping functions, projections,
repositories and live entity handles.

Declarations come from a YAML schema file or a msgpack snapshot
produced by a host process.`,
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(snapshotCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// parseDecls loads declarations from a YAML schema file or a msgpack
// snapshot, keyed by file extension.
func parseDecls(path string) ([]*load.Table, error) {
	if strings.HasSuffix(path, ".msgpack") || strings.HasSuffix(path, ".bin") {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return load.UnmarshalTables(buf)
	}
	return load.ParseFile(path)
}

func generateCmd() *cobra.Command {
	var (
		schemaPath    string
		target        string
		pkg           string
		header        string
		serialization bool
		watch         bool
		workers       int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate artifacts from a schema file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []gen.Option{
				gen.WithTarget(target),
				gen.WithSerialization(serialization),
			}
			if pkg != "" {
				opts = append(opts, gen.WithPackage(pkg))
			}
			if header != "" {
				opts = append(opts, gen.WithHeader(header))
			}
			if workers > 0 {
				opts = append(opts, gen.WithWorkers(workers))
			}
			cfg, err := gen.NewConfig(opts...)
			if err != nil {
				return err
			}
			if err := runGenerate(cmd.Context(), schemaPath, cfg); err != nil && !watch {
				return err
			}
			if !watch {
				return nil
			}
			return watchGenerate(cmd.Context(), schemaPath, cfg)
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "schema.yaml", "schema file (yaml or msgpack snapshot)")
	cmd.Flags().StringVarP(&target, "target", "t", "./store", "output directory")
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "output package import path")
	cmd.Flags().StringVar(&header, "header", "", "header comment of generated files")
	cmd.Flags().BoolVar(&serialization, "serialization", false, "add codec tags and binary marshal methods to DTOs")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "regenerate when the schema file changes")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of parallel generation workers")

	return cmd
}

// runGenerate compiles the schema file once and reports diagnostics.
func runGenerate(ctx context.Context, schemaPath string, cfg *gen.Config) error {
	decls, err := parseDecls(schemaPath)
	if err != nil {
		return err
	}
	diag, err := golang.Generate(ctx, decls, cfg)
	if err != nil {
		return err
	}
	report(diag)
	if diag.HasErrors() {
		return errors.New("generation completed with errors")
	}
	return nil
}

// report prints the diagnostics of one run to stderr.
func report(diag *gen.Diagnostics) {
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed)
	for _, w := range diag.Warnings() {
		warn.Fprintf(os.Stderr, "warning: %v\n", w)
	}
	for _, e := range diag.Errors() {
		fail.Fprintf(os.Stderr, "error: %v\n", e)
	}
	if !diag.HasErrors() {
		color.New(color.FgGreen).Fprintln(os.Stderr, "generation succeeded")
	}
}

// watchGenerate regenerates whenever the schema file changes. Events
// are debounced since editors fire several writes per save.
func watchGenerate(ctx context.Context, schemaPath string, cfg *gen.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(schemaPath)); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "watching %s\n", schemaPath)

	var (
		debounce *time.Timer
		runs     = make(chan struct{}, 1)
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(schemaPath) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case runs <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-runs:
			if err := runGenerate(ctx, schemaPath, cfg); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}
}

func inspectCmd() *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the parsed schema declarations",
		RunE: func(cmd *cobra.Command, args []string) error {
			decls, err := parseDecls(schemaPath)
			if err != nil {
				return err
			}
			bold := color.New(color.Bold)
			for _, t := range decls {
				bold.Printf("%s %s", t.Kind, t.Name)
				var marks []string
				if t.Repository {
					marks = append(marks, "repository")
				}
				if t.Dao {
					marks = append(marks, "dao")
				}
				if len(marks) > 0 {
					fmt.Printf(" (%s)", strings.Join(marks, ", "))
				}
				fmt.Println()
				for _, c := range t.Columns {
					fmt.Printf("  %-24s %s%s\n", c.Name, c.Type, columnMarks(c))
				}
				for _, p := range t.Projections {
					fmt.Printf("  projection %s: %s\n", p.Name, strings.Join(p.Fields, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "schema.yaml", "schema file (yaml or msgpack snapshot)")
	return cmd
}

func columnMarks(c *load.Column) string {
	var marks []string
	if c.Identity {
		marks = append(marks, "identity")
	}
	if c.Generated {
		marks = append(marks, "generated")
	}
	if c.Nullable {
		marks = append(marks, "nullable")
	}
	if c.Ref != "" {
		marks = append(marks, "references "+c.Ref)
	}
	if c.Default != "" {
		marks = append(marks, "default "+c.Default)
	}
	if len(marks) == 0 {
		return ""
	}
	return " [" + strings.Join(marks, ", ") + "]"
}

func snapshotCmd() *cobra.Command {
	var (
		schemaPath string
		out        string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Encode a schema file as a msgpack snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			decls, err := parseDecls(schemaPath)
			if err != nil {
				return err
			}
			buf, err := load.MarshalTables(decls)
			if err != nil {
				return err
			}
			return os.WriteFile(out, buf, 0o644)
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "schema.yaml", "schema file")
	cmd.Flags().StringVarP(&out, "out", "o", "schema.msgpack", "snapshot output path")
	return cmd
}
