package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tangzhangming/lumen/internal/driver"
	"github.com/tangzhangming/lumen/internal/errors"
	"github.com/tangzhangming/lumen/internal/project"
	"github.com/tangzhangming/lumen/internal/syntax"
)

var (
	emitFormat = flag.String("emit", "", "Output format: ir or json (overrides lumen.toml)")
	jobs       = flag.Int("jobs", 0, "Number of parallel parse workers (overrides lumen.toml)")
	output     = flag.String("o", "", "Write output to file instead of stdout")
	parseOnly  = flag.Bool("parse", false, "Parse only, don't lower")
	verbose    = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Lumen Compiler v0.1.0")
		fmt.Println()
		fmt.Println("Usage: lumen [options] <filename.lum> ...")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -emit ir|json   Output format (default from lumen.toml, else ir)")
		fmt.Println("  -jobs N         Parallel parse workers")
		fmt.Println("  -o file         Write output to file")
		fmt.Println("  -parse          Parse only, don't lower")
		fmt.Println("  -v              Verbose logging")
		os.Exit(0)
	}

	paths := flag.Args()

	// 配置：命令行 > lumen.toml > 默认
	cfg := loadConfig(paths[0])
	if *emitFormat != "" {
		cfg.Build.Emit = *emitFormat
	}
	if *jobs > 0 {
		cfg.Build.Jobs = *jobs
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// 只解析模式
	if *parseOnly {
		runParseOnly(paths)
		return
	}

	log := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		log = l
	}

	d := driver.New(driver.Options{
		ModuleName: cfg.Package.Name,
		Jobs:       cfg.Build.Jobs,
		Log:        log,
	})

	module, err := d.Compile(readSources(paths))
	if err != nil {
		printDiagnostics(err)
		os.Exit(1)
	}

	var out string
	switch cfg.Build.Emit {
	case project.EmitJSON:
		data, err := module.MarshalJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		out = string(data) + "\n"
	default:
		out = module.String()
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(out), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Print(out)
}

// loadConfig 向上查找 lumen.toml，找不到时使用默认配置
func loadConfig(startPath string) *project.Config {
	if path := project.FindConfigFile(startPath); path != "" {
		cfg, err := project.LoadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return project.Default(".")
}

func readSources(paths []string) []driver.Source {
	sources := make([]driver.Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			os.Exit(1)
		}
		sources = append(sources, driver.Source{Filename: path, Text: string(data)})
	}
	return sources
}

func runParseOnly(paths []string) {
	failed := false
	for _, src := range readSources(paths) {
		p := syntax.New(src.Text, src.Filename)
		file := p.Parse()

		if errs := p.Errors(); len(errs) > 0 {
			failed = true
			for _, e := range errs {
				fmt.Fprint(os.Stderr, errors.Format(e))
			}
			continue
		}
		fmt.Printf("Successfully parsed %s\n", src.Filename)
		fmt.Printf("  Declarations: %d\n", len(file.Declarations))
		fmt.Printf("  Call sites: %d\n", file.Sites.Len())
	}
	if failed {
		os.Exit(1)
	}
}

// printDiagnostics 逐条打印聚合的编译诊断
func printDiagnostics(err error) {
	for _, e := range multierr.Errors(err) {
		if ce, ok := e.(*errors.CompileError); ok {
			fmt.Fprint(os.Stderr, errors.Format(ce))
			continue
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", e)
	}
}
