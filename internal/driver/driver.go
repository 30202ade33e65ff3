// Package driver 驱动整条编译管线
//
// 管线顺序：parse -> check -> layout -> lower。语法分析阶段
// 文件之间相互独立，由有界工作协程池并行执行；绑定检查和
// lowering 依赖全局类型信息，串行完成。
package driver

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/errors"
	"github.com/tangzhangming/lumen/internal/ir"
	"github.com/tangzhangming/lumen/internal/layout"
	"github.com/tangzhangming/lumen/internal/lower"
	"github.com/tangzhangming/lumen/internal/sema"
	"github.com/tangzhangming/lumen/internal/syntax"
)

// ============================================================================
// 驱动器
// ============================================================================

// Source 一个待编译的源文件
type Source struct {
	Filename string
	Text     string
}

// Options 驱动器选项
type Options struct {
	// ModuleName 输出 IR 模块名，空串使用 "main"
	ModuleName string

	// Jobs 语法分析阶段的工作协程数，<=1 时串行
	Jobs int

	// Log 日志器，nil 表示不输出
	Log *zap.Logger
}

// Stats 编译统计
type Stats struct {
	FilesParsed    atomic.Int64 // 完成语法分析的文件数
	ClassesChecked atomic.Int64 // 绑定检查的类和接口数
	MethodsLowered atomic.Int64 // 完成 lowering 的方法数
}

// Driver 编译驱动器
type Driver struct {
	opts  Options
	log   *zap.Logger
	stats Stats
}

// New 创建驱动器
func New(opts Options) *Driver {
	if opts.ModuleName == "" {
		opts.ModuleName = "main"
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Driver{opts: opts, log: opts.Log}
}

// Stats 返回编译统计
func (d *Driver) Stats() *Stats {
	return &d.stats
}

// ============================================================================
// 编译入口
// ============================================================================

// CompileSource 编译单个源文件
func (d *Driver) CompileSource(filename, text string) (*ir.Module, error) {
	return d.Compile([]Source{{Filename: filename, Text: text}})
}

// CompileFiles 从磁盘读取并编译一组源文件
func (d *Driver) CompileFiles(paths []string) (*ir.Module, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read source file: %w", err)
		}
		sources = append(sources, Source{Filename: p, Text: string(data)})
	}
	return d.Compile(sources)
}

// Compile 编译一组源文件为一个 IR 模块
func (d *Driver) Compile(sources []Source) (*ir.Module, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no source files")
	}

	files, err := d.parseAll(sources)
	if err != nil {
		return nil, err
	}

	reporter := errors.NewReporter()
	checker := sema.NewChecker(reporter)
	prog := checker.Check(files)
	d.stats.ClassesChecked.Add(int64(len(prog.Classes)))
	if reporter.HasErrors() {
		return nil, reportedErrors(reporter)
	}

	table := layout.Build(prog.Classes)
	module := ir.NewModule(d.opts.ModuleName)
	lw := lower.New(module, table, d.log)

	if err := d.lowerProgram(lw, prog); err != nil {
		return nil, err
	}

	d.log.Info("compilation finished",
		zap.Int64("files", d.stats.FilesParsed.Load()),
		zap.Int64("classes", d.stats.ClassesChecked.Load()),
		zap.Int64("methods", d.stats.MethodsLowered.Load()))

	return module, nil
}

// ----------------------------------------------------------------------------
// 语法分析阶段
// ----------------------------------------------------------------------------

// parseAll 并行分析所有源文件
//
// 文件之间没有共享状态，按固定数量的工作协程分发；
// 结果按输入顺序写回各自的槽位，输出顺序确定。
func (d *Driver) parseAll(sources []Source) ([]*ast.File, error) {
	jobs := d.opts.Jobs
	if jobs <= 1 || len(sources) == 1 {
		return d.parseSerial(sources)
	}
	if jobs > len(sources) {
		jobs = len(sources)
	}

	files := make([]*ast.File, len(sources))
	errSlots := make([][]*errors.CompileError, len(sources))

	var wg sync.WaitGroup
	work := make(chan int)

	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				src := sources[i]
				p := syntax.New(src.Text, src.Filename)
				files[i] = p.Parse()
				errSlots[i] = p.Errors()
				d.stats.FilesParsed.Inc()
			}
		}()
	}

	for i := range sources {
		work <- i
	}
	close(work)
	wg.Wait()

	var err error
	for _, slot := range errSlots {
		for _, e := range slot {
			err = multierr.Append(err, e)
		}
	}
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (d *Driver) parseSerial(sources []Source) ([]*ast.File, error) {
	files := make([]*ast.File, 0, len(sources))
	var err error
	for _, src := range sources {
		p := syntax.New(src.Text, src.Filename)
		files = append(files, p.Parse())
		for _, e := range p.Errors() {
			err = multierr.Append(err, e)
		}
		d.stats.FilesParsed.Inc()
	}
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ----------------------------------------------------------------------------
// lowering 阶段
// ----------------------------------------------------------------------------

// lowerProgram 对程序中每个有方法体的方法执行 lowering
//
// 方法向同一个 IR 模块写入，保持串行；方法间顺序即
// 源文件声明顺序，输出确定。
func (d *Driver) lowerProgram(lw *lower.Lowerer, prog *sema.Program) error {
	declSites := make(map[*ast.MethodDecl]*ast.Arena)
	for _, file := range prog.Files {
		for _, decl := range file.Declarations {
			if cd, ok := decl.(*ast.ClassDecl); ok {
				for _, md := range cd.Methods {
					declSites[md] = file.Sites
				}
			}
		}
	}

	var err error
	for _, class := range prog.Classes {
		if class.IsInterface {
			continue
		}
		for _, m := range class.Methods {
			decl := prog.Decl(m)
			if decl == nil || decl.Body == nil {
				continue // 抽象方法没有方法体
			}
			sites, ok := declSites[decl]
			if !ok {
				err = multierr.Append(err, errors.Internal(errors.L0900, decl.Pos(),
					"method %s has no call site arena", m))
				continue
			}
			if _, lerr := lw.LowerMethod(class, m, decl, sites); lerr != nil {
				err = multierr.Append(err, lerr)
				continue
			}
			d.stats.MethodsLowered.Inc()
		}
	}
	return err
}

// reportedErrors 把 reporter 中的诊断汇总为单个 error
func reportedErrors(r *errors.Reporter) error {
	var err error
	for _, e := range r.Errors() {
		err = multierr.Append(err, e)
	}
	return err
}
