package instrument

import (
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"runtime"
	"strings"
)

type sourceSpan struct {
	file  string
	start int
	end   int
}

// resolveSource locates the file and body line range of fn. Resolution is
// best-effort: any failure (not a func, stripped binaries, generated code,
// missing source on disk) yields nil and the caller records no source
// fields. It runs once per wrap, never per call.
func resolveSource(fn any) *sourceSpan {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return nil
	}
	file, line := rf.FileLine(rf.Entry())
	if file == "" || line <= 0 {
		return nil
	}

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file, nil, 0)
	if err != nil {
		return nil
	}

	var found ast.Node
	ast.Inspect(parsed, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			start := fset.Position(n.Pos()).Line
			end := fset.Position(n.End()).Line
			if start <= line && line <= end {
				// Keep descending: a literal nested inside a decl is
				// the tighter match.
				found = n
			}
		}
		return true
	})
	if found == nil {
		return nil
	}

	return &sourceSpan{
		file:  file,
		start: fset.Position(found.Pos()).Line,
		end:   fset.Position(found.End()).Line,
	}
}

// funcName derives a short name for fn from its runtime symbol, e.g.
// "github.com/acme/app/worker.Resize" becomes "Resize". Closures keep
// their funcN suffix.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return "unknown"
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return "unknown"
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	return name
}
