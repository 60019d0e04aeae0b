package scripting

import (
	"context"
	"errors"

	"github.com/dop251/goja"

	"github.com/fieldink/signkit/observability"
)

// GojaEngine runs validation scripts on a goja runtime. One engine owns one
// runtime; scripts execute sequentially against the registered DOM.
type GojaEngine struct {
	vm  *goja.Runtime
	log observability.Logger
}

// Option configures a GojaEngine.
type Option func(*GojaEngine)

// WithLogger installs a structured logger. The default discards everything.
func WithLogger(l observability.Logger) Option {
	return func(e *GojaEngine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine returns an engine with a fresh runtime.
func NewEngine(opts ...Option) *GojaEngine {
	e := &GojaEngine{vm: goja.New(), log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the script and returns its exported result. Cancelling the
// context interrupts the runtime; the cancellation cause is returned.
func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	finished := make(chan struct{})
	defer close(finished)
	defer e.vm.ClearInterrupt()
	go e.watchCancel(ctx, finished)

	val, err := e.vm.RunString(script)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			e.log.Debug("script interrupted")
			if cause := interrupted.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

// watchCancel interrupts the runtime when ctx is cancelled before the script
// finishes.
func (e *GojaEngine) watchCancel(ctx context.Context, finished <-chan struct{}) {
	select {
	case <-ctx.Done():
		e.vm.Interrupt(ctx.Err())
	case <-finished:
	}
}

// RegisterDOM binds the form DOM into the runtime's global scope: app.alert,
// getField(id) with a value accessor pair, and getPage(n).
func (e *GojaEngine) RegisterDOM(dom FormDOM) error {
	appObj := e.vm.NewObject()
	err := appObj.Set("alert", func(call goja.FunctionCall) goja.Value {
		msg := ""
		if len(call.Arguments) > 0 {
			msg = call.Arguments[0].String()
		}
		dom.Alert(msg)
		return goja.Undefined()
	})
	if err != nil {
		return err
	}
	e.vm.Set("app", appObj)

	e.vm.Set("getField", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		id := call.Arguments[0].String()
		field, err := dom.GetField(id)
		if err != nil || field == nil {
			return goja.Null()
		}

		obj := e.vm.NewObject()
		obj.DefineAccessorProperty("value",
			e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
				return e.vm.ToValue(field.GetValue())
			}),
			e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
				if len(call.Arguments) > 0 {
					field.SetValue(call.Arguments[0].Export())
				}
				return goja.Undefined()
			}),
			goja.FLAG_TRUE,
			goja.FLAG_TRUE,
		)
		return obj
	})

	e.vm.Set("getPage", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		number := int(call.Arguments[0].ToInteger())
		page, err := dom.GetPage(number)
		if err != nil || page == nil {
			return goja.Null()
		}
		obj := e.vm.NewObject()
		obj.Set("number", page.GetNumber())
		w, h := page.GetSize()
		obj.Set("width", w)
		obj.Set("height", h)
		return obj
	})

	return nil
}
