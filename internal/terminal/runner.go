package terminal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
)

// DefaultRunTimeout bounds a single script run
const DefaultRunTimeout = 5 * time.Second

// errTimedOut interrupts a script that ran past its deadline
var errTimedOut = errors.New("execution timed out")

// Runner executes JavaScript in a fresh sandbox per run. The only host
// binding is a console that records what the script prints.
type Runner struct {
	Timeout time.Duration
}

// Run executes code and returns the captured console lines. A thrown
// exception, syntax error, timeout or cancellation is returned as an error
// whose message is the JavaScript error message.
func (r Runner) Run(ctx context.Context, name, code string) ([]string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}

	vm := goja.New()
	var logs []string

	console := vm.NewObject()
	record := func(prefix string, pretty bool) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			logs = append(logs, prefix+formatArgs(vm, call.Arguments, pretty))
			return goja.Undefined()
		}
	}
	_ = console.Set("log", record("", true))
	_ = console.Set("info", record("", true))
	_ = console.Set("error", record("[ERROR] ", false))
	_ = console.Set("warn", record("[WARN] ", false))
	if err := vm.Set("console", console); err != nil {
		return nil, fmt.Errorf("failed to install console: %w", err)
	}

	timer := time.AfterFunc(timeout, func() { vm.Interrupt(errTimedOut) })
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()

	if _, err := vm.RunScript(name, code); err != nil {
		return logs, &ScriptError{Message: scriptErrorMessage(err), Err: err}
	}
	return logs, nil
}

// ScriptError is a failed script run
type ScriptError struct {
	Message string
	Err     error
}

func (e *ScriptError) Error() string {
	return e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

func scriptErrorMessage(err error) string {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return cause.Error()
		}
		return fmt.Sprint(interrupted.Value())
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		if obj, ok := exception.Value().(*goja.Object); ok {
			if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
				return msg.String()
			}
		}
		return exception.Value().String()
	}

	return err.Error()
}

// formatArgs joins console arguments with spaces. With pretty set, objects
// are rendered as indented JSON the way a browser console log shows them.
func formatArgs(vm *goja.Runtime, args []goja.Value, pretty bool) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, formatArg(vm, arg, pretty))
	}
	return strings.Join(parts, " ")
}

func formatArg(vm *goja.Runtime, arg goja.Value, pretty bool) string {
	if arg == nil || goja.IsUndefined(arg) {
		if pretty {
			return "undefined"
		}
		return ""
	}
	if goja.IsNull(arg) {
		if pretty {
			return "null"
		}
		return ""
	}

	obj, isObject := arg.(*goja.Object)
	if !pretty || !isObject {
		return arg.String()
	}
	if _, isFunc := goja.AssertFunction(obj); isFunc {
		return arg.String()
	}

	stringify, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("stringify"))
	if !ok {
		return arg.String()
	}
	out, err := stringify(goja.Undefined(), arg, goja.Null(), vm.ToValue(2))
	if err != nil || goja.IsUndefined(out) {
		return arg.String()
	}
	return out.String()
}
