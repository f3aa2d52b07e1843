package terminal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestRunner_ConsoleFormatting(t *testing.T) {
	logs, err := Runner{}.Run(context.Background(), "a.js", `
console.log([1, "two"]);
console.info(undefined, null, "x");
console.error(undefined, null, "y");
console.log(function f() {});
`)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	require.Equal(t, []string{
		"[\n  1,\n  \"two\"\n]",
		"undefined null x",
		"[ERROR]   y",
	}, logs[:3])
	require.Contains(t, logs[3], "function f")
}

func TestRunner_ExceptionKeepsEarlierLogs(t *testing.T) {
	logs, err := Runner{}.Run(context.Background(), "a.js", "console.log(1);\nnull.x;")

	require.Equal(t, []string{"1"}, logs)
	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	require.Contains(t, scriptErr.Message, "Cannot read property")

	var exception *goja.Exception
	require.ErrorAs(t, err, &exception)
}

func TestRunner_ThrownValue(t *testing.T) {
	_, err := Runner{}.Run(context.Background(), "a.js", `throw "plain"`)
	require.EqualError(t, err, "plain")
}

func TestRunner_Timeout(t *testing.T) {
	_, err := Runner{Timeout: 20 * time.Millisecond}.Run(context.Background(), "a.js", "for (;;) {}")

	require.ErrorIs(t, err, errTimedOut)
	require.EqualError(t, err, "execution timed out")
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := Runner{Timeout: time.Minute}.Run(ctx, "a.js", "while (true) {}")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunner_FreshSandbox(t *testing.T) {
	r := Runner{}
	_, err := r.Run(context.Background(), "a.js", "var leaked = 1;")
	require.NoError(t, err)

	logs, err := r.Run(context.Background(), "b.js", "console.log(typeof leaked);")
	require.NoError(t, err)
	require.Equal(t, []string{"undefined"}, logs)
}
