// Package extern provides the stock capability backends shipped with the
// runtime: console I/O, string utilities and math. Each backend registers
// its capabilities into a dispatcher; hosted programs reach them through
// selector strings such as "console:println" or "strings|console:upper".
package extern

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/substrate-lang/substrate/lang/object"
	"github.com/substrate-lang/substrate/runtime"
)

// Console is the console backend. Output and input streams are injected so
// tests can capture what hosted programs print.
type Console struct {
	Out io.Writer
	In  *bufio.Reader
}

// RegisterConsole adds the console capabilities (print, println, input) to
// the dispatcher under the "console" backend.
func RegisterConsole(d *runtime.Dispatcher, out io.Writer, in io.Reader) error {
	c := &Console{Out: out}
	if in != nil {
		c.In = bufio.NewReader(in)
	}
	caps := []runtime.Capability{
		runtime.CapabilityFunc{CapName: "print", Fn: c.print},
		runtime.CapabilityFunc{CapName: "println", Fn: c.println},
		runtime.CapabilityFunc{CapName: "input", Fn: c.input},
	}
	for _, cap := range caps {
		if err := d.Register("console", cap); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) print(args []runtime.Value) (runtime.Value, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.Display()
	}
	if _, err := fmt.Fprint(c.Out, strings.Join(parts, " ")); err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	return object.Null{}, nil
}

func (c *Console) println(args []runtime.Value) (runtime.Value, error) {
	if _, err := c.print(args); err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintln(c.Out); err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	return object.Null{}, nil
}

func (c *Console) input(args []runtime.Value) (runtime.Value, error) {
	if len(args) > 0 {
		if _, err := c.print(args); err != nil {
			return nil, err
		}
	}
	if c.In == nil {
		return nil, fmt.Errorf("console: no input stream")
	}
	line, err := c.In.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("console: %w", err)
	}
	return object.Str(strings.TrimRight(line, "\r\n")), nil
}
