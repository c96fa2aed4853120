package log

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Format is a cut-down fmt.Sprintf for log lines. It understands the
// common verbs (%%, %d, %f, %s, %t, %v, %q, %T) and has a few log
// oriented extras:
//
//  1. arguments replace placeholders left to right;
//  2. surplus arguments are appended, space separated;
//  3. a format without placeholders gets all arguments appended;
//  4. when the last argument is an error it is appended as " - <msg>";
//  5. placeholders without a matching argument are kept verbatim.
//
// Examples:
//
//	Format("hello %v", "world")                    // "hello world"
//	Format("no placeholders", 1, 2)                // "no placeholders 1 2"
//	Format("read %s failed", "conn", io.EOF)       // "read conn failed - EOF"
//	Format("%v %v", 1)                             // "1 %v"
func Format(format string, args ...any) string {
	// pull a trailing error out of the argument list
	var trailingErr error
	n := len(args)
	if n > 0 {
		if e, ok := args[n-1].(error); ok {
			trailingErr = e
			args = args[:n-1]
			n--
		}
	}

	builder := strings.Builder{}
	builder.Grow(len(format) + n*8)
	argIdx := 0
	for len(format) > 0 {
		idx := strings.IndexByte(format, '%')
		if idx < 0 {
			builder.WriteString(format)
			break
		}

		if idx > 0 {
			builder.WriteString(format[:idx])
			format = format[idx:]
		}

		// a lone % at the end stays as-is
		if len(format) < 2 {
			builder.WriteByte('%')
			break
		}

		verb := format[1]
		format = format[2:]

		if verb == '%' {
			builder.WriteByte('%')
			continue
		}

		// not enough arguments, keep the placeholder
		if argIdx >= n {
			builder.WriteByte('%')
			builder.WriteByte(verb)
			continue
		}

		arg := args[argIdx]
		argIdx++
		switch verb {
		case 'd', 'f', 's', 't', 'v':
			builder.WriteString(toString(arg))
		case 'q':
			builder.WriteString(strconv.Quote(toString(arg)))
		case 'T':
			builder.WriteString(toTypeString(arg))
		default:
			builder.WriteByte('%')
			builder.WriteByte(verb)
		}
	}

	// surplus arguments
	if argIdx < n {
		for _, arg := range args[argIdx:] {
			if builder.Len() > 0 {
				builder.WriteByte(' ')
			}
			builder.WriteString(toString(arg))
		}
	}

	if trailingErr != nil {
		builder.WriteString(" - ")
		builder.WriteString(trailingErr.Error())
	}

	return builder.String()
}

// FormatArgs treats the first argument as the format string when there
// is more than one argument.
func FormatArgs(args ...any) string {
	switch len(args) {
	case 0:
		return ""
	case 1:
		return toString(args[0])
	default:
		return Format(toString(args[0]), args[1:]...)
	}
}

func toTypeString(val any) string {
	if val == nil {
		return "<nil>"
	}
	if typ := reflect.TypeOf(val); typ != nil {
		return typ.String()
	}
	return "<unknown type>"
}

func toString(val any) string {
	switch v := val.(type) {
	case int:
		return strconv.Itoa(v)
	case *int:
		if v == nil {
			return "<nil>"
		}
		return strconv.Itoa(*v)
	case string:
		return v
	case *string:
		if v == nil {
			return "<nil>"
		}
		return *v
	default:
		return fmt.Sprint(val)
	}
}
