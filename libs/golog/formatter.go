package golog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = "2006-01-02T15:04:05.000Z0700"

// Formatter renders an entry into the bytes written by a handler.
type Formatter interface {
	Format(e *Entry) []byte
}

type FormatterFunc func(*Entry) []byte

func (f FormatterFunc) Format(e *Entry) []byte {
	return f(e)
}

// LogfmtFormatter renders entries as a single key=value line.
func LogfmtFormatter() Formatter {
	return FormatterFunc(func(e *Entry) []byte {
		buf := &bytes.Buffer{}
		buf.WriteString("t=")
		buf.WriteString(e.Time.Format(timeFormat))
		buf.WriteString(" lvl=")
		buf.WriteString(e.Lvl.String())
		buf.WriteString(" msg=")
		buf.WriteString(quote(e.Msg))
		if e.Src != "" {
			buf.WriteString(" src=")
			buf.WriteString(quote(e.Src))
		}
		for i := 0; i+1 < len(e.Ctx); i += 2 {
			buf.WriteByte(' ')
			if k, ok := e.Ctx[i].(string); ok {
				buf.WriteString(k)
			} else {
				buf.WriteString("_badkey")
			}
			buf.WriteByte('=')
			buf.WriteString(formatValue(e.Ctx[i+1]))
		}
		buf.WriteByte('\n')
		return buf.Bytes()
	})
}

// JSONFormatter renders entries as one JSON object per line. Context keys
// never override the t, level, msg, and src fields.
func JSONFormatter() Formatter {
	return FormatterFunc(func(e *Entry) []byte {
		js := make(map[string]interface{}, len(e.Ctx)/2+4)
		for i := 0; i+1 < len(e.Ctx); i += 2 {
			k, ok := e.Ctx[i].(string)
			if !ok {
				k = "_badkey"
			}
			switch v := e.Ctx[i+1].(type) {
			case error:
				js[k] = v.Error()
			default:
				js[k] = v
			}
		}
		js["t"] = e.Time.Format(timeFormat)
		js["level"] = e.Lvl.String()
		js["msg"] = e.Msg
		if e.Src != "" {
			js["src"] = e.Src
		}
		b, err := json.Marshal(js)
		if err != nil {
			b, _ = json.Marshal(map[string]string{"JSONFormatterError": err.Error(), "msg": e.Msg})
		}
		return append(b, '\n')
	})
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', 3, 64)
	case string:
		return quote(v)
	case time.Time:
		return v.Format(timeFormat)
	case time.Duration:
		return v.String()
	case error:
		return quote(v.Error())
	case fmt.Stringer:
		return quote(v.String())
	}
	return quote(fmt.Sprintf("%+v", v))
}

// quote leaves simple values bare and quotes anything with spaces, quotes,
// equals signs, or non-printable characters.
func quote(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " =\"\\") {
		return strconv.Quote(s)
	}
	for _, r := range s {
		if !strconv.IsPrint(r) {
			return strconv.Quote(s)
		}
	}
	return s
}
