// Package mock provides an expectation recorder for hand written mocks. A mock
// embeds *Expector, calls Record from every method, and returns whatever the
// matching Expectation was staged with.
package mock

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// Expectation is a single staged call.
type Expectation struct {
	Fn      string
	Params  []interface{}
	Returns []interface{}
	check   func(params ...interface{})
}

// NewExpectation stages a call to fn (a method value such as m.GetItem) with the given params.
func NewExpectation(fn interface{}, params ...interface{}) *Expectation {
	return &Expectation{Fn: funcName(fn), Params: params}
}

// NewExpectationFn stages a call to fn and hands the actual params to check instead of comparing them.
func NewExpectationFn(fn interface{}, check func(params ...interface{})) *Expectation {
	return &Expectation{Fn: funcName(fn), check: check}
}

// WithReturns sets the values returned by Record for this expectation.
func (e *Expectation) WithReturns(rets ...interface{}) *Expectation {
	e.Returns = rets
	return e
}

// Expector tracks staged expectations in order.
type Expector struct {
	T testing.TB

	mu      sync.Mutex
	expects []*Expectation
}

// Expect appends expectations to the queue.
func (e *Expector) Expect(exps ...*Expectation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expects = append(e.expects, exps...)
}

// Record matches a call from the calling method against the next expectation
// and returns its staged values. An unexpected call or param mismatch fails the test.
func (e *Expector) Record(params ...interface{}) []interface{} {
	pc, _, _, _ := runtime.Caller(1)
	name := trimFuncName(runtime.FuncForPC(pc).Name())

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.expects) == 0 {
		e.fatalf("unexpected call to %s with %s", name, formatParams(params))
		return nil
	}
	exp := e.expects[0]
	e.expects = e.expects[1:]
	if exp.Fn != name {
		e.fatalf("expected call to %s, got %s", exp.Fn, name)
		return nil
	}
	if exp.check != nil {
		exp.check(params...)
	} else if !reflect.DeepEqual(exp.Params, params) {
		e.fatalf("params mismatch for %s\nexp: %s\ngot: %s", name, formatParams(exp.Params), formatParams(params))
	}
	return exp.Returns
}

// Finish fails the test if any expectations were never called.
func (e *Expector) Finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.expects) != 0 {
		names := make([]string, len(e.expects))
		for i, ex := range e.expects {
			names[i] = ex.Fn
		}
		e.fatalf("%d expected calls never made: %s", len(e.expects), strings.Join(names, ", "))
	}
}

func (e *Expector) fatalf(format string, args ...interface{}) {
	if e.T == nil {
		panic(fmt.Sprintf(format, args...))
	}
	e.T.Helper()
	e.T.Fatalf(format, args...)
}

// Finisher is implemented by anything embedding *Expector.
type Finisher interface {
	Finish()
}

// FinishAll calls Finish on every mock, typically deferred at the top of a test.
func FinishAll(fs ...Finisher) {
	for _, f := range fs {
		f.Finish()
	}
}

func funcName(fn interface{}) string {
	if s, ok := fn.(string); ok {
		return s
	}
	return trimFuncName(runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name())
}

// trimFuncName reduces "pkg/path.(*Type).Method-fm" to "Type.Method".
func trimFuncName(name string) string {
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.NewReplacer("(*", "", ")", "").Replace(name)
}

func formatParams(params []interface{}) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%#v", p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
