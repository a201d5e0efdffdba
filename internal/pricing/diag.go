package pricing

import (
	"fmt"
	"strings"
	"sync"
)

// Diagnostic codes understood by the search.
const (
	DiagNone        = 0
	DiagFarePathMin = 601
	DiagFarePathMax = 690
	DiagExcluded666 = 666
	DiagExpansion   = 671
	Diag413         = 413
	Diag420         = 420
	Diag910         = 910
)

// DiagnosticSink receives trace text. It is write-only for the search.
type DiagnosticSink interface {
	IsActive(code int) bool
	Emit(text string)
}

// DiagnosticRequest is the diagnostic asked for by the transaction.
type DiagnosticRequest struct {
	Code   int
	Params map[string]string
}

// Param returns a diagnostic parameter.
func (d DiagnosticRequest) Param(name string) (string, bool) {
	v, ok := d.Params[name]
	return v, ok
}

type nopDiag struct{}

func (nopDiag) IsActive(int) bool { return false }
func (nopDiag) Emit(string)       {}

// NopDiag discards everything.
var NopDiag DiagnosticSink = nopDiag{}

// DiagBuffer collects trace text for one active diagnostic code.
// It is safe for concurrent use by the per-passenger searches of a transaction.
type DiagBuffer struct {
	code int
	mu   sync.Mutex
	sb   strings.Builder
}

// NewDiagBuffer returns a sink that is active for code.
func NewDiagBuffer(code int) *DiagBuffer {
	return &DiagBuffer{code: code}
}

func (d *DiagBuffer) IsActive(code int) bool {
	return d != nil && d.code != DiagNone && d.code == code
}

func (d *DiagBuffer) Emit(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sb.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		d.sb.WriteByte('\n')
	}
}

func (d *DiagBuffer) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sb.String()
}

func emitf(diag DiagnosticSink, code int, format string, args ...interface{}) {
	if diag == nil || !diag.IsActive(code) {
		return
	}
	diag.Emit(fmt.Sprintf(format, args...))
}
