package gen

import "errors"

// Diagnostics collects the errors and warnings of a compiler pass.
// Errors are attributed to the table they were reported against, so a
// pass can keep going and later skip artifact production for failed
// tables while producing everything else.
type Diagnostics struct {
	errs   []error
	warns  []error
	failed map[string]bool
}

// NewDiagnostics creates an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{failed: make(map[string]bool)}
}

// Error records an error against the named table and marks it failed.
func (d *Diagnostics) Error(table string, err error) {
	if err == nil {
		return
	}
	d.errs = append(d.errs, err)
	if table != "" {
		d.failed[table] = true
	}
}

// Fail marks the named table failed without recording a new error.
// Used when one recorded error spans several tables.
func (d *Diagnostics) Fail(table string) {
	d.failed[table] = true
}

// Warn records a non-fatal diagnostic. Warnings never fail a table.
func (d *Diagnostics) Warn(err error) {
	if err != nil {
		d.warns = append(d.warns, err)
	}
}

// Failed reports whether any error was recorded against the named table.
func (d *Diagnostics) Failed(table string) bool {
	return d.failed[table]
}

// HasErrors reports whether any error was recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.errs) > 0
}

// Errors returns the recorded errors in report order.
func (d *Diagnostics) Errors() []error {
	return d.errs
}

// Warnings returns the recorded warnings in report order.
func (d *Diagnostics) Warnings() []error {
	return d.warns
}

// Err joins the recorded errors into a single error, or returns nil.
func (d *Diagnostics) Err() error {
	return errors.Join(d.errs...)
}
