// Package validate applies field-level and cross-record semantic checks to a
// case, accumulating every violation instead of failing fast.
//
// Case-level metadata (base power, format version) is checked first, then
// the engine runs two phases. Phase one checks each record on its own
// (ranges, enum domains, bound ordering) in table order. Phase two builds the
// bus id index and checks cross-record rules (id uniqueness, referential
// integrity, cost-per-generator uniqueness, reference bus policy); it runs
// even when phase one found errors elsewhere, as long as the ids of the
// record being checked are individually well-formed, so one pass surfaces
// the maximum diagnostic set.
package validate

import (
	"fmt"
	"sort"

	"github.com/gridfmt/casepack/errs"
	"github.com/gridfmt/casepack/model"
	"github.com/gridfmt/casepack/tabular"
)

// Severity classifies a violation.
type Severity uint8

const (
	// Warning violations are attached to a successfully returned case.
	Warning Severity = 1

	// Error violations prevent returning a usable case.
	Error Severity = 2
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Violation is one failed semantic rule, located by table, row and field.
type Violation struct {
	// Severity is Error or Warning.
	Severity Severity

	// Table is the table of the offending record, or zero for a case-level
	// finding (bad base power, bad format version).
	Table model.Table

	// Row is the 0-based position of the record in its table, or -1 for a
	// table-level finding (e.g. no reference bus).
	Row int

	// Key identifies the record: the bus number for bus records, the
	// 1-based ordinal for the other tables.
	Key int

	// Field is the offending field in tabular column naming.
	Field string

	// Message describes the rule that failed.
	Message string
}

func (v Violation) String() string {
	if v.Table == 0 {
		return fmt.Sprintf("%s: case.%s: %s", v.Severity, v.Field, v.Message)
	}

	return fmt.Sprintf("%s: %s[%d].%s: %s", v.Severity, v.Table, v.Row, v.Field, v.Message)
}

// Report is the ordered violation list of one validation pass. Violations
// are ordered by table (bus, gen, branch, gencost), then row, then field
// declaration order, regardless of internal processing order.
type Report struct {
	Violations []Violation
}

// HasErrors reports whether any violation has Error severity.
func (r *Report) HasErrors() bool {
	for _, v := range r.Violations {
		if v.Severity == Error {
			return true
		}
	}

	return false
}

// Errors returns the error-severity violations in report order.
func (r *Report) Errors() []Violation {
	return r.filter(Error)
}

// Warnings returns the warning-severity violations in report order.
func (r *Report) Warnings() []Violation {
	return r.filter(Warning)
}

func (r *Report) filter(s Severity) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == s {
			out = append(out, v)
		}
	}

	return out
}

// Err returns a FailedError carrying the report when it has error-severity
// violations, nil otherwise.
func (r *Report) Err() error {
	if r.HasErrors() {
		return &FailedError{Report: r}
	}

	return nil
}

// FailedError is returned when a case carries error-severity violations and
// cannot be handed out as valid. It unwraps to errs.ErrValidationFailed.
type FailedError struct {
	Report *Report
}

func (e *FailedError) Error() string {
	n := len(e.Report.Errors())
	return fmt.Sprintf("case validation failed: %d error(s), %d warning(s)", n, len(e.Report.Violations)-n)
}

func (e *FailedError) Unwrap() error {
	return errs.ErrValidationFailed
}

// RefBusPolicy selects how a case with zero or multiple reference buses is
// reported. Sub-networks are sometimes modeled without a reference on
// purpose, so the default is a warning.
type RefBusPolicy uint8

const (
	RefBusWarning RefBusPolicy = iota // report as Warning (default)
	RefBusError                       // report as Error
	RefBusIgnore                      // do not report
)

// Option configures a validation pass.
type Option func(*engine)

// WithReferencePolicy sets the reference bus policy. The default is
// RefBusWarning.
func WithReferencePolicy(p RefBusPolicy) Option {
	return func(e *engine) { e.refPolicy = p }
}

type engine struct {
	c          *model.Case
	refPolicy  RefBusPolicy
	violations []Violation
}

// Check validates the case and returns the full ordered report. The case is
// not modified; callers decide through Report.Err whether it is usable.
func Check(c *model.Case, opts ...Option) *Report {
	e := &engine{c: c, refPolicy: RefBusWarning}
	for _, opt := range opts {
		opt(e)
	}

	e.checkCase()

	e.checkBuses()
	e.checkGens()
	e.checkBranches()
	e.checkCosts()

	e.checkReferences()

	sortViolations(e.violations)

	return &Report{Violations: e.violations}
}

func (e *engine) add(sev Severity, table model.Table, row, key int, field, format string, args ...any) {
	e.violations = append(e.violations, Violation{
		Severity: sev,
		Table:    table,
		Row:      row,
		Key:      key,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	})
}

// checkCase verifies case-level metadata. Parse paths build cases from
// decoded bytes without going through the model constructors, so the
// constructor domain rules are re-checked here.
func (e *engine) checkCase() {
	if e.c.BaseMVA <= 0 {
		e.add(Error, 0, -1, 0, "base_mva", "base power %g must be positive", e.c.BaseMVA)
	}
	if err := model.CheckVersion(e.c.Version); err != nil {
		e.add(Error, 0, -1, 0, "version", "format version %q is not a semantic version triple", e.c.Version)
	}
}

// Phase one: per-record field checks, independent of other records.

func (e *engine) checkBuses() {
	for i, b := range e.c.Buses {
		if b.I < 1 {
			e.add(Error, model.TableBus, i, b.I, "bus_i", "bus number %d must be positive", b.I)
		}
		if !b.Type.Valid() {
			e.add(Error, model.TableBus, i, b.I, "type", "bus type %d is not one of PQ, PV, REF, ISOLATED", b.Type)
		}
		if b.BaseKV < 0 {
			e.add(Error, model.TableBus, i, b.I, "base_kv", "base voltage %g must not be negative", b.BaseKV)
		}
		// A zero upper bound means unbounded, as with branch ratings.
		if b.Vmax != 0 && b.Vmin > b.Vmax {
			e.add(Error, model.TableBus, i, b.I, "vmin", "voltage bounds are inverted: vmin %g > vmax %g", b.Vmin, b.Vmax)
		}
	}
}

func (e *engine) checkGens() {
	for i, g := range e.c.Gens {
		ord := i + 1
		if g.Bus < 1 {
			e.add(Error, model.TableGen, i, ord, "bus", "bus number %d must be positive", g.Bus)
		}
		if g.Status != model.InService && g.Status != model.OutOfService {
			e.add(Error, model.TableGen, i, ord, "status", "status %d must be 0 or 1", g.Status)
		}
		if g.MBase < 0 {
			e.add(Error, model.TableGen, i, ord, "mbase", "machine base %g must not be negative", g.MBase)
		}
		// Zero upper bounds mean unbounded; dispatchable loads in
		// particular carry pmin < 0 with pmax = 0.
		if g.Qmax != 0 && g.Qmin > g.Qmax {
			e.add(Error, model.TableGen, i, ord, "qmin", "reactive bounds are inverted: qmin %g > qmax %g", g.Qmin, g.Qmax)
		}
		if g.Pmax != 0 && g.Pmin > g.Pmax {
			e.add(Error, model.TableGen, i, ord, "pmin", "real bounds are inverted: pmin %g > pmax %g", g.Pmin, g.Pmax)
		}
	}
}

func (e *engine) checkBranches() {
	for i, br := range e.c.Branches {
		ord := i + 1
		if br.From < 1 {
			e.add(Error, model.TableBranch, i, ord, "f_bus", "bus number %d must be positive", br.From)
		}
		if br.To < 1 {
			e.add(Error, model.TableBranch, i, ord, "t_bus", "bus number %d must be positive", br.To)
		}
		for _, rating := range []struct {
			field string
			value float64
		}{{"rate_a", br.RateA}, {"rate_b", br.RateB}, {"rate_c", br.RateC}} {
			if rating.value < 0 {
				e.add(Error, model.TableBranch, i, ord, rating.field, "rating %g must not be negative", rating.value)
			}
		}
		// Zero ratings mean unbounded, so ordering is only checked across
		// the declared ones.
		if br.RateA > 0 && br.RateB > 0 && br.RateA > br.RateB {
			e.add(Error, model.TableBranch, i, ord, "rate_a", "ratings out of order: rate_a %g > rate_b %g", br.RateA, br.RateB)
		}
		if br.RateB > 0 && br.RateC > 0 && br.RateB > br.RateC {
			e.add(Error, model.TableBranch, i, ord, "rate_b", "ratings out of order: rate_b %g > rate_c %g", br.RateB, br.RateC)
		}
		if br.RateA > 0 && br.RateB == 0 && br.RateC > 0 && br.RateA > br.RateC {
			e.add(Error, model.TableBranch, i, ord, "rate_a", "ratings out of order: rate_a %g > rate_c %g", br.RateA, br.RateC)
		}
		if br.Tap < 0 {
			e.add(Error, model.TableBranch, i, ord, "tap", "tap ratio %g must not be negative", br.Tap)
		}
		if br.Status != model.InService && br.Status != model.OutOfService {
			e.add(Error, model.TableBranch, i, ord, "status", "status %d must be 0 or 1", br.Status)
		}
		if br.AngMin > br.AngMax {
			e.add(Error, model.TableBranch, i, ord, "angmin", "angle bounds are inverted: angmin %g > angmax %g", br.AngMin, br.AngMax)
		}
	}
}

func (e *engine) checkCosts() {
	for i, gc := range e.c.Costs {
		ord := i + 1
		if gc.Gen < 1 {
			e.add(Error, model.TableGenCost, i, ord, "gen", "generator ordinal %d must be positive", gc.Gen)
		}
		if !gc.Model.Valid() {
			e.add(Error, model.TableGenCost, i, ord, "model", "cost model %d is not PWLINEAR or POLYNOMIAL", gc.Model)
			continue
		}
		if gc.N < 1 {
			e.add(Error, model.TableGenCost, i, ord, "n", "declared count %d must be positive", gc.N)
			continue
		}
		if len(gc.Values) != gc.ValueCount() {
			e.add(Error, model.TableGenCost, i, ord, "values",
				"value list length %d does not match declared count (%s with n = %d needs %d)",
				len(gc.Values), gc.Model, gc.N, gc.ValueCount())
		}
	}
}

// Phase two: cross-record checks over the id index. Records whose ids failed
// phase one are skipped here; everything else is still checked.

func (e *engine) checkReferences() {
	busIndex := e.c.BusIndex()

	// Duplicate bus numbers: one violation per duplicate pair, naming both
	// rows, on the later row.
	firstRow := make(map[int]int, len(e.c.Buses))
	for i, b := range e.c.Buses {
		if b.I < 1 {
			continue
		}
		if first, dup := firstRow[b.I]; dup {
			e.add(Error, model.TableBus, i, b.I, "bus_i", "duplicate bus number %d (rows %d and %d)", b.I, first, i)
			continue
		}
		firstRow[b.I] = i
	}

	used := make(map[int]bool, len(e.c.Buses))

	for i, g := range e.c.Gens {
		if g.Bus < 1 {
			continue
		}
		if _, ok := busIndex[g.Bus]; !ok {
			e.add(Error, model.TableGen, i, i+1, "bus", "generator references missing bus %d", g.Bus)
			continue
		}
		used[g.Bus] = true
	}

	for i, br := range e.c.Branches {
		if br.From >= 1 {
			if _, ok := busIndex[br.From]; !ok {
				e.add(Error, model.TableBranch, i, i+1, "f_bus", "branch references missing bus %d", br.From)
			} else {
				used[br.From] = true
			}
		}
		if br.To >= 1 {
			if _, ok := busIndex[br.To]; !ok {
				e.add(Error, model.TableBranch, i, i+1, "t_bus", "branch references missing bus %d", br.To)
			} else {
				used[br.To] = true
			}
		}
		if br.From >= 1 && br.From == br.To {
			e.add(Warning, model.TableBranch, i, i+1, "t_bus", "self-loop: branch connects bus %d to itself", br.To)
		}
	}

	costFor := make(map[int]int, len(e.c.Costs))
	for i, gc := range e.c.Costs {
		if gc.Gen < 1 {
			continue
		}
		if gc.Gen > len(e.c.Gens) {
			e.add(Error, model.TableGenCost, i, i+1, "gen", "cost references missing generator %d", gc.Gen)
			continue
		}
		if first, dup := costFor[gc.Gen]; dup {
			e.add(Error, model.TableGenCost, i, i+1, "gen", "generator %d is priced twice (rows %d and %d)", gc.Gen, first, i)
			continue
		}
		costFor[gc.Gen] = i
	}

	e.checkRefBus()

	for i, b := range e.c.Buses {
		if b.I >= 1 && !used[b.I] {
			e.add(Warning, model.TableBus, i, b.I, "bus_i", "unused bus %d: no generator or branch references it", b.I)
		}
	}
}

func (e *engine) checkRefBus() {
	if e.refPolicy == RefBusIgnore {
		return
	}
	sev := Warning
	if e.refPolicy == RefBusError {
		sev = Error
	}

	var refRows []int
	for i, b := range e.c.Buses {
		if b.Type == model.BusRef {
			refRows = append(refRows, i)
		}
	}

	switch {
	case len(refRows) == 0:
		e.add(sev, model.TableBus, -1, 0, "type", "no reference bus in case")
	case len(refRows) > 1:
		for _, row := range refRows[1:] {
			e.add(sev, model.TableBus, row, e.c.Buses[row].I, "type",
				"multiple reference buses: bus %d is also marked REF (first at row %d)", e.c.Buses[row].I, refRows[0])
		}
	}
}

// sortViolations orders the report by table, then row, then field declaration
// order, independent of the order checks ran in.
func sortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}

		return fieldRank(a.Table, a.Field) < fieldRank(b.Table, b.Field)
	})
}

func fieldRank(table model.Table, field string) int {
	for i, name := range tabular.Columns(table) {
		if name == field {
			return i
		}
	}

	return 1 << 16 // unnamed trailing columns (gencost values) sort last
}
