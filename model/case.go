package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultVersion is the case format version written when none is given.
const DefaultVersion = "2.0.0"

// DefaultBaseMVA is the system MVA base used when none is given.
const DefaultBaseMVA = 100.0

// Case is the aggregate power-flow network description: ordered bus,
// generator, branch and generator cost tables plus case-level metadata.
//
// A Case owns its records exclusively; nothing is shared between two cases.
// A Case is only known to satisfy the cross-record invariants after it has
// passed through validate.Check; parse paths never hand out unvalidated
// cases.
type Case struct {
	// Name is the case name.
	Name string `json:"casename"`

	// Version is the case format version, a semantic version triple.
	Version string `json:"version"`

	// BaseMVA is the system MVA base used to per-unitize power quantities.
	BaseMVA float64 `json:"base_mva"`

	// CreatedAt is the optional creation timestamp.
	CreatedAt time.Time `json:"created_at,omitzero"`

	Buses    []Bus     `json:"bus"`
	Gens     []Gen     `json:"gen"`
	Branches []Branch  `json:"branch"`
	Costs    []GenCost `json:"gencost"`
}

// CaseOption configures a Case during construction.
type CaseOption func(*Case)

// WithVersion sets the case format version. The default is DefaultVersion.
func WithVersion(version string) CaseOption {
	return func(c *Case) { c.Version = version }
}

// WithBaseMVA sets the system MVA base. The default is DefaultBaseMVA.
func WithBaseMVA(baseMVA float64) CaseOption {
	return func(c *Case) { c.BaseMVA = baseMVA }
}

// WithCreatedAt sets the creation timestamp.
func WithCreatedAt(t time.Time) CaseOption {
	return func(c *Case) { c.CreatedAt = t }
}

// NewCase creates an empty case with the given name and options applied over
// the defaults (version 2.0.0, 100 MVA base).
//
// Returns a DomainError if the base power is not positive or the version is
// not a semantic version triple.
func NewCase(name string, opts ...CaseOption) (*Case, error) {
	c := &Case{Name: name, Version: DefaultVersion, BaseMVA: DefaultBaseMVA}
	for _, opt := range opts {
		opt(c)
	}

	if c.BaseMVA <= 0 {
		return nil, domainErr("base_mva", c.BaseMVA, "base power must be positive")
	}
	if err := CheckVersion(c.Version); err != nil {
		return nil, err
	}

	return c, nil
}

// CheckVersion verifies that version is a semantic version triple like
// "2.0.0". Returns a DomainError otherwise.
func CheckVersion(version string) error {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return domainErr("version", version, "version must be a semantic version triple")
	}
	for _, part := range parts {
		if n, err := strconv.Atoi(part); err != nil || n < 0 || part == "" {
			return domainErr("version", version, "version must be a semantic version triple")
		}
	}

	return nil
}

// AddBus appends a bus to the case.
func (c *Case) AddBus(b Bus) { c.Buses = append(c.Buses, b) }

// AddGen appends a generator to the case.
func (c *Case) AddGen(g Gen) { c.Gens = append(c.Gens, g) }

// AddBranch appends a branch to the case.
func (c *Case) AddBranch(br Branch) { c.Branches = append(c.Branches, br) }

// AddCost appends a generator cost record to the case.
func (c *Case) AddCost(gc GenCost) { c.Costs = append(c.Costs, gc) }

// BusByID returns the bus with the given bus number.
//
// For repeated lookups build a BusIndex once instead.
func (c *Case) BusByID(i int) (Bus, bool) {
	for _, b := range c.Buses {
		if b.I == i {
			return b, true
		}
	}

	return Bus{}, false
}

// GenAt returns the generator at the given 1-based ordinal in gen table
// order. Generator costs reference generators by this ordinal.
func (c *Case) GenAt(ordinal int) (Gen, bool) {
	if ordinal < 1 || ordinal > len(c.Gens) {
		return Gen{}, false
	}

	return c.Gens[ordinal-1], true
}

// BusIndex maps each bus number to its position in the bus table. When a bus
// number is duplicated the first occurrence wins; the validate package
// reports the duplicates.
func (c *Case) BusIndex() map[int]int {
	idx := make(map[int]int, len(c.Buses))
	for pos, b := range c.Buses {
		if _, ok := idx[b.I]; !ok {
			idx[b.I] = pos
		}
	}

	return idx
}

// Rows returns the row count of the given table.
func (c *Case) Rows(table Table) int {
	switch table {
	case TableBus:
		return len(c.Buses)
	case TableGen:
		return len(c.Gens)
	case TableBranch:
		return len(c.Branches)
	case TableGenCost:
		return len(c.Costs)
	default:
		return 0
	}
}

// MarshalDocument exports the whole case as a single field-named JSON
// document, nested per table. This is a structural mapping of the model for
// document-oriented consumers, not a second format with its own invariants.
func (c *Case) MarshalDocument() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal case document: %w", err)
	}

	return data, nil
}

// ParseDocument imports a case from its JSON document form.
//
// The returned case has not been validated; parse paths that hand cases to
// consumers must run it through validate.Check first.
func ParseDocument(data []byte) (*Case, error) {
	var c Case
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse case document: %w", err)
	}

	return &c, nil
}
