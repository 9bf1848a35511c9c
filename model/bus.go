package model

import "fmt"

// BusType is the electrical type of a bus.
type BusType uint8

const (
	BusPQ       BusType = 1 // fixed active and reactive power
	BusPV       BusType = 2 // fixed voltage magnitude and active power
	BusRef      BusType = 3 // voltage angle reference (slack)
	BusIsolated BusType = 4 // isolated bus
)

// Token returns the fixed uppercase token used in tabular text.
func (t BusType) Token() string {
	switch t {
	case BusPQ:
		return "PQ"
	case BusPV:
		return "PV"
	case BusRef:
		return "REF"
	case BusIsolated:
		return "ISOLATED"
	default:
		return "UNKNOWN"
	}
}

func (t BusType) String() string { return t.Token() }

// ParseBusType maps a tabular token back to its BusType.
func ParseBusType(token string) (BusType, error) {
	switch token {
	case "PQ":
		return BusPQ, nil
	case "PV":
		return BusPV, nil
	case "REF":
		return BusRef, nil
	case "ISOLATED":
		return BusIsolated, nil
	default:
		return 0, fmt.Errorf("unknown bus type token %q", token)
	}
}

// Valid reports whether t is one of the four defined bus types.
func (t BusType) Valid() bool {
	return t >= BusPQ && t <= BusIsolated
}

// MarshalJSON encodes the bus type as its tabular token.
func (t BusType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Token() + `"`), nil
}

// UnmarshalJSON decodes a bus type from its tabular token.
func (t *BusType) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("bus type must be a string token, got %s", data)
	}
	parsed, err := ParseBusType(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed

	return nil
}

// Bus is a network node with an electrical type and load/voltage attributes.
//
// Power quantities are in MW/MVAr, voltages in per-unit on BaseKV, angles in
// degrees. Vmax/Vmin of zero mean no declared bound.
type Bus struct {
	// I is the bus number, unique within a case.
	I int `json:"bus_i"`

	// Type is the electrical bus type.
	Type BusType `json:"type"`

	// Pd is the real power demand (MW).
	Pd float64 `json:"pd"`

	// Qd is the reactive power demand (MVAr).
	Qd float64 `json:"qd"`

	// Gs is the shunt conductance (MW at V = 1.0 p.u.).
	Gs float64 `json:"gs"`

	// Bs is the shunt susceptance (MVAr at V = 1.0 p.u.).
	Bs float64 `json:"bs"`

	// Area is the area number.
	Area int `json:"area"`

	// Vm is the voltage magnitude (p.u.).
	Vm float64 `json:"vm"`

	// Va is the voltage angle (degrees).
	Va float64 `json:"va"`

	// BaseKV is the base voltage (kV).
	BaseKV float64 `json:"base_kv"`

	// Zone is the loss zone.
	Zone int `json:"zone"`

	// Vmax is the maximum voltage magnitude (p.u.), 0 when unbounded.
	Vmax float64 `json:"vmax"`

	// Vmin is the minimum voltage magnitude (p.u.), 0 when unbounded.
	Vmin float64 `json:"vmin"`
}

// BusOption configures a Bus during construction.
type BusOption func(*Bus)

// WithBusType sets the electrical type. The default is PQ.
func WithBusType(t BusType) BusOption {
	return func(b *Bus) { b.Type = t }
}

// WithLoad sets the real and reactive power demand.
func WithLoad(pd, qd float64) BusOption {
	return func(b *Bus) { b.Pd, b.Qd = pd, qd }
}

// WithShunt sets the shunt conductance and susceptance.
func WithShunt(gs, bs float64) BusOption {
	return func(b *Bus) { b.Gs, b.Bs = gs, bs }
}

// WithArea sets the area number. The default is 1.
func WithArea(area int) BusOption {
	return func(b *Bus) { b.Area = area }
}

// WithZone sets the loss zone. The default is 1.
func WithZone(zone int) BusOption {
	return func(b *Bus) { b.Zone = zone }
}

// WithVoltage sets the voltage magnitude (p.u.) and angle (degrees).
// The default magnitude is 1.0 at angle 0.
func WithVoltage(vm, va float64) BusOption {
	return func(b *Bus) { b.Vm, b.Va = vm, va }
}

// WithBaseKV sets the base voltage in kV.
func WithBaseKV(kv float64) BusOption {
	return func(b *Bus) { b.BaseKV = kv }
}

// WithVoltageBounds sets the voltage magnitude bounds in p.u.
func WithVoltageBounds(vmin, vmax float64) BusOption {
	return func(b *Bus) { b.Vmin, b.Vmax = vmin, vmax }
}

// NewBus creates a bus with the given number and options applied over the
// defaults (PQ type, vm = 1.0, area = 1, zone = 1).
//
// Returns a DomainError if the bus number is not positive.
func NewBus(i int, opts ...BusOption) (Bus, error) {
	if i < 1 {
		return Bus{}, domainErr("bus_i", i, "bus number must be positive")
	}

	b := Bus{I: i, Type: BusPQ, Area: 1, Vm: 1.0, Zone: 1}
	for _, opt := range opts {
		opt(&b)
	}

	return b, nil
}

// IsPQ reports whether the bus has fixed active and reactive power.
func (b Bus) IsPQ() bool { return b.Type == BusPQ }

// IsPV reports whether the bus has fixed voltage magnitude and active power.
func (b Bus) IsPV() bool { return b.Type == BusPV }

// IsRef reports whether the bus is the voltage angle reference.
func (b Bus) IsRef() bool { return b.Type == BusRef }

// IsIsolated reports whether the bus is isolated.
func (b Bus) IsIsolated() bool { return b.Type == BusIsolated }
