package model

// Machine and branch status values.
const (
	OutOfService = 0
	InService    = 1
)

// Gen is a generator (or dispatchable load) attached to a bus.
//
// A Gen stores the bus number it is attached to, not a reference; resolution
// happens through the case's id index. A bus may host any number of
// generators.
type Gen struct {
	// Bus is the number of the bus the machine is attached to.
	Bus int `json:"bus"`

	// Pg is the real power output (MW).
	Pg float64 `json:"pg"`

	// Qg is the reactive power output (MVAr).
	Qg float64 `json:"qg"`

	// Qmax is the maximum reactive power output (MVAr), 0 when unbounded.
	Qmax float64 `json:"qmax"`

	// Qmin is the minimum reactive power output (MVAr), 0 when unbounded.
	Qmin float64 `json:"qmin"`

	// Vg is the voltage magnitude setpoint (p.u.).
	Vg float64 `json:"vg"`

	// MBase is the total MVA base of the machine; 0 means the system base.
	MBase float64 `json:"mbase"`

	// Status is InService (1) or OutOfService (0).
	Status int `json:"status"`

	// Pmax is the maximum real power output (MW), 0 when unbounded.
	Pmax float64 `json:"pmax"`

	// Pmin is the minimum real power output (MW), 0 when unbounded.
	Pmin float64 `json:"pmin"`
}

// GenOption configures a Gen during construction.
type GenOption func(*Gen)

// WithOutput sets the real and reactive power output.
func WithOutput(pg, qg float64) GenOption {
	return func(g *Gen) { g.Pg, g.Qg = pg, qg }
}

// WithRealBounds sets the real power output bounds.
func WithRealBounds(pmin, pmax float64) GenOption {
	return func(g *Gen) { g.Pmin, g.Pmax = pmin, pmax }
}

// WithReactiveBounds sets the reactive power output bounds.
func WithReactiveBounds(qmin, qmax float64) GenOption {
	return func(g *Gen) { g.Qmin, g.Qmax = qmin, qmax }
}

// WithSetpoint sets the voltage magnitude setpoint. The default is 1.0.
func WithSetpoint(vg float64) GenOption {
	return func(g *Gen) { g.Vg = vg }
}

// WithMBase sets the machine MVA base.
func WithMBase(mbase float64) GenOption {
	return func(g *Gen) { g.MBase = mbase }
}

// WithStatus sets the machine status. The default is InService.
func WithStatus(status int) GenOption {
	return func(g *Gen) { g.Status = status }
}

// NewGen creates a generator attached to the given bus number with options
// applied over the defaults (vg = 1.0, in service).
//
// Returns a DomainError if the bus number is not positive.
func NewGen(bus int, opts ...GenOption) (Gen, error) {
	if bus < 1 {
		return Gen{}, domainErr("bus", bus, "bus number must be positive")
	}

	g := Gen{Bus: bus, Vg: 1.0, Status: InService}
	for _, opt := range opts {
		opt(&g)
	}

	return g, nil
}

// IsOn reports whether the machine is in service.
func (g Gen) IsOn() bool { return g.Status != OutOfService }

// IsOff reports whether the machine is out of service.
func (g Gen) IsOff() bool { return g.Status == OutOfService }

// IsLoad reports whether the record models a dispatchable load.
func (g Gen) IsLoad() bool { return g.Pmin < 0 && g.Pmax == 0 }
