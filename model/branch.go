package model

// Branch is a transmission line, cable, or two-winding transformer connecting
// two buses.
//
// Impedances are in per-unit, ratings in MVA with 0 meaning unbounded, angles
// in degrees. A zero tap ratio marks a plain line; a nonzero tap marks a
// transformer.
type Branch struct {
	// From is the "from" bus number.
	From int `json:"f_bus"`

	// To is the "to" bus number.
	To int `json:"t_bus"`

	// R is the series resistance (p.u.).
	R float64 `json:"r"`

	// X is the series reactance (p.u.).
	X float64 `json:"x"`

	// B is the total line charging susceptance (p.u.).
	B float64 `json:"b"`

	// RateA is the long term MVA rating, 0 when unbounded.
	RateA float64 `json:"rate_a"`

	// RateB is the short term MVA rating, 0 when unbounded.
	RateB float64 `json:"rate_b"`

	// RateC is the emergency MVA rating, 0 when unbounded.
	RateC float64 `json:"rate_c"`

	// Tap is the transformer off-nominal tap ratio, 0 for a line.
	Tap float64 `json:"tap"`

	// Shift is the transformer phase shift angle (degrees).
	Shift float64 `json:"shift"`

	// Status is InService (1) or OutOfService (0).
	Status int `json:"status"`

	// AngMin is the minimum angle difference angle(Vf) - angle(Vt) in
	// degrees. AngMin and AngMax both zero mean no declared bound.
	AngMin float64 `json:"angmin"`

	// AngMax is the maximum angle difference angle(Vf) - angle(Vt) in
	// degrees.
	AngMax float64 `json:"angmax"`
}

// BranchOption configures a Branch during construction.
type BranchOption func(*Branch)

// WithImpedance sets the series resistance and reactance and the line
// charging susceptance, all in p.u.
func WithImpedance(r, x, b float64) BranchOption {
	return func(br *Branch) { br.R, br.X, br.B = r, x, b }
}

// WithRatings sets the three thermal MVA ratings (long term, short term,
// emergency). Zero means unbounded.
func WithRatings(a, b, c float64) BranchOption {
	return func(br *Branch) { br.RateA, br.RateB, br.RateC = a, b, c }
}

// WithTransformer marks the branch as a transformer with the given
// off-nominal tap ratio and phase shift angle in degrees.
func WithTransformer(tap, shift float64) BranchOption {
	return func(br *Branch) { br.Tap, br.Shift = tap, shift }
}

// WithBranchStatus sets the branch status. The default is InService.
func WithBranchStatus(status int) BranchOption {
	return func(br *Branch) { br.Status = status }
}

// WithAngleBounds sets the angle difference bounds in degrees.
func WithAngleBounds(angmin, angmax float64) BranchOption {
	return func(br *Branch) { br.AngMin, br.AngMax = angmin, angmax }
}

// NewBranch creates a branch between the given bus numbers with options
// applied over the defaults (in service, no ratings, no tap).
//
// Returns a DomainError if either bus number is not positive.
func NewBranch(from, to int, opts ...BranchOption) (Branch, error) {
	if from < 1 {
		return Branch{}, domainErr("f_bus", from, "bus number must be positive")
	}
	if to < 1 {
		return Branch{}, domainErr("t_bus", to, "bus number must be positive")
	}

	br := Branch{From: from, To: to, Status: InService}
	for _, opt := range opts {
		opt(&br)
	}

	return br, nil
}

// IsOn reports whether the branch is in service.
func (br Branch) IsOn() bool { return br.Status != OutOfService }

// IsOff reports whether the branch is out of service.
func (br Branch) IsOff() bool { return br.Status == OutOfService }

// IsTransformer reports whether the branch models a transformer.
func (br Branch) IsTransformer() bool { return br.Tap != 0 }
