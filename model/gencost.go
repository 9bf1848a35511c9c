package model

import "fmt"

// CostModel is the cost curve model of a GenCost record.
type CostModel uint8

const (
	CostPWLinear   CostModel = 1 // piecewise linear cost curve
	CostPolynomial CostModel = 2 // polynomial cost curve
)

// Token returns the fixed uppercase token used in tabular text.
func (m CostModel) Token() string {
	switch m {
	case CostPWLinear:
		return "PWLINEAR"
	case CostPolynomial:
		return "POLYNOMIAL"
	default:
		return "UNKNOWN"
	}
}

func (m CostModel) String() string { return m.Token() }

// ParseCostModel maps a tabular token back to its CostModel.
func ParseCostModel(token string) (CostModel, error) {
	switch token {
	case "PWLINEAR":
		return CostPWLinear, nil
	case "POLYNOMIAL":
		return CostPolynomial, nil
	default:
		return 0, fmt.Errorf("unknown cost model token %q", token)
	}
}

// Valid reports whether m is a defined cost model.
func (m CostModel) Valid() bool {
	return m == CostPWLinear || m == CostPolynomial
}

// MarshalJSON encodes the cost model as its tabular token.
func (m CostModel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Token() + `"`), nil
}

// UnmarshalJSON decodes a cost model from its tabular token.
func (m *CostModel) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("cost model must be a string token, got %s", data)
	}
	parsed, err := ParseCostModel(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*m = parsed

	return nil
}

// GenCost is the economic cost curve of one generator.
//
// Gen is the 1-based ordinal of the generator priced, in gen table order.
// For a polynomial model Values holds N coefficients, highest order first.
// For a piecewise linear model Values holds N (p, f) breakpoints flattened to
// 2N values.
type GenCost struct {
	// Gen is the 1-based ordinal of the generator priced.
	Gen int `json:"gen"`

	// Model is the cost curve model.
	Model CostModel `json:"model"`

	// Startup is the startup cost (US dollars).
	Startup float64 `json:"startup"`

	// Shutdown is the shutdown cost (US dollars).
	Shutdown float64 `json:"shutdown"`

	// N is the declared number of coefficients or breakpoints.
	N int `json:"n"`

	// Values is the coefficient list (N values) or flattened breakpoint list
	// (2N values), depending on Model.
	Values []float64 `json:"values"`
}

// GenCostOption configures a GenCost during construction.
type GenCostOption func(*GenCost)

// WithStartupShutdown sets the startup and shutdown costs.
func WithStartupShutdown(startup, shutdown float64) GenCostOption {
	return func(c *GenCost) { c.Startup, c.Shutdown = startup, shutdown }
}

// NewPolynomialCost creates a polynomial cost record for the generator at the
// given 1-based ordinal, with coefficients ordered highest first.
//
// Returns a DomainError if the ordinal is not positive or no coefficients are
// given.
func NewPolynomialCost(gen int, coeffs []float64, opts ...GenCostOption) (GenCost, error) {
	if gen < 1 {
		return GenCost{}, domainErr("gen", gen, "generator ordinal must be positive")
	}
	if len(coeffs) == 0 {
		return GenCost{}, domainErr("n", 0, "polynomial cost needs at least one coefficient")
	}

	c := GenCost{
		Gen:    gen,
		Model:  CostPolynomial,
		N:      len(coeffs),
		Values: append([]float64(nil), coeffs...),
	}
	for _, opt := range opts {
		opt(&c)
	}

	return c, nil
}

// NewPWLinearCost creates a piecewise linear cost record for the generator at
// the given 1-based ordinal. The points slice holds (p, f) breakpoints
// flattened pairwise and must have even, nonzero length.
//
// Returns a DomainError if the ordinal is not positive or the point list
// length is not a positive even number.
func NewPWLinearCost(gen int, points []float64, opts ...GenCostOption) (GenCost, error) {
	if gen < 1 {
		return GenCost{}, domainErr("gen", gen, "generator ordinal must be positive")
	}
	if len(points) == 0 || len(points)%2 != 0 {
		return GenCost{}, domainErr("values", len(points), "piecewise cost needs a positive even number of values")
	}

	c := GenCost{
		Gen:    gen,
		Model:  CostPWLinear,
		N:      len(points) / 2,
		Values: append([]float64(nil), points...),
	}
	for _, opt := range opts {
		opt(&c)
	}

	return c, nil
}

// IsPolynomial reports whether the record uses a polynomial cost curve.
func (c GenCost) IsPolynomial() bool { return c.Model == CostPolynomial }

// IsPWLinear reports whether the record uses a piecewise linear cost curve.
func (c GenCost) IsPWLinear() bool { return c.Model == CostPWLinear }

// ValueCount returns the number of values Model and N require: N coefficients
// for a polynomial curve, 2N flattened breakpoints for a piecewise one.
func (c GenCost) ValueCount() int {
	if c.Model == CostPWLinear {
		return 2 * c.N
	}

	return c.N
}
