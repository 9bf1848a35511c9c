// Package rawpf bridges the case model and an external raw power-flow record
// format: fixed-layout, comma-separated records grouped in sections
// (PSS/E-style), used to exchange cases with other power-system tools.
//
// The mapping between the two models is explicit and declared per field.
// Conversion from a case never drops information silently: every field with
// no raw representation is recorded as a Loss warning. Conversion to a case
// runs the result through the full validation engine before handing it out.
package rawpf

// Raw bus type codes share the case model's numbering: 1 PQ, 2 PV,
// 3 reference, 4 isolated.

// CaseID is the header record of a raw file.
type CaseID struct {
	IC     int     // change code, 0 for a base case
	SBase  float64 // system MVA base
	Rev    int     // format revision
	XfrRat int     // transformer rating units flag
	NxfRat int     // non-transformer rating units flag
	BasFrq float64 // system frequency (Hz)
}

// RawBus is one bus record.
type RawBus struct {
	I      int     // bus number
	Name   string  // bus name
	BaseKV float64 // base voltage (kV)
	IDE    int     // bus type code
	Area   int     // area number
	Zone   int     // zone number
	Owner  int     // owner number
	Vm     float64 // voltage magnitude (p.u.)
	Va     float64 // voltage angle (degrees)
	NVHi   float64 // normal voltage magnitude high limit (p.u.)
	NVLo   float64 // normal voltage magnitude low limit (p.u.)
}

// RawLoad is one load record. The three (P, Q) pairs are the constant
// power, constant current and constant admittance components.
type RawLoad struct {
	I      int    // bus number
	ID     string // load identifier
	Status int
	PL     float64 // constant power real load (MW)
	QL     float64 // constant power reactive load (MVAr)
	IP     float64 // constant current real load (MW at 1.0 p.u.)
	IQ     float64 // constant current reactive load (MVAr at 1.0 p.u.)
	YP     float64 // constant admittance real load (MW at 1.0 p.u.)
	YQ     float64 // constant admittance reactive load (MVAr at 1.0 p.u.)
}

// RawFixedShunt is one fixed shunt record.
type RawFixedShunt struct {
	I      int    // bus number
	ID     string // shunt identifier
	Status int
	GL     float64 // active component (MW at 1.0 p.u.)
	BL     float64 // reactive component (MVAr at 1.0 p.u.)
}

// RawGen is one generator record.
type RawGen struct {
	I     int    // bus number
	ID    string // machine identifier
	PG    float64
	QG    float64
	QT    float64 // Qmax
	QB    float64 // Qmin
	VS    float64 // voltage setpoint (p.u.)
	MBase float64
	Stat  int
	PT    float64 // Pmax
	PB    float64 // Pmin
}

// RawBranch is one non-transformer branch record. GI/BI and GJ/BJ are the
// line shunt admittances at the from and to ends, in p.u. on system base.
type RawBranch struct {
	I     int
	J     int
	CKT   string // circuit identifier
	R     float64
	X     float64
	B     float64
	RateA float64
	RateB float64
	RateC float64
	GI    float64
	BI    float64
	GJ    float64
	BJ    float64
	ST    int
}

// RawTransformer is one two-winding transformer record.
//
// CW selects the winding voltage units (1 = p.u. of bus base voltage,
// 2 = kV), CZ the impedance units (1 = p.u. on system base, 2 = p.u. on
// winding base, 3 = load loss in watts and impedance magnitude).
type RawTransformer struct {
	I       int
	J       int
	CKT     string
	CW      int
	CZ      int
	Stat    int
	R12     float64
	X12     float64
	SBase12 float64 // winding one-two base MVA
	WindV1  float64
	NomV1   float64
	Ang1    float64 // phase shift angle (degrees)
	RatA1   float64
	RatB1   float64
	RatC1   float64
	WindV2  float64
	NomV2   float64
}

// Network is a decoded raw file: the header record plus all record sections
// in file order.
type Network struct {
	CaseID       CaseID
	Buses        []RawBus
	Loads        []RawLoad
	FixedShunts  []RawFixedShunt
	Gens         []RawGen
	Branches     []RawBranch
	Transformers []RawTransformer
}
