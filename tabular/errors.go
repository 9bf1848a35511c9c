package tabular

import "fmt"

// DecodeError aggregates every cell error found while decoding one or more
// tables, so a caller gets the full diagnostic set from a single pass.
type DecodeError struct {
	Cells []CellError
}

func (e *DecodeError) Error() string {
	if len(e.Cells) == 1 {
		return "tabular decode failed: " + e.Cells[0].Error()
	}

	return fmt.Sprintf("tabular decode failed: %d bad cells (first: %s)", len(e.Cells), e.Cells[0].Error())
}
