package ucode

// Layout describes one parameter or return value's shape for ABI purposes:
// how many flattened field-sized slots it occupies.
type Layout struct {
	Name string
	Size int
}

// Artifact is one function's compiled unconstrained bytecode: its code, the
// labels it calls that are defined in other artifacts (Link follows them
// without modifying this list), and its parameter/return
// layout so the bridge in internal/lower knows how many inputs to pass and
// outputs to expect.
type Artifact struct {
	Label            string
	Code             []Instruction
	ParamLayout      []Layout
	ReturnLayout     []Layout
	UnresolvedLabels []string
	linked           bool
}

func (a *Artifact) totalInputSlots() int {
	n := 0
	for _, l := range a.ParamLayout {
		n += l.Size
	}
	return n
}

func (a *Artifact) totalOutputSlots() int {
	n := 0
	for _, l := range a.ReturnLayout {
		n += l.Size
	}
	return n
}
