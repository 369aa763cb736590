package ucode

import "fmt"

// Catalog resolves a function label to its pre-built unconstrained-code
// artifact. It is supplied to the lowering pass as an external input (spec
// §4.1's "pre-built unconstrained-code catalog") — this package does not
// build artifacts from source, only looks them up and links them.
type Catalog interface {
	Resolve(label string) (*Artifact, bool)
}

// MapCatalog is the reference Catalog: a flat label-to-artifact table.
type MapCatalog map[string]*Artifact

func (c MapCatalog) Resolve(label string) (*Artifact, bool) {
	a, ok := c[label]
	return a, ok
}

// Linked is the result of resolving and linking one call site's artifact:
// the entry point plus every transitively-called artifact appended after
// it, each call-label operand rewritten to the offset its callee's code now
// starts at.
type Linked struct {
	Entry *Artifact
	Code  []Instruction
}

// Link resolves entryLabel and repeatedly pulls unresolved call labels off
// already-linked code, appending and relinking each newly discovered
// artifact, until no unresolved labels remain — the fixed-point loop spec
// §4.5 / §9 describes. A label with no registered artifact anywhere in the
// catalog is a fatal internal error, not a silent no-op.
func Link(catalog Catalog, entryLabel string) (*Linked, error) {
	entry, ok := catalog.Resolve(entryLabel)
	if !ok {
		return nil, fmt.Errorf("ucode: no artifact registered for label %q", entryLabel)
	}

	linked := &Linked{Entry: entry}
	offsets := map[string]int{entryLabel: 0}
	code := append([]Instruction{}, entry.Code...)
	pending := append([]string{}, entry.UnresolvedLabels...)
	done := map[string]bool{entryLabel: true}

	for len(pending) > 0 {
		label := pending[0]
		pending = pending[1:]
		if done[label] {
			continue
		}
		done[label] = true

		artifact, ok := catalog.Resolve(label)
		if !ok {
			return nil, fmt.Errorf("ucode: unresolved call label %q has no linked definition", label)
		}

		offsets[label] = len(code)
		code = append(code, artifact.Code...)
		for _, next := range artifact.UnresolvedLabels {
			if !done[next] {
				pending = append(pending, next)
			}
		}
	}

	for i, inst := range code {
		if inst.Op == OpCall {
			off, ok := offsets[inst.Label]
			if !ok {
				return nil, fmt.Errorf("ucode: call to %q never resolved during linking", inst.Label)
			}
			code[i].Operand = int64(off)
		}
	}

	linked.Code = code
	return linked, nil
}

// Finish serializes a linked artifact into an opaque bytecode blob. The
// VM's interpreter and the blob's binary format are outside this pass's
// scope; the reference encoding exists only so callers have something
// concrete to hash/compare in tests.
func (l *Linked) Finish() []byte {
	blob := make([]byte, 0, len(l.Code)*10)
	for _, inst := range l.Code {
		blob = append(blob, byte(inst.Op))
		blob = appendInt64(blob, inst.Operand)
	}
	return blob
}

func appendInt64(b []byte, v int64) []byte {
	for i := 0; i < 8; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}
