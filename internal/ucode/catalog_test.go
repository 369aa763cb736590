package ucode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkSingleArtifactNoCalls(t *testing.T) {
	catalog := MapCatalog{
		"main": {Label: "main", Code: []Instruction{{Op: OpConstant, Operand: 1}, {Op: OpReturn}}},
	}

	linked, err := Link(catalog, "main")
	require.NoError(t, err)
	assert.Equal(t, catalog["main"], linked.Entry)
	assert.Equal(t, catalog["main"].Code, linked.Code)
}

// TestLinkFixedPointResolvesTransitiveCalls exercises the fixed-point loop:
// main calls helper, helper calls leaf; both must be pulled in and every
// OpCall operand rewritten to its callee's final code offset.
func TestLinkFixedPointResolvesTransitiveCalls(t *testing.T) {
	catalog := MapCatalog{
		"main": {
			Label:            "main",
			Code:             []Instruction{{Op: OpCall, Label: "helper"}, {Op: OpReturn}},
			UnresolvedLabels: []string{"helper"},
		},
		"helper": {
			Label:            "helper",
			Code:             []Instruction{{Op: OpCall, Label: "leaf"}, {Op: OpReturn}},
			UnresolvedLabels: []string{"leaf"},
		},
		"leaf": {
			Label: "leaf",
			Code:  []Instruction{{Op: OpConstant, Operand: 42}, {Op: OpReturn}},
		},
	}

	linked, err := Link(catalog, "main")
	require.NoError(t, err)
	require.Len(t, linked.Code, 6)

	// main's OpCall (offset 0) now points at helper's start (offset 2).
	assert.Equal(t, int64(2), linked.Code[0].Operand)
	// helper's OpCall (offset 2) now points at leaf's start (offset 4).
	assert.Equal(t, int64(4), linked.Code[2].Operand)
}

func TestLinkFailsOnUnknownEntryLabel(t *testing.T) {
	_, err := Link(MapCatalog{}, "missing")
	assert.Error(t, err)
}

// TestLinkFailsOnUnresolvedCallLabel is the "fatal internal error, not a
// silent no-op" requirement for a label with no registered artifact
// anywhere in the catalog.
func TestLinkFailsOnUnresolvedCallLabel(t *testing.T) {
	catalog := MapCatalog{
		"main": {
			Label:            "main",
			Code:             []Instruction{{Op: OpCall, Label: "ghost"}, {Op: OpReturn}},
			UnresolvedLabels: []string{"ghost"},
		},
	}

	_, err := Link(catalog, "main")
	assert.Error(t, err)
}

func TestLinkedFinishProducesStableLength(t *testing.T) {
	catalog := MapCatalog{
		"main": {Label: "main", Code: []Instruction{{Op: OpConstant, Operand: 7}, {Op: OpReturn}}},
	}
	linked, err := Link(catalog, "main")
	require.NoError(t, err)

	blob := linked.Finish()
	assert.Len(t, blob, len(linked.Code)*9)
}

func TestDiamondDependencyLinkedOnce(t *testing.T) {
	// main calls both a and b; both call shared. shared must appear exactly
	// once in the linked code despite being reachable two ways.
	catalog := MapCatalog{
		"main": {
			Label:            "main",
			Code:             []Instruction{{Op: OpCall, Label: "a"}, {Op: OpCall, Label: "b"}, {Op: OpReturn}},
			UnresolvedLabels: []string{"a", "b"},
		},
		"a": {
			Label:            "a",
			Code:             []Instruction{{Op: OpCall, Label: "shared"}},
			UnresolvedLabels: []string{"shared"},
		},
		"b": {
			Label:            "b",
			Code:             []Instruction{{Op: OpCall, Label: "shared"}},
			UnresolvedLabels: []string{"shared"},
		},
		"shared": {
			Label: "shared",
			Code:  []Instruction{{Op: OpReturn}},
		},
	}

	linked, err := Link(catalog, "main")
	require.NoError(t, err)
	// main(3) + a(1) + b(1) + shared(1) = 6, not 7 (shared appended twice).
	assert.Len(t, linked.Code, 6)
}
