package ssasyntax

import "github.com/alecthomas/participle/v2/lexer"

// Program is the parsed form of a whole textual SSA file: zero or more
// functions, in declaration order. convert.go turns this into an
// internal/ssa.Program. This grammar is deliberately kept in lockstep with
// internal/ssa.Printer's output so print(parse(text)) round-trips.
type Program struct {
	Functions []*Function `@@*`
}

type Function struct {
	Unconstrained bool           `[ @"unconstrained" ]`
	Name          string         `"fn" @Ident "("`
	Params        []*Param       `[ @@ { "," @@ } ] ")"`
	Instructions  []*Instruction `"{" @@*`
	Close         string         `"}"`
}

type Param struct {
	Name string `@(ValueRef | Ident) ":"`
	Type *Type  `@@`
}

// Type grammar covers the three shapes spec.md §4.2 builds Values from:
// Field/uN/iN scalars, fixed-length (possibly tupled) arrays, and slices.
type Type struct {
	Array *ArrayType `  @@`
	Slice *SliceType `| @@`
	Name  string     `| @Ident`
}

type ArrayType struct {
	Elements []*Type `"[" @@ { "," @@ }`
	Length   string  `";" @Integer "]"`
}

type SliceType struct {
	Elements []*Type `"[" @@ { "," @@ } "]"`
}

// Instruction is every line of a function body: an optional "vN[, vM...] ="
// result binding followed by one of the operation forms, matched by
// exhaustive alternation (never subclassing — see internal/lower/driver.go
// for the same dispatch idiom on the Go-struct side).
type Instruction struct {
	// Pos is populated automatically by participle (a field literally named
	// Pos of type lexer.Position needs no struct tag) and is how a lowering
	// error's call-stack frame gets a source location back to the diagnostic
	// the CLI or LSP renders.
	Pos       lexer.Position
	Results   []string     `[ @ValueRef { "," @ValueRef } "=" ]`
	Const     *ConstOp     `(   @@`
	Literal   *LiteralOp   `  | @@`
	Binary    *BinaryOp    `  | @@`
	Constrain *ConstrainOp `  | @@`
	Cast      *CastOp      `  | @@`
	Not       *NotOp       `  | @@`
	Truncate  *TruncateOp  `  | @@`
	Enable    *EnableOp    `  | @@`
	ArrayGet  *ArrayGetOp  `  | @@`
	ArraySet  *ArraySetOp  `  | @@`
	Allocate  *AllocateOp  `  | @@`
	Load      *LoadOp      `  | @@`
	Store     *StoreOp     `  | @@`
	Call      *CallOp      `  | @@`
	Return    *ReturnOp    `  | @@ )`
}

type ConstOp struct {
	Type    *Type  `"const" @@`
	Literal string `@Integer`
}

type LiteralOp struct {
	Type     *Type    `"literal" @@ "["`
	Elements []string `[ @ValueRef { "," @ValueRef } ] "]"`
}

type BinaryOp struct {
	Op  string `"binary" @Ident`
	LHS string `@ValueRef ","`
	RHS string `@ValueRef`
}

type ConstrainOp struct {
	LHS string `"constrain" @ValueRef ","`
	RHS string `@ValueRef ","`
	Msg string `@String`
}

type CastOp struct {
	Value string `"cast" @ValueRef "as"`
	To    *Type  `@@`
}

type NotOp struct {
	Value string `"not" @ValueRef`
}

type TruncateOp struct {
	Value      string `"truncate" @ValueRef "to"`
	BitSize    string `@Integer "bits" "("`
	MaxBitSize string `"max" @Integer ")"`
}

type EnableOp struct {
	Condition string `"enable_side_effects" @ValueRef`
}

type ArrayGetOp struct {
	Array string `"array_get" @ValueRef ","`
	Index string `@ValueRef`
}

type ArraySetOp struct {
	Array string `"array_set" @ValueRef ","`
	Index string `@ValueRef ","`
	Value string `@ValueRef`
}

type AllocateOp struct {
	Marker bool `@"allocate"`
}

type LoadOp struct {
	Address string `"load" @ValueRef`
}

type StoreOp struct {
	Address string `"store" @ValueRef ","`
	Value   string `@ValueRef`
}

// CallOp covers all three CallKind shapes (spec §4.1's Call dispatch row):
// "call unconstrained", "call intrinsic", and "call direct", each naming a
// callee label/intrinsic name, a flat argument list, and (since a call may
// produce more than one result) result types following "->".
type CallOp struct {
	Kind    string   `"call" @("unconstrained" | "intrinsic" | "direct")`
	Target  string   `@Ident "("`
	Args    []string `[ @ValueRef { "," @ValueRef } ] ")"`
	Results []*Type  `[ "->" @@ { "," @@ } ]`
}

type ReturnOp struct {
	Values []string `"return" [ @ValueRef { "," @ValueRef } ]`
}
