// Package ast defines the tagged tree produced by internal/parser: a
// Program is an ordered list of Stmt nodes, Stmt and Expr are small closed
// interfaces implemented by a fixed set of concrete node types. Nodes are
// created once by the parser and never mutated afterward (SPEC_FULL.md §3
// Lifecycle); every later stage treats a Program as a value.
package ast

import "fmt"

// Position locates a token in source, 1-based line/column.
type Position struct {
	Line int
	Col  int
}

// Node is implemented by every AST node, statement or expression.
type Node interface {
	Pos() Position
	String() string
	node()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmt()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	expr()
}

// Program is the root of a parsed source file.
type Program struct {
	Statements []Stmt
}

func (p *Program) String() string {
	s := ""
	for _, st := range p.Statements {
		s += st.String() + "\n"
	}
	return s
}

// --- Statements ---

// VarDecl is `var name := value;` (or `var name = value;`).
type VarDecl struct {
	Position Position
	Name     string
	Value    Expr
}

func (n *VarDecl) Pos() Position  { return n.Position }
func (n *VarDecl) node()         {}
func (n *VarDecl) stmt()         {}
func (n *VarDecl) String() string { return fmt.Sprintf("var %s := %s;", n.Name, n.Value) }

// Assignment is `name := value;`.
type Assignment struct {
	Position Position
	Name     string
	Value    Expr
}

func (n *Assignment) Pos() Position  { return n.Position }
func (n *Assignment) node()         {}
func (n *Assignment) stmt()         {}
func (n *Assignment) String() string { return fmt.Sprintf("%s := %s;", n.Name, n.Value) }

// WhileStmt is `while(cond){ body }`.
type WhileStmt struct {
	Position  Position
	Condition Expr
	Body      []Stmt
}

func (n *WhileStmt) Pos() Position { return n.Position }
func (n *WhileStmt) node()        {}
func (n *WhileStmt) stmt()        {}
func (n *WhileStmt) String() string {
	s := fmt.Sprintf("while (%s) {\n", n.Condition)
	for _, st := range n.Body {
		s += "  " + st.String() + "\n"
	}
	return s + "}"
}

// ForStmt is `for(init; cond; update){ body }`, sugar for
// `init; while(cond){ body; update }` — desugared by internal/ssa, not here
// (SPEC_FULL.md §4.3), so the AST can still print source-faithful for loops.
type ForStmt struct {
	Position  Position
	Init      Stmt
	Condition Expr
	Update    Stmt
	Body      []Stmt
}

func (n *ForStmt) Pos() Position { return n.Position }
func (n *ForStmt) node()        {}
func (n *ForStmt) stmt()        {}
func (n *ForStmt) String() string {
	s := fmt.Sprintf("for (%s; %s; %s) {\n", n.Init, n.Condition, n.Update)
	for _, st := range n.Body {
		s += "  " + st.String() + "\n"
	}
	return s + "}"
}

// IfStmt is `if(cond){ then } else { els }`; Else may be nil.
type IfStmt struct {
	Position  Position
	Condition Expr
	Then      []Stmt
	Else      []Stmt
}

func (n *IfStmt) Pos() Position { return n.Position }
func (n *IfStmt) node()        {}
func (n *IfStmt) stmt()        {}
func (n *IfStmt) String() string {
	s := fmt.Sprintf("if (%s) {\n", n.Condition)
	for _, st := range n.Then {
		s += "  " + st.String() + "\n"
	}
	s += "}"
	if n.Else != nil {
		s += " else {\n"
		for _, st := range n.Else {
			s += "  " + st.String() + "\n"
		}
		s += "}"
	}
	return s
}

// AssertStmt is `assert cond;`.
type AssertStmt struct {
	Position  Position
	Condition Expr
}

func (n *AssertStmt) Pos() Position  { return n.Position }
func (n *AssertStmt) node()         {}
func (n *AssertStmt) stmt()         {}
func (n *AssertStmt) String() string { return fmt.Sprintf("assert %s;", n.Condition) }

// --- Expressions ---

// IntLiteral is an integer or decimal numeric literal. HasFraction is set
// for decimal literals the scanner accepted but which the SSA builder must
// reject (SPEC_FULL.md §4.1): no floating-point reasoning reaches SMT.
type IntLiteral struct {
	Position    Position
	Value       int64
	HasFraction bool
	Raw         string
}

func (n *IntLiteral) Pos() Position  { return n.Position }
func (n *IntLiteral) node()         {}
func (n *IntLiteral) expr()         {}
func (n *IntLiteral) String() string { return n.Raw }

// VarRef is a reference to a variable by name.
type VarRef struct {
	Position Position
	Name     string
}

func (n *VarRef) Pos() Position  { return n.Position }
func (n *VarRef) node()         {}
func (n *VarRef) expr()         {}
func (n *VarRef) String() string { return n.Name }

// UnaryExpr is `-e` or `not e`.
type UnaryExpr struct {
	Position Position
	Op       string // "-" or "not"
	Operand  Expr
}

func (n *UnaryExpr) Pos() Position  { return n.Position }
func (n *UnaryExpr) node()         {}
func (n *UnaryExpr) expr()         {}
func (n *UnaryExpr) String() string { return fmt.Sprintf("(%s %s)", n.Op, n.Operand) }

// BinaryExpr is any arithmetic, comparison, or boolean binary operator.
type BinaryExpr struct {
	Position Position
	Op       string
	Left     Expr
	Right    Expr
}

func (n *BinaryExpr) Pos() Position { return n.Position }
func (n *BinaryExpr) node()        {}
func (n *BinaryExpr) expr()        {}
func (n *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}
