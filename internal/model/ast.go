// Package model defines the data structures for namespace-to-module conversion.
package model

// ExprKind discriminates the expression shapes the engine cares about.
// Anything else is carried as ExprOther and re-serialized verbatim.
type ExprKind int

const (
	// ExprIdentifier is a bare identifier reference.
	ExprIdentifier ExprKind = iota
	// ExprMember is a property access chain link (a.b or a[b]).
	ExprMember
	// ExprObject is an object literal.
	ExprObject
	// ExprFunction is a function expression (function(){} or a method shorthand).
	ExprFunction
	// ExprArrow is an arrow function expression.
	ExprArrow
	// ExprCall is a call expression.
	ExprCall
	// ExprOther is any expression the engine treats as opaque text.
	ExprOther
)

// Expr is a parsed expression. Text always holds the exact source slice so
// untransformed subtrees round-trip unchanged. Start/End are byte offsets
// relative to the enclosing statement's Text.
type Expr struct {
	Kind        ExprKind
	Text        string
	Start       int
	End         int
	Name        string // identifier name
	Object      *Expr  // member: the inner expression
	Property    string // member: static property name, "" when computed
	Computed    bool   // member: true for subscript access
	Props       []Property
	Params      string // function/arrow: parameter list text, parentheses included
	ParamsStart int    // statement-relative start of Params
	Body        string // function: body block text, braces included
}

// Property is one own property of an object literal.
type Property struct {
	Name     string
	Value    *Expr
	Method   bool // method shorthand (name(){})
	Computed bool // computed key; never exportable
	Comment  string
}

// StatementKind classifies a top-level statement.
type StatementKind int

const (
	// StmtAssignment is an expression statement whose expression is a
	// plain assignment.
	StmtAssignment StatementKind = iota
	// StmtDeclaration is a single-declarator const/let/var declaration.
	StmtDeclaration
	// StmtOther is any other statement, carried as opaque text.
	StmtOther
)

// Statement is one top-level statement of a document.
type Statement struct {
	Kind    StatementKind
	Text    string
	Comment string // leading comment block, "" when absent
	Assign  *Assignment
	Decl    *Declaration
	Refs    []Reference
}

// Assignment is the structural view of an assignment statement.
type Assignment struct {
	Target *Expr
	Value  *Expr
}

// Declaration is the structural view of a single-name declaration.
type Declaration struct {
	Keyword string // const, let or var
	Name    string
	Value   *Expr // nil when uninitialized
}

// Reference is an outermost static member chain occurring inside a
// statement, with its span relative to Statement.Text. The assignment
// target of the statement itself is never collected.
type Reference struct {
	Expr  *Expr
	Start int
	End   int
}
