package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "modulize.dev/pkg/modulize/internal/model"
)

func parse(t *testing.T, src string) *m.Document {
	t.Helper()

	doc, err := NewLocalJSFileAdapter().Parse(context.Background(), m.Path("test.js"), []byte(src))
	require.NoError(t, err)

	return doc
}

func TestParse_AssignmentStatement(t *testing.T) {
	doc := parse(t, "Root.App.start = function (a, b) {\n    return a + b;\n};\n")

	require.Len(t, doc.Statements, 1)
	stmt := doc.Statements[0]

	require.Equal(t, m.StmtAssignment, stmt.Kind)
	assert.Equal(t, m.ExprMember, stmt.Assign.Target.Kind)
	assert.Equal(t, "start", stmt.Assign.Target.Property)
	assert.Equal(t, m.ExprFunction, stmt.Assign.Value.Kind)
	assert.Equal(t, "(a, b)", stmt.Assign.Value.Params)
	assert.Equal(t, "{\n    return a + b;\n}", stmt.Assign.Value.Body)
}

func TestParse_DeclarationStatement(t *testing.T) {
	doc := parse(t, "const Util = Root.Util;\n")

	require.Len(t, doc.Statements, 1)
	stmt := doc.Statements[0]

	require.Equal(t, m.StmtDeclaration, stmt.Kind)
	assert.Equal(t, "const", stmt.Decl.Keyword)
	assert.Equal(t, "Util", stmt.Decl.Name)
	require.NotNil(t, stmt.Decl.Value)
	assert.Equal(t, m.ExprMember, stmt.Decl.Value.Kind)
}

func TestParse_MultiDeclaratorStaysOther(t *testing.T) {
	doc := parse(t, "var a = 1, b = 2;\n")

	require.Len(t, doc.Statements, 1)
	assert.Equal(t, m.StmtOther, doc.Statements[0].Kind)
}

func TestParse_ObjectProperties(t *testing.T) {
	doc := parse(t, `Root.NS = {
    plain: 1,
    'quoted': 2,
    meth(x) {
        return x;
    },
    short,
    [computed]: 3,
};
`)

	require.Len(t, doc.Statements, 1)
	value := doc.Statements[0].Assign.Value
	require.Equal(t, m.ExprObject, value.Kind)
	require.Len(t, value.Props, 5)

	assert.Equal(t, "plain", value.Props[0].Name)
	assert.Equal(t, "quoted", value.Props[1].Name)

	meth := value.Props[2]
	assert.True(t, meth.Method)
	assert.Equal(t, "meth", meth.Name)
	assert.Equal(t, "(x)", meth.Value.Params)

	short := value.Props[3]
	assert.Equal(t, "short", short.Name)
	assert.Equal(t, m.ExprIdentifier, short.Value.Kind)

	assert.True(t, value.Props[4].Computed)
}

func TestParse_ScopeWrapperUnwrapped(t *testing.T) {
	variants := []string{
		"(function () {\n    'use strict';\n    Root.Foo = 1;\n}());\n",
		"(function () {\n    \"use strict\";\n    Root.Foo = 1;\n})();\n",
	}

	for _, src := range variants {
		doc := parse(t, src)

		require.Len(t, doc.Statements, 1, "source: %s", src)
		assert.Equal(t, m.StmtAssignment, doc.Statements[0].Kind)
		assert.Equal(t, "Root.Foo = 1;", doc.Statements[0].Text)
	}
}

func TestParse_WrapperHeaderComment(t *testing.T) {
	doc := parse(t, `/** @license MIT. Keep this notice. */
(function () {
    'use strict';
    Root.Foo = 1;
}());
`)

	assert.Equal(t, "/** @license MIT. Keep this notice. */", doc.Header)
	require.Len(t, doc.Statements, 1)
	assert.Equal(t, "Root.Foo = 1;", doc.Statements[0].Text)
}

func TestParse_WrapperHeaderSkipsDirectives(t *testing.T) {
	doc := parse(t, `/// <reference path="./x.js" />
(function () {
    'use strict';
    Root.Foo = 1;
}());
`)

	assert.Equal(t, "", doc.Header)
}

func TestParse_WrapperWithArgumentsKept(t *testing.T) {
	doc := parse(t, "(function (g) {\n    g.Foo = 1;\n}(window));\n")

	require.Len(t, doc.Statements, 1)
	assert.Equal(t, m.StmtOther, doc.Statements[0].Kind)
	assert.Contains(t, doc.Statements[0].Text, "(function (g)")
}

func TestParse_LeadingComments(t *testing.T) {
	doc := parse(t, `/** Helpers. @namespace */
Root.Util = {};

// detached

Root.other = 1;

/// <reference path="./x.js" />
Root.linked = 2;
`)

	require.Len(t, doc.Statements, 3)
	assert.Equal(t, "/** Helpers. @namespace */", doc.Statements[0].Comment)

	// A blank line between comment and statement detaches it.
	assert.Equal(t, "", doc.Statements[1].Comment)

	// Triple-slash directives never count as leading comments.
	assert.Equal(t, "", doc.Statements[2].Comment)
}

func TestParse_ReferencesSkipAssignmentTarget(t *testing.T) {
	doc := parse(t, "Root.App.total = Root.Util.sum(Root.Util.base, other.thing);\n")

	require.Len(t, doc.Statements, 1)
	refs := doc.Statements[0].Refs

	texts := make([]string, 0, len(refs))
	for _, ref := range refs {
		texts = append(texts, ref.Expr.Text)
	}

	assert.NotContains(t, texts, "Root.App.total")
	assert.Contains(t, texts, "Root.Util.sum")
	assert.Contains(t, texts, "Root.Util.base")
	assert.Contains(t, texts, "other.thing")
}

func TestParse_ComputedChainsDescended(t *testing.T) {
	doc := parse(t, "Root.pick = Root.Table[Root.Key.current];\n")

	require.Len(t, doc.Statements, 1)

	texts := make([]string, 0, len(doc.Statements[0].Refs))
	for _, ref := range doc.Statements[0].Refs {
		texts = append(texts, ref.Expr.Text)
	}

	// The computed access itself is no static chain, its parts are.
	assert.Contains(t, texts, "Root.Key.current")
}

func TestParse_ReferenceSpansAreStatementRelative(t *testing.T) {
	src := "Root.a = Root.Util.x;\nRoot.b = Root.Util.y;\n"
	doc := parse(t, src)

	require.Len(t, doc.Statements, 2)

	for _, stmt := range doc.Statements {
		require.Len(t, stmt.Refs, 1)
		ref := stmt.Refs[0]
		assert.Equal(t, ref.Expr.Text, stmt.Text[ref.Start:ref.End])
	}
}
