package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "modulize.dev/pkg/modulize/internal/model"
)

func fixtureDocs(t *testing.T) []*m.Document {
	t.Helper()

	util := parseDoc(t, "util.js", `/** Shared helpers. @namespace */
Root.Util = {
    label: function (value) {
        return 'v' + value;
    },
    VERSION: '1.2.0',
};
`)

	ui := parseDoc(t, "ui.js", `(function () {
    'use strict';

    const Util = Root.Util;

    /** Widget rendering. @namespace */
    Root.UI = {
        badge: function (value) {
            return '[' + Util.label(value) + ']';
        },
    };
}());
`)
	ui.Links = []m.Path{"util.js"}

	app := parseDoc(t, "app.js", `/** Entry points. @namespace */
Root.App = {};

Root.App.start = function () {
    return Root.UI.badge(Root.Util.VERSION);
};
`)
	app.Links = []m.Path{"util.js", "ui.js"}

	return []*m.Document{util, ui, app}
}

func TestConverter_Convert(t *testing.T) {
	opts := testOptions()
	engine := NewConverter(opts)

	conversion, err := engine.Convert(context.Background(), fixtureDocs(t), opts)
	require.NoError(t, err)

	require.Len(t, conversion.Outputs, 3)

	appOut := conversion.Outputs[m.Path("app.mjs")]
	assert.Contains(t, appOut, "import { badge } from './ui.mjs';")
	assert.Contains(t, appOut, "import { VERSION } from './util.mjs';")
	assert.Contains(t, appOut, "export function start() {")
	assert.Contains(t, appOut, "return badge(VERSION);")

	uiOut := conversion.Outputs[m.Path("ui.mjs")]
	assert.Contains(t, uiOut, "import * as $dep from './util.mjs';")
	assert.Contains(t, uiOut, "const Util = $dep;")
	assert.Contains(t, uiOut, "export function badge(value) {")
	assert.NotContains(t, uiOut, "use strict")

	utilOut := conversion.Outputs[m.Path("util.mjs")]
	assert.Contains(t, utilOut, "export function label(value) {")
	assert.Contains(t, utilOut, "export let VERSION = '1.2.0';")

	// Results come back in sorted document order.
	require.Len(t, conversion.Results, 3)
	assert.Equal(t, m.Path("app.js"), conversion.Results[0].Key)
	assert.Equal(t, m.Path("ui.js"), conversion.Results[1].Key)
	assert.Equal(t, m.Path("util.js"), conversion.Results[2].Key)
}

func TestConverter_Convert_Deterministic(t *testing.T) {
	opts := testOptions()

	first, err := NewConverter(opts).Convert(context.Background(), fixtureDocs(t), opts)
	require.NoError(t, err)

	// Reversed input order must not change a single output byte.
	docs := fixtureDocs(t)
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}

	second, err := NewConverter(opts).Convert(context.Background(), docs, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Outputs, second.Outputs)
	assert.Equal(t, first.Results, second.Results)
}

func TestConverter_Convert_ExclusionContainment(t *testing.T) {
	opts := testOptions()
	opts.Excludes = map[m.Path]bool{"util.js": true}

	conversion, err := NewConverter(opts).Convert(context.Background(), fixtureDocs(t), opts)
	require.NoError(t, err)

	_, ok := conversion.Outputs[m.Path("util.mjs")]
	assert.False(t, ok)

	// References into the excluded document stay as written and its link
	// produces no import.
	appOut := conversion.Outputs[m.Path("app.mjs")]
	assert.Contains(t, appOut, "Root.Util.VERSION")
	assert.NotContains(t, appOut, "util.mjs")
}

func TestConverter_Convert_MissingRoots(t *testing.T) {
	engine := NewConverter(m.Options{})

	_, err := engine.Convert(context.Background(), nil, m.Options{})
	require.Error(t, err)
}

func TestConverter_Scan_Namespaces(t *testing.T) {
	opts := testOptions()
	engine := NewConverter(opts)

	_, flags, err := engine.Scan(context.Background(), fixtureDocs(t), opts)
	require.NoError(t, err)
	assert.Empty(t, flags)

	namespaces := engine.Namespaces()
	assert.Equal(t, m.Path("util.js"), namespaces["Util"])
	assert.Equal(t, m.Path("util.js"), namespaces["Util.label"])
	assert.Equal(t, m.Path("ui.js"), namespaces["UI.badge"])
	assert.Equal(t, m.Path("app.js"), namespaces["App.start"])
}

func TestConverter_ConvertDocument_Incremental(t *testing.T) {
	opts := testOptions()
	engine := NewConverter(opts)

	docs := fixtureDocs(t)
	util, ui := docs[0], docs[1]

	require.NoError(t, engine.ConvertDocument(context.Background(), util))
	require.NoError(t, engine.ConvertDocument(context.Background(), ui))

	outputs := engine.Outputs()
	require.Len(t, outputs, 2)

	// The earlier document's exports were visible to the later one.
	assert.Contains(t, outputs[m.Path("ui.mjs")], "import * as $dep from './util.mjs';")
}

func TestConverter_ConvertDocument_RecordsFlags(t *testing.T) {
	opts := testOptions()
	engine := NewConverter(opts)

	first := parseDoc(t, "first.js", "Root.shared = 1;\n")
	second := parseDoc(t, "second.js", "Root.shared = 2;\n")

	require.NoError(t, engine.ConvertDocument(context.Background(), first))
	require.NoError(t, engine.ConvertDocument(context.Background(), second))

	flags := engine.Flags()
	require.Len(t, flags, 1)
	assert.Equal(t, m.FlagDuplicateExport, flags[0].Kind)
	assert.Equal(t, m.Path("second.js"), flags[0].Document)
}

func TestConverter_ConvertDocument_SkipsExcluded(t *testing.T) {
	opts := testOptions()
	opts.Excludes = map[m.Path]bool{"util.js": true}

	engine := NewConverter(opts)
	require.NoError(t, engine.ConvertDocument(context.Background(), fixtureDocs(t)[0]))

	assert.Empty(t, engine.Outputs())
}
