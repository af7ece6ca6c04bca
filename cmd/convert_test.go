package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertCmd_WritesModules(t *testing.T) {
	outDir := t.TempDir()
	manifestPath := filepath.Join(outDir, "manifest.yaml")

	cmd := newRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(newConvertCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"convert", "../examples/legacy",
		"-o", outDir,
		"-r", "Root",
		"--manifest", manifestPath,
	})

	err := cmd.Execute()
	require.NoError(t, err)

	app, err := os.ReadFile(filepath.Join(outDir, "app.mjs"))
	require.NoError(t, err)
	assert.Contains(t, string(app), "import { badge } from './ui.mjs';")
	assert.Contains(t, string(app), "import { VERSION } from './util.mjs';")
	assert.Contains(t, string(app), "export function start() {")

	ui, err := os.ReadFile(filepath.Join(outDir, "ui.mjs"))
	require.NoError(t, err)
	assert.Contains(t, string(ui), "import * as $dep from './util.mjs';")
	assert.Contains(t, string(ui), "const Util = $dep;")
	assert.NotContains(t, string(ui), "use strict")

	util, err := os.ReadFile(filepath.Join(outDir, "util.mjs"))
	require.NoError(t, err)
	assert.Contains(t, string(util), "export function clamp(value, lo, hi) {")
	assert.Contains(t, string(util), "export let VERSION = '1.2.0';")

	manifest, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "version: 1")
	assert.Contains(t, string(manifest), "key: app.js")
}

func TestConvertCmd_DryRunWritesNothing(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "never-created")

	cmd := newRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(newConvertCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"convert", "../examples/legacy",
		"-o", outDir,
		"-r", "Root",
		"--dry-run",
	})

	err := cmd.Execute()
	require.NoError(t, err)

	_, err = os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestConvertCmd_MissingSource(t *testing.T) {
	cmd := newRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(newConvertCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"convert", filepath.Join(t.TempDir(), "absent")})

	err := cmd.Execute()
	require.Error(t, err)
}
