// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.libucomm.org/ucommc/internal/testutil"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "ucommc.json", `{
	"class_name": "Wire",
	"includes": ["board.h", "<array>"]
}`)
	cfg, err := loadConfig(path)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, cfg.ClassName != nil)
	testutil.ExpectEq(t, "Wire", *cfg.ClassName)
	testutil.ExpectSliceEq(t, []string{"board.h", "<array>"}, cfg.Includes)
	testutil.ExpectTrue(t, cfg.PragmaOnce == nil)
	testutil.ExpectEq(t, 2, len(cfg.codegenOptions()))

	pluginOpts := cfg.pluginOptions()
	testutil.ExpectEq(t, "Wire", pluginOpts["class_name"])
	testutil.ExpectEq(t, "board.h,<array>", pluginOpts["includes"])
	_, hasPragma := pluginOpts["pragma_once"]
	testutil.ExpectFalse(t, hasPragma)
}

func TestLoadConfigJsonnet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "base.libsonnet", `{ class_name: 'Base', includes: ['common.h'] }`)
	path := writeFile(t, dir, "ucommc.jsonnet", `
local base = import 'base.libsonnet';
base + {
  class_name: 'Robot',
  pragma_once: true,
}
`)
	cfg, err := loadConfig(path)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "Robot", *cfg.ClassName)
	testutil.ExpectSliceEq(t, []string{"common.h"}, cfg.Includes)
	testutil.AssertTrue(t, cfg.PragmaOnce != nil)
	testutil.ExpectTrue(t, *cfg.PragmaOnce)
	testutil.ExpectEq(t, "true", cfg.pluginOptions()["pragma_once"])
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := loadConfig(writeFile(t, dir, "unknown.json", `{"colour": "red"}`))
	testutil.AssertError(t, err)
	testutil.ExpectTrue(t, strings.Contains(err.Error(), "colour"))

	_, err = loadConfig(writeFile(t, dir, "bad.jsonnet", `{ class_name: }`))
	testutil.ExpectError(t, err)

	_, err = loadConfig(writeFile(t, dir, "ucommc.yaml", "class_name: Wire\n"))
	testutil.AssertError(t, err)
	testutil.ExpectTrue(t, strings.Contains(err.Error(), `".yaml"`))

	_, err = loadConfig(filepath.Join(dir, "missing.json"))
	testutil.ExpectError(t, err)
}
