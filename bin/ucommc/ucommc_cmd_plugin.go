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
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.libucomm.org/ucommc/compiler"
	"go.libucomm.org/ucommc/encoding/schemajson"
	"go.libucomm.org/ucommc/plugin"
)

type cmdPlugin struct {
	compileFlags
	outDir        string
	pluginPath    string
	language      string
	configPath    string
	pluginOptions map[string]string
}

func (*cmdPlugin) help() *commandHelp {
	return &commandHelp{
		usage:   "plugin [options] FILE",
		summary: "Generate code with a WebAssembly codegen plugin",
		args:    cobra.ExactArgs(1),
	}
}

func (cmd *cmdPlugin) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outDir, "output", "o", "", "directory for generated files")
	flags.StringVar(&cmd.pluginPath, "plugin-path", "", fmt.Sprintf("directories to search for plugins (default $%s)", plugin.PathEnv))
	flags.StringVar(&cmd.language, "language", "cpp", "load ucommc-codegen-<language>.wasm")
	flags.StringVar(&cmd.configPath, "config", "", "read generator settings from a .json or .jsonnet file")
	flags.StringToStringVar(&cmd.pluginOptions, "plugin-opt", nil, "pass key=value options to the plugin")
	flags.BoolVar(&cmd.noStripComments, "no-strip-comments", false, "do not remove // comments before parsing")
}

func (cmd *cmdPlugin) run(ctx context.Context, s *streams, argv []string) int {
	if cmd.outDir == "" {
		fmt.Fprintln(s.stderr, "No output directory specified (set --output=)")
		return 1
	}
	srcPath := argv[0]

	pluginOptions := make(map[string]string)
	if cmd.configPath != "" {
		cfg, err := loadConfig(cmd.configPath)
		if err != nil {
			fmt.Fprintln(s.stderr, err)
			return 1
		}
		pluginOptions = cfg.pluginOptions()
	}
	for key, value := range cmd.pluginOptions {
		pluginOptions[key] = value
	}

	src, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	opts := cmd.options(srcPath)
	out, err := opts.Compile(src)
	if !report(s, opts, src, out, err) {
		return 1
	}

	pluginPath, err := plugin.Locate(cmd.pluginPath, cmd.language)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	pluginBin, err := os.ReadFile(pluginPath)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}

	response, err := plugin.Run(ctx, pluginBin, cmd.request(srcPath, src, out.Schema, pluginOptions))
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	if len(response.Files) == 0 {
		fmt.Fprintln(s.stderr, "Plugin did not generate any output files")
		return 1
	}
	if err := writeFiles(cmd.outDir, response.Files); err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	return 0
}

// request carries the compile settings along with the schema so the plugin
// compiles the source the same way the host did.
func (cmd *cmdPlugin) request(
	srcPath string,
	src []byte,
	schema *compiler.Schema,
	options map[string]string,
) *plugin.Request {
	return &plugin.Request{
		Language:     cmd.language,
		SourcePath:   srcPath,
		Source:       string(src),
		KeepComments: cmd.noStripComments,
		Schema:       schemajson.FromSchema(schema),
		Options:      options,
	}
}

// writeFiles validates every path before writing anything.
func writeFiles(outDir string, files []plugin.OutputFile) error {
	outPaths := make([]string, 0, len(files))
	for _, file := range files {
		outPath, err := plugin.OutputPath(outDir, file)
		if err != nil {
			return err
		}
		outPaths = append(outPaths, outPath)
	}
	for ii, file := range files {
		outPath := outPaths[ii]
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, []byte(file.Content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
