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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-jsonnet"

	"go.libucomm.org/ucommc/codegen"
)

// config holds generator settings read from a --config file. Unset
// fields keep the generator defaults.
type config struct {
	ClassName  *string  `json:"class_name"`
	Includes   []string `json:"includes"`
	PragmaOnce *bool    `json:"pragma_once"`
}

func loadConfig(path string) (*config, error) {
	cfg := &config{}
	switch ext := filepath.Ext(path); ext {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: unable to open file %q: %w", path, err)
		}
		defer f.Close()
		if err := decodeConfig(f, cfg); err != nil {
			return nil, fmt.Errorf("config: for %q %w", path, err)
		}
	case ".jsonnet", ".libsonnet":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: unable to open file %q: %w", path, err)
		}
		vm := jsonnet.MakeVM()
		vm.Importer(&jsonnet.FileImporter{
			JPaths: []string{filepath.Dir(path)},
		})
		out, err := vm.EvaluateAnonymousSnippet(path, string(src))
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := decodeConfig(strings.NewReader(out), cfg); err != nil {
			return nil, fmt.Errorf("config: for %q %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unknown file ext %q", ext)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *config) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal: %w", err)
	}
	return nil
}

func (cfg *config) codegenOptions() []codegen.Option {
	var opts []codegen.Option
	if cfg.ClassName != nil {
		opts = append(opts, codegen.WithClassName(*cfg.ClassName))
	}
	if len(cfg.Includes) > 0 {
		opts = append(opts, codegen.WithIncludes(cfg.Includes...))
	}
	if cfg.PragmaOnce != nil {
		opts = append(opts, codegen.WithPragmaOnce(*cfg.PragmaOnce))
	}
	return opts
}

// pluginOptions renders the config as plugin options. Explicit
// --plugin-opt values take precedence.
func (cfg *config) pluginOptions() map[string]string {
	out := make(map[string]string)
	if cfg.ClassName != nil {
		out["class_name"] = *cfg.ClassName
	}
	if len(cfg.Includes) > 0 {
		out["includes"] = strings.Join(cfg.Includes, ",")
	}
	if cfg.PragmaOnce != nil {
		out["pragma_once"] = fmt.Sprintf("%t", *cfg.PragmaOnce)
	}
	return out
}
