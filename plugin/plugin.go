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

// Package plugin defines the protocol between ucommc and WebAssembly
// codegen plugins, and runs plugins on the host.
//
// A plugin exports two functions:
//
//	ucommc_codegen_allocate(len u32) -> ptr u32
//	ucommc_codegen_generate/<language>(request_ptr u32, response_ptr_ptr u32) -> u8
//
// Requests and responses are JSON documents prefixed by their total length
// (including the prefix) as a little-endian u32. The generate function
// stores a pointer to the response at response_ptr_ptr and returns zero on
// success. On failure the response's Error field describes the problem.
package plugin

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.libucomm.org/ucommc/encoding/schemajson"
)

// PathEnv is the environment variable searched for plugins when no
// explicit plugin path is given.
const PathEnv = "UCOMMC_PLUGIN_PATH"

// Request is sent to the plugin's generate function. Schema is the host's
// compilation of Source, made with comment stripping disabled when
// KeepComments is set.
type Request struct {
	Language     string             `json:"language"`
	SourcePath   string             `json:"source_path,omitempty"`
	Source       string             `json:"source"`
	KeepComments bool               `json:"keep_comments,omitempty"`
	Schema       *schemajson.Schema `json:"schema"`
	Options      map[string]string  `json:"options,omitempty"`
}

type Response struct {
	Files []OutputFile `json:"files,omitempty"`
	Error string       `json:"error,omitempty"`
}

type OutputFile struct {
	Path    []string `json:"path"`
	Content string   `json:"content"`
}

func EncodeRequest(req *Request) ([]byte, error) {
	return encodeFrame(req)
}

func DecodeRequest(buf []byte) (*Request, error) {
	var req Request
	if err := decodeFrame(buf, &req); err != nil {
		return nil, fmt.Errorf("DecodeRequest: %w", err)
	}
	return &req, nil
}

func EncodeResponse(resp *Response) ([]byte, error) {
	return encodeFrame(resp)
}

func DecodeResponse(buf []byte) (*Response, error) {
	var resp Response
	if err := decodeFrame(buf, &resp); err != nil {
		return nil, fmt.Errorf("DecodeResponse: %w", err)
	}
	return &resp, nil
}

func encodeFrame(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if uint64(len(body)) > math.MaxUint32-4 {
		return nil, fmt.Errorf("message size (%d bytes) exceeds maximum", len(body))
	}
	buf := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(buf, uint32(4+len(body)))
	return append(buf, body...), nil
}

func decodeFrame(buf []byte, v any) error {
	if len(buf) < 4 {
		return fmt.Errorf("truncated message header (%d bytes)", len(buf))
	}
	frameLen := binary.LittleEndian.Uint32(buf)
	if frameLen < 4 || uint64(frameLen) > uint64(len(buf)) {
		return fmt.Errorf("invalid message length %d (buffer is %d bytes)", frameLen, len(buf))
	}
	decoder := json.NewDecoder(bytes.NewReader(buf[4:frameLen]))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// Locate finds "ucommc-codegen-<language>.wasm" in a list of directories
// separated by the OS path list separator. An empty search path falls
// back to $UCOMMC_PLUGIN_PATH.
func Locate(searchPath, language string) (string, error) {
	if searchPath == "" {
		searchPath = os.Getenv(PathEnv)
	}
	if searchPath == "" {
		return "", fmt.Errorf("No plugin path set, use --plugin-path= or $%s", PathEnv)
	}
	basename := fmt.Sprintf("ucommc-codegen-%s.wasm", language)
	for _, dir := range filepath.SplitList(searchPath) {
		if dir == "" {
			continue
		}
		pluginPath := filepath.Join(dir, basename)
		if _, err := os.Stat(pluginPath); err == nil {
			return pluginPath, nil
		}
	}
	return "", fmt.Errorf("Codegen plugin %s not found in plugin path", basename)
}

// OutputPath joins a plugin-provided path under outDir. Each component
// must be a plain file or directory name.
func OutputPath(outDir string, file OutputFile) (string, error) {
	parts := file.Path
	if len(parts) == 0 {
		return "", fmt.Errorf("Invalid output path %#v: empty", parts)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("Invalid output path %#v: bad path component %q", parts, part)
		}
		if part[0] == '/' || filepath.IsAbs(part) {
			return "", fmt.Errorf("Invalid output path %#v: absolute path component %q", parts, part)
		}
		if strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("Invalid output path %#v: component %q contains a path separator", parts, part)
		}
	}
	return filepath.Join(append([]string{outDir}, parts...)...), nil
}
