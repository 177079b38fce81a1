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

package plugin

import (
	"context"
	"fmt"

	wasm "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Wasm pages are 64 KiB, so plugins may use up to 1 GiB.
const memoryLimitPages = 16384

type HostOption interface {
	apply(*HostOptions)
}

type hostOption func(*HostOptions)

func (f hostOption) apply(opts *HostOptions) { f(opts) }

type HostOptions struct {
	memoryLimitPages uint32
}

func WithMemoryLimitPages(pages uint32) HostOption {
	return hostOption(func(opts *HostOptions) {
		opts.memoryLimitPages = pages
	})
}

func NewHostOptions(opts ...HostOption) *HostOptions {
	hostOptions := &HostOptions{
		memoryLimitPages: memoryLimitPages,
	}
	for _, opt := range opts {
		opt.apply(hostOptions)
	}
	return hostOptions
}

// Run instantiates the compiled plugin and calls its generate function
// for req.Language. A plugin that reports failure is returned as an error
// holding the plugin's message.
func Run(ctx context.Context, pluginBin []byte, req *Request, opts ...HostOption) (*Response, error) {
	return NewHostOptions(opts...).Run(ctx, pluginBin, req)
}

func (opts *HostOptions) Run(ctx context.Context, pluginBin []byte, req *Request) (*Response, error) {
	requestBuf, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(opts.memoryLimitPages)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		return nil, err
	}

	pluginExe, err := runtime.CompileModule(ctx, pluginBin)
	if err != nil {
		return nil, err
	}
	moduleConfig := wasm.NewModuleConfig().WithStartFunctions("_initialize")
	module, err := runtime.InstantiateModule(ctx, pluginExe, moduleConfig)
	if err != nil {
		return nil, err
	}

	generateName := "ucommc_codegen_generate/" + req.Language
	wasmAlloc := module.ExportedFunction("ucommc_codegen_allocate")
	wasmGenerate := module.ExportedFunction(generateName)
	if wasmAlloc == nil {
		return nil, fmt.Errorf("Plugin does not export ucommc_codegen_allocate")
	}
	if wasmGenerate == nil {
		return nil, fmt.Errorf("Plugin does not export %s", generateName)
	}

	mem := module.Memory()
	if mem == nil {
		return nil, fmt.Errorf("Plugin does not export a memory")
	}
	requestPtr, err := allocate(ctx, wasmAlloc, uint32(len(requestBuf)))
	if err != nil {
		return nil, err
	}
	if !mem.Write(requestPtr, requestBuf) {
		return nil, fmt.Errorf("Failed to write request message")
	}
	responsePtrPtr, err := allocate(ctx, wasmAlloc, 4)
	if err != nil {
		return nil, err
	}

	results, err := wasmGenerate.Call(ctx, uint64(requestPtr), uint64(responsePtrPtr))
	if err != nil {
		return nil, err
	}
	rc := uint8(results[0])

	responsePtr, ok := mem.ReadUint32Le(responsePtrPtr)
	if !ok {
		return nil, fmt.Errorf("Failed to read response pointer")
	}
	responseLen, ok := mem.ReadUint32Le(responsePtr)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message length")
	}
	responseBuf, ok := mem.Read(responsePtr, responseLen)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message")
	}
	response, err := DecodeResponse(responseBuf)
	if err != nil {
		return nil, err
	}
	if rc != 0 {
		return nil, &Error{Language: req.Language, Message: response.Error}
	}
	return response, nil
}

func allocate(ctx context.Context, fn api.Function, size uint32) (uint32, error) {
	results, err := fn.Call(ctx, uint64(size))
	if err != nil {
		return 0, err
	}
	if len(results) != 1 || results[0] == 0 {
		return 0, fmt.Errorf("Plugin failed to allocate %d bytes", size)
	}
	return uint32(results[0]), nil
}

// Error is a failure reported by the plugin itself.
type Error struct {
	Language string
	Message  string
}

func (err *Error) Error() string {
	return fmt.Sprintf("codegen plugin (%s): %s", err.Language, err.Message)
}
