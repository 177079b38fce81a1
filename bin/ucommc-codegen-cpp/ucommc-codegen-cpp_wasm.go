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

//go:build tinygo.wasm

package main

import (
	"encoding/binary"
	"math"
	"unsafe"

	"go.libucomm.org/ucommc/plugin"
)

var buffers = make(map[*uint8][]uint8)

//go:export ucommc_codegen_allocate
func ucommcCodegenAllocate(len uint32) *uint8 {
	if len > math.MaxInt32 {
		return nil
	}
	buf := make([]uint8, int(len))
	ptr := unsafe.SliceData(buf)
	buffers[ptr] = buf
	return ptr
}

//go:export ucommc_codegen_deallocate
func ucommcCodegenDeallocate(ptr *uint8) {
	delete(buffers, ptr)
}

//go:export ucommc_codegen_generate/cpp
func ucommcCodegenGenerateCpp(requestPtr *uint8, responsePtrPtr **uint8) uint8 {
	requestLen := binary.LittleEndian.Uint32(unsafe.Slice(requestPtr, 4))
	requestBuf := unsafe.Slice(requestPtr, requestLen)

	req, err := plugin.DecodeRequest(requestBuf)
	if err != nil {
		return respondError(responsePtrPtr, err)
	}
	response, err := generate(req)
	if err != nil {
		return respondError(responsePtrPtr, err)
	}
	responseBuf, err := plugin.EncodeResponse(response)
	if err != nil {
		return respondError(responsePtrPtr, err)
	}
	respond(responsePtrPtr, responseBuf)
	return 0
}

func respondError(responsePtrPtr **uint8, err error) uint8 {
	responseBuf, _ := plugin.EncodeResponse(&plugin.Response{
		Error: err.Error(),
	})
	respond(responsePtrPtr, responseBuf)
	return 1
}

func respond(responsePtrPtr **uint8, responseBuf []uint8) {
	responsePtr := unsafe.SliceData(responseBuf)
	buffers[responsePtr] = responseBuf
	*responsePtrPtr = responsePtr
}
