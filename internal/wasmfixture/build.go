// Package wasmfixture hand-assembles tiny WASM binaries for exercising the
// loader and host ABI without a Go-to-wasm toolchain in the build. Each
// fixture is built from the same low-level section/instruction encoders, so
// any encoding mistake would show up consistently across every fixture
// rather than being a one-off typo.
package wasmfixture

import "math"

const (
	valI32 = 0x7F
	valI64 = 0x7E
	valF64 = 0x7C

	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secExport   = 7
	secCode     = 10
	secData     = 11

	opEnd       = 0x0B
	opCall      = 0x10
	opLocalGet  = 0x20
	opLocalSet  = 0x21
	opI32Load8U = 0x2D
	opI32Const  = 0x41
	opI64Const  = 0x42
	opF64Const  = 0x44
	opI32Eqz    = 0x45
	opI32Eq     = 0x46
	opI64Eqz    = 0x50
	opI64Add    = 0x7C
	opIf        = 0x04
	opReturn    = 0x0F
	blockVoid   = 0x40

	exportKindFunc = 0x00
)

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

func sleb(v int64) []byte {
	var out []byte
	more := true
	for more {
		b := byte(v & 0x7F)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

func name(s string) []byte {
	return append(uleb(uint32(len(s))), []byte(s)...)
}

func vec(count uint32, items []byte) []byte {
	return append(uleb(count), items...)
}

func section(id byte, content []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(content)))...)
	return append(out, content...)
}

// funcType encodes a function signature: params -> results.
func funcType(params, results []byte) []byte {
	out := []byte{0x60}
	out = append(out, vec(uint32(len(params)), params)...)
	out = append(out, vec(uint32(len(results)), results)...)
	return out
}

// importFunc encodes a function import from moduleName.fieldName with the
// given type index.
func importFunc(moduleName, fieldName string, typeIdx uint32) []byte {
	out := append([]byte{}, name(moduleName)...)
	out = append(out, name(fieldName)...)
	out = append(out, exportKindFunc)
	out = append(out, uleb(typeIdx)...)
	return out
}

func exportFunc(fieldName string, funcIdx uint32) []byte {
	out := append([]byte{}, name(fieldName)...)
	out = append(out, exportKindFunc)
	out = append(out, uleb(funcIdx)...)
	return out
}

// code encodes a function body with no locals from a raw instruction stream
// (the caller supplies everything up to but not including the final end).
func code(body []byte) []byte {
	return codeWithLocals(0, 0, body)
}

// codeWithLocals encodes a function body declaring localCount locals of a
// single valtype (all our fixtures only ever need one homogeneous group),
// followed by the given instruction stream.
func codeWithLocals(localCount uint32, localType byte, body []byte) []byte {
	var localDecls []byte
	if localCount == 0 {
		localDecls = uleb(0)
	} else {
		localDecls = append(uleb(1), uleb(localCount)...)
		localDecls = append(localDecls, localType)
	}
	content := append(localDecls, body...)
	content = append(content, opEnd)
	return append(uleb(uint32(len(content))), content...)
}

func callInsn(funcIdx uint32) []byte {
	return append([]byte{opCall}, uleb(funcIdx)...)
}

func localGetInsn(idx uint32) []byte {
	return append([]byte{opLocalGet}, uleb(idx)...)
}

func localSetInsn(idx uint32) []byte {
	return append([]byte{opLocalSet}, uleb(idx)...)
}

func i32Load8UInsn(offset uint32) []byte {
	out := []byte{opI32Load8U}
	out = append(out, uleb(0)...) // alignment hint
	out = append(out, uleb(offset)...)
	return out
}

func i32ConstInsn(v int32) []byte {
	return append([]byte{opI32Const}, sleb(int64(v))...)
}

func i64ConstInsn(v int64) []byte {
	return append([]byte{opI64Const}, sleb(v)...)
}

func f64ConstInsn(v float64) []byte {
	bits := math.Float64bits(v)
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
	return append([]byte{opF64Const}, buf...)
}

// module assembles a complete binary from pre-built sections, which must
// already be in WASM section-id order.
func module(sections ...[]byte) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}
