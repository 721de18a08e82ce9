//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package main

// vmsvga uses unsafe.Pointer uint32 stores for shared-memory access, which
// assume little-endian byte order.
var _ = "vmsvga requires a little-endian architecture" + 1
