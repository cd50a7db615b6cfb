//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package sim

// Big-endian memory is an explicit Non-goal: the byte-composition in
// memory.go implements little-endian word layout only.
var _ = "FRISC simulator requires a little-endian architecture" + 1
