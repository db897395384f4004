// Package gpu provides the device-side surface for runtime-compiled
// kernels: backend discovery, kernel compilation, module loading, launch
// argument packing, and launch-limit validation.
//
// The package defines backend interfaces and requires a backend to be
// registered at runtime. A CPU-backed mock backend is provided for
// development, tests, and offline source generation.
package gpu
