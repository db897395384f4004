// Package rocfft provides runtime compilation of GPU FFT kernels.
//
// A transform plan is a chain of stages; for each stage the service
// generates device kernel source, compiles it through a
// content-addressed cache, and returns a launchable kernel handle:
//
//	svc, err := rocfft.NewRTC(rocfft.WithLogger(log))
//	...
//	fut := svc.RuntimeCompile(stage, "", true)
//	kern, err := fut.Kernel()
//
// Compilation runs on a worker goroutine so plan construction can
// overlap it; Future.Kernel blocks for the result. A nil kernel with a
// nil error means the stage is served by a statically linked kernel.
//
// Kernel identity is (name, device architecture, generator version),
// so cached code objects survive process restarts via the durable
// store and are never reused across incompatible generators.
package rocfft
