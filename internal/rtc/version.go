package rtc

// GeneratorVersion is folded into every compiled kernel identity. Bump
// it whenever any family changes the meaning of generated source, so
// that stale cache entries (in-process or durable) can never be loaded
// against new generator semantics.
const GeneratorVersion = "rtc-gen-1"
