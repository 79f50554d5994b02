package weakref

// Config is a package-level settings struct in the style of
// calltr.Config/Cfg, set once at startup. The table's sizing constants
// (initial capacity, load and shrink bounds, inline slot count) are not
// part of it; they are constants in packages entry and reftable.
type Config struct {
	// DebugChecks is off by default. No code in this module reads it,
	// so setting it does not add any checks or change any behavior.
	DebugChecks bool
}

// Cfg is the active configuration.
var Cfg Config
