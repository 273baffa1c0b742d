package types

// EmissionFactorTable maps a transport-mode name to grams of CO2 emitted per
// kilometer. Loaded once from a static resource and treated as immutable for
// the process lifetime. Invariant: every key is a non-empty string and every
// value is non-negative; the loader enforces this.
type EmissionFactorTable map[string]float64
