package models

// RawDocument is the weakly-typed, store-native shape of a menu node: string
// keys mapping to strings, numbers, nested documents, or sequences of child
// values. The store enforces no schema; all validation happens in the
// document mapper.
type RawDocument map[string]any
