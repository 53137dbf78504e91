// Package dupkeys detects duplicate object keys in JSON documents.
//
// Detection is a single forward pass over a token stream: every open object
// keeps its own record of the keys seen directly inside it, so a key name that
// repeats at a different depth or in a sibling object is not a duplicate.
// Duplicates are reported as dotted paths built from the keys that lead to the
// object, with array positions left out:
//
//	paths, err := dupkeys.Detect([]byte(`{"c":0,"b":[{"a":1,"a":2}]}`))
//	// paths == []string{"b.a"}
//
// Tokenizers are pluggable through Driver. The default driver uses
// encoding/json; source/gojson and source/yaml provide alternatives.
//
// Design policy:
// - Keep only public APIs in the root package; put the state machine under internal/.
// - Place drivers under source/, the batch checker under internal/check and the CLI under cmd/dupkeys.
// - Prefer black-box testing against public APIs.
package dupkeys
