// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - LoadSettings: search tunables read from the [search] table
//   - LoadSearchConfig: index definitions and the class hierarchy
package file
