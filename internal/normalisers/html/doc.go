// Package html strips markup from document fields before indexing.
// It is applied when page HTML is excluded from the index.
package html
