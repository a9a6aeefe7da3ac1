// Package normalisers holds Normaliser implementations that rewrite
// document data on its way to the indexing service.
package normalisers
