// Package memory provides in-memory implementations of the content, job
// and configuration store ports. They back tests and ephemeral runs where
// no database or config file is wanted.
package memory
