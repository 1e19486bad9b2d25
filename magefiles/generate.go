//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Sample generates a document from testdata/sample.txt with the echo provider.
// It needs no API keys and exercises the full pipeline end to end.
func Sample() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "generate",
		"--title", "Sample Report",
		"--database", "testdata/sample.txt",
		"--provider", "echo",
		"--output-dir", "output",
	)
}

// Serve builds the binary and starts the HTTP API on :8080.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "serve", "-v")
}
