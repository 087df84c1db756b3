//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test runs the test suite with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Cover writes a coverage profile to cover.out.
func Cover() error {
	mg.Deps(Vet)
	return sh.RunV("go", "test", "-coverprofile=cover.out", "./...")
}

// Build builds the nsub-tail command into ./bin.
func Build() error {
	if r := os.MkdirAll("bin", 0o755); r != nil {
		return r
	}
	return sh.RunV("go", "build", "-o", "bin/nsub-tail", "./cmd/nsub-tail")
}
