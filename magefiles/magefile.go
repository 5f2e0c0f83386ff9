//go:build mage

// Package main provides build targets for ulpack using Mage.
//
// Usage:
//
//	mage build       Compile the ulpack binary to bin/
//	mage test        Run all tests with the race detector
//	mage lint        Run go vet and golangci-lint
//	mage run         Build and start the server
//	mage seed        Load the sample gear catalogue
//	mage clean       Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "ulpack"
	binaryDir  = "bin"
	cmdDir     = "./cmd/ulpack"
)

var binaryPath = filepath.Join(binaryDir, binaryName)

// Build compiles the ulpack binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", binaryPath, cmdDir)
}

// Test runs every package's tests.
func Test() error {
	return sh.RunV(binGo, "test", "-race", "-count=1", "./...")
}

// Lint runs go vet and golangci-lint.
func Lint() error {
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV(binLint, "run", "./...")
}

// Run builds and starts the server with the current environment.
func Run() error {
	mg.Deps(Build)
	return sh.RunV(binaryPath, "serve")
}

// Seed loads the sample gear catalogue into the configured database.
func Seed() error {
	mg.Deps(Build)
	return sh.RunV(binaryPath, "seed")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}
