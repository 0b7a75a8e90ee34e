//go:build mage

// Package main provides build targets for the larder project using Mage.
//
// Usage:
//
//	mage build             Compile larder binary to bin/
//	mage test:unit         Run unit tests
//	mage test:integration  Run integration tests (needs Docker for NATS)
//	mage test:all          Run unit and integration tests
//	mage lint              Run golangci-lint
//	mage clean             Remove build artifacts
//	mage install           Install larder to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "larder"
	binaryDir  = "bin"
	cmdDir     = "./cmd/larder"

	integrationTag = "integration"
)

// Build compiles the larder binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test groups test targets (all, unit, integration).
type Test mg.Namespace

// Unit runs the tests that need no external services.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "./...")
}

// Integration runs the tests behind the integration build tag. They start
// containers with testcontainers-go.
func (Test) Integration() error {
	return sh.RunV(binGo, "test", "-tags", integrationTag, "-run", "Integration", "./...")
}

// All runs unit and integration tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-tags", integrationTag, "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "--build-tags", integrationTag, "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
