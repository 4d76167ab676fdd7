package main

import (
	"io"
	"os"
	"time"

	md2slides "github.com/alnah/go-md2slides"
)

// PoolFactory builds the converter pool used by a conversion run.
type PoolFactory func(size int, opts ...md2slides.Option) Pool

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	NewPool PoolFactory
}

// DefaultEnv returns the production environment backed by headless Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NewPool: newConverterPool,
	}
}
