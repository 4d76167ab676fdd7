package main

import (
	"context"

	md2slides "github.com/alnah/go-md2slides"
)

// CLIConverter is the conversion service used per input file.
type CLIConverter interface {
	Convert(ctx context.Context, input md2slides.Input) (*md2slides.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*md2slides.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	// Acquire returns nil when no converter could be created.
	Acquire() CLIConverter
	Release(CLIConverter)
	InitError() error
	Size() int
	Close() error
}

// converterPool adapts md2slides.ConverterPool to Pool.
type converterPool struct {
	*md2slides.ConverterPool
}

var _ Pool = (*converterPool)(nil)

// newConverterPool is the production PoolFactory.
func newConverterPool(size int, opts ...md2slides.Option) Pool {
	return &converterPool{md2slides.NewConverterPool(size, opts...)}
}

func (p *converterPool) Acquire() CLIConverter {
	conv := p.ConverterPool.Acquire()
	if conv == nil {
		// A nil *Converter in a non-nil interface would defeat the caller's check.
		return nil
	}
	return conv
}

func (p *converterPool) Release(c CLIConverter) {
	if conv, ok := c.(*md2slides.Converter); ok {
		p.ConverterPool.Release(conv)
	}
}
