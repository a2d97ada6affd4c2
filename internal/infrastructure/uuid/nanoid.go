package uuid

import (
	"errors"

	gonanoid "github.com/matoous/go-nanoid"
)

var errExhausted = errors.New("sequence generator exhausted")

// Generator entity ID generator interface
type Generator interface {
	Generate() (string, error)
}

// NanoIDGenerator Generator implementation using NanoID
type NanoIDGenerator struct {
	Length   int
	Alphabet string // optional, defaults to the url-safe nanoid alphabet
}

var _ Generator = &NanoIDGenerator{}

// NewNanoIDGenerator create a new `NanoIDGenerator` instance
func NewNanoIDGenerator(length int) *NanoIDGenerator {
	if length < 1 {
		panic("length must be larger than 1")
	}
	return &NanoIDGenerator{Length: length}
}

// Generate generate entity ID
func (ns *NanoIDGenerator) Generate() (string, error) {
	if ns.Alphabet != "" {
		return gonanoid.Generate(ns.Alphabet, ns.Length)
	}
	return gonanoid.Nanoid(ns.Length)
}

// SequenceGenerator returns the given IDs in order, for deterministic tests
type SequenceGenerator struct {
	IDs  []string
	next int
}

// Generate implement Generator
func (sg *SequenceGenerator) Generate() (string, error) {
	if sg.next >= len(sg.IDs) {
		return "", errExhausted
	}
	id := sg.IDs[sg.next]
	sg.next++
	return id, nil
}
