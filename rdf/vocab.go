// Package rdf holds the small slice of RDF the minter needs: a read-only
// datastore contract for looking up a node's types, a few vocabulary terms
// and an in-memory graph that satisfies the contract.
package rdf

// NS is an RDF namespace IRI.
type NS string

// Get returns the IRI of name within the namespace.
func (ns NS) Get(name string) string {
	return string(ns) + name
}

// Common namespaces.
const (
	RDF    NS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS   NS = "http://www.w3.org/2000/01/rdf-schema#"
	Schema NS = "http://schema.org/"
)

// Type is rdf:type, the predicate automatic minting looks up.
const Type = string(RDF) + "type"

// BlankNodePrefix starts every blank node label.
const BlankNodePrefix = "_:"

// IsBlankNode reports whether term is a blank node label.
func IsBlankNode(term string) bool {
	return len(term) > len(BlankNodePrefix) && term[:len(BlankNodePrefix)] == BlankNodePrefix
}
