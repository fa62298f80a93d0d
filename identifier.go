package mint

// Identifier is a freshly minted identifier.
type Identifier struct {
	// Seq is the counter value in canonical decimal.
	Seq string `json:"seq"`

	// Code is the entity prefix followed by the compact encoding of Seq.
	Code string `json:"zbase32"`

	// URI is the canonical IRI: counter key + "/" + Code.
	URI string `json:"uri"`

	// ShortURI is the short namespace root + Code. Empty for blank nodes
	// and when no short namespace is configured.
	ShortURI string `json:"shortUri,omitempty"`

	// BNode is the blank node label ("_:" + Code without its first
	// character). Set only for blank nodes.
	BNode string `json:"bnode,omitempty"`

	// Entity is the entity kind the identifier was minted for.
	Entity string `json:"-"`
}

// Decoded is the result of parsing a code.
type Decoded struct {
	Entity string `json:"entity"`
	Seq    string `json:"seq"`
}
