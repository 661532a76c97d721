package instr

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Wire format: canonical CBOR encoding of compiled programs
// ---------------------------------------------------------------------------

// Canonical mode keeps the encoding deterministic, so equal programs encode
// to equal bytes and content addressing is stable.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("instr: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a compiled program to CBOR bytes.
func Marshal(p *Program) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// Unmarshal deserializes a compiled program from CBOR bytes.
func Unmarshal(data []byte) (*Program, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("instr: unmarshal program: %w", err)
	}
	if p.Body == nil {
		return nil, fmt.Errorf("instr: unmarshal program: missing body")
	}
	return &p, nil
}
