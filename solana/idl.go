package ogc_reserve

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed idl.json
var idlJSON []byte

type IDL struct {
	Version      string              `json:"version"`
	Name         string              `json:"name"`
	Address      string              `json:"address"`
	Instructions []IDLInstruction    `json:"instructions"`
	Accounts     []IDLTypeDefinition `json:"accounts"`
	Events       []IDLEvent          `json:"events"`
	Types        []IDLTypeDefinition `json:"types"`
	Errors       []IDLError          `json:"errors"`
}

type IDLInstruction struct {
	Name          string       `json:"name"`
	Discriminator []byte       `json:"discriminator"`
	Args          []IDLField   `json:"args"`
	Accounts      []IDLAccount `json:"accounts"`
}

type IDLEvent struct {
	Name          string     `json:"name"`
	Discriminator []byte     `json:"discriminator"`
	Fields        []IDLField `json:"fields"`
}

type IDLField struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

// IsType reports whether the field has the primitive type name, e.g. "u64".
func (f IDLField) IsType(name string) bool {
	var s string
	return json.Unmarshal(f.Type, &s) == nil && s == name
}

type IDLAccount struct {
	Name     string `json:"name"`
	IsMut    bool   `json:"isMut"`
	IsSigner bool   `json:"isSigner"`
}

type IDLTypeDefinition struct {
	Name          string `json:"name"`
	Discriminator []byte `json:"discriminator"`
	Type          struct {
		Kind   string     `json:"kind"`
		Fields []IDLField `json:"fields"`
	} `json:"type"`
}

type IDLError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

func ParseIDL(idlBytes []byte) (*IDL, error) {
	var idl IDL
	err := json.Unmarshal(idlBytes, &idl)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling IDL JSON: %w", err)
	}
	return &idl, nil
}

var (
	initIdlOnce sync.Once
	initIdlErr  error
	idlData     *IDL
	// instruction discriminator -> IDL instruction
	instructionByDiscriminator map[[8]byte]*IDLInstruction
)

// ProgramIDL returns the embedded program IDL, parsed once.
func ProgramIDL() (*IDL, error) {
	initIdlOnce.Do(func() {
		idlData, initIdlErr = ParseIDL(idlJSON)
		if initIdlErr != nil {
			return
		}

		instructionByDiscriminator = make(map[[8]byte]*IDLInstruction, len(idlData.Instructions))
		for i := range idlData.Instructions {
			ix := &idlData.Instructions[i]
			if len(ix.Discriminator) != 8 {
				initIdlErr = fmt.Errorf("instruction %s has a %d byte discriminator", ix.Name, len(ix.Discriminator))
				return
			}
			var disc [8]byte
			copy(disc[:], ix.Discriminator)
			instructionByDiscriminator[disc] = ix
		}
	})
	return idlData, initIdlErr
}

// lookupInstruction finds the IDL instruction whose discriminator prefixes data.
func lookupInstruction(data []byte) (*IDLInstruction, bool) {
	if _, err := ProgramIDL(); err != nil || len(data) < 8 {
		return nil, false
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	ix, ok := instructionByDiscriminator[disc]
	return ix, ok
}
