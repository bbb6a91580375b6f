package ingest

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed content.cue
var contentCUE string

// schemaPaths maps a content type to its definition in content.cue. Types
// without a schema are indexed as opaque; only typed derived-view extraction
// is gated on validation.
var schemaPaths = map[string]string{
	"post":    "#Post",
	"contact": "#Contact",
}

// contentValidator checks decrypted content against the embedded CUE shapes
// before ingestion trusts its fields for derived views.
type contentValidator struct {
	cctx    *cue.Context
	schemas map[string]cue.Value
}

func newContentValidator() (*contentValidator, error) {
	cctx := cuecontext.New()
	root := cctx.CompileString(contentCUE)
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile content schema: %w", err)
	}

	schemas := make(map[string]cue.Value, len(schemaPaths))
	for contentType, path := range schemaPaths {
		schema := root.LookupPath(cue.ParsePath(path))
		if err := schema.Err(); err != nil {
			return nil, fmt.Errorf("content schema %s: %w", path, err)
		}
		schemas[contentType] = schema
	}

	return &contentValidator{cctx: cctx, schemas: schemas}, nil
}

// Validate unifies the raw content with the schema for its type. Returns nil
// for types without a schema.
func (v *contentValidator) Validate(contentType string, raw []byte) error {
	schema, ok := v.schemas[contentType]
	if !ok {
		return nil
	}

	data := v.cctx.CompileBytes(raw)
	if err := data.Err(); err != nil {
		return fmt.Errorf("content is not valid data: %w", err)
	}

	if err := schema.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("content does not match %s shape: %w", schemaPaths[contentType], err)
	}
	return nil
}
