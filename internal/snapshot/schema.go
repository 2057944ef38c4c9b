package snapshot

import (
	"github.com/getkin/kin-openapi/openapi3"

	coreerrors "crossref/internal/core/errors"
)

// documentSchema describes the raw snapshot document produced by the external
// analyzer. Validation happens before anything is decoded into engine types
// so malformed input fails the load immediately instead of mid-traversal.
var documentSchema = buildDocumentSchema()

func buildDocumentSchema() *openapi3.Schema {
	typeEnum := make([]interface{}, 0, len(ElementTypes))
	for _, t := range ElementTypes {
		typeEnum = append(typeEnum, string(t))
	}

	elementSchema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("type", openapi3.NewStringSchema().WithEnum(typeEnum...)).
		WithProperty("file", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("line", openapi3.NewIntegerSchema().WithMin(0)).
		WithProperty("exported", openapi3.NewBoolSchema()).
		WithProperty("parameters", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
	elementSchema.Required = []string{"id", "name", "type", "file", "line"}

	edgeListSchema := openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema().WithMinLength(1))

	doc := openapi3.NewObjectSchema().
		WithProperty("elements", openapi3.NewArraySchema().WithItems(elementSchema)).
		WithProperty("edges", openapi3.NewObjectSchema().WithAdditionalProperties(edgeListSchema))
	doc.Required = []string{"elements", "edges"}
	return doc
}

// validateDocument checks a decoded JSON value against the snapshot schema.
func validateDocument(value interface{}) error {
	if err := documentSchema.VisitJSON(value); err != nil {
		return coreerrors.Wrap(err, coreerrors.CodeCorruptSnapshot, "snapshot document failed schema validation")
	}
	return nil
}
