package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DocumentType distinguishes read documents from write documents.
type DocumentType string

const (
	// DocumentQuery documents only read; their operations run concurrently.
	DocumentQuery DocumentType = "query"

	// DocumentMutation documents write; their operations run in document order.
	DocumentMutation DocumentType = "mutation"
)

// Document is the body accepted by the query endpoint.
type Document struct {
	Type       DocumentType       `json:"type"`
	Operations []OperationRequest `json:"operations"`
}

// OperationRequest names one operation and carries its raw arguments.
type OperationRequest struct {
	Name      string          `json:"name"`
	Alias     string          `json:"alias,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Key returns the response key of the operation: its alias, or its name.
func (o OperationRequest) Key() string {
	if o.Alias != "" {
		return o.Alias
	}
	return o.Name
}

// Response is the body written for every parsed document.
// A failed operation has a null entry in Data and one entry in Errors.
type Response struct {
	Data   map[string]any `json:"data"`
	Errors []ErrorEntry   `json:"errors,omitempty"`
}

// ErrorEntry describes one failed operation or a rejected document.
type ErrorEntry struct {
	Message    string          `json:"message"`
	Path       []string        `json:"path,omitempty"`
	Extensions ErrorExtensions `json:"extensions"`
}

// ErrorExtensions carries the machine-readable error code.
type ErrorExtensions struct {
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

var (
	errEmptyDocument = errors.New("document contains no operations")
	errDocumentType  = errors.New(`document type must be "query" or "mutation"`)
)

// decodeDocument parses and checks a document. Any error means the whole
// document is rejected before an operation runs.
func decodeDocument(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed document: %w", err)
	}
	if dec.More() {
		return nil, errors.New("malformed document: trailing data after document")
	}

	switch doc.Type {
	case DocumentQuery, DocumentMutation:
	default:
		return nil, errDocumentType
	}

	if len(doc.Operations) == 0 {
		return nil, errEmptyDocument
	}

	seen := make(map[string]struct{}, len(doc.Operations))
	for i, op := range doc.Operations {
		if op.Name == "" {
			return nil, fmt.Errorf("operation %d has no name", i)
		}
		key := op.Key()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate response key %q", key)
		}
		seen[key] = struct{}{}
	}

	return &doc, nil
}
