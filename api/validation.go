package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

// Request schemas enforced at the boundary. The engine below accepts empty
// strings on every command; the policy that a status change carries a
// comment and a lifecycle action carries a reason lives here.
var (
	statusChangeSchema = mustSchema(`{
		"type": "object",
		"required": ["status", "comment"],
		"properties": {
			"status": {"type": "string", "minLength": 1},
			"comment": {"type": "string", "minLength": 1}
		}
	}`)

	commentSchema = mustSchema(`{
		"type": "object",
		"required": ["text"],
		"properties": {
			"text": {"type": "string", "minLength": 1}
		}
	}`)

	lifecycleSchema = mustSchema(`{
		"type": "object",
		"required": ["reason"],
		"properties": {
			"reason": {"type": "string", "minLength": 1}
		}
	}`)

	assignSchema = mustSchema(`{
		"type": "object",
		"required": ["candidate_ids"],
		"properties": {
			"candidate_ids": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "string", "minLength": 1}
			}
		}
	}`)

	interviewSchema = mustSchema(`{
		"type": "object",
		"required": ["date", "time"],
		"properties": {
			"date": {"type": "string", "minLength": 1},
			"time": {"type": "string", "minLength": 1},
			"participants": {"type": "array", "items": {"type": "string"}}
		}
	}`)
)

func mustSchema(raw string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), rs); err != nil {
		panic(fmt.Sprintf("bad request schema: %v", err))
	}
	return rs
}

// validateBody checks a raw JSON body against a compiled schema and folds
// the key errors into one message.
func validateBody(ctx context.Context, rs *jsonschema.Schema, body []byte) error {
	keyErrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if len(keyErrs) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(keyErrs))
	for _, ke := range keyErrs {
		msgs = append(msgs, ke.Message)
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
