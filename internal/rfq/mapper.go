package rfq

import (
	"encoding/json"
	"fmt"

	"github.com/quotedesk/rfq-client/internal/entitystore"
	"github.com/quotedesk/rfq-client/internal/query"
	"github.com/quotedesk/rfq-client/pkg/model"
)

// Payload returns the canonical serialization of an RFQ. The signature on
// every mutation binds exactly these bytes.
func Payload(r model.RFQ) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("serialize rfq %s: %w", r.ID, err)
	}
	return data, nil
}

// ToEntity converts a domain RFQ into its stored representation.
func ToEntity(r model.RFQ, signature string) (entitystore.Entity, error) {
	data, err := Payload(r)
	if err != nil {
		return entitystore.Entity{}, err
	}
	return entitystore.Entity{
		Type:      query.EntityTypeRFQ,
		Key:       r.ID,
		Data:      data,
		Signature: signature,
	}, nil
}

// FromEntity converts a stored record back into the domain RFQ.
func FromEntity(e entitystore.Entity) (model.RFQ, error) {
	var r model.RFQ
	if err := json.Unmarshal(e.Data, &r); err != nil {
		return model.RFQ{}, fmt.Errorf("decode rfq entity %s: %w", e.Key, err)
	}
	return r, nil
}
