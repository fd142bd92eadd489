// Package jsoncodec registers a gRPC codec that marshals plain Go structs as JSON. Clients select it
// with the "application/grpc+json" content type (grpc.CallContentSubtype("json")).
package jsoncodec

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"google.golang.org/grpc/encoding"
)

// Name is the content subtype the codec is registered under.
const Name = "json"

func init() { encoding.RegisterCodec(Codec{}) }

// Codec implements encoding.Codec.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "json marshal")
	}
	return b, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, v), "json unmarshal")
}

func (Codec) Name() string { return Name }
