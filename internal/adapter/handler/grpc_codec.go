package handler

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// JSONCodecName is the content-subtype the loan desk service speaks. Messages
// are plain structs, so no generated protobuf code is involved.
const JSONCodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return JSONCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// JSONCallOption selects the JSON codec on the client side.
func JSONCallOption() grpc.CallOption {
	return grpc.CallContentSubtype(JSONCodecName)
}
