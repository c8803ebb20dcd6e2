package inx

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec lets the INX client talk to the node-extension service without
// compiling .proto-generated message types: every request/response is a
// plain Go struct with json tags, and grpc-go's codec hook (meant for
// swapping proto for something else entirely) does the framing. This is
// the same google.golang.org/grpc transport the teacher's pkg/client uses,
// just with codec.Name "json" registered instead of relying on the default
// "proto" codec a .proto toolchain would generate.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return codecName }

const codecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
