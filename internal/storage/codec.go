package storage

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

type codec struct {
	marshal   func(value any) ([]byte, error)
	unmarshal func(data []byte, value any) error
}

var yamlCodec = codec{
	marshal:   yaml.Marshal,
	unmarshal: yaml.Unmarshal,
}

var jsonCodec = codec{
	marshal:   json.Marshal,
	unmarshal: json.Unmarshal,
}

// cborMode keeps sub-second timestamps; the default mode truncates to Unix
// seconds.
var cborMode = func() cbor.EncMode {
	mode, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

var cborCodec = codec{
	marshal:   cborMode.Marshal,
	unmarshal: cbor.Unmarshal,
}
