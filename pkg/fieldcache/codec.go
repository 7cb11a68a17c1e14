package fieldcache

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/goliatone/go-synctemplate/pkg/fields"
)

// encMode uses core deterministic encoding so equal listings encode to equal
// bytes.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("fieldcache: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("fieldcache: CBOR decoder initialization failed: " + err.Error())
	}
}

type cachedListing struct {
	FieldID string `cbor:"1,keyasint"`
	Label   string `cbor:"2,keyasint"`
	Type    string `cbor:"3,keyasint"`
}

func encodeListings(items []fields.Listing) ([]byte, error) {
	payload := make([]cachedListing, len(items))
	for i, item := range items {
		payload[i] = cachedListing{FieldID: item.FieldID, Label: item.Label, Type: string(item.Type)}
	}
	data, err := encMode.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fieldcache: encode listings: %w", err)
	}
	return data, nil
}

func decodeListings(data []byte) ([]fields.Listing, error) {
	var payload []cachedListing
	if err := decMode.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("fieldcache: decode listings: %w", err)
	}
	out := make([]fields.Listing, len(payload))
	for i, item := range payload {
		out[i] = fields.Listing{FieldID: item.FieldID, Label: item.Label, Type: fields.Type(item.Type)}
	}
	return out, nil
}
