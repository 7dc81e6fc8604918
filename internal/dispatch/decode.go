package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

var decoders = map[Op]func(json.RawMessage) (Request, error){
	OpListSections:         decodeAs[ListSections],
	OpListProducts:         decodeAs[ListProducts],
	OpSectionsWithProducts: decodeAs[SectionsWithProducts],
	OpAddSection:           decodeAs[AddSection],
	OpEditSection:          decodeAs[EditSection],
	OpDeleteSection:        decodeAs[DeleteSection],
	OpAddProduct:           decodeAs[AddProduct],
	OpDeleteProduct:        decodeAs[DeleteProduct],
	OpGetCurrentRate:       decodeAs[GetCurrentRate],
	OpAddRate:              decodeAs[AddRate],
	OpListRates:            decodeAs[ListRates],
	OpSetOrderPaid:         decodeAs[SetOrderPaid],
	OpAddOrder:             decodeAs[AddOrder],
	OpListOrders:           decodeAs[ListOrders],
	OpGetOrder:             decodeAs[GetOrder],
	OpDeleteOrder:          decodeAs[DeleteOrder],
	OpConvert:              decodeAs[Convert],
}

// Operations returns the wire names of the catalog, sorted.
func Operations() []string {
	names := make([]string, 0, len(decoders))
	for op := range decoders {
		names = append(names, string(op))
	}
	sort.Strings(names)
	return names
}

// Decode turns a wire name and its JSON arguments into a typed Request.
// Empty or null args decode to the zero request. Unknown fields are rejected.
func Decode(op string, args json.RawMessage) (Request, error) {
	decode, ok := decoders[Op(op)]
	if !ok {
		return nil, &Error{Code: CodeUnknownOperation, Op: Op(op), Message: "unknown operation"}
	}
	req, err := decode(args)
	if err != nil {
		return nil, &Error{Code: CodeBadRequest, Op: Op(op), Message: "cannot decode arguments", Err: err}
	}
	return req, nil
}

func decodeAs[T Request](args json.RawMessage) (Request, error) {
	var req T
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return req, nil
	}
	if err := strictUnmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after arguments")
	}
	return nil
}

// The UI sends some single-argument operations as a bare value
// ("Bebidas" for add-section, 3 for delete-section). Both forms decode.

type idArgs struct {
	ID int64 `json:"id"`
}

func unmarshalID(data []byte) (int64, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var id int64
		err := json.Unmarshal(trimmed, &id)
		return id, err
	}
	var a idArgs
	err := strictUnmarshal(trimmed, &a)
	return a.ID, err
}

func (r *DeleteSection) UnmarshalJSON(data []byte) (err error) {
	r.ID, err = unmarshalID(data)
	return err
}

func (r *DeleteProduct) UnmarshalJSON(data []byte) (err error) {
	r.ID, err = unmarshalID(data)
	return err
}

func (r *GetOrder) UnmarshalJSON(data []byte) (err error) {
	r.ID, err = unmarshalID(data)
	return err
}

func (r *DeleteOrder) UnmarshalJSON(data []byte) (err error) {
	r.ID, err = unmarshalID(data)
	return err
}

func (r *AddSection) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &r.Name)
	}
	type plain AddSection
	return strictUnmarshal(trimmed, (*plain)(r))
}
