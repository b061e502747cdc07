// ABOUTME: Editable string-typed shadow of a Resource and its request payloads
// ABOUTME: Price parsing follows parseFloat: leading number wins, garbage becomes null

package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Field names a draft field.
type Field string

// Draft fields.
const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
)

// Draft is the free-form form state for creating or editing an item.
type Draft struct {
	Name        string
	Description string
	Price       string
}

// DraftFrom seeds a draft from r. An absent price becomes an empty string.
func DraftFrom(r Resource) Draft {
	return Draft{
		Name:        r.Name,
		Description: r.Description,
		Price:       FormatPrice(r.Price),
	}
}

// Set updates one field of the draft.
func (d *Draft) Set(field Field, value string) error {
	switch field {
	case FieldName:
		d.Name = value
	case FieldDescription:
		d.Description = value
	case FieldPrice:
		d.Price = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// Payload is the JSON body for create and update requests.
// A nil Price is sent as null.
type Payload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

// CreatePayload builds the POST body. The price is parsed without
// validation; unparseable input is sent as null for the server to reject.
func CreatePayload(d Draft) Payload {
	return Payload{Name: d.Name, Description: d.Description, Price: ParsePrice(d.Price)}
}

// UpdatePayload builds the PUT body. An empty price is sent as null.
func UpdatePayload(d Draft) Payload {
	p := Payload{Name: d.Name, Description: d.Description}
	if d.Price != "" {
		p.Price = ParsePrice(d.Price)
	}
	return p
}

var leadingFloat = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParsePrice parses the leading decimal number of s, ignoring leading
// whitespace and any trailing characters. It returns nil when s does not
// start with a finite number.
func ParsePrice(s string) *float64 {
	m := leadingFloat.FindString(strings.TrimLeft(s, " \t\n\r\v\f"))
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// FormatPrice renders p in its shortest decimal form, or "" when absent.
func FormatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
