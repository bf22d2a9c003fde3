package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Editable fields names of a book.
const (
	FieldTitle  = "title"
	FieldAuthor = "author"
	FieldISBN   = "isbn"
)

// BookID is the server-assigned identifier of a book. The remote may send it
// as a JSON string or a JSON number, both are kept as their textual form.
// Numbers holding a non negative integer are kept in canonical decimal form
// (1e3 and 1000.0 become "1000") so they are written back as numbers. Other
// numbers (1.5, -2) keep their token text and are written back as strings.
type BookID string

// maxNumericID bounds the numbers normalized into canonical ids.
var maxNumericID = new(big.Float).SetUint64(math.MaxUint64)

// String returns the textual form of the id.
func (id BookID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a string, a number or null.
func (id *BookID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = BookID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("book id: unsupported value %s", data)
	}
	*id = BookID(canonicalNumber(n))
	return nil
}

// canonicalNumber returns the decimal form of a non negative integer
// number, or the number text unchanged.
func canonicalNumber(n json.Number) string {
	s := n.String()
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return s
	}
	f, _, err := big.ParseFloat(s, 10, 64, big.ToNearestEven)
	if err != nil || f.Sign() < 0 || !f.IsInt() || f.Cmp(maxNumericID) > 0 {
		return s
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok || !r.IsInt() {
		return s
	}
	return r.Num().String()
}

// MarshalJSON writes canonical unsigned integers as JSON numbers
// and everything else as a JSON string.
func (id BookID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if s != "" && (s == "0" || s[0] != '0') {
		if _, err := strconv.ParseUint(s, 10, 64); err == nil {
			return []byte(s), nil
		}
	}
	return json.Marshal(s)
}

// Book represents a book record as known by the remote collection.
// Fields sent by the server beyond the editable ones are kept into
// Extra and written back untouched.
type Book struct {
	ID     BookID                     `json:"id"`
	Title  string                     `json:"title"`
	Author string                     `json:"author"`
	ISBN   string                     `json:"isbn"`
	Extra  map[string]json.RawMessage `json:"-"`
}

// bookFields avoids recursion into the custom (un)marshalers.
type bookFields struct {
	ID     BookID `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// UnmarshalJSON decodes the known fields and stores the others as passthrough.
func (b *Book) UnmarshalJSON(data []byte) error {
	var known bookFields
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range all {
		if isBookField(k) {
			delete(all, k)
		}
	}
	if len(all) == 0 {
		all = nil
	}
	*b = Book{ID: known.ID, Title: known.Title, Author: known.Author, ISBN: known.ISBN, Extra: all}
	return nil
}

// MarshalJSON writes the passthrough fields along with the known ones.
func (b Book) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(b.Extra)+4)
	for k, v := range b.Extra {
		if !isBookField(k) {
			out[k] = v
		}
	}
	out["id"] = b.ID
	out[FieldTitle] = b.Title
	out[FieldAuthor] = b.Author
	out[FieldISBN] = b.ISBN
	return json.Marshal(out)
}

// isBookField reports whether key names a known field. Matching ignores
// case the way encoding/json does when decoding.
func isBookField(key string) bool {
	for _, name := range []string{"id", FieldTitle, FieldAuthor, FieldISBN} {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// SetExtra stores an additional field value on the book.
func (b *Book) SetExtra(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if b.Extra == nil {
		b.Extra = make(map[string]json.RawMessage)
	}
	b.Extra[key] = raw
	return nil
}

// Draft returns an independent copy of the book editable fields.
func (b Book) Draft() Draft {
	return Draft{Title: b.Title, Author: b.Author, ISBN: b.ISBN}
}

// Clone returns a deep copy of the book.
func (b Book) Clone() Book {
	if b.Extra != nil {
		extra := make(map[string]json.RawMessage, len(b.Extra))
		for k, v := range b.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		b.Extra = extra
	}
	return b
}

// Draft is the input buffer of the create and update forms.
// It never carries an identifier.
type Draft struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// Set assigns value to the named field. No validation is performed.
func (d *Draft) Set(name, value string) error {
	switch name {
	case FieldTitle:
		d.Title = value
	case FieldAuthor:
		d.Author = value
	case FieldISBN:
		d.ISBN = value
	default:
		return unknownFieldError(name)
	}
	return nil
}
