package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Specification implementation names as persisted in the auto_tags table.
const (
	ImplementationTag        = "TagSpecification"
	ImplementationGenre      = "GenreSpecification"
	ImplementationMonitored  = "MonitoredSpecification"
	ImplementationRootFolder = "RootFolderSpecification"
)

// Specification is one condition of an auto-tagging rule.
//
// The set of variants is closed: TagSpecification, GenreSpecification,
// MonitoredSpecification, RootFolderSpecification and UnknownSpecification.
// Only TagSpecification carries a tag reference; callers discover it through
// the TagReference capability rather than by switching on concrete types.
type Specification interface {
	// Implementation returns the discriminator stored with the variant.
	Implementation() string

	// Common returns the fields shared by every variant.
	Common() SpecificationCommon
}

// TagReference is implemented by specification variants whose payload is a
// tag ID. ok is false when the payload is missing or invalid.
type TagReference interface {
	TagID() (id uint, ok bool)
}

// SpecificationCommon holds the fields every specification variant carries.
type SpecificationCommon struct {
	Name     string `json:"name"`
	Negate   bool   `json:"negate"`
	Required bool   `json:"required"`
}

// TagSpecification matches items carrying the tag with ID Value.
// A zero Value means the payload was absent or could not be parsed.
type TagSpecification struct {
	SpecificationCommon
	Value uint
}

func (s *TagSpecification) Implementation() string      { return ImplementationTag }
func (s *TagSpecification) Common() SpecificationCommon { return s.SpecificationCommon }

// TagID returns the referenced tag ID.
func (s *TagSpecification) TagID() (uint, bool) {
	return s.Value, s.Value != 0
}

// GenreSpecification matches items whose genres intersect Value.
type GenreSpecification struct {
	SpecificationCommon
	Value []string
}

func (s *GenreSpecification) Implementation() string      { return ImplementationGenre }
func (s *GenreSpecification) Common() SpecificationCommon { return s.SpecificationCommon }

// MonitoredSpecification matches monitored items.
type MonitoredSpecification struct {
	SpecificationCommon
}

func (s *MonitoredSpecification) Implementation() string      { return ImplementationMonitored }
func (s *MonitoredSpecification) Common() SpecificationCommon { return s.SpecificationCommon }

// RootFolderSpecification matches items stored under the root folder Value.
type RootFolderSpecification struct {
	SpecificationCommon
	Value string
}

func (s *RootFolderSpecification) Implementation() string      { return ImplementationRootFolder }
func (s *RootFolderSpecification) Common() SpecificationCommon { return s.SpecificationCommon }

// UnknownSpecification preserves a persisted variant this build does not
// recognize. It is carried through reads and writes verbatim.
type UnknownSpecification struct {
	SpecificationCommon
	Kind string
	Raw  json.RawMessage
}

func (s *UnknownSpecification) Implementation() string      { return s.Kind }
func (s *UnknownSpecification) Common() SpecificationCommon { return s.SpecificationCommon }

// specificationEnvelope is the wire form shared by every variant.
type specificationEnvelope struct {
	Implementation string          `json:"implementation"`
	Name           string          `json:"name"`
	Negate         bool            `json:"negate"`
	Required       bool            `json:"required"`
	Value          json.RawMessage `json:"value,omitempty"`
}

// DecodeSpecification decodes a single specification from its wire form.
//
// Decoding is total over well-formed JSON objects: an unrecognized
// implementation yields an UnknownSpecification and an unparsable payload
// yields a variant with a zero payload. Only input that is not a JSON object
// returns an error.
func DecodeSpecification(data []byte) (Specification, error) {
	var env specificationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpecification, err)
	}

	common := SpecificationCommon{Name: env.Name, Negate: env.Negate, Required: env.Required}

	switch env.Implementation {
	case ImplementationTag:
		return &TagSpecification{SpecificationCommon: common, Value: parseTagIDPayload(env.Value)}, nil
	case ImplementationGenre:
		var genres []string
		_ = json.Unmarshal(env.Value, &genres)
		return &GenreSpecification{SpecificationCommon: common, Value: genres}, nil
	case ImplementationMonitored:
		return &MonitoredSpecification{SpecificationCommon: common}, nil
	case ImplementationRootFolder:
		var path string
		_ = json.Unmarshal(env.Value, &path)
		return &RootFolderSpecification{SpecificationCommon: common, Value: path}, nil
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return &UnknownSpecification{SpecificationCommon: common, Kind: env.Implementation, Raw: raw}, nil
	}
}

// EncodeSpecification returns the wire form of a specification.
func EncodeSpecification(spec Specification) ([]byte, error) {
	if u, ok := spec.(*UnknownSpecification); ok && len(u.Raw) > 0 {
		return u.Raw, nil
	}

	common := spec.Common()
	env := specificationEnvelope{
		Implementation: spec.Implementation(),
		Name:           common.Name,
		Negate:         common.Negate,
		Required:       common.Required,
	}

	var value any
	switch s := spec.(type) {
	case *TagSpecification:
		if s.Value != 0 {
			value = s.Value
		}
	case *GenreSpecification:
		value = s.Value
	case *RootFolderSpecification:
		value = s.Value
	}
	if value != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		env.Value = raw
	}
	return json.Marshal(env)
}

// ValidateSpecification rejects variants that must not be written: unknown
// implementations, tag references without a tag and empty payloads.
func ValidateSpecification(spec Specification) error {
	if spec == nil {
		return fmt.Errorf("%w: nil specification", ErrInvalidSpecification)
	}
	if strings.TrimSpace(spec.Common().Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSpecification)
	}
	switch s := spec.(type) {
	case *TagSpecification:
		if _, ok := s.TagID(); !ok {
			return fmt.Errorf("%w: %s %q has no tag", ErrInvalidSpecification, s.Implementation(), s.Name)
		}
	case *GenreSpecification:
		if len(s.Value) == 0 {
			return fmt.Errorf("%w: %s %q has no genres", ErrInvalidSpecification, s.Implementation(), s.Name)
		}
	case *RootFolderSpecification:
		if strings.TrimSpace(s.Value) == "" {
			return fmt.Errorf("%w: %s %q has no root folder", ErrInvalidSpecification, s.Implementation(), s.Name)
		}
	case *MonitoredSpecification:
	default:
		return fmt.Errorf("%w: unknown implementation %q", ErrInvalidSpecification, spec.Implementation())
	}
	return nil
}

// parseTagIDPayload accepts a JSON number or a numeric string.
// Anything else maps to zero, the "no tag" payload.
func parseTagIDPayload(raw json.RawMessage) uint {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = []byte(strings.TrimSpace(s))
	}
	id, err := strconv.ParseUint(string(raw), 10, 0)
	if err != nil {
		return 0
	}
	return uint(id)
}

// SpecificationList is the ordered, heterogeneous specification sequence of an
// auto-tagging rule. It is stored as a JSON array in a text column.
type SpecificationList []Specification

// MarshalJSON encodes the list as an array of wire envelopes.
func (l SpecificationList) MarshalJSON() ([]byte, error) {
	items := make([]json.RawMessage, 0, len(l))
	for _, spec := range l {
		if spec == nil {
			continue
		}
		data, err := EncodeSpecification(spec)
		if err != nil {
			return nil, err
		}
		items = append(items, data)
	}
	return json.Marshal(items)
}

// UnmarshalJSON decodes an array of wire envelopes. Elements that are not
// JSON objects are kept as UnknownSpecification instead of failing the list.
func (l *SpecificationList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("specification list is not a JSON array: %w", err)
	}

	out := make(SpecificationList, 0, len(items))
	for _, item := range items {
		spec, err := DecodeSpecification(item)
		if err != nil {
			raw := make(json.RawMessage, len(item))
			copy(raw, item)
			spec = &UnknownSpecification{Raw: raw}
		}
		out = append(out, spec)
	}
	*l = out
	return nil
}

// Value implements driver.Valuer.
func (l SpecificationList) Value() (driver.Value, error) {
	data, err := l.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *SpecificationList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		return l.UnmarshalJSON([]byte(v))
	case []byte:
		if len(v) == 0 {
			*l = nil
			return nil
		}
		return l.UnmarshalJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into SpecificationList", src)
	}
}

// TagIDs returns the tag IDs referenced by the list's tag-reference variants,
// in list order. Variants without the capability, and tag references with a
// missing payload, contribute nothing.
func (l SpecificationList) TagIDs() []uint {
	var ids []uint
	for _, spec := range l {
		ref, ok := spec.(TagReference)
		if !ok {
			continue
		}
		if id, ok := ref.TagID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
