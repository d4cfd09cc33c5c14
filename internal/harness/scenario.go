package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danforbes/dots/internal/frame"
	"github.com/danforbes/dots/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Types is the portable type registry, in declaration order.
	Types []TypeSpec `yaml:"types"`

	// Pallets are the runtime modules, in declaration order.
	Pallets []PalletSpec `yaml:"pallets,omitempty"`

	// Extensions are the declared signed extensions.
	Extensions []ExtensionSpec `yaml:"extensions,omitempty"`

	// ExtrinsicVersion defaults to 4.
	ExtrinsicVersion *uint8 `yaml:"extrinsic_version,omitempty"`

	// Extrinsic and Runtime are type ids. Nil means a unit tuple.
	Extrinsic *uint32 `yaml:"extrinsic,omitempty"`
	Runtime   *uint32 `yaml:"runtime,omitempty"`

	// Parallelism is passed to the assembler; 0 projects sequentially.
	Parallelism int `yaml:"parallelism,omitempty"`

	// Expect describes the decode outcome. Nil means decode must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the decoded metadata.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// TypeSpec is one registry entry. Exactly one definition field is set.
type TypeSpec struct {
	ID   uint32   `yaml:"id"`
	Path []string `yaml:"path,omitempty"`

	Primitive   string           `yaml:"primitive,omitempty"`
	Composite   *[]FieldSpec     `yaml:"composite,omitempty"`
	Variant     *[]VariantSpec   `yaml:"variant,omitempty"`
	Sequence    *uint32          `yaml:"sequence,omitempty"`
	Array       *ArraySpec       `yaml:"array,omitempty"`
	Tuple       *[]uint32        `yaml:"tuple,omitempty"`
	Compact     *uint32          `yaml:"compact,omitempty"`
	BitSequence *BitSequenceSpec `yaml:"bitsequence,omitempty"`
}

// FieldSpec is a field; an empty name makes an unnamed field.
type FieldSpec struct {
	Name string `yaml:"name,omitempty"`
	Type uint32 `yaml:"type"`
}

// VariantSpec is one enum case.
type VariantSpec struct {
	Index  uint8       `yaml:"index"`
	Name   string      `yaml:"name"`
	Fields []FieldSpec `yaml:"fields,omitempty"`
}

// ArraySpec is a fixed-length array definition.
type ArraySpec struct {
	Len  uint32 `yaml:"len"`
	Type uint32 `yaml:"type"`
}

// BitSequenceSpec is a bit sequence definition.
type BitSequenceSpec struct {
	Store uint32 `yaml:"store"`
	Order uint32 `yaml:"order"`
}

// PalletSpec is one runtime module.
type PalletSpec struct {
	Name      string         `yaml:"name"`
	Index     uint8          `yaml:"index"`
	Calls     *uint32        `yaml:"calls,omitempty"`
	Events    *uint32        `yaml:"events,omitempty"`
	Errors    *uint32        `yaml:"errors,omitempty"`
	Storage   *[]StorageSpec `yaml:"storage,omitempty"`
	Constants []ConstantSpec `yaml:"constants,omitempty"`
}

// StorageSpec is a storage entry. Exactly one of Plain and Map is set.
type StorageSpec struct {
	Name     string   `yaml:"name"`
	Modifier string   `yaml:"modifier,omitempty"`
	Plain    *uint32  `yaml:"plain,omitempty"`
	Map      *MapSpec `yaml:"map,omitempty"`
	Default  ir.Bytes `yaml:"default,omitempty"`
}

// MapSpec is a keyed storage entry.
type MapSpec struct {
	Hashers []string `yaml:"hashers"`
	Key     uint32   `yaml:"key"`
	Value   uint32   `yaml:"value"`
}

// ConstantSpec is a pallet constant.
type ConstantSpec struct {
	Name  string   `yaml:"name"`
	Type  uint32   `yaml:"type"`
	Value ir.Bytes `yaml:"value"`
}

// ExtensionSpec is a signed extension declaration.
type ExtensionSpec struct {
	Name       string `yaml:"name"`
	Type       uint32 `yaml:"type"`
	Additional uint32 `yaml:"additional"`
}

// ExpectClause specifies an expected decode failure.
type ExpectClause struct {
	// Error is the expected MetadataError code.
	Error string `yaml:"error"`

	// TypeID, if set, must equal the error's offending type id.
	TypeID *uint32 `yaml:"type_id,omitempty"`

	// Details is a subset match against the error's details.
	Details map[string]string `yaml:"details,omitempty"`
}

// Assertion validates decoded metadata.
type Assertion struct {
	// Type selects the assertion; see the Assert* constants.
	Type string `yaml:"type"`

	// ID is the type id (type_kind, type_shape).
	ID *uint32 `yaml:"id,omitempty"`

	// Kind is the expected ScaleType kind (type_kind).
	Kind string `yaml:"kind,omitempty"`

	// Expect is a subset of the type's JSON form (type_shape).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Pallet and Section select a pallet section (pallet_section).
	Pallet  string `yaml:"pallet,omitempty"`
	Section string `yaml:"section,omitempty"`

	// Names is the expected name list (extensions, pallet_section).
	Names []string `yaml:"names,omitempty"`

	// Count is the expected number of cycles (cycles).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTypeKind      = "type_kind"
	AssertTypeShape     = "type_shape"
	AssertExtensions    = "extensions"
	AssertPalletSection = "pallet_section"
	AssertCycles        = "cycles"
	AssertValid         = "valid"
)

var primitiveNames = map[string]frame.Primitive{
	"bool": frame.PrimitiveBool,
	"char": frame.PrimitiveChar,
	"str":  frame.PrimitiveStr,
	"u8":   frame.PrimitiveU8,
	"u16":  frame.PrimitiveU16,
	"u32":  frame.PrimitiveU32,
	"u64":  frame.PrimitiveU64,
	"u128": frame.PrimitiveU128,
	"u256": frame.PrimitiveU256,
	"i8":   frame.PrimitiveI8,
	"i16":  frame.PrimitiveI16,
	"i32":  frame.PrimitiveI32,
	"i64":  frame.PrimitiveI64,
	"i128": frame.PrimitiveI128,
	"i256": frame.PrimitiveI256,
}

var hasherNames = map[string]frame.StorageHasher{
	"Blake2_128":       frame.HasherBlake2_128,
	"Blake2_256":       frame.HasherBlake2_256,
	"Blake2_128Concat": frame.HasherBlake2_128Concat,
	"Twox128":          frame.HasherTwox128,
	"Twox256":          frame.HasherTwox256,
	"Twox64Concat":     frame.HasherTwox64Concat,
	"Identity":         frame.HasherIdentity,
}

var modifierNames = map[string]frame.StorageEntryModifier{
	"":         frame.ModifierOptional,
	"Optional": frame.ModifierOptional,
	"Default":  frame.ModifierDefault,
}

var sectionNames = map[string]bool{
	"calls": true, "events": true, "errors": true, "storage": true, "constants": true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Types) == 0 {
		return fmt.Errorf("types list is required and must be non-empty")
	}

	for i, ts := range s.Types {
		if err := validateTypeSpec(ts); err != nil {
			return fmt.Errorf("types[%d] (id %d): %w", i, ts.ID, err)
		}
	}

	for i, p := range s.Pallets {
		if p.Name == "" {
			return fmt.Errorf("pallets[%d]: name is required", i)
		}
		if p.Storage == nil {
			continue
		}
		for j, st := range *p.Storage {
			if err := validateStorageSpec(st); err != nil {
				return fmt.Errorf("pallets[%d].storage[%d]: %w", i, j, err)
			}
		}
	}

	for i, ext := range s.Extensions {
		if ext.Name == "" {
			return fmt.Errorf("extensions[%d]: name is required", i)
		}
	}

	if s.Expect != nil && s.Expect.Error == "" {
		return fmt.Errorf("expect.error is required")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateTypeSpec(ts TypeSpec) error {
	set := 0
	if ts.Primitive != "" {
		if _, ok := primitiveNames[ts.Primitive]; !ok {
			return fmt.Errorf("unknown primitive %q", ts.Primitive)
		}
		set++
	}
	for _, present := range []bool{
		ts.Composite != nil, ts.Variant != nil, ts.Sequence != nil, ts.Array != nil,
		ts.Tuple != nil, ts.Compact != nil, ts.BitSequence != nil,
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one definition is required, got %d", set)
	}
	return nil
}

func validateStorageSpec(st StorageSpec) error {
	if st.Name == "" {
		return fmt.Errorf("name is required")
	}
	if (st.Plain == nil) == (st.Map == nil) {
		return fmt.Errorf("exactly one of plain and map is required")
	}
	if _, ok := modifierNames[st.Modifier]; !ok {
		return fmt.Errorf("unknown modifier %q", st.Modifier)
	}
	if st.Map != nil {
		for _, h := range st.Map.Hashers {
			if _, ok := hasherNames[h]; !ok {
				return fmt.Errorf("unknown hasher %q", h)
			}
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTypeKind:
		if a.ID == nil || a.Kind == "" {
			return fmt.Errorf("%s requires id and kind", a.Type)
		}
	case AssertTypeShape:
		if a.ID == nil || a.Expect == nil {
			return fmt.Errorf("%s requires id and expect", a.Type)
		}
	case AssertExtensions:
		if a.Names == nil {
			return fmt.Errorf("%s requires names", a.Type)
		}
	case AssertPalletSection:
		if a.Pallet == "" || !sectionNames[a.Section] {
			return fmt.Errorf("%s requires pallet and a section (calls, events, errors, storage, constants)", a.Type)
		}
	case AssertCycles:
		if a.Count == nil {
			return fmt.Errorf("%s requires count", a.Type)
		}
	case AssertValid:
	default:
		valid := []string{AssertTypeKind, AssertTypeShape, AssertExtensions, AssertPalletSection, AssertCycles, AssertValid}
		return fmt.Errorf("unknown assertion type %q (valid: %s)", a.Type, strings.Join(valid, ", "))
	}
	return nil
}
