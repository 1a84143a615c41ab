package presets

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/screener"
)

// File is the on-disk preset document
//
//	presets:
//	  - name: cheap_miners
//	    description: Low P/E materials
//	    criteria:
//	      sector: Non-Energy Minerals
//	      pe: {max: 10}
//	    sort: {field: market_cap, direction: desc}
//	    columns: [pe, market_cap]
type File struct {
	Presets []screener.Preset `yaml:"presets"`
}

// ValidationError 프리셋 검증 실패
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

// Load reads a YAML preset file
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) ([]screener.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data))
}

// Decode parses and validates a preset document
func Decode(r io.Reader) ([]screener.Preset, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	for i := range file.Presets {
		normalize(&file.Presets[i].Criteria)
	}
	if err := Validate(file.Presets); err != nil {
		return nil, err
	}
	return file.Presets, nil
}

// normalize turns omitted categorical selectors into Any
func normalize(c *screener.Criteria) {
	for _, s := range []*string{&c.Sector, &c.Industry, &c.Exchange, &c.Type} {
		if screener.IsAny(*s) {
			*s = screener.Any
		}
	}
}

// Validate checks every preset; the first violation is returned
func Validate(presets []screener.Preset) error {
	seen := make(map[string]bool, len(presets))
	for i, p := range presets {
		field := fmt.Sprintf("presets[%d]", i)

		if p.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if !namePattern.MatchString(p.Name) {
			return ValidationError{field + ".name", fmt.Sprintf("%q must match %s", p.Name, namePattern)}
		}
		if seen[p.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate preset %q", p.Name)}
		}
		seen[p.Name] = true

		if p.Sort.Active() && !screener.Sortable(p.Sort.Field) {
			return ValidationError{field + ".sort.field", fmt.Sprintf("%s is not sortable", p.Sort.Field)}
		}

		for _, f := range screener.RangeFields() {
			r, _ := p.Criteria.Range(f)
			if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
				return ValidationError{fmt.Sprintf("%s.criteria.%s", field, f), "min must be <= max"}
			}
		}

		for j, f := range p.Columns {
			if _, ok := columns.Lookup(f); !ok {
				return ValidationError{fmt.Sprintf("%s.columns[%d]", field, j), "unknown column"}
			}
		}
	}
	return nil
}

// Merge returns base with overrides applied: a preset with an existing name
// replaces it in place, new names are appended in file order
func Merge(base, overrides []screener.Preset) []screener.Preset {
	out := make([]screener.Preset, len(base), len(base)+len(overrides))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.Name] = i
	}
	for _, p := range overrides {
		if i, ok := index[p.Name]; ok {
			out[i] = p
			continue
		}
		index[p.Name] = len(out)
		out = append(out, p)
	}
	return out
}

// Resolve returns the builtin presets merged with the file at path. An empty
// path yields the builtins alone.
func Resolve(path string) ([]screener.Preset, error) {
	if path == "" {
		return Builtin(), nil
	}
	custom, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("presets file %s: %w", path, err)
	}
	return Merge(Builtin(), custom), nil
}

// Find looks a preset up by name
func Find(presets []screener.Preset, name string) (screener.Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return screener.Preset{}, false
}
