package screener

import (
	"strconv"
	"strings"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/contracts"
)

// Any is the categorical sentinel meaning "no constraint"
const Any = "Any"

// Range is an optional inclusive [Min, Max] bound pair. A nil side is
// unbounded.
type Range struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Active reports whether either bound is set
func (r Range) Active() bool {
	return r.Min != nil || r.Max != nil
}

// Contains applies the bounds to a value. Missing values always pass.
func (r Range) Contains(v *float64) bool {
	if v == nil {
		return true
	}
	if r.Min != nil && *v < *r.Min {
		return false
	}
	if r.Max != nil && *v > *r.Max {
		return false
	}
	return true
}

// Criteria is the complete, fixed-shape filter set of one session.
// Categorical selectors hold Any (or "") for no constraint.
type Criteria struct {
	Sector   string `json:"sector" yaml:"sector,omitempty"`
	Industry string `json:"industry" yaml:"industry,omitempty"`
	Exchange string `json:"exchange" yaml:"exchange,omitempty"`
	Type     string `json:"type" yaml:"type,omitempty"`
	Query    string `json:"query,omitempty" yaml:"query,omitempty"` // ticker/company substring

	Price          Range `json:"price" yaml:"price,omitempty"`
	Change         Range `json:"change" yaml:"change,omitempty"`
	Volume         Range `json:"volume" yaml:"volume,omitempty"`
	RelativeVolume Range `json:"relative_volume" yaml:"relative_volume,omitempty"`
	MarketCap      Range `json:"market_cap" yaml:"market_cap,omitempty"`
	PE             Range `json:"pe" yaml:"pe,omitempty"`
	PB             Range `json:"pb" yaml:"pb,omitempty"`
	DividendYield  Range `json:"dividend_yield" yaml:"dividend_yield,omitempty"`
	Beta           Range `json:"beta" yaml:"beta,omitempty"`
	RSI            Range `json:"rsi" yaml:"rsi,omitempty"`
	ADX            Range `json:"adx" yaml:"adx,omitempty"`
	Volatility     Range `json:"volatility" yaml:"volatility,omitempty"`
	PerfWeek       Range `json:"perf_w" yaml:"perf_w,omitempty"`
	PerfMonth      Range `json:"perf_1m" yaml:"perf_1m,omitempty"`
	PerfYear       Range `json:"perf_y" yaml:"perf_y,omitempty"`
	Rating         Range `json:"rating" yaml:"rating,omitempty"`
}

// NewCriteria returns criteria with every constraint at "no constraint"
func NewCriteria() Criteria {
	return Criteria{
		Sector:   Any,
		Industry: Any,
		Exchange: Any,
		Type:     Any,
	}
}

// IsAny reports whether a categorical selector is unconstrained
func IsAny(v string) bool {
	return v == "" || v == Any
}

// rangeSlot binds a filterable numeric column to its Range in Criteria
type rangeSlot struct {
	field columns.Field
	get   func(*Criteria) *Range
}

// ⭐ SSOT: 숫자 범위 필터 대상 컬럼은 여기서만 정의
var rangeSlots = []rangeSlot{
	{columns.FieldClose, func(c *Criteria) *Range { return &c.Price }},
	{columns.FieldChange, func(c *Criteria) *Range { return &c.Change }},
	{columns.FieldVolume, func(c *Criteria) *Range { return &c.Volume }},
	{columns.FieldRelativeVolume, func(c *Criteria) *Range { return &c.RelativeVolume }},
	{columns.FieldMarketCap, func(c *Criteria) *Range { return &c.MarketCap }},
	{columns.FieldPE, func(c *Criteria) *Range { return &c.PE }},
	{columns.FieldPB, func(c *Criteria) *Range { return &c.PB }},
	{columns.FieldDividendYield, func(c *Criteria) *Range { return &c.DividendYield }},
	{columns.FieldBeta, func(c *Criteria) *Range { return &c.Beta }},
	{columns.FieldRSI, func(c *Criteria) *Range { return &c.RSI }},
	{columns.FieldADX, func(c *Criteria) *Range { return &c.ADX }},
	{columns.FieldVolatilityD, func(c *Criteria) *Range { return &c.Volatility }},
	{columns.FieldPerfW, func(c *Criteria) *Range { return &c.PerfWeek }},
	{columns.FieldPerf1M, func(c *Criteria) *Range { return &c.PerfMonth }},
	{columns.FieldPerfY, func(c *Criteria) *Range { return &c.PerfYear }},
	{columns.FieldRecommendAll, func(c *Criteria) *Range { return &c.Rating }},
}

// categorySlots binds the categorical selectors to their columns
var categorySlots = []struct {
	field columns.Field
	get   func(*Criteria) *string
}{
	{columns.FieldSector, func(c *Criteria) *string { return &c.Sector }},
	{columns.FieldIndustry, func(c *Criteria) *string { return &c.Industry }},
	{columns.FieldExchange, func(c *Criteria) *string { return &c.Exchange }},
	{columns.FieldType, func(c *Criteria) *string { return &c.Type }},
}

// RangeFields lists the numeric columns that accept a range filter
func RangeFields() []columns.Field {
	out := make([]columns.Field, len(rangeSlots))
	for i, s := range rangeSlots {
		out[i] = s.field
	}
	return out
}

// CategoryFields lists the categorical columns that accept a selector
func CategoryFields() []columns.Field {
	out := make([]columns.Field, len(categorySlots))
	for i, s := range categorySlots {
		out[i] = s.field
	}
	return out
}

// Range returns the bound pair for a numeric column, false when the column
// is not range-filterable
func (c Criteria) Range(f columns.Field) (Range, bool) {
	for _, s := range rangeSlots {
		if s.field == f {
			return *s.get(&c), true
		}
	}
	return Range{}, false
}

// WithRange returns a copy with one range replaced. Unknown fields leave the
// criteria unchanged.
func (c Criteria) WithRange(f columns.Field, r Range) Criteria {
	for _, s := range rangeSlots {
		if s.field == f {
			*s.get(&c) = r
			return c
		}
	}
	return c
}

// Category returns the selector for a categorical column
func (c Criteria) Category(f columns.Field) (string, bool) {
	for _, s := range categorySlots {
		if s.field == f {
			return *s.get(&c), true
		}
	}
	return "", false
}

// WithSector returns a copy with the primary classification replaced. The
// secondary classification resets to Any whenever the sector changes.
func (c Criteria) WithSector(sector string) Criteria {
	if normalize(sector) != normalize(c.Sector) {
		c.Industry = Any
	}
	c.Sector = sector
	return c
}

// WithCategory returns a copy with one categorical selector replaced,
// applying the sector cascade
func (c Criteria) WithCategory(f columns.Field, value string) Criteria {
	if f == columns.FieldSector {
		return c.WithSector(value)
	}
	for _, s := range categorySlots {
		if s.field == f {
			*s.get(&c) = value
			return c
		}
	}
	return c
}

// Active counts the constraints currently in force
func (c Criteria) Active() int {
	n := 0
	for _, s := range categorySlots {
		if !IsAny(*s.get(&c)) {
			n++
		}
	}
	if strings.TrimSpace(c.Query) != "" {
		n++
	}
	for _, s := range rangeSlots {
		r := s.get(&c)
		if r.Min != nil {
			n++
		}
		if r.Max != nil {
			n++
		}
	}
	return n
}

func normalize(v string) string {
	if IsAny(v) {
		return Any
	}
	return v
}

// key is a canonical encoding of the criteria, used to memoize filter
// results. Equal criteria always produce equal keys.
func (c Criteria) key() string {
	var b strings.Builder
	for _, s := range categorySlots {
		b.WriteString(normalize(*s.get(&c)))
		b.WriteByte('\x1f')
	}
	b.WriteString(strings.ToLower(strings.TrimSpace(c.Query)))
	for _, s := range rangeSlots {
		r := s.get(&c)
		b.WriteByte('\x1f')
		writeBound(&b, r.Min)
		b.WriteByte(':')
		writeBound(&b, r.Max)
	}
	return b.String()
}

func writeBound(b *strings.Builder, v *float64) {
	if v == nil {
		return
	}
	b.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
}

// categoryValue reads a categorical column from a record
func categoryValue(r *contracts.Record, f columns.Field) *string {
	def, ok := columns.Lookup(f)
	if !ok {
		return nil
	}
	return def.Text(r)
}
