package columns

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/internal/contracts"
)

func TestRegistry_CoversEveryField(t *testing.T) {
	defs := All()
	require.Len(t, defs, int(fieldCount)-1)

	seenID := make(map[string]bool)
	seenKey := make(map[string]bool)
	for _, def := range defs {
		assert.NotEmpty(t, def.ID, "field %d has no id", def.Field)
		assert.False(t, seenID[def.ID], "duplicate id %s", def.ID)
		assert.False(t, seenKey[def.Key], "duplicate key %s", def.Key)
		seenID[def.ID] = true
		seenKey[def.Key] = true

		got, ok := Lookup(def.Field)
		require.True(t, ok)
		assert.Equal(t, def.ID, got.ID)

		switch def.Kind {
		case KindNumeric:
			assert.NotNil(t, def.number, "%s has no numeric accessor", def.ID)
		default:
			assert.NotNil(t, def.text, "%s has no text accessor", def.ID)
		}
	}
}

func TestRegistry_SinglePinnedColumn(t *testing.T) {
	var pinned []Field
	for _, def := range All() {
		if def.Pinned() {
			pinned = append(pinned, def.Field)
		}
	}
	assert.Equal(t, []Field{FieldTicker}, pinned)
}

func TestTickerStripsExchangePrefix(t *testing.T) {
	def, ok := Lookup(FieldTicker)
	require.True(t, ok)

	got := def.Text(&contracts.Record{Symbol: "ASX:BHP"})
	require.NotNil(t, got)
	assert.Equal(t, "BHP", *got)
}

func TestAccessors(t *testing.T) {
	r := &contracts.Record{
		Symbol:    "ASX:CBA",
		RSI:       contracts.Float(61.5),
		MarketCap: contracts.Float(2.1e11),
		Sector:    contracts.String("Finance"),
	}

	rsi, _ := Lookup(FieldRSI)
	assert.Equal(t, 61.5, *rsi.Number(r))
	assert.Nil(t, rsi.Text(r))

	mcap, _ := Lookup(FieldMarketCap)
	assert.Equal(t, 2.1e11, *mcap.Number(r))

	adx, _ := Lookup(FieldADX)
	assert.Nil(t, adx.Number(r))

	sector, _ := Lookup(FieldSector)
	assert.Equal(t, "Finance", *sector.Text(r))
	assert.Nil(t, sector.Number(r))
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
		ok   bool
	}{
		{"market_cap", FieldMarketCap, true},
		{"market_cap_basic", FieldMarketCap, true},
		{"RSI", FieldRSI, true},
		{"rsi", FieldRSI, true},
		{"Perf.W", FieldPerfW, true},
		{"ADX+DI", FieldADXPlusDI, true},
		{"ticker", FieldTicker, true},
		{"nope", FieldNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseField(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestField_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		F Field `json:"f"`
	}{FieldDividendYield})
	require.NoError(t, err)
	assert.JSONEq(t, `{"f":"dividend_yield"}`, string(data))

	var out struct {
		F Field `json:"f"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"f":"Recommend.All"}`), &out))
	assert.Equal(t, FieldRecommendAll, out.F)

	assert.Error(t, json.Unmarshal([]byte(`{"f":"bogus"}`), &out))
}

func TestByGroup(t *testing.T) {
	ratings := ByGroup(GroupRatings)
	require.Len(t, ratings, 3)
	for _, def := range ratings {
		assert.Equal(t, FormatRating, def.Format)
	}

	total := 0
	for _, g := range Groups() {
		total += len(ByGroup(g))
	}
	assert.Equal(t, len(All()), total)
}

func TestScannerKeys(t *testing.T) {
	keys := ScannerKeys()
	assert.Len(t, keys, len(All())-1)
	assert.NotContains(t, keys, "ticker")
	assert.Contains(t, keys, "Recommend.All")
}

func TestVisibility_Defaults(t *testing.T) {
	v := NewVisibility()

	assert.True(t, v.IsVisible(FieldTicker))
	assert.True(t, v.IsVisible(FieldClose))
	assert.True(t, v.IsVisible(FieldSector))
	assert.False(t, v.IsVisible(FieldSMA200))
	assert.Equal(t, FieldTicker, v.Fields()[0])
}

func TestVisibility_Toggle(t *testing.T) {
	v := NewVisibility()

	assert.True(t, v.Toggle(FieldSMA200, true))
	assert.True(t, v.IsVisible(FieldSMA200))
	assert.False(t, v.Toggle(FieldSMA200, true), "no change")

	assert.False(t, v.Toggle(FieldTicker, false), "pinned column ignores toggles")
	assert.True(t, v.IsVisible(FieldTicker))

	assert.False(t, v.Toggle(FieldNone, true))
	assert.False(t, v.Toggle(Field(9999), true))
}

func TestVisibility_ShowHideAll(t *testing.T) {
	v := NewVisibility()

	v.HideAll()
	assert.Equal(t, []Field{FieldTicker}, v.Fields())

	v.ShowAll()
	assert.Len(t, v.Visible(), len(All()))
}

func TestVisibility_Groups(t *testing.T) {
	v := NewVisibility()
	v.HideAll()

	v.ShowGroup(GroupMovingAverages)
	assert.Len(t, v.Visible(), 1+len(ByGroup(GroupMovingAverages)))

	v.HideGroup(GroupMovingAverages)
	v.HideGroup(GroupBasic)
	assert.Equal(t, []Field{FieldTicker}, v.Fields())
}

func TestVisibility_Clone(t *testing.T) {
	v := NewVisibility()
	c := v.Clone()

	c.Toggle(FieldSMA50, true)
	assert.True(t, c.IsVisible(FieldSMA50))
	assert.False(t, v.IsVisible(FieldSMA50))
}
