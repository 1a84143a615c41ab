package handlers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/screener"
)

func TestParseScreenQuery_Order(t *testing.T) {
	values := url.Values{
		"preset":    {"oversold"},
		"sector":    {"Finance"},
		"q":         {"bank"},
		"min.rsi":   {"20"},
		"max.pe":    {"15"},
		"sort":      {"change"},
		"dir":       {"desc"},
		"columns":   {"close, rsi"},
		"page_size": {"25"},
		"page":      {"2"},
	}

	actions, err := ParseScreenQuery(values)
	require.NoError(t, err)

	types := make([]screener.ActionType, len(actions))
	for i, a := range actions {
		types[i] = a.Type
	}
	assert.Equal(t, []screener.ActionType{
		screener.ActionApplyPreset,
		screener.ActionSetCategory,
		screener.ActionSetQuery,
		screener.ActionSetRange, // pe
		screener.ActionSetRange, // rsi
		screener.ActionSetSort,
		screener.ActionHideAllColumns,
		screener.ActionToggleColumn,
		screener.ActionToggleColumn,
		screener.ActionSetPageSize,
		screener.ActionSetPage,
	}, types)

	assert.Equal(t, "oversold", actions[0].Preset)
	assert.Equal(t, columns.FieldSector, actions[1].Field)
	assert.Equal(t, "Finance", actions[1].Value)

	assert.Equal(t, columns.FieldPE, actions[3].Field)
	assert.Nil(t, actions[3].Range.Min)
	assert.Equal(t, 15.0, *actions[3].Range.Max)
	assert.Equal(t, columns.FieldRSI, actions[4].Field)
	assert.Equal(t, 20.0, *actions[4].Range.Min)

	assert.Equal(t, &screener.SortSpec{Field: columns.FieldChange, Direction: screener.Descending}, actions[5].Sort)
	assert.Equal(t, columns.FieldRSI, actions[8].Field)
	assert.True(t, actions[8].Visible)
	assert.Equal(t, 25, actions[9].PageSize)
	assert.Equal(t, 2, actions[10].Page)
}

func TestParseScreenQuery_MinMaxSameField(t *testing.T) {
	actions, err := ParseScreenQuery(url.Values{"min.rsi": {"30"}, "max.rsi": {"70"}})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, 30.0, *actions[0].Range.Min)
	assert.Equal(t, 70.0, *actions[0].Range.Max)
}

func TestParseScreenQuery_Empty(t *testing.T) {
	actions, err := ParseScreenQuery(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestParseScreenQuery_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
	}{
		{"bad direction", url.Values{"sort": {"rsi"}, "dir": {"sideways"}}},
		{"unknown range field", url.Values{"min.nope": {"1"}}},
		{"range on text column", url.Values{"min.sector": {"1"}}},
		{"bad range value", url.Values{"max.rsi": {"high"}}},
		{"NaN bound", url.Values{"min.rsi": {"NaN"}}},
		{"infinite bound", url.Values{"max.pe": {"+Inf"}}},
		{"negative infinite bound", url.Values{"min.change": {"-inf"}}},
		{"unknown column", url.Values{"columns": {"close,nope"}}},
		{"bad page size", url.Values{"page_size": {"many"}}},
		{"bad page", url.Values{"page": {"last"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScreenQuery(tt.values)
			assert.Error(t, err)
		})
	}
}

func TestParseScreenQuery_UnknownSortIgnored(t *testing.T) {
	actions, err := ParseScreenQuery(url.Values{"sort": {"nope"}, "dir": {"sideways"}, "q": {"bhp"}})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, screener.ActionSetQuery, actions[0].Type)
}
