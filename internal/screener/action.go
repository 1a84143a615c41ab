package screener

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wonny/asx-screener/internal/columns"
)

// ActionType names a user action on a session
type ActionType string

const (
	ActionSetCriteria    ActionType = "set_criteria"
	ActionSetSector      ActionType = "set_sector"
	ActionSetIndustry    ActionType = "set_industry"
	ActionSetCategory    ActionType = "set_category"
	ActionSetRange       ActionType = "set_range"
	ActionSetQuery       ActionType = "set_query"
	ActionResetFilters   ActionType = "reset_filters"
	ActionToggleSort     ActionType = "toggle_sort"
	ActionSetSort        ActionType = "set_sort"
	ActionClearSort      ActionType = "clear_sort"
	ActionToggleColumn   ActionType = "toggle_column"
	ActionShowAllColumns ActionType = "show_all_columns"
	ActionHideAllColumns ActionType = "hide_all_columns"
	ActionShowGroup      ActionType = "show_group"
	ActionHideGroup      ActionType = "hide_group"
	ActionSetPageSize    ActionType = "set_page_size"
	ActionSetPage        ActionType = "set_page"
	ActionNextPage       ActionType = "next_page"
	ActionPrevPage       ActionType = "prev_page"
	ActionApplyPreset    ActionType = "apply_preset"
	ActionRefresh        ActionType = "refresh"
)

// ErrUnknownAction is returned for an action type the controller does not know
var ErrUnknownAction = errors.New("unknown action")

// ErrUnknownPreset is returned when apply_preset names no configured preset
var ErrUnknownPreset = errors.New("unknown preset")

// Action is the wire form of one transition (HTTP body, websocket message).
// Only the members relevant to Type are read.
type Action struct {
	Type     ActionType    `json:"type"`
	Field    columns.Field `json:"field,omitempty"`
	Value    string        `json:"value,omitempty"`
	Visible  bool          `json:"visible,omitempty"`
	Range    Range         `json:"range,omitempty"`
	Criteria *Criteria     `json:"criteria,omitempty"`
	Sort     *SortSpec     `json:"sort,omitempty"`
	Group    columns.Group `json:"group,omitempty"`
	Page     int           `json:"page,omitempty"`
	PageSize int           `json:"page_size,omitempty"`
	Preset   string        `json:"preset,omitempty"`

	// set when a sort action names a column that does not exist
	unknownSort bool
}

// UnmarshalJSON decodes an action. A sort action naming an unknown column
// decodes fine and applies as a no-op that keeps the current order; unknown
// columns in any other action are an error.
func (a *Action) UnmarshalJSON(data []byte) error {
	type plain Action
	var raw struct {
		plain
		Field json.RawMessage `json:"field,omitempty"`
		Sort  *struct {
			Field     json.RawMessage `json:"field"`
			Direction Direction       `json:"direction"`
		} `json:"sort,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Action(raw.plain)
	sorting := a.Type == ActionToggleSort || a.Type == ActionSetSort

	field, err := decodeField(raw.Field)
	switch {
	case err == nil:
		a.Field = field
	case sorting:
		a.unknownSort = true
	default:
		return err
	}

	if raw.Sort != nil {
		field, err := decodeField(raw.Sort.Field)
		switch {
		case err == nil:
			a.Sort = &SortSpec{Field: field, Direction: raw.Sort.Direction}
		case sorting:
			a.unknownSort = true
		default:
			return err
		}
	}
	return nil
}

func decodeField(data json.RawMessage) (columns.Field, error) {
	var f columns.Field
	if len(data) == 0 || string(data) == "null" {
		return f, nil
	}
	err := json.Unmarshal(data, &f)
	return f, err
}

// Apply dispatches an action to the matching transition. Errors come only
// from malformed actions; the transitions themselves never fail.
func (c *Controller) Apply(a Action) (View, error) {
	if a.unknownSort {
		return c.View(), nil
	}

	switch a.Type {
	case ActionSetCriteria:
		if a.Criteria == nil {
			return View{}, fmt.Errorf("%s: criteria required", a.Type)
		}
		return c.SetCriteria(*a.Criteria), nil
	case ActionSetSector:
		return c.SetSector(a.Value), nil
	case ActionSetIndustry:
		return c.SetIndustry(a.Value), nil
	case ActionSetCategory:
		return c.SetCategory(a.Field, a.Value), nil
	case ActionSetRange:
		return c.SetRange(a.Field, a.Range), nil
	case ActionSetQuery:
		return c.SetQuery(a.Value), nil
	case ActionResetFilters:
		return c.ResetFilters(), nil
	case ActionToggleSort:
		return c.ToggleSort(a.Field), nil
	case ActionSetSort:
		if a.Sort == nil {
			return c.ClearSort(), nil
		}
		return c.SetSort(*a.Sort), nil
	case ActionClearSort:
		return c.ClearSort(), nil
	case ActionToggleColumn:
		return c.ToggleColumn(a.Field, a.Visible), nil
	case ActionShowAllColumns:
		return c.ShowAllColumns(), nil
	case ActionHideAllColumns:
		return c.HideAllColumns(), nil
	case ActionShowGroup:
		return c.ShowGroup(a.Group), nil
	case ActionHideGroup:
		return c.HideGroup(a.Group), nil
	case ActionSetPageSize:
		return c.SetPageSize(a.PageSize), nil
	case ActionSetPage:
		return c.SetPage(a.Page), nil
	case ActionNextPage:
		return c.NextPage(), nil
	case ActionPrevPage:
		return c.PrevPage(), nil
	case ActionApplyPreset:
		view, ok := c.ApplyPresetByName(a.Preset)
		if !ok {
			return view, fmt.Errorf("%q: %w", a.Preset, ErrUnknownPreset)
		}
		return view, nil
	case ActionRefresh:
		return c.View(), nil
	default:
		return View{}, fmt.Errorf("%q: %w", a.Type, ErrUnknownAction)
	}
}
