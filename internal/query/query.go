// Package query turns listing parameters into a typed plan of filters,
// projection, ordering and pagination. Only a closed set of comparison
// operators is accepted.
package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bookwise/service-booking/pkg/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
)

// Reserved parameters never become filters.
const (
	paramSelect = "select"
	paramSort   = "sort"
	paramPage   = "page"
	paramLimit  = "limit"
)

// Operator is a comparison applied by a Condition.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

var allowedOperators = map[string]Operator{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

// FieldType controls how filter values are decoded.
type FieldType int

const (
	TypeString FieldType = iota
	TypeTime
)

// Field maps one API name to a store column.
type Field struct {
	Column string
	Type   FieldType
}

// FieldSet is the allow-list of fields a listing may filter, select and sort on.
type FieldSet map[string]Field

// Condition is one typed filter. Values holds one element except for OpIn.
type Condition struct {
	Field    string
	Column   string
	Operator Operator
	Values   []interface{}
}

// SortField orders by one column.
type SortField struct {
	Field  string
	Column string
	Desc   bool
}

// Plan is the parsed listing request.
type Plan struct {
	Conditions []Condition
	Select     []string
	Sort       []SortField
	Page       int
	Limit      int

	fields FieldSet
}

// PageRef points at a neighbouring page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination describes the pages around the current one. A side is present
// only when that page actually exists.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Parse builds a Plan from request parameters. Unknown fields and operators
// outside gt, gte, lt, lte and in are rejected.
func Parse(values url.Values, fields FieldSet) (*Plan, error) {
	plan := &Plan{
		Page:   positiveOr(values.Get(paramPage), DefaultPage),
		Limit:  positiveOr(values.Get(paramLimit), DefaultLimit),
		fields: fields,
	}
	if plan.Limit > MaxLimit {
		plan.Limit = MaxLimit
	}
	// page*limit must fit in an int.
	if plan.Page > math.MaxInt/plan.Limit {
		return nil, domain.NewValidationError(fmt.Sprintf("page %d is out of range", plan.Page))
	}

	if raw := values.Get(paramSelect); raw != "" {
		sel, err := parseSelect(raw, fields)
		if err != nil {
			return nil, err
		}
		plan.Select = sel
	}

	sortSpec := values.Get(paramSort)
	if sortSpec == "" {
		sortSpec = "-created_at"
	}
	order, err := parseSort(sortSpec, fields)
	if err != nil {
		return nil, err
	}
	plan.Sort = order

	// Sorted keys keep the generated query stable.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch key {
		case paramSelect, paramSort, paramPage, paramLimit:
			continue
		}
		for _, raw := range values[key] {
			cond, err := parseCondition(key, raw, fields)
			if err != nil {
				return nil, err
			}
			plan.Conditions = append(plan.Conditions, cond)
		}
	}

	return plan, nil
}

// Offset is the number of rows skipped before the current page.
func (p *Plan) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate computes neighbouring pages given the total number of matches.
func (p *Plan) Paginate(total int64) Pagination {
	var pg Pagination
	if int64(p.Page)*int64(p.Limit) < total {
		pg.Next = &PageRef{Page: p.Page + 1, Limit: p.Limit}
	}
	if p.Offset() > 0 {
		pg.Prev = &PageRef{Page: p.Page - 1, Limit: p.Limit}
	}
	return pg
}

// SelectColumns returns the store columns for the projection, or nil when
// every column is wanted.
func (p *Plan) SelectColumns() []string {
	if len(p.Select) == 0 {
		return nil
	}
	cols := make([]string, 0, len(p.Select))
	for _, name := range p.Select {
		col := name
		if f, ok := p.fields[name]; ok {
			col = f.Column
		}
		cols = append(cols, col)
	}
	return cols
}

func parseCondition(key, raw string, fields FieldSet) (Condition, error) {
	name, op, err := splitKey(key)
	if err != nil {
		return Condition{}, err
	}
	f, ok := fields[name]
	if !ok {
		return Condition{}, domain.NewValidationError(fmt.Sprintf("unknown filter field %q", name))
	}

	var parts []string
	if op == OpIn {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			return Condition{}, domain.NewValidationError(fmt.Sprintf("filter %q needs at least one value", key))
		}
	} else {
		parts = []string{raw}
	}

	vals := make([]interface{}, 0, len(parts))
	for _, p := range parts {
		v, err := decodeValue(name, f.Type, p)
		if err != nil {
			return Condition{}, err
		}
		vals = append(vals, v)
	}

	return Condition{Field: name, Column: f.Column, Operator: op, Values: vals}, nil
}

// splitKey splits "field[op]" into its parts. A bare key is equality.
func splitKey(key string) (string, Operator, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", domain.NewValidationError(fmt.Sprintf("malformed filter %q", key))
	}
	token := key[open+1 : len(key)-1]
	op, ok := allowedOperators[token]
	if !ok {
		return "", "", domain.NewValidationError(fmt.Sprintf("unsupported filter operator %q", token))
	}
	return key[:open], op, nil
}

func decodeValue(field string, typ FieldType, raw string) (interface{}, error) {
	switch typ {
	case TypeTime:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t, nil
		}
		return nil, domain.NewValidationError(fmt.Sprintf("invalid date %q for %s", raw, field))
	default:
		return raw, nil
	}
}

func parseSelect(raw string, fields FieldSet) ([]string, error) {
	seen := map[string]bool{"id": true}
	out := []string{"id"}
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		if _, ok := fields[name]; !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown select field %q", name))
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}

func parseSort(raw string, fields FieldSet) ([]SortField, error) {
	var out []SortField
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(name, "-")
		f, ok := fields[name]
		if !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown sort field %q", name))
		}
		out = append(out, SortField{Field: name, Column: f.Column, Desc: desc})
	}
	return out, nil
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
