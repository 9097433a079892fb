// Package query builds MongoDB filters and find options from list
// endpoint query strings: field selection, sorting, pagination and
// comparison operators like ?averageCost[lte]=10000.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
)

var opKey = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\[(gt|gte|lt|lte|in)\]$`)

// reserved params never become filter fields
var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

type Options struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.D
	Page       int
	Limit      int
}

// Parse turns raw query params into mongo filter and option values.
// It accepts the plain map form so it stays independent of the web
// framework.
func Parse(params map[string]string) Options {
	o := Options{
		Filter: bson.M{},
		Page:   DefaultPage,
		Limit:  DefaultLimit,
	}

	for key, raw := range params {
		if reserved[key] {
			continue
		}
		if m := opKey.FindStringSubmatch(key); m != nil {
			field, op := m[1], m[2]
			cond, ok := o.Filter[field].(bson.M)
			if !ok {
				cond = bson.M{}
				o.Filter[field] = cond
			}
			if op == "in" {
				values := strings.Split(raw, ",")
				list := make(bson.A, 0, len(values))
				for _, v := range values {
					list = append(list, coerce(v))
				}
				cond["$in"] = list
			} else {
				cond["$"+op] = coerce(raw)
			}
			continue
		}
		o.Filter[key] = coerce(raw)
	}

	if sel := params["select"]; sel != "" {
		for _, field := range strings.Split(sel, ",") {
			o.Projection = append(o.Projection, bson.E{Key: field, Value: 1})
		}
	}

	if sort := params["sort"]; sort != "" {
		for _, field := range strings.Split(sort, ",") {
			dir := 1
			if strings.HasPrefix(field, "-") {
				dir = -1
				field = field[1:]
			}
			o.Sort = append(o.Sort, bson.E{Key: field, Value: dir})
		}
	} else {
		o.Sort = bson.D{{Key: "createdAt", Value: -1}}
	}

	if p, err := strconv.Atoi(params["page"]); err == nil && p > 0 {
		o.Page = p
	}
	if l, err := strconv.Atoi(params["limit"]); err == nil && l > 0 {
		o.Limit = l
	}
	return o
}

// FindOptions converts the parsed values into driver options.
func (o Options) FindOptions() *options.FindOptions {
	fo := options.Find().
		SetSort(o.Sort).
		SetSkip(int64((o.Page - 1) * o.Limit)).
		SetLimit(int64(o.Limit))
	if o.Projection != nil {
		fo.SetProjection(o.Projection)
	}
	return fo
}

type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *Page `json:"next,omitempty"`
	Prev *Page `json:"prev,omitempty"`
}

// Paginate computes the next/prev markers for a result envelope given
// the total number of matching documents.
func (o Options) Paginate(total int64) Pagination {
	var p Pagination
	end := int64(o.Page * o.Limit)
	if end < total {
		p.Next = &Page{Page: o.Page + 1, Limit: o.Limit}
	}
	if o.Page > 1 {
		p.Prev = &Page{Page: o.Page - 1, Limit: o.Limit}
	}
	return p
}

// coerce maps query string values to the types mongo should compare
// against: numbers and booleans when they parse, strings otherwise.
func coerce(s string) interface{} {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
