package query

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestParseFilters(t *testing.T) {
	t.Run("plain equality", func(t *testing.T) {
		o := Parse(map[string]string{"housing": "true", "city": "Boston"})
		if o.Filter["housing"] != true {
			t.Errorf("housing = %v, want true", o.Filter["housing"])
		}
		if o.Filter["city"] != "Boston" {
			t.Errorf("city = %v, want Boston", o.Filter["city"])
		}
	})

	t.Run("comparison operator", func(t *testing.T) {
		o := Parse(map[string]string{"averageCost[lte]": "10000"})
		cond, ok := o.Filter["averageCost"].(bson.M)
		if !ok {
			t.Fatalf("averageCost filter = %T, want bson.M", o.Filter["averageCost"])
		}
		if cond["$lte"] != float64(10000) {
			t.Errorf("$lte = %v, want 10000", cond["$lte"])
		}
	})

	t.Run("two operators on one field", func(t *testing.T) {
		o := Parse(map[string]string{
			"tuition[gte]": "1000",
			"tuition[lte]": "5000",
		})
		cond := o.Filter["tuition"].(bson.M)
		if cond["$gte"] != float64(1000) || cond["$lte"] != float64(5000) {
			t.Errorf("tuition cond = %v", cond)
		}
	})

	t.Run("in operator splits commas", func(t *testing.T) {
		o := Parse(map[string]string{"careers[in]": "Business,Other"})
		cond := o.Filter["careers"].(bson.M)
		want := bson.A{"Business", "Other"}
		if !reflect.DeepEqual(cond["$in"], want) {
			t.Errorf("$in = %v, want %v", cond["$in"], want)
		}
	})

	t.Run("reserved params are not filters", func(t *testing.T) {
		o := Parse(map[string]string{"select": "name", "sort": "name", "page": "2", "limit": "5"})
		if len(o.Filter) != 0 {
			t.Errorf("filter = %v, want empty", o.Filter)
		}
	})
}

func TestParseOptions(t *testing.T) {
	t.Run("select builds projection", func(t *testing.T) {
		o := Parse(map[string]string{"select": "name,description"})
		want := bson.D{{Key: "name", Value: 1}, {Key: "description", Value: 1}}
		if !reflect.DeepEqual(o.Projection, want) {
			t.Errorf("projection = %v, want %v", o.Projection, want)
		}
	})

	t.Run("sort with descending prefix", func(t *testing.T) {
		o := Parse(map[string]string{"sort": "-averageCost,name"})
		want := bson.D{{Key: "averageCost", Value: -1}, {Key: "name", Value: 1}}
		if !reflect.DeepEqual(o.Sort, want) {
			t.Errorf("sort = %v, want %v", o.Sort, want)
		}
	})

	t.Run("default sort is newest first", func(t *testing.T) {
		o := Parse(map[string]string{})
		want := bson.D{{Key: "createdAt", Value: -1}}
		if !reflect.DeepEqual(o.Sort, want) {
			t.Errorf("sort = %v, want %v", o.Sort, want)
		}
	})

	t.Run("pagination defaults", func(t *testing.T) {
		o := Parse(map[string]string{})
		if o.Page != DefaultPage || o.Limit != DefaultLimit {
			t.Errorf("page/limit = %d/%d, want %d/%d", o.Page, o.Limit, DefaultPage, DefaultLimit)
		}
	})

	t.Run("invalid page falls back", func(t *testing.T) {
		o := Parse(map[string]string{"page": "zero", "limit": "-3"})
		if o.Page != DefaultPage || o.Limit != DefaultLimit {
			t.Errorf("page/limit = %d/%d, want defaults", o.Page, o.Limit)
		}
	})
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int64
		wantNext bool
		wantPrev bool
	}{
		{"first of many", 1, 10, 35, true, false},
		{"middle", 2, 10, 35, true, true},
		{"last", 4, 10, 35, false, true},
		{"exact boundary", 2, 10, 20, false, true},
		{"single page", 1, 25, 10, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Options{Page: tt.page, Limit: tt.limit}
			p := o.Paginate(tt.total)
			if (p.Next != nil) != tt.wantNext {
				t.Errorf("next = %v, want present=%v", p.Next, tt.wantNext)
			}
			if (p.Prev != nil) != tt.wantPrev {
				t.Errorf("prev = %v, want present=%v", p.Prev, tt.wantPrev)
			}
			if p.Next != nil && p.Next.Page != tt.page+1 {
				t.Errorf("next.page = %d, want %d", p.Next.Page, tt.page+1)
			}
		})
	}
}

func TestFindOptions(t *testing.T) {
	o := Parse(map[string]string{"page": "3", "limit": "10"})
	fo := o.FindOptions()
	if *fo.Skip != 20 {
		t.Errorf("skip = %d, want 20", *fo.Skip)
	}
	if *fo.Limit != 10 {
		t.Errorf("limit = %d, want 10", *fo.Limit)
	}
}
