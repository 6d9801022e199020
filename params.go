package masto

import (
	"net/url"
	"strconv"

	"github.com/mastokit/masto/pkg/types"
)

// Params is the named-argument set an endpoint method assembles before
// handing a request to the transport. Values may be strings, ints or string
// slices; zero values count as absent and are dropped at encoding time, so
// optional arguments can be added unconditionally.
type Params map[string]any

// encode converts the set into wire-ready form values. Absent values and
// excluded names are dropped, and slice values are renamed with a "[]"
// suffix and kept as repeated fields, matching the service's array-parameter
// convention. Slice order is preserved.
func (p Params) encode(exclude ...string) url.Values {
	values := url.Values{}

	for name, value := range p {
		if excluded(name, exclude) {
			continue
		}
		switch v := value.(type) {
		case nil:
		case string:
			if v != "" {
				values.Set(name, v)
			}
		case int:
			if v != 0 {
				values.Set(name, strconv.Itoa(v))
			}
		case []string:
			for _, item := range v {
				values.Add(name+"[]", item)
			}
		}
	}

	return values
}

func excluded(name string, exclude []string) bool {
	for _, e := range exclude {
		if e == name {
			return true
		}
	}
	return false
}

// rangeParams converts the shared cursor options into a parameter set. A nil
// options pointer means no cursor parameters at all.
func rangeParams(opts *types.RangeOptions) Params {
	if opts == nil {
		return Params{}
	}
	return Params{
		"max_id":   opts.MaxID,
		"since_id": opts.SinceID,
		"limit":    opts.Limit,
	}
}
