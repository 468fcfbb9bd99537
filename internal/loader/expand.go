package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"jobetl/internal/models"
	"jobetl/internal/output"
)

// ErrInvalidValue is returned when a processed cell does not fit its staging column.
var ErrInvalidValue = errors.New("invalid value for staging column")

type location struct {
	city, state, country any
}

// expand turns processed records into staging rows, one per location (and,
// for companies, one per location and industry pair).
func expand(kind models.EntityKind, file *output.File, cols []Column, d Dialect) ([][]any, error) {
	var rows [][]any

	for n, rec := range file.Records {
		cell := func(name string) string {
			if i := file.Index(name); i >= 0 && i < len(rec) {
				return rec[i]
			}

			return ""
		}

		base := make(map[string]any, len(cols))

		for _, c := range cols {
			if strings.HasPrefix(c.Name, "location_") || c.Name == "industry_name" {
				continue
			}

			v, err := convert(cell(c.Name), c.Type, d)
			if err != nil {
				return nil, fmt.Errorf("record %d column %s: %w", n+1, c.Name, err)
			}

			base[c.Name] = v
		}

		industries := []any{nil}
		if kind == models.KindCompanies {
			industries = parseIndustries(cell("industries"))
		}

		for _, loc := range parseLocations(cell("locations")) {
			for _, industry := range industries {
				row := make([]any, len(cols))

				for i, c := range cols {
					switch c.Name {
					case "location_city":
						row[i] = loc.city
					case "location_state":
						row[i] = loc.state
					case "location_country":
						row[i] = loc.country
					case "industry_name":
						row[i] = industry
					default:
						row[i] = base[c.Name]
					}
				}

				rows = append(rows, row)
			}
		}
	}

	return rows, nil
}

func convert(s, typ string, d Dialect) (any, error) {
	if s == "" {
		return nil, nil
	}

	switch typ {
	case typeInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, s)
		}

		return n, nil
	case typeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
		}

		return f, nil
	case typeTime:
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not RFC 3339", ErrInvalidValue, s)
		}

		return d.timeValue(t), nil
	default:
		return s, nil
	}
}

// parseLocations decodes a locations cell. Rows without a usable location
// still produce a single row with empty location fields.
func parseLocations(s string) []location {
	var raw []map[string]any
	if s == "" || json.Unmarshal([]byte(s), &raw) != nil || len(raw) == 0 {
		return []location{{}}
	}

	out := make([]location, 0, len(raw))

	for _, m := range raw {
		out = append(out, location{
			city:    m["city"],
			state:   firstNonNil(m["subdivision_code"], m["state"]),
			country: firstNonNil(m["country_code"], m["country"]),
		})
	}

	return out
}

func parseIndustries(s string) []any {
	var raw []map[string]any
	if s == "" || json.Unmarshal([]byte(s), &raw) != nil || len(raw) == 0 {
		return []any{nil}
	}

	out := make([]any, 0, len(raw))
	for _, m := range raw {
		out = append(out, m["name"])
	}

	return out
}

func firstNonNil(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}

	return nil
}
