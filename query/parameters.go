package query

import (
	"time"

	"github.com/pkg/errors"
)

// Parameters supplies values for :name placeholders in a query.
type Parameters map[string]interface{}

func (p Parameters) lookup(name string) (interface{}, error) {
	value, ok := p[name]
	if !ok {
		return nil, errors.Errorf("missing parameter: %s", name)
	}
	if t, ok := value.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano), nil
	}
	return value, nil
}
