package api

import (
	"math"
	"strings"

	"rxprev/domain/core"
	"rxprev/domain/prevalence"
	"rxprev/internal/errors"

	"github.com/tidwall/gjson"
)

// DecodeObservations decodes a JSON array of observation objects. dataPath
// selects the array inside a wrapping document; empty means the document
// itself. The first record with a missing or mistyped field fails the whole
// decode.
func DecodeObservations(body []byte, dataPath string) ([]prevalence.Observation, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.InvalidInput("observations are not valid JSON", core.ErrMalformedObservation)
	}

	data := gjson.ParseBytes(body)
	if dataPath != "" {
		data = data.Get(dataPath)
		if !data.Exists() {
			return nil, errors.InvalidInput("data path '"+dataPath+"' not found in document", core.ErrMalformedObservation)
		}
	}
	if !data.IsArray() {
		return nil, errors.InvalidInput("observations must be a JSON array", core.ErrMalformedObservation)
	}

	var (
		observations []prevalence.Observation
		decodeErr    error
		index        int
	)
	data.ForEach(func(_, item gjson.Result) bool {
		o, err := decodeObservation(index, item)
		if err != nil {
			decodeErr = err
			return false
		}
		observations = append(observations, o)
		index++
		return true
	})
	if decodeErr != nil {
		return nil, errors.InvalidInput("failed to decode observations", decodeErr)
	}
	return observations, nil
}

func decodeObservation(index int, item gjson.Result) (prevalence.Observation, error) {
	if !item.IsObject() {
		return prevalence.Observation{}, core.NewMalformedObservationError(index, "", "record is not an object")
	}
	d := fieldDecoder{index: index, item: item}
	o := prevalence.Observation{
		Gene:     d.str("gene"),
		Position: d.integer("position"),
		AA:       d.str("aa"),
		Cohort:   prevalence.Cohort(d.str("rx_type")),
		Subtype:  d.str("subtype"),
		Count:    d.integer("count"),
		Total:    d.integer("total"),
	}
	o.Fraction, o.IntegralFraction = d.number("percent")
	return o, d.err
}

// fieldDecoder keeps the first field error of a record.
type fieldDecoder struct {
	index int
	item  gjson.Result
	err   error
}

func (d *fieldDecoder) get(field string) (gjson.Result, bool) {
	if d.err != nil {
		return gjson.Result{}, false
	}
	r := d.item.Get(field)
	if !r.Exists() || r.Type == gjson.Null {
		d.err = core.NewMalformedObservationError(d.index, field, "is missing")
		return r, false
	}
	return r, true
}

// str trims surrounding whitespace, as the tabular reader does for cells.
func (d *fieldDecoder) str(field string) string {
	r, ok := d.get(field)
	if !ok {
		return ""
	}
	if r.Type != gjson.String {
		d.err = core.NewMalformedObservationError(d.index, field, "must be a string")
		return ""
	}
	return strings.TrimSpace(r.Str)
}

func (d *fieldDecoder) integer(field string) int {
	r, ok := d.get(field)
	if !ok {
		return 0
	}
	if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) {
		d.err = core.NewMalformedObservationError(d.index, field, "must be an integer")
		return 0
	}
	return int(r.Int())
}

// number also reports whether the value was written as an integer literal.
func (d *fieldDecoder) number(field string) (float64, bool) {
	r, ok := d.get(field)
	if !ok {
		return 0, false
	}
	if r.Type != gjson.Number {
		d.err = core.NewMalformedObservationError(d.index, field, "must be a number")
		return 0, false
	}
	return r.Num, prevalence.IsIntegerLiteral(r.Raw)
}
