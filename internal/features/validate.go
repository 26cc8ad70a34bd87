package features

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultAmountSoftCeiling is the amount above which a transaction is flagged
// for observability. Flagged transactions are still scored normally.
const DefaultAmountSoftCeiling = 100_000.0

// ValidationError describes why a raw record was rejected. It is a client
// error, never a system fault: handlers report it with a 400 and the scoring
// pipeline never sees the record.
type ValidationError struct {
	Missing []string // all absent required fields, in feature order
	Field   string   // first field with a non-numeric or out-of-range value
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing features: %s", strings.Join(e.Missing, ", "))
	}
	if e.Field != "" {
		return fmt.Sprintf("feature %s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// Validate checks a raw record for presence, numeric coercibility and
// range sanity, and returns the structured transaction on success. This is
// the single entry point into the scoring pipeline: a Transaction cannot be
// constructed any other way, so downstream code never touches unvalidated
// data.
//
// softCeiling <= 0 falls back to DefaultAmountSoftCeiling.
func Validate(raw map[string]interface{}, softCeiling float64) (*Transaction, error) {
	if softCeiling <= 0 {
		softCeiling = DefaultAmountSoftCeiling
	}

	var missing []string
	for i := 1; i <= AnonFeatureCount; i++ {
		if _, ok := raw[featureName(i)]; !ok {
			missing = append(missing, featureName(i))
		}
	}
	if _, ok := raw["Amount"]; !ok {
		missing = append(missing, "Amount")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	txn := &Transaction{}
	for i := 1; i <= AnonFeatureCount; i++ {
		name := featureName(i)
		f, ok := toFloat(raw[name])
		if !ok {
			return nil, &ValidationError{Field: name, Reason: "must be a number"}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &ValidationError{Field: name, Reason: "must be a finite number"}
		}
		txn.V[i-1] = f
	}

	amount, ok := toFloat(raw["Amount"])
	if !ok {
		return nil, &ValidationError{Field: "Amount", Reason: "must be a number"}
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, &ValidationError{Field: "Amount", Reason: "must be a finite number"}
	}
	if amount < 0 {
		return nil, &ValidationError{Field: "Amount", Reason: "cannot be negative"}
	}
	txn.Amount = amount

	// Soft ceiling: flag, never reject. The training data has legitimate
	// large transactions, so a hard cap would change model semantics.
	if amount > softCeiling {
		log.Warn().Float64("amount", amount).Float64("ceiling", softCeiling).Msg("transaction amount above soft ceiling")
		txn.AmountFlagged = true
	}

	// Time is optional and defaults to zero for compatibility with how the
	// model was trained.
	if rawTime, ok := raw["Time"]; ok {
		f, ok := toFloat(rawTime)
		if !ok {
			return nil, &ValidationError{Field: "Time", Reason: "must be a number"}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &ValidationError{Field: "Time", Reason: "must be a finite number"}
		}
		txn.Time = f
	}

	txn.validated = true
	return txn, nil
}
