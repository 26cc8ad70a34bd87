// Package features implements the transaction feature pipeline: validation of
// raw client records, assembly into the fixed-order vector the fitted scaler
// was trained against, and the canonical sample record used for manual testing.
package features

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// VectorSize is the dimensionality of the assembled feature vector:
// Time, V1..V28, Amount. The scaler and classifier artifacts were fitted
// against exactly this layout.
const VectorSize = 30

// AnonFeatureCount is the number of anonymized PCA features (V1..V28).
const AnonFeatureCount = 28

// Transaction is a validated transaction record. It can only be obtained
// through Validate, which guarantees all required fields were present and
// numeric before any scoring happens.
type Transaction struct {
	Time   float64
	V      [AnonFeatureCount]float64
	Amount float64

	// AmountFlagged is set when Amount exceeded the soft ceiling. The
	// transaction is still scored; the flag only drives observability.
	AmountFlagged bool

	validated bool
}

// Vector arranges the record into the fixed order the scaler was fitted with:
// Time first, V1..V28 in ascending index order, Amount last. Reordering this
// silently corrupts scores, so the layout lives in exactly one place.
func (t *Transaction) Vector() ([]float64, error) {
	if !t.validated {
		return nil, fmt.Errorf("cannot assemble vector from unvalidated transaction")
	}

	vec := make([]float64, 0, VectorSize)
	vec = append(vec, t.Time)
	vec = append(vec, t.V[:]...)
	vec = append(vec, t.Amount)
	return vec, nil
}

// featureName returns the wire name of an anonymized feature (1-based).
func featureName(i int) string {
	return fmt.Sprintf("V%d", i)
}

// toFloat coerces the loosely-typed values that arrive in JSON bodies.
// Clients send plain numbers, but string-encoded numbers are accepted too.
func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// SampleTransaction returns the canonical example record (a real row from the
// public card-fraud dataset) used by the /sample-transaction endpoint and in
// documentation.
func SampleTransaction() map[string]interface{} {
	return map[string]interface{}{
		"V1":     -1.3598071336738,
		"V2":     -0.0727811733098497,
		"V3":     2.53634673796914,
		"V4":     1.37815522427443,
		"V5":     -0.338320769942518,
		"V6":     0.462387777762292,
		"V7":     0.239598554061257,
		"V8":     0.0986979012610507,
		"V9":     0.363786969611213,
		"V10":    0.0907941719789316,
		"V11":    -0.551599533260813,
		"V12":    -0.617800855762348,
		"V13":    -0.991389847235408,
		"V14":    -0.311169353699879,
		"V15":    1.46817697209427,
		"V16":    -0.470400525259478,
		"V17":    0.207971241929242,
		"V18":    0.0257905801985591,
		"V19":    0.403992960255733,
		"V20":    0.251412098239705,
		"V21":    -0.018306777944153,
		"V22":    0.277837575558899,
		"V23":    -0.110473910188767,
		"V24":    0.0669280749146731,
		"V25":    0.128539358273528,
		"V26":    -0.189114843888824,
		"V27":    0.133558376740387,
		"V28":    -0.0210530534538215,
		"Amount": 149.62,
	}
}
