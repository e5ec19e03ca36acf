package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StatFeatures is the fixed order of the base stats that make up a stats vector.
var StatFeatures = []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"}

// FeatureDimensions is the length of every stats vector.
const FeatureDimensions = 6

// FeatureVector is a min-max normalized stats tuple in StatFeatures order.
// A nil vector is stored as NULL. It is persisted in pgvector text format
// ("[0.1,0.2,...]") so the same literal works for postgres vector columns
// and for text columns on other dialects.
type FeatureVector []float64

// GormDataType is the generic data type used by the schema parser.
func (FeatureVector) GormDataType() string {
	return "text"
}

// GormDBDataType picks the column type per dialect.
func (FeatureVector) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("vector(%d)", FeatureDimensions)
	}
	return "text"
}

// Value implements the driver.Valuer interface for database serialization.
func (v FeatureVector) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	if len(v) != FeatureDimensions {
		return nil, fmt.Errorf("feature vector must have %d components, got %d", FeatureDimensions, len(v))
	}
	return v.Literal(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (v *FeatureVector) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	var raw string
	switch t := value.(type) {
	case string:
		raw = t
	case []byte:
		raw = string(t)
	default:
		return errors.New("failed to scan FeatureVector")
	}
	parsed, err := ParseFeatureVector(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Literal renders the vector in pgvector text format.
func (v FeatureVector) Literal() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 6, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Float32 converts the vector for clients that expect single precision.
func (v FeatureVector) Float32() []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// Distance returns the Euclidean (L2) distance between two vectors,
// matching pgvector's <-> operator.
func (v FeatureVector) Distance(other FeatureVector) float64 {
	if len(v) != len(other) {
		return math.Inf(1)
	}
	var sum float64
	for i := range v {
		d := v[i] - other[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// ParseFeatureVector parses a pgvector text literal.
func ParseFeatureVector(raw string) (FeatureVector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return nil, fmt.Errorf("invalid feature vector literal %q", raw)
	}
	body := strings.TrimSpace(raw[1 : len(raw)-1])
	if body == "" {
		return nil, nil
	}
	fields := strings.Split(body, ",")
	out := make(FeatureVector, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid feature vector component %q: %w", f, err)
		}
		out[i] = x
	}
	return out, nil
}
