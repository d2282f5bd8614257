package models

// Statistical threshold methods.
const (
	MethodIQR    = "iqr"
	MethodStdDev = "stddev"
)

// Result provenance: whether the returned classification came from the
// model reply or from the deterministic engine alone.
const (
	SourceDeterministic = "deterministic"
	SourceModel         = "model"
)

// CategoryKind identifies one of the five fixed behavioral categories.
type CategoryKind string

const (
	CategoryDoubleHigh    CategoryKind = "double_high"
	CategoryHighPrimary   CategoryKind = "high_primary"
	CategoryHighSecondary CategoryKind = "high_secondary"
	CategoryMiddle        CategoryKind = "middle"
	CategoryLow           CategoryKind = "low"
)

// CategoryKinds is the fixed emission order. Classification evaluates the
// decision branches in exactly this order; downstream consumers rely on
// results always containing all five in this order.
var CategoryKinds = []CategoryKind{
	CategoryDoubleHigh,
	CategoryHighPrimary,
	CategoryHighSecondary,
	CategoryMiddle,
	CategoryLow,
}

// CategoryDescriptor holds the static display attributes of a category.
type CategoryDescriptor struct {
	Description string
	Frequency   string
	Interval    string
	Risk        string
}

// CategoryDescriptors maps each kind to its fixed descriptive attributes.
var CategoryDescriptors = map[CategoryKind]CategoryDescriptor{
	CategoryDoubleHigh: {
		Description: "High on both the value axis and the count axis",
		Frequency:   "high",
		Interval:    "short",
		Risk:        "low",
	},
	CategoryHighPrimary: {
		Description: "High on the value axis, below the high count threshold",
		Frequency:   "low",
		Interval:    "long",
		Risk:        "medium",
	},
	CategoryHighSecondary: {
		Description: "High on the count axis, below the high value threshold",
		Frequency:   "high",
		Interval:    "short",
		Risk:        "medium",
	},
	CategoryMiddle: {
		Description: "Strictly between the low and high thresholds on both axes",
		Frequency:   "moderate",
		Interval:    "moderate",
		Risk:        "medium",
	},
	CategoryLow: {
		Description: "At or below a low threshold on either axis",
		Frequency:   "low",
		Interval:    "long",
		Risk:        "high",
	},
}

// Category is one of the five classification buckets with its aggregated
// indicators. Indicators carries the value-field sum, count-field sum,
// "average" (value sum / count sum) and any caller-nominated auxiliary
// field sums, keyed by field name.
type Category struct {
	Kind        CategoryKind       `json:"kind"`
	Description string             `json:"description"`
	Indicators  map[string]float64 `json:"indicators"`
	Frequency   string             `json:"frequency"`
	Interval    string             `json:"interval"`
	Risk        string             `json:"risk"`
	ObjectCount int                `json:"object_count"`
	Confidence  float64            `json:"confidence"`
}

// FieldIdentification is the result of dynamic field resolution over a row
// sample. Empty string means the field could not be identified. Derived once
// per analyzed dataset (or per group partition) and never mutated after.
type FieldIdentification struct {
	PrimaryValueField   string            `json:"primary_value_field"`
	PrimaryCountField   string            `json:"primary_count_field"`
	SecondaryValueField string            `json:"secondary_value_field,omitempty"`
	FieldLabels         map[string]string `json:"field_labels"`
}

// FieldStats holds the per-field statistics and derived thresholds for one
// numeric column under one method. Only the fields of the active method are
// populated (quartiles for iqr, mean/stddev for stddev).
type FieldStats struct {
	Field           string  `json:"field"`
	Method          string  `json:"method"`
	Q1              float64 `json:"q1,omitempty"`
	Median          float64 `json:"median,omitempty"`
	Q3              float64 `json:"q3,omitempty"`
	IQR             float64 `json:"iqr,omitempty"`
	Mean            float64 `json:"mean,omitempty"`
	StdDev          float64 `json:"std_dev,omitempty"`
	High            float64 `json:"high_threshold"`
	Low             float64 `json:"low_threshold"`
	UpperMultiplier float64 `json:"upper_multiplier"`
	LowerMultiplier float64 `json:"lower_multiplier"`
	SampleSize      int     `json:"sample_size"`
}

// Thresholds carries the independently computed statistics of the value
// field and the count field. A nil side means the column produced no usable
// numeric values; classification must fail rather than default to zero.
type Thresholds struct {
	Method string      `json:"method"`
	Value  *FieldStats `json:"value,omitempty"`
	Count  *FieldStats `json:"count,omitempty"`
}

// ClassificationRule is the human/LLM-facing restatement of one category's
// decision branch in terms of the exact thresholds used. Display only:
// classification never re-parses rule text.
type ClassificationRule struct {
	Category CategoryKind `json:"category"`
	Rule     string       `json:"rule"`
}

// ClassificationParams echoes the numeric parameters behind the rules, for
// display and for validating a model reply against the local ground truth.
type ClassificationParams struct {
	Method     string      `json:"method"`
	ValueField string      `json:"value_field"`
	CountField string      `json:"count_field"`
	Value      *FieldStats `json:"value,omitempty"`
	Count      *FieldStats `json:"count,omitempty"`
}

// IndicatorRecord is one flattened per-category indicator value, convenient
// for tabular consumers of a report.
type IndicatorRecord struct {
	Group    string       `json:"group,omitempty"`
	Category CategoryKind `json:"category"`
	Name     string       `json:"name"`
	Value    float64      `json:"value"`
}

// ProfileResult is the outcome of profiling a single partition.
type ProfileResult struct {
	Categories []Category           `json:"categories"`
	Analysis   string               `json:"analysis"`
	Indicators []IndicatorRecord    `json:"indicators"`
	Rules      []ClassificationRule `json:"classification_rules"`
	Params     ClassificationParams `json:"classification_params"`
	Fields     FieldIdentification  `json:"fields"`
	Thresholds Thresholds           `json:"thresholds"`
	Source     string               `json:"source"`
	RowCount   int                  `json:"row_count"`
}

// GroupResult is the profile of one partition of a grouped analysis, keyed
// by a distinct value of the grouping field.
type GroupResult struct {
	Key     string        `json:"key"`
	Profile ProfileResult `json:"profile"`
}

// Report is the full analysis output: one group per distinct grouping value
// (or the single implicit "all" group), plus a flattened category list
// across all groups. Rules and Params are shared from the first processed
// partition; all partitions use the same method configuration.
type Report struct {
	GroupField    string                  `json:"group_field,omitempty"`
	Groups        map[string]*GroupResult `json:"groups"`
	AllCategories []Category              `json:"all_categories"`
	Rules         []ClassificationRule    `json:"classification_rules"`
	Params        ClassificationParams    `json:"classification_params"`
	Warnings      []string                `json:"warnings,omitempty"`
	RowCount      int                     `json:"row_count"`
}

// AllGroupKey is the key of the implicit single partition when no grouping
// field is configured.
const AllGroupKey = "all"

// NullGroupKey is the sentinel group for rows whose grouping cell is
// missing, so they are never silently dropped.
const NullGroupKey = "null"

// AnalysisField is one user-nominated analysis column. Order matters:
// field 0 is the primary value field, field 1 the primary count field,
// field 2 the secondary value field; every field past the first two is also
// aggregated per category as an auxiliary indicator.
type AnalysisField struct {
	FieldName   string `json:"field_name"`
	Description string `json:"description,omitempty"`
}

// ProfileConfig is the caller-supplied analysis configuration.
type ProfileConfig struct {
	SubjectField   string          `json:"subject_field,omitempty"`
	GroupByField   string          `json:"group_by_field,omitempty"`
	AnalysisFields []AnalysisField `json:"analysis_fields,omitempty"`
}

// AuxFields returns the caller-nominated auxiliary field names: every
// configured analysis field past the value and count slots.
func (c ProfileConfig) AuxFields() []string {
	if len(c.AnalysisFields) <= 2 {
		return nil
	}
	aux := make([]string, 0, len(c.AnalysisFields)-2)
	for _, f := range c.AnalysisFields[2:] {
		if f.FieldName != "" {
			aux = append(aux, f.FieldName)
		}
	}
	return aux
}

// Multipliers are the upper/lower threshold multipliers of one method.
type Multipliers struct {
	Upper float64 `json:"upper_multiplier"`
	Lower float64 `json:"lower_multiplier"`
}

// MethodConfig selects the threshold method and its multipliers.
type MethodConfig struct {
	Method string      `json:"method"`
	IQR    Multipliers `json:"iqr"`
	StdDev Multipliers `json:"stddev"`
}

// DefaultMethodConfig returns the standard configuration: IQR with the
// 1.5×IQR upper fence and a lower multiplier of 0, stddev with 2σ fences.
func DefaultMethodConfig() MethodConfig {
	return MethodConfig{
		Method: MethodIQR,
		IQR:    Multipliers{Upper: 1.5, Lower: 0},
		StdDev: Multipliers{Upper: 2, Lower: 2},
	}
}

// Normalize fills zero-value slots with defaults and returns the effective
// configuration. An empty method selects IQR. A Multipliers value of
// {Upper: 0, Lower: 0} is indistinguishable from unset and is replaced with
// the method defaults; to get an effective zero fence set the unused side
// to any non-zero value (IQR already defaults Lower to 0).
func (m MethodConfig) Normalize() MethodConfig {
	def := DefaultMethodConfig()
	if m.Method == "" {
		m.Method = def.Method
	}
	if m.IQR == (Multipliers{}) {
		m.IQR = def.IQR
	}
	if m.StdDev == (Multipliers{}) {
		m.StdDev = def.StdDev
	}
	return m
}

// ActiveMultipliers returns the multipliers of the selected method.
func (m MethodConfig) ActiveMultipliers() Multipliers {
	if m.Method == MethodStdDev {
		return m.StdDev
	}
	return m.IQR
}
