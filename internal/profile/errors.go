package profile

import "errors"

var (
	// ErrEmptyDataset is returned when an analysis is requested over zero rows.
	ErrEmptyDataset = errors.New("dataset contains no rows")
	// ErrFieldNotFound is returned when a configured field name is absent
	// from the dataset columns, or when no usable value/count field could
	// be identified.
	ErrFieldNotFound = errors.New("field not found in dataset")
	// ErrThresholdUnavailable is returned when a required field yields no
	// numeric values, so no thresholds can be derived for it.
	ErrThresholdUnavailable = errors.New("no numeric values available for thresholds")
)
