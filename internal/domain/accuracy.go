package domain

import "time"

// CompatibilityAccuracyRecord links a connection's predicted score to
// its eventual outcome. Created at prediction time; outcome fields are
// filled once the connection reaches an evaluable state.
type CompatibilityAccuracyRecord struct {
	ID                       int        `json:"id" db:"id"`
	ConnectionID             int        `json:"connection_id" db:"connection_id"`
	PredictedScore           float64    `json:"predicted_score" db:"predicted_score"`
	PredictionConfidence     float64    `json:"prediction_confidence" db:"prediction_confidence"`
	AlgorithmVersion         string     `json:"algorithm_version" db:"algorithm_version"`
	MessageCount             *int       `json:"message_count" db:"message_count"`
	RevelationCompletionRate *float64   `json:"revelation_completion_rate" db:"revelation_completion_rate"`
	DaysSurvived             *int       `json:"days_survived" db:"days_survived"`
	ReachedPhotoReveal       *bool      `json:"reached_photo_reveal" db:"reached_photo_reveal"`
	MutualSatisfaction       *float64   `json:"mutual_satisfaction" db:"mutual_satisfaction"`
	ActualSuccessScore       *float64   `json:"actual_success_score" db:"actual_success_score"`
	PredictionAccuracy       *float64   `json:"prediction_accuracy" db:"prediction_accuracy"`
	PredictionError          *float64   `json:"prediction_error" db:"prediction_error"`
	EvaluatedAt              *time.Time `json:"evaluated_at" db:"evaluated_at"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

// Evaluated reports whether outcome fields have been filled.
func (r *CompatibilityAccuracyRecord) Evaluated() bool {
	return r.EvaluatedAt != nil
}
