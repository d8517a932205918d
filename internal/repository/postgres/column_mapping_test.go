package postgres

import (
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx/reflectx"
	"github.com/stretchr/testify/assert"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
)

// The repositories in this package read with SELECT *, which makes sqlx
// reject any column without a db-tagged destination field. Each entry
// mirrors the column set the migrations create for that table.
func TestStructsCoverTableColumns(t *testing.T) {
	tests := []struct {
		table   string
		dest    interface{}
		columns []string
	}{
		{
			table: "users",
			dest:  domain.User{},
			columns: []string{
				"id", "email", "password_hash", "date_of_birth", "is_active",
				"last_seen_at", "created_at", "updated_at",
			},
		},
		{
			table: "sessions",
			dest:  domain.Session{},
			columns: []string{
				"id", "user_id", "token", "device_info", "ip_address",
				"expires_at", "created_at",
			},
		},
		{
			table: "soul_connections",
			dest:  domain.SoulConnection{},
			columns: []string{
				"id", "user1_id", "user2_id", "initiated_by", "connection_stage",
				"status", "compatibility_score", "compatibility_breakdown",
				"reveal_day", "user1_consent", "user2_consent",
				"mutual_reveal_consent", "first_dinner_completed",
				"last_advanced_at", "ended_at", "created_at", "updated_at",
			},
		},
		{
			table: "daily_revelations",
			dest:  domain.DailyRevelation{},
			columns: []string{
				"id", "connection_id", "sender_id", "day_number",
				"revelation_type", "content", "is_read", "created_at",
			},
		},
		{
			table: "messages",
			dest:  domain.Message{},
			columns: []string{
				"id", "connection_id", "sender_id", "content", "created_at",
			},
		},
		{
			table: "compatibility_accuracy_records",
			dest:  domain.CompatibilityAccuracyRecord{},
			columns: []string{
				"id", "connection_id", "predicted_score", "prediction_confidence",
				"algorithm_version", "message_count", "revelation_completion_rate",
				"days_survived", "reached_photo_reveal", "mutual_satisfaction",
				"actual_success_score", "prediction_accuracy", "prediction_error",
				"evaluated_at", "created_at", "updated_at",
			},
		},
	}

	mapper := reflectx.NewMapper("db")
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			tm := mapper.TypeMap(reflect.TypeOf(tt.dest))
			for _, col := range tt.columns {
				_, ok := tm.Names[col]
				assert.True(t, ok, "column %s.%s has no destination field", tt.table, col)
			}
		})
	}
}
