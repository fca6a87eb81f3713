package sqlstore

import (
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/migration"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect migration.Dialect
		query   string
		want    string
	}{
		{"sqlite untouched", migration.DialectSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"postgres numbered", migration.DialectPostgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"postgres no params", migration.DialectPostgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Store{dialect: tt.dialect}
			if got := s.rebind(tt.query); got != tt.want {
				t.Errorf("rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWeekdayEncoding(t *testing.T) {
	days := []time.Weekday{time.Sunday, time.Wednesday, time.Saturday}
	encoded := encodeWeekdays(days)
	if encoded != "0,3,6" {
		t.Errorf("encodeWeekdays() = %q", encoded)
	}
	decoded, err := decodeWeekdays(encoded)
	if err != nil {
		t.Fatalf("decodeWeekdays() error: %v", err)
	}
	if len(decoded) != 3 || decoded[2] != time.Saturday {
		t.Errorf("decodeWeekdays() = %v", decoded)
	}

	if _, err := decodeWeekdays("1,9"); err == nil {
		t.Error("expected error for out of range weekday")
	}
	if got, _ := decodeWeekdays(""); got != nil {
		t.Errorf("expected nil for empty string, got %v", got)
	}
}

func TestThresholdEncoding(t *testing.T) {
	encoded := encodeThresholds([]float64{5, 12.5, 1000})
	if encoded != "5,12.5,1000" {
		t.Errorf("encodeThresholds() = %q", encoded)
	}
	decoded, err := decodeThresholds(encoded)
	if err != nil {
		t.Fatalf("decodeThresholds() error: %v", err)
	}
	if len(decoded) != 3 || decoded[1] != 12.5 {
		t.Errorf("decodeThresholds() = %v", decoded)
	}
	if _, err := decodeThresholds("5,abc"); err == nil {
		t.Error("expected error for bad threshold")
	}
}
