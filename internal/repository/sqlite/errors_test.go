package sqlite

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want constraint
	}{
		{"nil", nil, constraintNone},
		{"unique", errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), constraintUnique},
		{"foreign key", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), constraintForeignKey},
		{"check", errors.New("CHECK constraint failed: status"), constraintCheck},
		{"wrapped unique", fmt.Errorf("exec: %w", errors.New("UNIQUE constraint failed: users.github_id")), constraintUnique},
		{"other", errors.New("database is locked"), constraintNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
