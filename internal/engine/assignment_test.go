package engine

import (
	"testing"

	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestCanEvaluate(t *testing.T) {
	managers := []string{"mgr-1", "mgr-2"}

	tests := []struct {
		name         string
		actor        Actor
		evaluatorIDs []string
		want         bool
	}{
		{
			name:         "explicitly assigned evaluator",
			actor:        Actor{ID: "eval-1", Role: models.RoleEvaluator},
			evaluatorIDs: []string{"eval-1", "eval-2"},
			want:         true,
		},
		{
			name:         "explicit assignment wins regardless of role",
			actor:        Actor{ID: "trainee-1", Role: models.RoleTrainee},
			evaluatorIDs: []string{"trainee-1"},
			want:         true,
		},
		{
			name:         "unassigned evaluator denied",
			actor:        Actor{ID: "eval-3", Role: models.RoleEvaluator},
			evaluatorIDs: []string{"eval-1"},
			want:         false,
		},
		{
			name:         "manager fallback on empty evaluator list",
			actor:        Actor{ID: "mgr-1", Role: models.RoleManager},
			evaluatorIDs: []string{},
			want:         true,
		},
		{
			name:         "manager fallback on nil evaluator list",
			actor:        Actor{ID: "mgr-2", Role: models.RoleManager},
			evaluatorIDs: nil,
			want:         true,
		},
		{
			name:         "manager not in parent list denied despite empty assignment",
			actor:        Actor{ID: "mgr-9", Role: models.RoleManager},
			evaluatorIDs: []string{},
			want:         false,
		},
		{
			name:         "no manager fallback once evaluators are assigned",
			actor:        Actor{ID: "mgr-1", Role: models.RoleManager},
			evaluatorIDs: []string{"eval-1"},
			want:         false,
		},
		{
			name:         "non-manager gets no fallback",
			actor:        Actor{ID: "mgr-1", Role: models.RoleEvaluator},
			evaluatorIDs: nil,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := models.SubChallenge{EvaluatorIDs: datatypes.NewJSONSlice(tt.evaluatorIDs)}
			assert.Equal(t, tt.want, CanEvaluate(tt.actor, sc, managers))
		})
	}
}
