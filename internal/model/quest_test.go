package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneIsDeep(t *testing.T) {
	q := &Quest{
		UUIDBase: UUIDBase{ID: "q1"},
		Title:    "Original",
		Category: CategoryPersonalCare,
		SkillRequirements: map[string]SkillRequirement{
			"personal_hygiene": {MinimumLevel: 40, Importance: ImportanceImportant},
		},
		Tags: []string{"routine"},
		CompletionPatterns: CompletionPatterns{
			TimeOfDay: map[string]float64{"morning": 0.8},
		},
		Steps: []QuestStep{
			{ID: "s1", Order: 1, Description: "Brush teeth", RequiredTools: []string{"toothbrush"}},
		},
	}

	cp := q.Clone()
	cp.Title = "Changed"
	cp.SkillRequirements["personal_hygiene"] = SkillRequirement{MinimumLevel: 99}
	cp.Tags[0] = "changed"
	cp.CompletionPatterns.TimeOfDay["morning"] = 0.1
	cp.Steps[0].Description = "changed"
	cp.Steps[0].RequiredTools[0] = "changed"

	assert.Equal(t, "Original", q.Title)
	assert.Equal(t, 40, q.SkillRequirements["personal_hygiene"].MinimumLevel)
	assert.Equal(t, "routine", q.Tags[0])
	assert.Equal(t, 0.8, q.CompletionPatterns.TimeOfDay["morning"])
	assert.Equal(t, "Brush teeth", q.Steps[0].Description)
	assert.Equal(t, "toothbrush", q.Steps[0].RequiredTools[0])
}

func TestAllowsLocation(t *testing.T) {
	anywhere := &Quest{}
	assert.True(t, anywhere.AllowsLocation(LocationCommunity))

	homeOnly := &Quest{RequiredLocation: []Location{LocationHome}}
	assert.True(t, homeOnly.AllowsLocation(LocationHome))
	assert.False(t, homeOnly.AllowsLocation(LocationSchool))
}

func TestHasTag(t *testing.T) {
	q := &Quest{Tags: []string{"preparation", "routine"}}
	assert.True(t, q.HasTag("routine"))
	assert.False(t, q.HasTag("cooking"))
}

func TestImpactLevelRank(t *testing.T) {
	assert.Greater(t, ImpactSignificant.Rank(), ImpactModerate.Rank())
	assert.Greater(t, ImpactModerate.Rank(), ImpactMinor.Rank())
	assert.Zero(t, ImpactLevel("bogus").Rank())
}

func TestModificationKey(t *testing.T) {
	m := QuestModification{Target: "steps", Action: "simplify"}
	assert.Equal(t, "steps_simplify", m.Key())
}

func TestSkillImportanceWeight(t *testing.T) {
	assert.Equal(t, 1.0, ImportanceCritical.Weight())
	assert.Equal(t, 0.7, ImportanceImportant.Weight())
	assert.Equal(t, 0.4, ImportanceHelpful.Weight())
	assert.Equal(t, 0.4, SkillImportance("bogus").Weight())
}
