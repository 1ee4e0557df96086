package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateQuestAcceptsWellFormedQuest(t *testing.T) {
	assert.NoError(t, validateQuest(eveningRoutineQuest()))

	// Steps may arrive in any order as long as the orders form 1..n.
	shuffled := eveningRoutineQuest()
	shuffled.Steps[0].Order, shuffled.Steps[1].Order = 2, 1
	assert.NoError(t, validateQuest(shuffled))
}

func TestValidateQuestRejectsBrokenStepOrders(t *testing.T) {
	duplicated := eveningRoutineQuest()
	duplicated.Steps[1].Order = 1
	assert.Error(t, validateQuest(duplicated))

	gapped := eveningRoutineQuest()
	gapped.Steps[2].Order = 7
	assert.Error(t, validateQuest(gapped))

	zeroBased := eveningRoutineQuest()
	for i := range zeroBased.Steps {
		zeroBased.Steps[i].Order = i
	}
	assert.Error(t, validateQuest(zeroBased))
}

func TestValidateQuestRejectsOutOfRangeSuccessRate(t *testing.T) {
	tooHigh := eveningRoutineQuest()
	tooHigh.SuccessRate = 1.2
	assert.Error(t, validateQuest(tooHigh))

	negative := eveningRoutineQuest()
	negative.SuccessRate = -0.1
	assert.Error(t, validateQuest(negative))
}
