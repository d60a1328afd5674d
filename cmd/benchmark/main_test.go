package main

import (
	"math/rand"
	"testing"

	"github.com/exam-scheduling/roomassign/pkg/assign"
	"github.com/stretchr/testify/assert"
)

func TestParseSizes(t *testing.T) {
	assert.Equal(t, []int{5, 10, 20}, parseSizes("5,10,20"))
	assert.Equal(t, []int{5, 10}, parseSizes(" 5, 10 "))
	assert.Equal(t, []int{7}, parseSizes("7"))
	assert.Panics(t, func() { parseSizes("5,abc") })
}

func TestGenerateInstance(t *testing.T) {
	// Arrange
	random := rand.New(rand.NewSource(42))

	// Act
	instance := generateInstance(random, 12)

	// Assert
	assert.Equal(t, 12, instance.ExamCount())
	assert.Equal(t, 20, instance.RoomCount())
	assert.Equal(t, "exam-0", instance.ExamID(0))
	_, ok := instance.RoomIndex(assign.DummyRoomID)
	assert.True(t, ok)

	// Same seed, same instance
	again := generateInstance(rand.New(rand.NewSource(42)), 12)
	assert.Equal(t, instance.Exams(), again.Exams())
	assert.Equal(t, instance.Rooms(), again.Rooms())
}
