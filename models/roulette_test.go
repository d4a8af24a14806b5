package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPocketColor(t *testing.T) {
	assert.Equal(t, "red", PocketColor(17))
	assert.Equal(t, "black", PocketColor(18))
	assert.Equal(t, "red", PocketColor(1))
	assert.Equal(t, "black", PocketColor(36))
}

func TestRouletteTable_ReadyToSpin(t *testing.T) {
	table := NewRouletteTable("table-1", 100)
	table.Players = append(table.Players, 200)

	assert.False(t, table.ReadyToSpin(), "not started")

	table.Started = true
	assert.False(t, table.ReadyToSpin(), "no choices or bets")

	table.Choices[100] = 17
	table.Choices[200] = 3
	table.Bets[100] = 500
	assert.False(t, table.ReadyToSpin(), "one bet missing")

	table.Bets[200] = 700
	assert.True(t, table.ReadyToSpin())
}

func TestRouletteTable_HasPlayer(t *testing.T) {
	table := NewRouletteTable("table-1", 100)

	assert.True(t, table.HasPlayer(100), "initiator is seated on creation")
	assert.False(t, table.HasPlayer(200))
}
