package models

// RobResult describes a robbery attempt for rendering
type RobResult struct {
	RobberID int64
	VictimID int64
	Success  bool
	// Amount is the sum stolen on success, or the fine the robber paid to
	// the victim on failure.
	Amount int64
}
