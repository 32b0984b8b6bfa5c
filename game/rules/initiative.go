package rules

// IniResultModAfterPass is applied to an initiative score after each pass.
const IniResultModAfterPass = -10

// ReduceIniResultAfterPass returns the score for the next pass.
func ReduceIniResultAfterPass(score int) int {
	return max(score+IniResultModAfterPass, 0)
}

// ReduceIniOnLateSpawn reduces the score of an actor joining in a later pass.
// Pass numbers start at 1.
func ReduceIniOnLateSpawn(score, pass int) int {
	score = max(score, 0)
	pass = max(pass-1, 0)
	return max(score+pass*IniResultModAfterPass, 0)
}

// IniScoreCanDoAnotherPass reports whether a score remains after one more pass.
func IniScoreCanDoAnotherPass(score int) bool {
	return ReduceIniResultAfterPass(score) > 0
}

// IniOrderCanDoAnotherPass reports whether any combatant gets another pass.
func IniOrderCanDoAnotherPass(scores []int) bool {
	for _, s := range scores {
		if IniScoreCanDoAnotherPass(s) {
			return true
		}
	}
	return false
}
