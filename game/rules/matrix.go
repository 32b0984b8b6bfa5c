package rules

// MaxMarks is the most marks one persona can hold on a target.
const MaxMarks = 3

// ICInitiativeDiceCount is the number of initiative dice of any IC.
const ICInitiativeDiceCount = 4

// ConditionMonitor returns the matrix condition monitor of a device rating.
func ConditionMonitor(rating int) int {
	return 8 + ceilHalf(rating)
}

// ICDeviceRating returns the device rating of IC spawned on a host.
func ICDeviceRating(hostRating int) int {
	return hostRating
}

// ICInitiativeBase returns the base matrix initiative of IC.
func ICInitiativeBase(hostRating int) int {
	return hostRating * 2
}

// ICInitiativeDice returns the matrix initiative dice of IC.
func ICInitiativeDice() int {
	return ICInitiativeDiceCount
}

// ICMeatAttributeBase returns the baseline of every IC meat attribute.
func ICMeatAttributeBase(hostRating int) int {
	return hostRating
}

// ValidMarksCount clamps a mark count to [0, MaxMarks].
func ValidMarksCount(n int) int {
	return min(max(n, 0), MaxMarks)
}

// HostAttributeRatings returns the four attribute ratings a host of the
// given rating distributes across attack, sleaze, data processing and firewall.
func HostAttributeRatings(rating int) []int {
	rating = max(rating, 0)
	return []int{rating, rating + 1, rating + 2, rating + 3}
}

func ceilHalf(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + 1) / 2
}
