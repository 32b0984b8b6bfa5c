package roll

import (
	"fmt"

	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/errs"
)

// Kind tags the variant of a test.
type Kind string

const (
	KindSuccess         Kind = "success"
	KindOpposed         Kind = "opposed"
	KindDefense         Kind = "defense"
	KindPhysicalDefense Kind = "physical_defense"
	KindPhysicalResist  Kind = "physical_resist"
	KindDrain           Kind = "drain"
)

// Actor modifier ids summed into a test's modifiers.
const (
	ModifierGlobal = "global"
	ModifierWounds = "wounds"
	ModifierSoak   = "soak"
)

// step mutates a test during one phase of its lifecycle. Steps of a phase
// run in slice order.
type step func(t *Test)

// behavior describes everything that differs between test kinds.
type behavior struct {
	// against marks kinds resolved against a completed test.
	against       bool
	opposed       bool
	canSucceed    bool
	canBeExtended bool
	testModifiers []string
	defaultAction data.Action

	// documentAction adjusts the action from the resolved documents.
	documentAction func(t *Test) error

	prepareType     []step
	prepareDocument []step
	baseValues      []step
	poolModifiers   []step
	calculate       []step

	success        func(t *Test) bool
	failure        func(t *Test) bool
	processSuccess step
	processFailure step
	afterResults   []step

	successLabel string
	failureLabel string
}

var behaviors = map[Kind]behavior{}

func init() {
	behaviors[KindSuccess] = successBehavior()
	behaviors[KindOpposed] = opposedBehavior()
	behaviors[KindDefense] = defenseBehavior()
	behaviors[KindPhysicalDefense] = physicalDefenseBehavior()
	behaviors[KindPhysicalResist] = physicalResistBehavior()
	behaviors[KindDrain] = drainBehavior()
}

// ParseKind maps a kind name to a known Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(name)
	if _, ok := behaviors[k]; !ok {
		return "", fmt.Errorf("unknown test kind %q: %w", name, errs.ErrConfiguration)
	}
	return k, nil
}

// DefaultAction returns the kind's default action.
func DefaultAction(k Kind) data.Action {
	return behaviors[k].defaultAction.Clone()
}

// CanBeExtended reports whether tests of kind k allow the extended mechanic.
func CanBeExtended(k Kind) bool {
	return behaviors[k].canBeExtended
}

func successBehavior() behavior {
	return behavior{
		canSucceed:     true,
		canBeExtended:  true,
		testModifiers:  []string{ModifierGlobal, ModifierWounds},
		defaultAction:  data.MinimalAction(),
		baseValues:     []step{actionPool, actionLimit, actionThreshold},
		poolModifiers:  []step{genericPoolModifiers},
		calculate:      []step{calculateTotals, spellDrain},
		success:        thresholdSuccess,
		failure:        thresholdFailure,
		processSuccess: noop,
		processFailure: noop,
		successLabel:   "Success",
		failureLabel:   "Failure",
	}
}

func opposedBehavior() behavior {
	b := successBehavior()
	b.against = true
	b.opposed = true
	b.baseValues = nil
	return b
}

func defenseBehavior() behavior {
	b := opposedBehavior()
	b.prepareType = []step{captureIncomingDamage}
	b.successLabel = "AttackDodged"
	b.failureLabel = "AttackHits"
	return b
}

func noop(*Test) {}

// thresholdSuccess is met by reaching the threshold, or by any hit without one.
func thresholdSuccess(t *Test) bool {
	if t.Data.Threshold.Value > 0 {
		return t.Data.Values.Hits.Value >= t.Data.Threshold.Value
	}
	return t.Data.Values.Hits.Value > 0
}

func thresholdFailure(t *Test) bool {
	return !thresholdSuccess(t)
}
