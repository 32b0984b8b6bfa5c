package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/kasuganosora/sr5rules/game/data"
)

func damageOf(value, ap int) data.Damage {
	d := data.NewDamage()
	d.Base = value
	d.Recalc()
	d.AP.Base = ap
	d.AP.Recalc()
	return d
}

func armorOf(value int) data.Value {
	a := data.NewValue("Armor")
	a.Base = value
	a.Recalc()
	return a
}

func TestAttackOutcomes(t *testing.T) {
	if !AttackHits(3, 1) || AttackGrazes(3, 1) || AttackMisses(3, 1) {
		t.Errorf("3 vs 1 should be a hit only")
	}
	if AttackHits(2, 2) || !AttackGrazes(2, 2) || AttackMisses(2, 2) {
		t.Errorf("2 vs 2 should be a graze only")
	}
	if AttackHits(1, 3) || AttackGrazes(1, 3) || !AttackMisses(1, 3) {
		t.Errorf("1 vs 3 should be a miss only")
	}
}

func TestAttackOutcomes_Totality(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(0, 50).Draw(t, "attacker")
		d := rapid.IntRange(0, 50).Draw(t, "defender")
		n := 0
		for _, ok := range []bool{AttackHits(a, d), AttackGrazes(a, d), AttackMisses(a, d)} {
			if ok {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("expected exactly one outcome for %d vs %d, got %d", a, d, n)
		}
	})
}

func TestModifyDamageAfterHit_NoNetHits(t *testing.T) {
	d := damageOf(6, -2)
	got := ModifyDamageAfterHit(0, d)
	assert.Equal(t, d, got)

	got = ModifyDamageAfterHit(-3, d)
	assert.Equal(t, d, got)
}

func TestModifyDamageAfterHit_AddsNetHits(t *testing.T) {
	d := damageOf(6, 0)
	got := ModifyDamageAfterHit(2, d)
	assert.Equal(t, 8, got.Value.Value)
	assert.Equal(t, 2, got.Mod[0].Value)
	assert.Equal(t, PartAttackerNetHits, got.Mod[0].Name)
	assert.Empty(t, d.Mod, "input must not be modified")
}

func TestModifyDamageAfterHit_StacksOnOverride(t *testing.T) {
	d := damageOf(6, 0)
	d.SetOverride(8)
	d.Recalc()
	got := ModifyDamageAfterHit(2, d)
	assert.Equal(t, 10, got.Value.Value)
	assert.Nil(t, got.Override)
	assert.Equal(t, 8, d.Value.Value, "input must not be modified")
}

func TestModifyDamageAfterResist_StacksOnOverride(t *testing.T) {
	d := damageOf(6, 0)
	d.SetOverride(9)
	d.Recalc()
	got := ModifyDamageAfterResist(d, 4)
	assert.Equal(t, 5, got.Value.Value)
}

func TestModifyDamageAfterHit_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.IntRange(-10, 30).Draw(t, "base")
		n := rapid.IntRange(1, 20).Draw(t, "netHits")
		d := damageOf(base, 0)
		got := ModifyDamageAfterHit(n, d)
		if want := max(d.Value.Value+n, 0); got.Value.Value != want {
			t.Fatalf("got %d, want %d", got.Value.Value, want)
		}
	})
}

func TestModifyArmorAfterHit(t *testing.T) {
	armor := armorOf(12)

	unchanged := ModifyArmorAfterHit(armor, damageOf(6, 0))
	assert.Equal(t, armor, unchanged)
	unchanged = ModifyArmorAfterHit(armor, damageOf(6, -4))
	assert.Equal(t, armor, unchanged)

	got := ModifyArmorAfterHit(armor, damageOf(6, 3))
	assert.Equal(t, 15, got.Value)
}

func TestModifyArmorAfterHit_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(0, 30).Draw(t, "armor")
		ap := rapid.IntRange(-10, 10).Draw(t, "ap")
		armor := armorOf(a)
		got := ModifyArmorAfterHit(armor, damageOf(5, ap))
		want := armor.Value
		if ap > 0 {
			want = max(armor.Value+ap, 0)
		}
		if got.Value != want {
			t.Fatalf("armor %d ap %d: got %d, want %d", a, ap, got.Value, want)
		}
	})
}

func TestModifyDamageAfterResist(t *testing.T) {
	got := ModifyDamageAfterResist(damageOf(6, 0), 2)
	assert.Equal(t, 4, got.Value.Value)

	got = ModifyDamageAfterResist(damageOf(3, 0), 7)
	assert.Equal(t, 0, got.Value.Value)

	got = ModifyDamageAfterResist(damageOf(3, 0), -2)
	assert.Equal(t, 3, got.Value.Value)
}

func TestReduceArmorByAP(t *testing.T) {
	assert.Equal(t, 8, ReduceArmorByAP(armorOf(12), -4).Value)
	assert.Equal(t, 0, ReduceArmorByAP(armorOf(2), -4).Value)
}

func TestModifyDamageAfterMiss(t *testing.T) {
	d := damageOf(5, -1)
	got := ModifyDamageAfterMiss(d)
	assert.Equal(t, d, got)
	got.AddUniquePart("x", 1)
	assert.Empty(t, d.Mod)
}
