package game

import "testing"

// pin stops a unit from walking so defence tests control geometry.
func pin(u *Unit) { u.Speed = 0 }

func TestDefense_ProximityHitsNearest(t *testing.T) {
	ts := NewTestSim(
		WithStructure("guard_tower", Cell{5, 5}),
		WithUnit("giant", Cell{3, 5}),
		WithUnit("giant", Cell{8, 5}),
	)
	near, far := ts.Unit(0), ts.Unit(1)
	pin(near)
	pin(far)
	ts.RunTicks(1)
	dumpLog(t, ts)
	// 10 dmg halved by armour.
	if near.HP != 295 || far.HP != 300 {
		t.Fatalf("expected only the nearer giant hit: near=%.0f far=%.0f", near.HP, far.HP)
	}
	if att := near.Attackers(); len(att) != 1 || att[0] != 0 {
		t.Fatalf("hit should register the tower as attacker, got %v", att)
	}
	if !ts.Log.HasEntry(CatDefend, "shot", near.Label) {
		t.Fatal("expected a shot entry")
	}
}

func TestDefense_HighValueAndArmorPiercing(t *testing.T) {
	ts := NewTestSim(
		WithStructure("ballista", Cell{5, 5}),
		WithUnit("larva", Cell{4, 5}),
		WithUnit("giant", Cell{8, 5}),
	)
	pin(ts.Unit(0))
	pin(ts.Unit(1))
	ts.RunTicks(1)
	giant := ts.Unit(1)
	if giant.HP != 250 {
		t.Fatalf("ballista should pierce armour on the costlier giant: hp=%.0f", giant.HP)
	}
	if ts.Unit(0).HP != 10 {
		t.Fatal("larva should be ignored by high-value targeting")
	}
}

func TestDefense_HighValuePrefersCaster(t *testing.T) {
	ts := NewTestSim(
		WithStructure("ballista", Cell{5, 5}),
		WithCaster(Cell{9, 5}),
		WithUnit("giant", Cell{6, 5}),
	)
	pin(ts.Unit(0))
	ts.RunTicks(1)
	if ts.World.Caster.HP != 50 {
		t.Fatalf("expected the caster to take the bolt, hp=%.0f", ts.World.Caster.HP)
	}
	if ts.Unit(0).HP != 300 {
		t.Fatal("giant should not be hit")
	}
}

func TestDefense_LowHP(t *testing.T) {
	ts := NewTestSim(
		WithStructure("guard_tower", Cell{5, 5}),
		WithUnit("giant", Cell{4, 5}),
		WithUnit("elemental", Cell{8, 5}),
	)
	ts.Structure(0).Targeting = TargetLowHP
	pin(ts.Unit(0))
	pin(ts.Unit(1))
	ts.RunTicks(1)
	if ts.Unit(1).HP != 50 || ts.Unit(0).HP != 300 {
		t.Fatalf("expected the 60 hp elemental hit: giant=%.0f elemental=%.0f", ts.Unit(0).HP, ts.Unit(1).HP)
	}
}

func TestDefense_RandomStaysInRange(t *testing.T) {
	ts := NewTestSim(
		WithSeed(3),
		WithStructure("guard_tower", Cell{5, 5}),
		WithUnit("giant", Cell{4, 5}),
		WithUnit("giant", Cell{6, 5}),
		WithUnit("giant", Cell{15, 5}),
	)
	ts.Structure(0).Targeting = TargetRandom
	for i := 0; i < 3; i++ {
		pin(ts.Unit(i))
	}
	ts.RunTicks(1)
	if ts.Unit(2).HP != 300 {
		t.Fatal("random targeting picked a unit out of range")
	}
	if ts.Unit(0).HP+ts.Unit(1).HP != 595 {
		t.Fatalf("expected exactly one in-range hit, hp %.0f/%.0f", ts.Unit(0).HP, ts.Unit(1).HP)
	}
}

func TestDefense_FireRate(t *testing.T) {
	ts := NewTestSim(
		WithStructure("guard_tower", Cell{5, 5}),
		WithUnit("giant", Cell{3, 5}),
	)
	pin(ts.Unit(0))
	ts.Unit(0).Damage = 0
	ts.RunTicks(30)
	if n := ts.Log.CountCategory(CatDefend, "shot"); n != 1 {
		t.Fatalf("expected one shot in half a second, got %d", n)
	}
	ts.RunTicks(100)
	if n := ts.Log.CountCategory(CatDefend, "shot"); n != 3 {
		t.Fatalf("expected three shots in 130 ticks at 1/s, got %d", n)
	}
}

func TestDefense_MeleeOilHitsAllAdjacent(t *testing.T) {
	ts := NewTestSim(
		WithStructure("garrisoned_wall", Cell{5, 5}),
		WithUnit("giant", Cell{4, 5}),
		WithUnit("giant", Cell{6, 5}),
		WithUnit("giant", Cell{9, 5}),
	)
	for i := 0; i < 3; i++ {
		pin(ts.Unit(i))
	}
	ts.RunTicks(1)
	dumpLog(t, ts)
	if ts.Unit(0).HP != 296 || ts.Unit(1).HP != 296 {
		t.Fatalf("adjacent giants should take 4 after armour: %.0f %.0f", ts.Unit(0).HP, ts.Unit(1).HP)
	}
	if ts.Unit(2).HP != 300 {
		t.Fatal("distant giant should be untouched")
	}
	if n := ts.Log.CountCategory(CatDefend, "oil"); n != 2 {
		t.Fatalf("expected two oil hits, got %d", n)
	}
}

func TestDefense_NotesUnitAttackers(t *testing.T) {
	ts := NewTestSim(
		WithoutDefense(),
		WithStructure("guard_tower", Cell{5, 5}),
		WithUnit("larva", Cell{4, 5}),
	)
	u := ts.Unit(0)
	u.SetAttackTarget(0, ts.Env())
	ts.World.Defense.Enabled = true
	ts.World.Structures.Get(0).Damage = 0
	ts.RunUntil(func(ts *TestSim) bool { return u.State == StateAttacking }, 120)
	ts.RunTicks(1)
	if att := ts.Structure(0).Attackers(); len(att) != 1 || att[0] != u.ID {
		t.Fatalf("tower should record the attacking larva, got %v", att)
	}
}

func TestDefense_DisabledDoesNothing(t *testing.T) {
	ts := NewTestSim(
		WithoutDefense(),
		WithStructure("guard_tower", Cell{5, 5}),
		WithUnit("giant", Cell{4, 5}),
	)
	pin(ts.Unit(0))
	ts.RunTicks(60)
	if ts.Unit(0).HP != 300 || ts.Log.CountCategory(CatDefend, "") != 0 {
		t.Fatal("disabled defence fired")
	}
}
