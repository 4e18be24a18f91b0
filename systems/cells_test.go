package systems

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/config"
)

// labRules mirrors the classroom defaults: strict encounters, predators split
// after eating, a lone prey splits, two rounds until starvation.
func labRules() *Rules {
	return &Rules{
		Bounds:           components.Bounds{SkillMin: 0, SkillMax: 20, SatietyMax: 2},
		Encounter:        StrictEncounter,
		PredatorBreeding: Breeding{Mode: config.ReproduceSplit},
		PreyBreeding:     Breeding{Mode: config.ReproduceLoneSplit},
		CellCapacity:     8,
	}
}

func predator(skill, satiety int) components.Animal {
	return components.Animal{Species: components.SpeciesPredator, Skill: skill, Satiety: satiety, BirthRound: 1}
}

func prey(skill int) components.Animal {
	return components.NewPrey(skill, 1)
}

func populate(reg *Registry, predators, preys []components.Animal) *Cell {
	c := &Cell{}
	for _, a := range predators {
		c.Predators = append(c.Predators, reg.Spawn(a))
	}
	for _, a := range preys {
		c.Prey = append(c.Prey, reg.Spawn(a))
	}
	return c
}

func animals(reg *Registry, entities []ecs.Entity) []components.Animal {
	out := make([]components.Animal, 0, len(entities))
	for _, e := range entities {
		out = append(out, *reg.Get(e))
	}
	return out
}

func resolve(t *testing.T, reg *Registry, c *Cell, rules *Rules) CellOutcome {
	t.Helper()
	out, err := c.Resolve(reg, rules, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return out
}

// The lab's recorded survival scenarios.
func TestResolveLabScenarios(t *testing.T) {
	tests := []struct {
		name      string
		predators []components.Animal
		prey      []components.Animal
		favor     Favor
		wantPred  int
		wantPrey  int
	}{
		{"empty cell ties", nil, nil, FavorNeutral, 0, 0},
		{"lone prey reproduces", nil, []components.Animal{prey(1)}, FavorPrey, 0, 2},
		{"lone predator gets hungrier", []components.Animal{predator(0, 2)}, nil, FavorNeutral, 1, 0},
		{"lone predator starves", []components.Animal{predator(1, 1)}, nil, FavorPrey, 0, 0},
		{"skilled prey evades and reproduces", []components.Animal{predator(5, 2)}, []components.Animal{prey(10)}, FavorPrey, 1, 2},
		{"predator eats and reproduces", []components.Animal{predator(3, 2)}, []components.Animal{prey(2)}, FavorPredator, 2, 0},
		{"one eats one starves", []components.Animal{predator(3, 2), predator(0, 1)}, []components.Animal{prey(2)}, FavorPredator, 2, 0},
		{"predator eats weaker of two prey", []components.Animal{predator(3, 2)}, []components.Animal{prey(2), prey(4)}, FavorPredator, 2, 1},
		{"no change ties", []components.Animal{predator(1, 2)}, []components.Animal{prey(2), prey(3)}, FavorNeutral, 1, 2},
		{"both predators eat", []components.Animal{predator(4, 2), predator(5, 1)}, []components.Animal{prey(2), prey(3)}, FavorPredator, 4, 0},
		{"one eats two starve", []components.Animal{predator(4, 1), predator(5, 1), predator(6, 1)}, []components.Animal{prey(2)}, FavorNeutral, 2, 0},
		{"strongest eat weakest first",
			[]components.Animal{predator(4, 2), predator(5, 1), predator(6, 1)},
			[]components.Animal{prey(8), prey(2), prey(1)},
			FavorPredator, 5, 1},
		{"two eat two starve",
			[]components.Animal{predator(4, 1), predator(5, 1), predator(8, 1), predator(7, 1)},
			[]components.Animal{prey(10), prey(9), prey(5), prey(6)},
			FavorPredator, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			c := populate(reg, tt.predators, tt.prey)

			out := resolve(t, reg, c, labRules())

			if out.Favor != tt.favor {
				t.Errorf("favor = %s, want %s", out.Favor, tt.favor)
			}
			if len(c.Predators) != tt.wantPred {
				t.Errorf("predators = %d, want %d", len(c.Predators), tt.wantPred)
			}
			if len(c.Prey) != tt.wantPrey {
				t.Errorf("prey = %d, want %d", len(c.Prey), tt.wantPrey)
			}
			if reg.Count(components.SpeciesPredator) != tt.wantPred || reg.Count(components.SpeciesPrey) != tt.wantPrey {
				t.Errorf("registry counts = %d/%d, want %d/%d",
					reg.Count(components.SpeciesPredator), reg.Count(components.SpeciesPrey), tt.wantPred, tt.wantPrey)
			}
		})
	}
}

func TestResolveLonePreyOffspringSkills(t *testing.T) {
	tests := []struct {
		parent int
		want   []int
	}{
		{1, []int{2, 0}},
		{0, []int{1, 0}},
	}
	for _, tt := range tests {
		reg := NewRegistry()
		c := populate(reg, nil, []components.Animal{prey(tt.parent)})
		resolve(t, reg, c, labRules())

		var got []int
		for _, a := range animals(reg, c.Prey) {
			got = append(got, a.Skill)
			if a.BirthRound != 2 {
				t.Errorf("newborn birth round = %d, want 2", a.BirthRound)
			}
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("parent %d: offspring skills = %v, want %v", tt.parent, got, tt.want)
		}
	}
}

func TestResolveHungryPredatorSatiety(t *testing.T) {
	reg := NewRegistry()
	c := populate(reg, []components.Animal{predator(0, 2)}, nil)
	resolve(t, reg, c, labRules())

	if got := reg.Get(c.Predators[0]).Satiety; got != 1 {
		t.Errorf("satiety = %d, want 1", got)
	}
}

func TestResolveStrongestSurvivingPrey(t *testing.T) {
	reg := NewRegistry()
	c := populate(reg,
		[]components.Animal{predator(4, 2), predator(5, 1), predator(6, 1)},
		[]components.Animal{prey(8), prey(2), prey(1)})
	resolve(t, reg, c, labRules())

	if got := reg.Get(c.Prey[0]).Skill; got != 8 {
		t.Errorf("surviving prey skill = %d, want 8", got)
	}
}

func TestResolveAtLeastFeeds(t *testing.T) {
	rules := labRules()
	rules.Encounter = AtLeastEncounter
	rules.PredatorBreeding = Breeding{Mode: config.ReproduceNone}

	reg := NewRegistry()
	c := populate(reg, []components.Animal{predator(3, 1)}, []components.Animal{prey(2)})
	out := resolve(t, reg, c, rules)

	if len(c.Prey) != 0 {
		t.Errorf("prey = %d, want 0", len(c.Prey))
	}
	if len(c.Predators) != 1 {
		t.Fatalf("predators = %d, want 1", len(c.Predators))
	}
	if got := reg.Get(c.Predators[0]).Satiety; got != rules.Bounds.SatietyMax {
		t.Errorf("satiety = %d, want reset to %d", got, rules.Bounds.SatietyMax)
	}
	if out.Favor != FavorPredator {
		t.Errorf("favor = %s, want predator", out.Favor)
	}
	if out.PredatorBirths != 0 || out.PreyBirths != 0 {
		t.Errorf("births = %d/%d, want 0/0", out.PredatorBirths, out.PreyBirths)
	}
}

func TestResolveAtLeastWinsTies(t *testing.T) {
	rules := labRules()
	rules.Encounter = AtLeastEncounter
	reg := NewRegistry()
	c := populate(reg, []components.Animal{predator(3, 2)}, []components.Animal{prey(3), prey(3)})
	out := resolve(t, reg, c, rules)
	if out.Eaten != 1 {
		t.Errorf("eaten = %d, want 1", out.Eaten)
	}
}

func TestResolvePreyRate(t *testing.T) {
	rules := labRules()
	rules.PreyBreeding = Breeding{Mode: config.ReproduceRate, Births: 1, Per: 2}

	reg := NewRegistry()
	c := populate(reg, nil, []components.Animal{prey(1), prey(4), prey(2)})
	out := resolve(t, reg, c, rules)

	if len(c.Prey) != 4 {
		t.Errorf("prey = %d, want 4", len(c.Prey))
	}
	if out.PreyBirths != 1 || out.PreyDeaths != 0 {
		t.Errorf("births/deaths = %d/%d, want 1/0", out.PreyBirths, out.PreyDeaths)
	}
	if newborn := reg.Get(c.Prey[3]); newborn.Skill != 4 {
		t.Errorf("newborn skill = %d, want the strongest parent's 4", newborn.Skill)
	}
}

func TestResolvePredatorRateAndSkillGain(t *testing.T) {
	rules := labRules()
	rules.Bounds.SkillGain = 1
	rules.PredatorBreeding = Breeding{Mode: config.ReproduceRate, Births: 1, Per: 1}

	reg := NewRegistry()
	c := populate(reg, []components.Animal{predator(5, 1)}, []components.Animal{prey(1), prey(9)})
	out := resolve(t, reg, c, rules)

	if out.PredatorBirths != 1 || out.PredatorDeaths != 0 {
		t.Errorf("predator births/deaths = %d/%d, want 1/0", out.PredatorBirths, out.PredatorDeaths)
	}
	for _, a := range animals(reg, c.Predators) {
		if a.Skill != 6 {
			t.Errorf("predator skill = %d, want 6 after feeding", a.Skill)
		}
		if a.Satiety != 2 {
			t.Errorf("predator satiety = %d, want 2", a.Satiety)
		}
	}
}

func TestResolveSplitIgnoresSkillGain(t *testing.T) {
	rules := labRules()
	rules.Bounds.SkillGain = 2

	reg := NewRegistry()
	c := populate(reg, []components.Animal{predator(5, 1)}, []components.Animal{prey(1)})
	out := resolve(t, reg, c, rules)

	if out.PredatorBirths != 2 || out.PredatorDeaths != 1 {
		t.Fatalf("predator births/deaths = %d/%d, want 2/1", out.PredatorBirths, out.PredatorDeaths)
	}
	got := map[int]bool{}
	for _, a := range animals(reg, c.Predators) {
		got[a.Skill] = true
	}
	if len(got) != 2 || !got[6] || !got[4] {
		t.Errorf("offspring skills = %v, want 6 and 4", got)
	}
}

func TestResolveRespectsCapacity(t *testing.T) {
	rules := labRules()
	rules.CellCapacity = 4
	rules.Encounter = AtLeastEncounter

	reg := NewRegistry()
	c := populate(reg,
		[]components.Animal{predator(9, 2), predator(9, 2), predator(9, 2), predator(9, 2)},
		[]components.Animal{prey(1), prey(1), prey(1), prey(1)})
	out := resolve(t, reg, c, rules)

	if len(c.Predators) != 4 {
		t.Errorf("predators = %d, want capped at 4", len(c.Predators))
	}
	if out.PredatorBirths != 4 || out.PredatorDeaths != 4 {
		t.Errorf("births/deaths = %d/%d, want 4/4", out.PredatorBirths, out.PredatorDeaths)
	}
}

func TestResolveConservation(t *testing.T) {
	rules := labRules()
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		reg := NewRegistry()
		var preds, preys []components.Animal
		for i := rng.Intn(5); i > 0; i-- {
			preds = append(preds, predator(rng.Intn(10), 1+rng.Intn(2)))
		}
		for i := rng.Intn(5); i > 0; i-- {
			preys = append(preys, prey(rng.Intn(10)))
		}
		c := populate(reg, preds, preys)

		out, err := c.Resolve(reg, rules, 3, rng)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if got, want := len(c.Predators), len(preds)-out.PredatorDeaths+out.PredatorBirths; got != want {
			t.Errorf("trial %d: predators = %d, want %d", trial, got, want)
		}
		if got, want := len(c.Prey), len(preys)-out.PreyDeaths+out.PreyBirths; got != want {
			t.Errorf("trial %d: prey = %d, want %d", trial, got, want)
		}
		if len(c.Predators) > rules.CellCapacity || len(c.Prey) > rules.CellCapacity {
			t.Errorf("trial %d: capacity exceeded: %d/%d", trial, len(c.Predators), len(c.Prey))
		}
	}
}

func TestResolveEmptyCellIsFixedPoint(t *testing.T) {
	reg := NewRegistry()
	c := &Cell{Row: 2, Col: 3}
	out := resolve(t, reg, c, labRules())

	want := CellOutcome{Row: 2, Col: 3}
	if out != want {
		t.Errorf("outcome = %+v, want %+v", out, want)
	}
	if !c.Empty() {
		t.Error("empty cell gained residents")
	}
}

func TestResolveRejectsInvalidResidents(t *testing.T) {
	tests := []struct {
		name  string
		setup func(reg *Registry) *Cell
	}{
		{"skill above bounds", func(reg *Registry) *Cell {
			return populate(reg, nil, []components.Animal{prey(99)})
		}},
		{"overfed predator", func(reg *Registry) *Cell {
			return populate(reg, []components.Animal{predator(1, 5)}, nil)
		}},
		{"prey in predator list", func(reg *Registry) *Cell {
			return &Cell{Predators: []ecs.Entity{reg.Spawn(prey(1))}}
		}},
		{"dead resident", func(reg *Registry) *Cell {
			c := populate(reg, nil, []components.Animal{prey(1)})
			reg.Kill(c.Prey[0])
			return c
		}},
		{"over capacity", func(reg *Registry) *Cell {
			var many []components.Animal
			for i := 0; i < 9; i++ {
				many = append(many, prey(1))
			}
			return populate(reg, nil, many)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			c := tt.setup(reg)
			_, err := c.Resolve(reg, labRules(), 1, rand.New(rand.NewSource(1)))
			if !errors.Is(err, ErrInvariant) {
				t.Errorf("Resolve = %v, want ErrInvariant", err)
			}
		})
	}
}

func TestFavorString(t *testing.T) {
	for f, want := range map[Favor]string{FavorPredator: "predator", FavorPrey: "prey", FavorNeutral: "neutral"} {
		if f.String() != want {
			t.Errorf("%d.String() = %q, want %q", f, f.String(), want)
		}
	}
}
