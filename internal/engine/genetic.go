package engine

import (
	"math/rand"
	"sort"

	"github.com/piwi3910/SlabNest/internal/model"
)

// chromosome is a candidate solution: a placement order over shape indices
// and one rotation gene per shape (indexed by shape, not by position).
// Chromosomes are never changed once evaluated; each generation builds new
// ones.
type chromosome struct {
	order []int
	rot   []int

	evaluated bool
	fitness   Fitness
	layout    *model.Layout
}

// items converts the chromosome into a placement order.
func (c *chromosome) items() []Item {
	items := make([]Item, len(c.order))
	for i, s := range c.order {
		items[i] = Item{Shape: s, Angle: c.rot[s]}
	}
	return items
}

// clone returns a deep copy that keeps the fitness.
func (c *chromosome) clone() *chromosome {
	out := &chromosome{
		order:     make([]int, len(c.order)),
		rot:       make([]int, len(c.rot)),
		evaluated: c.evaluated,
		fitness:   c.fitness,
		layout:    c.layout,
	}
	copy(out.order, c.order)
	copy(out.rot, c.rot)
	return out
}

// breeder owns the random source and applies the genetic operators. It is
// only used from the optimizer's own goroutine.
type breeder struct {
	cfg    Config
	cat    *catalog
	areas  []float64
	rng    *rand.Rand
	shapes int
}

func newBreeder(cfg Config, cat *catalog, seed int64) *breeder {
	n := len(cat.bodies)
	areas := make([]float64, n)
	for i, s := range cat.problem.Shapes {
		areas[i] = s.Area()
	}
	return &breeder{
		cfg:    cfg,
		cat:    cat,
		areas:  areas,
		rng:    rand.New(rand.NewSource(seed)),
		shapes: n,
	}
}

// initPopulation creates the initial population. Slot 0 holds the greedy
// order; the rest are random permutations with random allowed rotations.
func (b *breeder) initPopulation() []*chromosome {
	pop := make([]*chromosome, b.cfg.PopulationSize)
	if len(pop) == 0 {
		return pop
	}
	pop[0] = b.greedy()
	for i := 1; i < len(pop); i++ {
		pop[i] = b.random()
	}
	return pop
}

// greedy orders shapes by area descending, each at its first fitting angle.
func (b *breeder) greedy() *chromosome {
	order := make([]int, b.shapes)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return b.areas[order[i]] > b.areas[order[j]]
	})
	rot := make([]int, b.shapes)
	for s := range rot {
		rot[s] = b.cat.firstFit(s)
	}
	return &chromosome{order: order, rot: rot}
}

// random builds one random chromosome.
func (b *breeder) random() *chromosome {
	c := &chromosome{order: b.rng.Perm(b.shapes), rot: make([]int, b.shapes)}
	for s := range c.rot {
		c.rot[s] = b.rng.Intn(len(b.cat.angles[s]))
	}
	return c
}

// nextGeneration builds a new population from an evaluated one: the elites
// carried over unchanged, then offspring from tournament selection,
// crossover and mutation.
func (b *breeder) nextGeneration(pop []*chromosome) []*chromosome {
	ranked := make([]*chromosome, len(pop))
	copy(ranked, pop)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].fitness.Better(ranked[j].fitness)
	})

	next := make([]*chromosome, 0, b.cfg.PopulationSize)
	for i := 0; i < b.cfg.EliteCount && i < len(ranked); i++ {
		next = append(next, ranked[i].clone())
	}
	for len(next) < b.cfg.PopulationSize {
		p1 := b.tournamentSelect(pop)
		p2 := b.tournamentSelect(pop)

		var child *chromosome
		if b.rng.Float64() < b.cfg.CrossoverRate {
			child = b.orderCrossover(p1, p2)
		} else {
			child = p1.clone()
		}
		b.mutate(child)
		next = append(next, child)
	}
	return next
}

// tournamentSelect picks the best of TournamentSize random individuals.
func (b *breeder) tournamentSelect(pop []*chromosome) *chromosome {
	best := pop[b.rng.Intn(len(pop))]
	for i := 1; i < b.cfg.TournamentSize; i++ {
		candidate := pop[b.rng.Intn(len(pop))]
		if candidate.fitness.Better(best.fitness) {
			best = candidate
		}
	}
	return best
}

// orderCrossover implements Order Crossover (OX1) on the permutation: a
// segment of parent1 is kept in place and the remaining positions are filled
// with parent2's shapes in parent2's order, starting after the segment.
// Rotation genes are mixed uniformly per shape.
func (b *breeder) orderCrossover(parent1, parent2 *chromosome) *chromosome {
	n := len(parent1.order)
	child := &chromosome{order: make([]int, n), rot: make([]int, n)}

	for s := 0; s < n; s++ {
		if b.rng.Intn(2) == 0 {
			child.rot[s] = parent1.rot[s]
		} else {
			child.rot[s] = parent2.rot[s]
		}
	}

	if n <= 2 {
		copy(child.order, parent1.order)
		return child
	}

	point1 := b.rng.Intn(n)
	point2 := b.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	inSegment := make([]bool, n)
	for i := point1; i <= point2; i++ {
		child.order[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	childIdx := (point2 + 1) % n
	for _, s := range parent2.order {
		if !inSegment[s] {
			child.order[childIdx] = s
			childIdx = (childIdx + 1) % n
		}
	}
	return child
}

// mutate applies random mutations to a fresh child.
func (b *breeder) mutate(c *chromosome) {
	n := len(c.order)
	if n == 0 {
		return
	}

	// Swap mutation: exchange two positions of the order.
	if n >= 2 && b.rng.Float64() < b.cfg.MutationRate {
		i := b.rng.Intn(n)
		j := b.rng.Intn(n)
		c.order[i], c.order[j] = c.order[j], c.order[i]
		c.evaluated = false
	}

	// Rotation mutation: resample one shape's angle from its allowed set.
	if b.rng.Float64() < b.cfg.MutationRate {
		s := b.rng.Intn(n)
		if k := len(b.cat.angles[s]); k > 1 {
			c.rot[s] = b.rng.Intn(k)
			c.evaluated = false
		}
	}

	// Inversion mutation: reverse a segment (less frequent).
	if n >= 2 && b.rng.Float64() < b.cfg.MutationRate*0.5 {
		i := b.rng.Intn(n)
		j := b.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for i < j {
			c.order[i], c.order[j] = c.order[j], c.order[i]
			i++
			j--
		}
		c.evaluated = false
	}
}

// validPermutation reports whether order holds each of 0..n-1 exactly once.
func validPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, s := range order {
		if s < 0 || s >= n || seen[s] {
			return false
		}
		seen[s] = true
	}
	return true
}
