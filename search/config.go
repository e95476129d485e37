package search

// Config tunes one Agent's tree policy. The zero value is not usable;
// start from DefaultConfig and override individual fields.
type Config struct {
	// MaxPlayouts is the number of simulations run per SelectMove call when
	// playout-cap randomization is disabled or its range is empty
	// (RandomPlayoutsMax <= RandomPlayoutsMin). A randomized budget is not
	// capped by MaxPlayouts.
	MaxPlayouts int

	// EnablePlayoutCapRandomization draws the per-move playout budget
	// uniformly from [RandomPlayoutsMin, RandomPlayoutsMax] instead of
	// always spending MaxPlayouts. This is the AlphaZero-style trick of
	// mixing in cheap moves so the learner sees more positions per game.
	EnablePlayoutCapRandomization bool
	RandomPlayoutsMin             int
	RandomPlayoutsMax             int

	// Cpuct scales the exploration term of the PUCT formula.
	Cpuct float64
	// FpuReduction is subtracted from the parent's mean value to seed the Q
	// estimate of an unvisited child (first-play urgency).
	FpuReduction float64

	DirichletAlpha   float64
	DirichletEpsilon float64

	// Temperature controls root move sampling: 0 always takes the
	// highest-visit child, >0 samples proportional to visit_count^(1/T).
	// TemperatureMoveCutoff forces Temperature to 0 once move_number
	// reaches it, to avoid suicidal exploration late in the game.
	Temperature           float64
	TemperatureMoveCutoff int

	// NumThreads is the number of goroutines simulate() runs on
	// concurrently. 1 means single-threaded (no virtual loss needed, but
	// it's still applied for determinism with the parallel path).
	NumThreads int

	UseVirtualLoss    bool
	VirtualLoss       float64
	VirtualLossVisits int

	// Seed drives the agent's root rng (tie-breaking and playout-cap
	// sampling) and, in the per-thread PRNGs spawned during parallel
	// search.
	Seed uint64
}

// DefaultConfig mirrors the reference engine's defaults.
func DefaultConfig() Config {
	return Config{
		MaxPlayouts:                   256,
		EnablePlayoutCapRandomization: true,
		RandomPlayoutsMin:             192,
		RandomPlayoutsMax:             384,
		Cpuct:                         1.6,
		FpuReduction:                  0.0,
		DirichletAlpha:                0.03,
		DirichletEpsilon:              0.25,
		Temperature:                   1.0,
		TemperatureMoveCutoff:         30,
		NumThreads:                    1,
		UseVirtualLoss:                true,
		VirtualLoss:                   1.0,
		VirtualLossVisits:             3,
		Seed:                          0x5eed1234,
	}
}
