package component

// Kind separates vertical collectibles from horizontal hazards.
type Kind int

const (
	KindCollectible Kind = iota
	KindHazard
)

func (k Kind) String() string {
	if k == KindHazard {
		return "hazard"
	}
	return "collectible"
}

// Subtype picks the sprite and feedback flavour of an entity.
type Subtype int

const (
	SubtypeCheese Subtype = iota
	SubtypeTea
	SubtypeShark
)

func (s Subtype) String() string {
	switch s {
	case SubtypeCheese:
		return "cheese"
	case SubtypeTea:
		return "tea"
	case SubtypeShark:
		return "shark"
	default:
		return "unknown"
	}
}

// Outcome is how an entity was resolved.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomePerfect
	OutcomeGood
	OutcomeCollect
	OutcomeMiss
	OutcomeDodge
	OutcomeHit
)

var outcomeNames = [...]string{"none", "perfect", "good", "collect", "miss", "dodge", "hit"}

func (o Outcome) String() string {
	if o < OutcomeNone || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Entity is the gameplay record of one collectible or hazard.
// Position is never stored: it is derived from SpawnMs and the clock.
type Entity struct {
	Kind    Kind
	Subtype Subtype
	Lane    Lane // collectibles only
	Side    Side // hazards only
	SpawnMs int64
	Round   int // round tuning in force at spawn

	Resolved   bool
	ResolvedAt int64
	Outcome    Outcome

	// Culled is set the moment the simulator removes the entity; the id is
	// destroyed later in Cleanup. Culled entities are invisible to resolvers.
	Culled bool
}

// Active reports whether the entity can still be judged.
func (e *Entity) Active() bool {
	return !e.Resolved && !e.Culled
}
