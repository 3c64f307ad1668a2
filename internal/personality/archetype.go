// Package personality maps four-dimension workplace scores onto one of eight archetypes.
package personality

type Key string

const (
	Spark        Key = "spark"
	DeepSea      Key = "deepsea"
	Aurora       Key = "aurora"
	WarmSun      Key = "warmsun"
	Bedrock      Key = "bedrock"
	Lightning    Key = "lightning"
	BrightMoon   Key = "brightmoon"
	SpringBreeze Key = "springbreeze"
)

// Default is returned when no rule fires: the balanced generalist.
const Default = Aurora

// Scores are nominally 0-100 but nothing here enforces that.
type Scores struct {
	Career    float64 `json:"career"`
	Industry  float64 `json:"industry"`
	WorkStyle float64 `json:"workStyle"`
	Values    float64 `json:"values"`
}

type Archetype struct {
	Key          Key
	Name         string
	Quote        string
	Traits       []string
	BestPartners []Key
}

var catalogue = map[Key]Archetype{
	Spark: {
		Key: Spark, Name: "Spark", Quote: "The best plan is to start.",
		Traits:       []string{"bias for action", "bold", "born disruptor"},
		BestPartners: []Key{Bedrock, DeepSea},
	},
	DeepSea: {
		Key: DeepSea, Name: "Deep Sea", Quote: "Others see the surface, you see the structure.",
		Traits:       []string{"deep thinker", "professional rigor", "detail oriented"},
		BestPartners: []Key{Spark, SpringBreeze},
	},
	Aurora: {
		Key: Aurora, Name: "Aurora", Quote: "The interesting things happen at the edges.",
		Traits:       []string{"cross-disciplinary", "synthesizer", "generalist"},
		BestPartners: []Key{BrightMoon, WarmSun},
	},
	WarmSun: {
		Key: WarmSun, Name: "Warm Sun", Quote: "Lifting others up is how you rise.",
		Traits:       []string{"natural leader", "enabler", "team glue"},
		BestPartners: []Key{Lightning, Aurora},
	},
	Bedrock: {
		Key: Bedrock, Name: "Bedrock", Quote: "Being reliable never goes out of style.",
		Traits:       []string{"trustworthy", "steady", "long-term thinker"},
		BestPartners: []Key{Spark, Lightning},
	},
	Lightning: {
		Key: Lightning, Name: "Lightning", Quote: "Speed is a strategy.",
		Traits:       []string{"extreme efficiency", "results driven", "decisive"},
		BestPartners: []Key{WarmSun, Bedrock},
	},
	BrightMoon: {
		Key: BrightMoon, Name: "Bright Moon", Quote: "Think one step slower, walk ten steps right.",
		Traits:       []string{"strategic", "big-picture", "far-sighted"},
		BestPartners: []Key{Aurora, DeepSea},
	},
	SpringBreeze: {
		Key: SpringBreeze, Name: "Spring Breeze", Quote: "The best influence is the one nobody notices.",
		Traits:       []string{"quiet influence", "empathetic", "atmosphere builder"},
		BestPartners: []Key{DeepSea, WarmSun},
	},
}

// Keys lists every archetype in a stable order.
func Keys() []Key {
	return []Key{Spark, DeepSea, Aurora, WarmSun, Bedrock, Lightning, BrightMoon, SpringBreeze}
}

// Lookup returns the catalogue entry for key. Unknown keys report false.
func Lookup(key Key) (Archetype, bool) {
	a, ok := catalogue[key]
	return a, ok
}

func IsValid(key Key) bool {
	_, ok := catalogue[key]
	return ok
}
