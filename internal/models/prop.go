package models

// PropType identifies the statistical category a prop bet is posted on
type PropType string

// Supported prop types
const (
	PropPoints   PropType = "points"
	PropRebounds PropType = "rebounds"
	PropAssists  PropType = "assists"
	PropThrees   PropType = "threes"
)

// Stat keys used in GameRecord stat maps
const (
	StatPoints   = "PTS"
	StatRebounds = "REB"
	StatAssists  = "AST"
	StatThrees   = "FG3M"
	StatMinutes  = "MIN"
)

// propStatKeys maps each prop type to the game-log stat it is settled on
var propStatKeys = map[PropType]string{
	PropPoints:   StatPoints,
	PropRebounds: StatRebounds,
	PropAssists:  StatAssists,
	PropThrees:   StatThrees,
}

// AllPropTypes returns the supported prop types in a stable order
func AllPropTypes() []PropType {
	return []PropType{PropPoints, PropRebounds, PropAssists, PropThrees}
}

// StatKey returns the game-log stat column the prop type is measured by
func (p PropType) StatKey() string {
	return propStatKeys[p]
}

// IsValid reports whether the prop type is one of the supported categories
func (p PropType) IsValid() bool {
	_, ok := propStatKeys[p]
	return ok
}

func (p PropType) String() string {
	return string(p)
}
