// Package graph loads a Studio Pack's story.json into StageNode/ActionNode
// graphs and builds the position-indexed views the firmware serializers
// consume. Grounded on the reference lunii_converter.py module's
// build_image_asset_list / build_audio_asset_list / build_list_nodes_index
// functions, reworked into idiomatic Go value types.
package graph

// StageKind enumerates the screen kinds a StageNode may represent.
type StageKind string

const (
	KindEntrypoint StageKind = "entrypoint"
	KindMenu       StageKind = "menu"
	KindStory      StageKind = "story"
	KindCover      StageKind = "cover"
)

// Transition is an optional (action, option_index) pair hanging off a
// StageNode's ok_transition or home_transition field.
type Transition struct {
	ActionRef   string
	OptionIndex int
}

// Controls holds the five per-stage control-enable flags, defaulted per §3.
type Controls struct {
	Wheel    bool
	OK       bool
	Home     bool
	Pause    bool
	Autoplay bool
}

// DefaultControls returns the spec-mandated default {true,true,true,false,false}.
func DefaultControls() Controls {
	return Controls{Wheel: true, OK: true, Home: true, Pause: false, Autoplay: false}
}

// StageNode is a screen in the navigation graph.
type StageNode struct {
	UUID         string
	Kind         StageKind
	Name         string
	Image        string // asset name, empty if none
	Audio        string // asset name, empty if none
	StoryAudio   string // asset name, empty if none (story kind only)
	OKTransition *Transition
	HomeTransition *Transition
	Controls     Controls
}

// ActionNode is a choice point linking sibling StageNodes.
type ActionNode struct {
	ID      string
	Options []string // ordered stage uuids
}

// Graph is the in-memory story.json graph plus its optional metadata.
type Graph struct {
	Title       string
	Description string
	UUID        string // optional, from story.json
	Version     int16  // story pack version, default 1
	NightMode   *bool  // optional nightModeAvailable flag, carried into md

	StageNodes  []StageNode
	ActionNodes []ActionNode
}

// EntrypointIndex returns the declaration-order index of the sole entrypoint
// StageNode. Callers may assume Parse already enforced exactly one exists.
func (g *Graph) EntrypointIndex() int {
	for i, n := range g.StageNodes {
		if n.Kind == KindEntrypoint {
			return i
		}
	}
	return -1
}

// StageIndexByUUID builds a uuid -> declaration-order-position lookup.
func (g *Graph) StageIndexByUUID() map[string]int {
	m := make(map[string]int, len(g.StageNodes))
	for i, n := range g.StageNodes {
		m[n.UUID] = i
	}
	return m
}

// ActionByID builds an action id -> ActionNode lookup.
func (g *Graph) ActionByID() map[string]*ActionNode {
	m := make(map[string]*ActionNode, len(g.ActionNodes))
	for i := range g.ActionNodes {
		m[g.ActionNodes[i].ID] = &g.ActionNodes[i]
	}
	return m
}
