package graph

// BlankAudioSentinel is the synthetic asset name AudioAssetList uses for a
// StageNode that declares no audio; the orchestrator's audio step recognizes
// this name and substitutes the canonical blank-MP3 bytes instead of
// resolving a ZIP entry.
const BlankAudioSentinel = "__BLANK_MP3__"

// ImageAsset is one entry of the ImageAssetList derived view (§3).
type ImageAsset struct {
	StageUUID string
	Position  int
	Name      string
}

// AudioAsset is one entry of the AudioAssetList derived view (§3). Unlike
// ImageAssetList this list is 1:1 with StageNodes and is never deduplicated.
type AudioAsset struct {
	StageUUID string
	Position  int
	Name      string
}

// ListNodeEntry is one entry of the ListNodeIndex derived view (§3).
type ListNodeEntry struct {
	ActionID         string
	Options          []string
	Position         int
	AbsolutePosition int
}

// DerivedViews bundles the three position-indexed views built once per
// encode and borrowed read-only by the rest of the pipeline.
type DerivedViews struct {
	Images     []ImageAsset
	Audio      []AudioAsset
	ListNodes  []ListNodeEntry
}

// BuildDerivedViews computes ImageAssetList, AudioAssetList and
// ListNodeIndex from g, one pass per view, preserving story.json declaration
// order throughout (the firmware observes that order via the index files).
func BuildDerivedViews(g *Graph) DerivedViews {
	return DerivedViews{
		Images:    buildImageAssetList(g.StageNodes),
		Audio:     buildAudioAssetList(g.StageNodes),
		ListNodes: buildListNodeIndex(g.ActionNodes),
	}
}

func buildImageAssetList(stages []StageNode) []ImageAsset {
	var out []ImageAsset
	pos := 0
	for _, n := range stages {
		if n.Image == "" {
			continue
		}
		out = append(out, ImageAsset{StageUUID: n.UUID, Position: pos, Name: n.Image})
		pos++
	}
	return out
}

func buildAudioAssetList(stages []StageNode) []AudioAsset {
	out := make([]AudioAsset, len(stages))
	for i, n := range stages {
		name := n.Audio
		if name == "" {
			name = BlankAudioSentinel
		}
		out[i] = AudioAsset{StageUUID: n.UUID, Position: i, Name: name}
	}
	return out
}

func buildListNodeIndex(actions []ActionNode) []ListNodeEntry {
	out := make([]ListNodeEntry, len(actions))
	cursor := 0
	for i, a := range actions {
		out[i] = ListNodeEntry{
			ActionID:         a.ID,
			Options:          a.Options,
			Position:         i,
			AbsolutePosition: cursor,
		}
		cursor += len(a.Options)
	}
	return out
}
