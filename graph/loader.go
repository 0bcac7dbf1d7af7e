package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lunii-encode/native-pack-encoder/models"
)

// rawStory mirrors story.json's top-level shape (§6.1). Top-level keys are
// camelCase (stageNodes, actionNodes, nightModeAvailable); stage fields such
// as story_audio and ok_transition are snake_case.
type rawStory struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	UUID        string     `json:"uuid"`
	Version     *int16     `json:"version"`
	NightMode   *bool      `json:"nightModeAvailable"`
	StageNodes  []rawStage `json:"stageNodes"`
	ActionNodes []rawAction `json:"actionNodes"`
}

type rawStage struct {
	UUID           string          `json:"uuid"`
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	Image          string          `json:"image"`
	Audio          string          `json:"audio"`
	StoryAudio     string          `json:"story_audio"`
	OKTransition   *rawTransition  `json:"ok_transition"`
	HomeTransition *rawTransition  `json:"home_transition"`
	Controls       *rawControls    `json:"controls"`
}

type rawTransition struct {
	ActionRef   string `json:"action_ref"`
	OptionIndex int    `json:"option_index"`
}

type rawControls struct {
	Wheel    *bool `json:"wheel"`
	OK       *bool `json:"ok"`
	Home     *bool `json:"home"`
	Pause    *bool `json:"pause"`
	Autoplay *bool `json:"autoplay"`
}

type rawAction struct {
	ID      string   `json:"id"`
	Options []string `json:"options"`
}

// Parse decodes story.json bytes into a Graph and enforces invariants 1–3
// of §3 (dangling action references, dangling option uuids, entrypoint
// count). Invariant 4 (asset resolution) is checked separately by
// ValidateAssets once the caller has a ZIP entry listing to resolve against.
func Parse(data []byte) (*Graph, error) {
	var raw rawStory
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &models.InvalidInputError{Reason: fmt.Sprintf("story.json: %v", err)}
	}
	if len(raw.StageNodes) == 0 {
		return nil, &models.InvalidInputError{Reason: "story.json has no stageNodes"}
	}

	g := &Graph{
		Title:       raw.Title,
		Description: raw.Description,
		Version:     1,
		NightMode:   raw.NightMode,
	}
	if raw.Version != nil {
		g.Version = *raw.Version
	}
	if raw.UUID != "" {
		norm, err := normalizeUUID(raw.UUID)
		if err != nil {
			return nil, &models.InvalidInputError{Reason: fmt.Sprintf("story.json uuid: %v", err)}
		}
		g.UUID = norm
	}

	g.StageNodes = make([]StageNode, len(raw.StageNodes))
	entrypoints := 0
	seenStage := make(map[string]bool, len(raw.StageNodes))
	for i, rs := range raw.StageNodes {
		stageUUID, err := normalizeUUID(rs.UUID)
		if err != nil {
			return nil, &models.InvalidGraphError{Detail: fmt.Sprintf("stageNode[%d] uuid: %v", i, err)}
		}
		if seenStage[stageUUID] {
			return nil, &models.InvalidGraphError{Detail: fmt.Sprintf("duplicate stageNode uuid %s", stageUUID)}
		}
		seenStage[stageUUID] = true

		kind := StageKind(rs.Kind)
		if kind == KindEntrypoint {
			entrypoints++
		}

		node := StageNode{
			UUID:       stageUUID,
			Kind:       kind,
			Name:       rs.Name,
			Image:      rs.Image,
			Audio:      rs.Audio,
			StoryAudio: rs.StoryAudio,
			Controls:   DefaultControls(),
		}
		if rs.OKTransition != nil {
			node.OKTransition = &Transition{ActionRef: rs.OKTransition.ActionRef, OptionIndex: rs.OKTransition.OptionIndex}
		}
		if rs.HomeTransition != nil {
			node.HomeTransition = &Transition{ActionRef: rs.HomeTransition.ActionRef, OptionIndex: rs.HomeTransition.OptionIndex}
		}
		if rs.Controls != nil {
			applyControlOverrides(&node.Controls, rs.Controls)
		}
		g.StageNodes[i] = node
	}
	if entrypoints != 1 {
		return nil, &models.InvalidGraphError{Detail: fmt.Sprintf("expected exactly one entrypoint stageNode, found %d", entrypoints)}
	}

	g.ActionNodes = make([]ActionNode, len(raw.ActionNodes))
	seenAction := make(map[string]bool, len(raw.ActionNodes))
	for i, ra := range raw.ActionNodes {
		if seenAction[ra.ID] {
			return nil, &models.InvalidGraphError{Detail: fmt.Sprintf("duplicate actionNode id %s", ra.ID)}
		}
		seenAction[ra.ID] = true

		options := make([]string, len(ra.Options))
		for j, opt := range ra.Options {
			norm, err := normalizeUUID(opt)
			if err != nil {
				return nil, &models.InvalidGraphError{Detail: fmt.Sprintf("actionNode %s option %q is not a valid uuid", ra.ID, opt)}
			}
			options[j] = norm
		}
		g.ActionNodes[i] = ActionNode{ID: ra.ID, Options: options}
	}

	if err := validateReferences(g); err != nil {
		return nil, err
	}
	return g, nil
}

func applyControlOverrides(c *Controls, raw *rawControls) {
	if raw.Wheel != nil {
		c.Wheel = *raw.Wheel
	}
	if raw.OK != nil {
		c.OK = *raw.OK
	}
	if raw.Home != nil {
		c.Home = *raw.Home
	}
	if raw.Pause != nil {
		c.Pause = *raw.Pause
	}
	if raw.Autoplay != nil {
		c.Autoplay = *raw.Autoplay
	}
}

// validateReferences enforces invariants 1 and 2: every action_ref resolves
// to an ActionNode, and every option uuid resolves to a StageNode.
func validateReferences(g *Graph) error {
	actionIDs := make(map[string]bool, len(g.ActionNodes))
	for _, a := range g.ActionNodes {
		actionIDs[a.ID] = true
	}
	stageUUIDs := g.StageIndexByUUID()

	for _, n := range g.StageNodes {
		for _, t := range []*Transition{n.OKTransition, n.HomeTransition} {
			if t == nil {
				continue
			}
			if !actionIDs[t.ActionRef] {
				return &models.InvalidGraphError{Detail: fmt.Sprintf("stageNode %s references unknown action %s", n.UUID, t.ActionRef)}
			}
		}
	}
	for _, a := range g.ActionNodes {
		for _, opt := range a.Options {
			norm, err := normalizeUUID(opt)
			if err != nil {
				return &models.InvalidGraphError{Detail: fmt.Sprintf("actionNode %s option %q is not a valid uuid", a.ID, opt)}
			}
			if _, ok := stageUUIDs[norm]; !ok {
				return &models.InvalidGraphError{Detail: fmt.Sprintf("actionNode %s references unknown stage %s", a.ID, norm)}
			}
		}
	}
	return nil
}

// normalizeUUID parses a 32-hex-character uuid with or without dashes and
// returns its canonical dashed lowercase form.
func normalizeUUID(s string) (string, error) {
	s = strings.TrimSpace(s)
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return id.String(), nil
}

// AssetResolver reports whether a given ZIP entry name exists.
type AssetResolver func(name string) bool

// ResolveAsset tries name directly, then assets/<name>, returning the
// resolved entry path and whether it was found.
func ResolveAsset(name string, exists AssetResolver) (string, bool) {
	if exists(name) {
		return name, true
	}
	alt := "assets/" + name
	if exists(alt) {
		return alt, true
	}
	return "", false
}

// ValidateAssets enforces invariant 4: every referenced image/audio/
// story_audio asset name must resolve against the input ZIP. Reports up to
// the first 5 missing names.
func ValidateAssets(g *Graph, exists AssetResolver) error {
	var missing []string
	total := 0
	seen := make(map[string]bool)
	check := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		if _, ok := ResolveAsset(name, exists); !ok {
			total++
			if len(missing) < 5 {
				missing = append(missing, name)
			}
		}
	}
	for _, n := range g.StageNodes {
		check(n.Image)
		check(n.Audio)
		check(n.StoryAudio)
	}
	if total > 0 {
		return &models.MissingAssetError{Names: missing, Total: total}
	}
	return nil
}
