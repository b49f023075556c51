package permissions

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tag identifies an atomic admin capability.
type Tag string

// The closed set of permission tags. TagAll is a wildcard granting every tag.
const (
	TagContent      Tag = "content"
	TagNotification Tag = "notification"
	TagLeagues      Tag = "leagues"
	TagReels        Tag = "reels"
	TagUsers        Tag = "users"
	TagSubscribers  Tag = "subscribers"
	TagRoles        Tag = "roles"
	TagOdds         Tag = "odds"
	TagAll          Tag = "all"
)

// tags is the ordered list of all known tags.
var tags = []Tag{
	TagContent,
	TagNotification,
	TagLeagues,
	TagReels,
	TagUsers,
	TagSubscribers,
	TagRoles,
	TagOdds,
	TagAll,
}

// tagBits maps each tag to its bit position in a Set.
var tagBits = func() map[Tag]uint {
	out := make(map[Tag]uint, len(tags))
	for i, tag := range tags {
		out[tag] = uint(i)
	}
	return out
}()

// Definition describes a permission tag for the admin UI.
type Definition struct {
	ID   Tag    `json:"id"`
	Name string `json:"name"`
}

// definitions is the ordered list of permission definitions.
var definitions = []Definition{
	{ID: TagContent, Name: "Content Management"},
	{ID: TagNotification, Name: "Notification Management"},
	{ID: TagLeagues, Name: "Leagues Management"},
	{ID: TagReels, Name: "Reels Management"},
	{ID: TagUsers, Name: "Users Management"},
	{ID: TagSubscribers, Name: "Subscribers Management"},
	{ID: TagRoles, Name: "Roles Management"},
	{ID: TagOdds, Name: "Odds Management"},
	{ID: TagAll, Name: "All Permissions (Super Admin)"},
}

// Definitions returns a copy of all permission definitions.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Valid reports whether the tag belongs to the closed enumeration.
func Valid(tag Tag) bool {
	_, ok := tagBits[tag]
	return ok
}

// Set is a bitset of granted permission tags.
type Set uint16

// NewSet builds a Set from tags, ignoring unknown values.
func NewSet(grants ...Tag) Set {
	var set Set
	for _, tag := range grants {
		if bit, ok := tagBits[tag]; ok {
			set |= 1 << bit
		}
	}
	return set
}

// Has reports whether the set grants the tag, honoring the wildcard.
func (s Set) Has(tag Tag) bool {
	if bit, ok := tagBits[TagAll]; ok && s&(1<<bit) != 0 {
		return true
	}
	bit, ok := tagBits[tag]
	if !ok {
		return false
	}
	return s&(1<<bit) != 0
}

// Tags returns the granted tags in definition order.
func (s Set) Tags() []Tag {
	out := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		if s&(1<<tagBits[tag]) != 0 {
			out = append(out, tag)
		}
	}
	return out
}

// Normalize trims, lowercases, de-duplicates, and sorts tag strings.
func Normalize(raw []string) []string {
	if len(raw) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(raw))
	normalized := make([]string, 0, len(raw))
	for _, value := range raw {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	sort.Strings(normalized)
	return normalized
}

// Validate checks that every tag string belongs to the closed enumeration.
func Validate(raw []string) error {
	for _, value := range raw {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		if !Valid(Tag(trimmed)) {
			return fmt.Errorf("invalid permission: %s", trimmed)
		}
	}
	return nil
}

// Parse parses a JSON array of tag strings into a Set, dropping unknowns.
func Parse(raw []byte) Set {
	if len(raw) == 0 {
		return 0
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return 0
	}
	grants := make([]Tag, 0, len(values))
	for _, value := range Normalize(values) {
		grants = append(grants, Tag(value))
	}
	return NewSet(grants...)
}

// Marshal serializes normalized tag strings to JSON.
func Marshal(raw []string) ([]byte, error) {
	normalized := Normalize(raw)
	if err := Validate(normalized); err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}
