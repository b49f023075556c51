package permissions

import "testing"

func TestSetHas(t *testing.T) {
	set := NewSet(TagContent, TagReels)
	if !set.Has(TagContent) || !set.Has(TagReels) {
		t.Fatalf("expected granted tags to be present")
	}
	if set.Has(TagUsers) {
		t.Fatalf("ungranted tag must not be present")
	}
}

func TestWildcardGrantsEverything(t *testing.T) {
	set := NewSet(TagAll)
	for _, tag := range []Tag{TagContent, TagNotification, TagLeagues, TagReels, TagUsers, TagSubscribers, TagRoles, TagOdds} {
		if !set.Has(tag) {
			t.Fatalf("wildcard should grant %q", tag)
		}
	}
}

func TestHasUnknownTag(t *testing.T) {
	if NewSet(TagContent).Has(Tag("bogus")) {
		t.Fatalf("unknown tag must never be granted")
	}
	if !NewSet(TagAll).Has(Tag("content")) {
		t.Fatalf("wildcard grants known tags")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{" Content ", "content", "", "USERS"})
	want := []string{"content", "users"}
	if len(got) != len(want) {
		t.Fatalf("normalize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("normalize = %v, want %v", got, want)
		}
	}
}

func TestValidateRejectsUnknown(t *testing.T) {
	if err := Validate([]string{"content", "roles"}); err != nil {
		t.Fatalf("valid tags rejected: %v", err)
	}
	if err := Validate([]string{"content", "banana"}); err == nil {
		t.Fatalf("expected invalid tag to be rejected")
	}
}

func TestParseAndMarshal(t *testing.T) {
	raw, errMarshal := Marshal([]string{"Roles", "content", "roles"})
	if errMarshal != nil {
		t.Fatalf("marshal: %v", errMarshal)
	}
	set := Parse(raw)
	if !set.Has(TagRoles) || !set.Has(TagContent) {
		t.Fatalf("parsed set missing tags")
	}
	if set.Has(TagUsers) {
		t.Fatalf("parsed set has extra tag")
	}
}

func TestMarshalRejectsInvalid(t *testing.T) {
	if _, errMarshal := Marshal([]string{"nope"}); errMarshal == nil {
		t.Fatalf("expected marshal to reject unknown tag")
	}
}

func TestParseBadJSON(t *testing.T) {
	if set := Parse([]byte("{broken")); set != 0 {
		t.Fatalf("bad json should parse to empty set, got %v", set.Tags())
	}
}

func TestTagsOrdered(t *testing.T) {
	set := NewSet(TagRoles, TagContent)
	tags := set.Tags()
	if len(tags) != 2 || tags[0] != TagContent || tags[1] != TagRoles {
		t.Fatalf("tags = %v, want [content roles]", tags)
	}
}
