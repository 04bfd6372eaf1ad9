package rules

import (
	"strings"
	"testing"
	"time"

	"mediac/internal/domain/model"
)

func entry(name string, size int64) model.FileEntry {
	return model.NewFileEntry("/data/"+name, false, size, time.Now())
}

func normalized(t *testing.T, set ConditionSet) *ConditionSet {
	t.Helper()
	if err := set.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return &set
}

func TestNormalizeRejectsEmptySet(t *testing.T) {
	var set ConditionSet
	if err := set.Normalize(); err != ErrNoConditions {
		t.Fatalf("got %v, want ErrNoConditions", err)
	}
}

func TestNormalizeRejectsInvertedSizeBounds(t *testing.T) {
	set := ConditionSet{MinSize: 100, MaxSize: 10}
	if err := set.Normalize(); err == nil {
		t.Fatal("expected error for min > max")
	}
}

func TestNormalizeRejectsBadPattern(t *testing.T) {
	set := ConditionSet{Pattern: "["}
	if err := set.Normalize(); err == nil {
		t.Fatal("expected error for invalid regexp")
	}
}

func TestNamePatternPrefixSuffixRegex(t *testing.T) {
	cases := []struct {
		pattern string
		base    string
		want    bool
	}{
		{"IMG", "img_0001.jpg", true},   // prefix, case-insensitive
		{".jpg", "holiday.JPG", true},   // suffix
		{"^draft.*txt$", "draft1.txt", true},
		{"vacation", "work.doc", false},
	}
	for _, tc := range cases {
		set := normalized(t, ConditionSet{Pattern: tc.pattern})
		d := Evaluate(entry(tc.base, 10), nil, set)
		if d.Matched != tc.want {
			t.Errorf("pattern %q vs %q: got %v, want %v", tc.pattern, tc.base, d.Matched, tc.want)
		}
	}
}

func TestNotMatchInvertsPattern(t *testing.T) {
	set := normalized(t, ConditionSet{Pattern: "keep", NotMatch: true})
	if d := Evaluate(entry("keep_me.jpg", 10), nil, set); d.Matched {
		t.Error("inverted pattern matched a hit")
	}
	if d := Evaluate(entry("other.jpg", 10), nil, set); !d.Matched {
		t.Error("inverted pattern missed a non-hit")
	}
}

func TestSizeBounds(t *testing.T) {
	set := normalized(t, ConditionSet{MinSize: 100, MaxSize: 1000})

	for size, want := range map[int64]bool{0: false, 50: false, 100: true, 1000: true, 1001: false} {
		d := Evaluate(entry("f.bin", size), nil, set)
		if d.Matched != want {
			t.Errorf("size %d: got %v, want %v", size, d.Matched, want)
		}
	}
}

func TestDimensionThresholdPassesAtOrBelow(t *testing.T) {
	set := normalized(t, ConditionSet{MaxWidth: 640, MaxHeight: 480})

	small := &model.MediaMetadata{Valid: true, Width: 640, Height: 480}
	if d := Evaluate(entry("a.jpg", 10), small, set); !d.Matched {
		t.Error("image at the threshold should match")
	}

	wide := &model.MediaMetadata{Valid: true, Width: 800, Height: 480}
	if d := Evaluate(entry("b.jpg", 10), wide, set); d.Matched {
		t.Error("image over one axis should not match when both thresholds are set")
	}
}

func TestDimensionUnknownIsSkippedNotFailed(t *testing.T) {
	set := normalized(t, ConditionSet{MaxWidth: 640, MinSize: 1})

	// Measurement failed: the dim sub-condition drops out and size alone decides.
	d := Evaluate(entry("broken.jpg", 10), &model.MediaMetadata{}, set)
	if !d.Matched {
		t.Error("unknown dimensions must not veto a loose-mode size hit")
	}
	if !strings.Contains(d.Rationale, "dim:unknown") {
		t.Errorf("rationale %q lacks dim:unknown", d.Rationale)
	}
}

func TestStrictRequiresAllConfigured(t *testing.T) {
	set := normalized(t, ConditionSet{Pattern: "img", MinSize: 100, Strict: true})

	if d := Evaluate(entry("img_1.jpg", 500), nil, set); !d.Matched {
		t.Error("both conditions hit, strict should match")
	}
	if d := Evaluate(entry("img_1.jpg", 50), nil, set); d.Matched {
		t.Error("size miss must fail strict mode")
	}
	if d := Evaluate(entry("other.bin", 500), nil, set); d.Matched {
		t.Error("name miss must fail strict mode")
	}
}

func TestStrictExcludesUnconfiguredConditions(t *testing.T) {
	// Only the pattern is configured: strict over one condition is that condition.
	set := normalized(t, ConditionSet{Pattern: "img", Strict: true})
	if d := Evaluate(entry("img_1.jpg", 10), nil, set); !d.Matched {
		t.Error("single configured hit should satisfy strict mode")
	}
}

func TestLooseIsAnyConfigured(t *testing.T) {
	set := normalized(t, ConditionSet{Pattern: "nope", MinSize: 100})
	if d := Evaluate(entry("file.bin", 500), nil, set); !d.Matched {
		t.Error("size hit alone should satisfy loose mode")
	}
}

func TestCorruptIsAbsoluteEvenInStrictMode(t *testing.T) {
	set := normalized(t, ConditionSet{Pattern: "nomatch", CheckCorrupt: true, Strict: true})

	corrupt := &model.MediaMetadata{Valid: true, Corrupt: true}
	d := Evaluate(entry("video.mp4", 10), corrupt, set)
	if !d.Matched {
		t.Error("corrupt hit must override a strict name miss")
	}
	if !strings.Contains(d.Rationale, "corrupt:hit") {
		t.Errorf("rationale %q lacks corrupt:hit", d.Rationale)
	}
}

func TestUnknownMetadataIsNeverCorrupt(t *testing.T) {
	set := normalized(t, ConditionSet{CheckCorrupt: true})

	d := Evaluate(entry("video.mp4", 10), &model.MediaMetadata{}, set)
	if d.Matched {
		t.Error("extraction failure must not flag a file as corrupt")
	}
}

func TestNonMediaIsNeverCorrupt(t *testing.T) {
	set := normalized(t, ConditionSet{CheckCorrupt: true})

	corrupt := &model.MediaMetadata{Valid: true, Corrupt: true}
	d := Evaluate(entry("notes.txt", 10), corrupt, set)
	if d.Matched {
		t.Error("non-media files are outside corruption checks")
	}
}

func TestBadCharsIsAbsolute(t *testing.T) {
	set := normalized(t, ConditionSet{Pattern: "nomatch", CheckBadChars: true})

	d := Evaluate(entry("bad\x01name.jpg", 10), nil, set)
	if !d.Matched {
		t.Error("control character in name must select the entry")
	}
}

func TestListOverridesEverything(t *testing.T) {
	set := normalized(t, ConditionSet{
		NameList: []string{"Keep.JPG"},
		MinSize:  1 << 40, // would never match, proving the override
	})

	if d := Evaluate(entry("keep.jpg", 10), nil, set); !d.Matched {
		t.Error("list membership is case-insensitive and overrides other rules")
	}
	if d := Evaluate(entry("other.jpg", 10), nil, set); d.Matched {
		t.Error("non-member must not match")
	}
}

func TestListReverse(t *testing.T) {
	set := normalized(t, ConditionSet{NameList: []string{"keep.jpg"}, Reverse: true})

	if d := Evaluate(entry("keep.jpg", 10), nil, set); d.Matched {
		t.Error("reverse list must exclude members")
	}
	if d := Evaluate(entry("stray.jpg", 10), nil, set); !d.Matched {
		t.Error("reverse list must select non-members")
	}
}

func TestNeedsMetadata(t *testing.T) {
	cases := []struct {
		set  ConditionSet
		want bool
	}{
		{ConditionSet{Pattern: "x"}, false},
		{ConditionSet{MinSize: 1}, false},
		{ConditionSet{MaxWidth: 100}, true},
		{ConditionSet{CheckCorrupt: true}, true},
		{ConditionSet{NameList: []string{"a"}, CheckCorrupt: true}, false}, // list overrides
	}
	for i, tc := range cases {
		set := normalized(t, tc.set)
		if got := set.NeedsMetadata(); got != tc.want {
			t.Errorf("case %d: NeedsMetadata = %v, want %v", i, got, tc.want)
		}
	}
}

func TestRationaleTracesEverySubCondition(t *testing.T) {
	set := normalized(t, ConditionSet{Pattern: "img", MinSize: 1, CheckBadChars: true})
	d := Evaluate(entry("img_1.jpg", 10), nil, set)
	for _, frag := range []string{"name(img):hit", "size(10):hit", "badchars:miss"} {
		if !strings.Contains(d.Rationale, frag) {
			t.Errorf("rationale %q lacks %q", d.Rationale, frag)
		}
	}
}
