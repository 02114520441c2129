package version

import (
	"fmt"
	"math"
	"testing"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in                  string
		major, minor, patch int
		classifier          string
		snapshot            bool
	}{
		{"1", 1, 0, 0, "", false},
		{"1.2", 1, 2, 0, "", false},
		{"1.2.3", 1, 2, 3, "", false},
		{"2.0-SNAPSHOT", 2, 0, 0, "", true},
		{"2.0-rc1", 2, 0, 0, "rc1", false},
		{"2.0-rc1-SNAPSHOT", 2, 0, 0, "rc1", true},
		{"2.2.1-NX1", 2, 2, 1, "NX1", false},
		{"5.9-I20131022", 5, 9, 0, "I20131022", false},
		{"1.0-alpha-1", 1, 0, 0, "alpha-1", false},
		{"3.1.0.RELEASE", 3, 1, 0, "RELEASE", false},
		{"1.2.3.4", 1, 2, 3, "4", false},
		{"1_0", 1, 0, 0, "0", false},
		{"2.5_beta", 2, 5, 0, "beta", false},
		{"r09", 9, 0, 0, "r", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if v.Major != tt.major || v.Minor != tt.minor || v.Patch != tt.patch {
				t.Errorf("triple = %d.%d.%d, want %d.%d.%d", v.Major, v.Minor, v.Patch, tt.major, tt.minor, tt.patch)
			}
			if v.Classifier != tt.classifier {
				t.Errorf("Classifier = %q, want %q", v.Classifier, tt.classifier)
			}
			if v.Snapshot != tt.snapshot {
				t.Errorf("Snapshot = %v, want %v", v.Snapshot, tt.snapshot)
			}
			if v.Original() != tt.in {
				t.Errorf("Original() = %q, want %q", v.Original(), tt.in)
			}
		})
	}
}

func TestParseOverflowingRun(t *testing.T) {
	v, err := Parse("99999999999999999999.2-x")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.Major != math.MaxInt || v.Minor != 2 || v.Classifier != "x" {
		t.Errorf("got %d.%d.%d-%s, want clamped major, minor 2, classifier x", v.Major, v.Minor, v.Patch, v.Classifier)
	}
	if !v.Less(MustParse("99999999999999999999.3")) {
		t.Error("clamped version should still order by its minor field")
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "abc", "SNAPSHOT", "-SNAPSHOT", "x.y.z"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", in)
			}
			if !errors.Is(err, errors.ErrCodeInvalidVersion) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidVersion)
			}
		})
	}
}

func TestSpecial(t *testing.T) {
	tests := []struct {
		classifier string
		want       bool
	}{
		{"rc", true},
		{"RC2", true},
		{"alpha", true},
		{"Alpha7", true},
		{"Alpha-1", false},
		{"beta3", true},
		{"I20131022", true},
		{"v20200101", true},
		{"v20200101-1200", false},
		{"rc1x", false},
		{"a123456789", false},
		{"", false},
		{"GA", false},
		{"NX1", false},
		{"RELEASE", false},
		{"rcx", false},
		{"I2013", false},
	}
	for _, tt := range tests {
		t.Run(tt.classifier, func(t *testing.T) {
			if got := IsSpecialClassifier(tt.classifier); got != tt.want {
				t.Errorf("IsSpecialClassifier(%q) = %v, want %v", tt.classifier, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0.0", 0},
		{"1.0", "1.1", -1},
		{"1.10", "1.9", 1},
		{"2.0.1", "2.0", 1},
		{"1.0-SNAPSHOT", "1.0", -1},
		{"1.0-rc1-SNAPSHOT", "1.0-rc1", -1},
		{"1.0-rc1", "1.0", -1},
		{"1.0-rc1", "1.0-GA", -1},
		{"1.0-beta", "1.0-alpha", 1},
		{"1.0-GA", "1.0-RC", 1},
		{"1.0-GA", "1.0-HF01", -1},
		{"1.0-ga", "1.0-GA", 1},
		{"1.0", "1.0-GA", -1},
		{"1.0-HF01", "1.0-HF02", -1},
		{"5.9-I20131022", "5.9", -1},
		{"1.0-rc1", "0.9", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got, err := CompareStrings(tt.a, tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			back, _ := CompareStrings(tt.b, tt.a)
			if back != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, back, -tt.want)
			}
		})
	}
}

func TestCompareTotalOrder(t *testing.T) {
	inputs := []string{
		"1.0", "1.0.0", "1.0-SNAPSHOT", "1.0-rc1", "1.0-rc1-SNAPSHOT", "1.0-rc2",
		"1.0-GA", "1.0-RC", "1.0-alpha", "1.0-beta", "1.0-I20131022", "1.0-NX1",
		"1.1", "0.9", "2.0-HF01", "2.0-HF01-SNAPSHOT", "3.1.0.RELEASE", "1_0",
	}
	vs := make([]Version, len(inputs))
	for i, s := range inputs {
		vs[i] = MustParse(s)
	}

	sign := func(n int) int {
		switch {
		case n < 0:
			return -1
		case n > 0:
			return 1
		}
		return 0
	}

	for _, a := range vs {
		if Compare(a, a) != 0 {
			t.Errorf("Compare(%s, %s) != 0", a.Original(), a.Original())
		}
		for _, b := range vs {
			if sign(Compare(a, b)) != -sign(Compare(b, a)) {
				t.Errorf("antisymmetry violated for %s, %s", a.Original(), b.Original())
			}
			for _, c := range vs {
				if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
					t.Errorf("transitivity violated: %s <= %s <= %s but %s > %s",
						a.Original(), b.Original(), c.Original(), a.Original(), c.Original())
				}
			}
		}
	}
}

func TestSnapshotSortsBeforeRelease(t *testing.T) {
	for _, c := range []string{"", "rc1", "GA", "NX1", "I20131022"} {
		release := New(4, 2, 1, c, false)
		snapshot := New(4, 2, 1, c, true)
		if !snapshot.Less(release) {
			t.Errorf("classifier %q: snapshot %s not before release %s", c, snapshot, release)
		}
	}
}

func TestSpecialSortsBeforeNonSpecial(t *testing.T) {
	specials := []string{"rc1", "alpha", "beta2", "I20131022"}
	others := []string{"", "GA", "HF01", "NX1", "0"}
	for _, s := range specials {
		for _, n := range others {
			if !New(1, 2, 3, s, false).Less(New(1, 2, 3, n, false)) {
				t.Errorf("1.2.3-%s not before 1.2.3-%s", s, n)
			}
		}
	}
}

func TestEqualIgnoresRawForm(t *testing.T) {
	a := MustParse("1.0")
	b := MustParse("1.0.0")
	if !a.Equal(b) {
		t.Errorf("%q should equal %q", a.Original(), b.Original())
	}
	if a.Original() == b.Original() {
		t.Error("raw forms should differ")
	}
}

func TestString(t *testing.T) {
	tests := map[string]string{
		"1":                "1.0.0",
		"2.0-rc1-SNAPSHOT": "2.0.0-rc1-SNAPSHOT",
		"3.1.0.RELEASE":    "3.1.0-RELEASE",
	}
	for in, want := range tests {
		if got := MustParse(in).String(); got != want {
			t.Errorf("MustParse(%q).String() = %q, want %q", in, got, want)
		}
	}
	if got := New(1, 2, 3, "", false).Original(); got != "1.2.3" {
		t.Errorf("Original() = %q, want 1.2.3", got)
	}
}

func TestSortAndMax(t *testing.T) {
	vs := []Version{
		MustParse("1.0"),
		MustParse("1.0-SNAPSHOT"),
		MustParse("0.9"),
		MustParse("1.0-rc1"),
		MustParse("1.1"),
	}
	Sort(vs)

	want := []string{"0.9", "1.0-rc1", "1.0-SNAPSHOT", "1.0", "1.1"}
	for i, v := range vs {
		if v.Original() != want[i] {
			t.Errorf("vs[%d] = %q, want %q", i, v.Original(), want[i])
		}
	}

	max, ok := Max(vs...)
	if !ok || max.Original() != "1.1" {
		t.Errorf("Max() = %q, %v; want 1.1, true", max.Original(), ok)
	}
	if _, ok := Max(); ok {
		t.Error("Max() of nothing should report false")
	}
}

func TestFromFilename(t *testing.T) {
	tests := []struct {
		file       string
		name       string
		version    string
		classifier string
		wantErr    bool
	}{
		{file: "geronimo-connector-2.2.1-NX1.jar", name: "geronimo-connector", version: "2.2.1", classifier: "NX1"},
		{file: "nuxeo-core-5.9-SNAPSHOT.jar", name: "nuxeo-core", version: "5.9.0"},
		{file: "commons-lang-2.6.jar", name: "commons-lang", version: "2.6.0"},
		{file: "README.txt", wantErr: true},
		{file: "foo.jar", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			name, v, err := FromFilename(tt.file)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("FromFilename(%q) succeeded, want error", tt.file)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if name != tt.name {
				t.Errorf("name = %q, want %q", name, tt.name)
			}
			got := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
			if got != tt.version {
				t.Errorf("version = %s, want %s", got, tt.version)
			}
			if v.Classifier != tt.classifier {
				t.Errorf("classifier = %q, want %q", v.Classifier, tt.classifier)
			}
		})
	}
}

func ExampleCompare() {
	fmt.Println(Compare(MustParse("2.0-rc1"), MustParse("2.0")))
	fmt.Println(Compare(MustParse("2.0-SNAPSHOT"), MustParse("2.0")))
	fmt.Println(Compare(MustParse("1.0-HF01"), MustParse("1.0-GA")))
	// Output:
	// -1
	// -1
	// 1
}
