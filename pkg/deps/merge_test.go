package deps

import (
	"fmt"
	"math/rand"
	"reflect"
	"slices"
	"testing"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		first  []Module
		second []Module
		want   []Seed
	}{
		{
			name: "empty",
			want: []Seed{},
		},
		{
			name:   "identical",
			first:  []Module{{"a", "1.0.0"}, {"b", "2.0.0"}},
			second: []Module{{"a", "1.0.0"}, {"b", "2.0.0"}},
			want:   []Seed{{"a", "1.0.0", "1.0.0"}, {"b", "2.0.0", "2.0.0"}},
		},
		{
			name:   "version mismatch",
			first:  []Module{{"y", "1.0.0"}},
			second: []Module{{"y", "2.0.0"}},
			want:   []Seed{{"y", "1.0.0", "2.0.0"}},
		},
		{
			name:   "only in first",
			first:  []Module{{"a", "1.0.0"}},
			second: nil,
			want:   []Seed{{Name: "a", FirstVersion: "1.0.0"}},
		},
		{
			name:   "only in second",
			first:  nil,
			second: []Module{{"a", "1.0.0"}},
			want:   []Seed{{Name: "a", SecondVersion: "1.0.0"}},
		},
		{
			name:   "first order wins then second-only names",
			first:  []Module{{"c", "1"}, {"a", "1"}},
			second: []Module{{"d", "2"}, {"a", "2"}, {"b", "2"}},
			want: []Seed{
				{"c", "1", ""},
				{"a", "1", "2"},
				{"d", "", "2"},
				{"b", "", "2"},
			},
		},
		{
			name:   "duplicates keep first occurrence",
			first:  []Module{{"a", "1"}, {"a", "9"}},
			second: []Module{{"a", "2"}, {"a", "8"}},
			want:   []Seed{{"a", "1", "2"}},
		},
		{
			name:   "empty names skipped",
			first:  []Module{{"", "1"}},
			second: []Module{{"", "2"}, {"b", "1"}},
			want:   []Seed{{Name: "b", SecondVersion: "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.first, tt.second)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	randomList := func() []Module {
		n := rng.Intn(8)
		list := make([]Module, 0, n)
		used := map[string]bool{}
		for range n {
			name := fmt.Sprintf("m%d", rng.Intn(10))
			if used[name] {
				continue
			}
			used[name] = true
			list = append(list, Module{Name: name, Version: fmt.Sprintf("%d.0.0", rng.Intn(3))})
		}
		return list
	}

	for i := range 200 {
		a, b := randomList(), randomList()
		ab := Merge(a, b)
		ba := Merge(b, a)

		if !slices.Equal(sortedNames(ab), sortedNames(ba)) {
			t.Fatalf("case %d: name sets differ: %v vs %v", i, sortedNames(ab), sortedNames(ba))
		}

		counts := map[string]int{}
		for _, s := range ab {
			counts[s.Name]++
		}
		for _, m := range append(slices.Clone(a), b...) {
			if counts[m.Name] != 1 {
				t.Fatalf("case %d: %s appears %d times", i, m.Name, counts[m.Name])
			}
		}

		inA := versions(a)
		inB := versions(b)
		for _, s := range ab {
			if s.FirstVersion != inA[s.Name] {
				t.Errorf("case %d: %s first = %q, want %q", i, s.Name, s.FirstVersion, inA[s.Name])
			}
			if s.SecondVersion != inB[s.Name] {
				t.Errorf("case %d: %s second = %q, want %q", i, s.Name, s.SecondVersion, inB[s.Name])
			}
		}
	}
}

func TestModuleString(t *testing.T) {
	if got := (Module{Name: "a", Version: "1.0.0"}).String(); got != "a@1.0.0" {
		t.Errorf("String() = %q", got)
	}
	if got := (Module{Name: "a"}).String(); got != "a" {
		t.Errorf("String() = %q", got)
	}
}

func sortedNames(seeds []Seed) []string {
	names := make([]string, len(seeds))
	for i, s := range seeds {
		names[i] = s.Name
	}
	slices.Sort(names)
	return names
}

func versions(list []Module) map[string]string {
	m := make(map[string]string, len(list))
	for _, x := range list {
		m[x.Name] = x.Version
	}
	return m
}
