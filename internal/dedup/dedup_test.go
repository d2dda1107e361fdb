// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func vr(id string, prov types.Provenance, year int, authors ...string) types.ValidatedRecord {
	return types.ValidatedRecord{
		CandidateRecord: types.CandidateRecord{Title: "Paper " + id, Authors: authors},
		CanonicalID:     id,
		PublishedYear:   year,
		Provenance:      prov,
	}
}

func TestMergeFirstWins(t *testing.T) {
	a := vr("1", types.ProvenanceDirect, 2017, "Ashish Vaswani")
	b := vr("2", types.ProvenanceDirect, 2018, "Jacob Devlin")

	// Two roots expand to the same third record.
	third1 := vr("3", types.ProvenanceAuthorExpansion, 2019, "Noam Shazeer")
	third1.FromAuthor, third1.Origin = "Noam Shazeer", "1"
	third2 := vr("3", types.ProvenanceAuthorExpansion, 2019, "Noam Shazeer")
	third2.FromAuthor, third2.Origin = "Jacob Devlin", "2"
	third2.Abstract = "would be merged if fields merged"

	got := Merge([]types.ValidatedRecord{a, b}, []types.ValidatedRecord{third1, third2, vr("1", types.ProvenanceAuthorExpansion, 2017)})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{got[0].CanonicalID, got[1].CanonicalID, got[2].CanonicalID})
	assert.Equal(t, types.ProvenanceDirect, got[0].Provenance, "validated record precedes its expansion duplicate")
	assert.Equal(t, "1", got[2].Origin)
	assert.Empty(t, got[2].Abstract)
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, Merge())
	assert.Empty(t, Merge(nil, nil))
}

func TestFamilyName(t *testing.T) {
	tests := []struct {
		authors []string
		want    string
	}{
		{[]string{"Ashish Vaswani", "Noam Shazeer"}, "Vaswani"},
		{[]string{"Yoshua Bengio"}, "Bengio"},
		{[]string{"Plato"}, "Plato"},
		{[]string{"Jean-Luc O'Brien"}, "OBrien"},
		{[]string{"Hans Müller"}, "Müller"},
		{[]string{"  "}, UnknownAuthor},
		{[]string{"J. --"}, UnknownAuthor},
		{nil, UnknownAuthor},
	}
	for _, tt := range tests {
		if got := FamilyName(tt.authors); got != tt.want {
			t.Errorf("FamilyName(%q) = %q, want %q", tt.authors, got, tt.want)
		}
	}
}

func TestBaseKey(t *testing.T) {
	assert.Equal(t, "Vaswani2017", BaseKey(vr("1", types.ProvenanceDirect, 2017, "Ashish Vaswani")))
	assert.Equal(t, "Unknown2020", BaseKey(vr("1", types.ProvenanceDirect, 2020)))

	noYear := vr("1", types.ProvenanceDirect, 0, "Ashish Vaswani")
	assert.Equal(t, "Vaswani", BaseKey(noYear))
	noYear.Year = 2016
	assert.Equal(t, "Vaswani2016", BaseKey(noYear), "candidate year used when index year missing")
}

func entries(records ...types.ValidatedRecord) []types.CitationEntry {
	out := make([]types.CitationEntry, len(records))
	for i, r := range records {
		out[i] = types.CitationEntry{Record: r, RelevanceNote: r.CanonicalID}
	}
	return out
}

func keys(es []types.CitationEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Key
	}
	return out
}

func TestAssignKeys(t *testing.T) {
	tests := []struct {
		name    string
		records []types.ValidatedRecord
		want    []string
	}{
		{
			name:    "unique keys stay bare",
			records: []types.ValidatedRecord{vr("1", "", 2017, "Ashish Vaswani"), vr("2", "", 2018, "Jacob Devlin")},
			want:    []string{"Vaswani2017", "Devlin2018"},
		},
		{
			name: "collisions get suffixes",
			records: []types.ValidatedRecord{
				vr("1", "", 2023, "Jane Smith"),
				vr("2", "", 2022, "Ann Lee"),
				vr("3", "", 2023, "John Smith"),
				vr("4", "", 2023, "Al Smith"),
			},
			want: []string{"Smith2023a", "Lee2022", "Smith2023b", "Smith2023c"},
		},
		{
			name: "suffixed key does not clash with a bare one",
			records: []types.ValidatedRecord{
				vr("1", "", 0, "X Smith2023a"),
				vr("2", "", 2023, "Jane Smith"),
				vr("3", "", 2023, "John Smith"),
			},
			want: []string{"Smith2023a", "Smith2023b", "Smith2023c"},
		},
		{
			name:    "unknown authors collide too",
			records: []types.ValidatedRecord{vr("1", "", 2020), vr("2", "", 2020)},
			want:    []string{"Unknown2020a", "Unknown2020b"},
		},
		{
			name:    "empty",
			records: nil,
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssignKeys(entries(tt.records...))
			assert.Equal(t, tt.want, keys(got))

			seen := map[string]bool{}
			for i, e := range got {
				assert.False(t, seen[e.Key], "duplicate key %s", e.Key)
				seen[e.Key] = true
				assert.Equal(t, tt.records[i].CanonicalID, e.RelevanceNote, "entry order and fields preserved")
			}
		})
	}
}

func TestAssignKeysDoesNotMutateInput(t *testing.T) {
	in := entries(vr("1", "", 2017, "Ashish Vaswani"))
	_ = AssignKeys(in)
	assert.Empty(t, in[0].Key)
}

func TestSuffix(t *testing.T) {
	tests := map[int]string{0: "a", 1: "b", 25: "z", 26: "aa", 27: "ab", 51: "az", 52: "ba", 701: "zz", 702: "aaa"}
	for n, want := range tests {
		if got := suffix(n); got != want {
			t.Errorf("suffix(%d) = %q, want %q", n, got, want)
		}
	}
}
