// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import "testing"

func TestResolveID(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"1706.03762", "1706.03762", true},
		{"1706.03762v5", "1706.03762", true},
		{"arXiv:2301.07041", "2301.07041", true},
		{"arxiv:2301.07041v2", "2301.07041", true},
		{"hep-th/9901001", "hep-th/9901001", true},
		{"math.GT/0309136v2", "math.GT/0309136", true},
		{"https://arxiv.org/abs/1706.03762", "1706.03762", true},
		{"http://arxiv.org/abs/1706.03762v7", "1706.03762", true},
		{"https://arxiv.org/pdf/1706.03762v7.pdf", "1706.03762", true},
		{"https://www.arxiv.org/abs/1810.04805/", "1810.04805", true},
		{"arxiv.org/abs/hep-th/9901001v1", "hep-th/9901001", true},
		{"https://export.arxiv.org/abs/2301.07041", "2301.07041", true},
		{"https://doi.org/10.1145/1234567", "", false},
		{"https://example.com/abs/1706.03762", "", false},
		{"https://arxiv.org/list/cs.CL/recent", "", false},
		{"not a url", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ResolveID(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ResolveID(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTitlePhrase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"BERT: Pre-training of Deep Bidirectional Transformers", "BERT Pre training of Deep Bidirectional Transformers"},
		{"Attention Is All You Need", "Attention Is All You Need"},
		{`The "Quoted" Title`, "The Quoted Title"},
		{" - : ", ""},
	}
	for _, tt := range tests {
		if got := TitlePhrase(tt.input); got != tt.want {
			t.Errorf("TitlePhrase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
