package extract

import "testing"

func TestIsConversationURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://gemini.google.com/app", false},
		{"https://gemini.google.com/app/", false},
		{"https://gemini.google.com/app/ab12", true},
		{"https://gemini.google.com/app/4f2c9a11be03d7", true},
		{"https://gemini.google.com/u/1/app/ab12", true},
		{"https://gemini.google.com/gem/coding-partner/ab12", true},
		{"https://gemini.google.com/gem/coding-partner", false},
		{"https://gemini.google.com/app/ab12/extra", false},
		{"https://gemini.google.com/app/XYZ!", false},
		{"https://example.com/app/ab12", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsConversationURL(tt.url); got != tt.want {
			t.Errorf("IsConversationURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsEligibleStartPage(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://gemini.google.com/app", true},
		{"https://gemini.google.com/app/", true},
		{"https://gemini.google.com/u/2/app", true},
		{"https://gemini.google.com/gem/coding-partner", true},
		{"https://gemini.google.com/app/ab12", false},
		{"https://gemini.google.com/gem/coding-partner/ab12", false},
		{"https://example.com/app", false},
	}
	for _, tt := range tests {
		if got := IsEligibleStartPage(tt.url); got != tt.want {
			t.Errorf("IsEligibleStartPage(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestGemIDFromURL(t *testing.T) {
	if id, ok := GemIDFromURL("https://gemini.google.com/gem/coding-partner/ab12"); !ok || id != "coding-partner" {
		t.Errorf("got %q, %v", id, ok)
	}
	if id, ok := GemIDFromURL("https://gemini.google.com/gem/writer"); !ok || id != "writer" {
		t.Errorf("got %q, %v", id, ok)
	}
	if _, ok := GemIDFromURL("https://gemini.google.com/app/ab12"); ok {
		t.Error("app conversation must not resolve a gem id")
	}
}
