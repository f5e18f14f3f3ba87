package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractInputPrompt(t *testing.T) {
	s := mustParse(t, `
		<div class="ql-editor">
			<p>Explain this function</p>
			<div class="ql-code-block-container"><div class="ql-code-block">func main() {</div><div class="ql-code-block">}</div></div>
		</div>`)
	in := ExtractInput(s)

	want := "Explain this function\n" + CodeBlockPlaceholder
	if in.Prompt != want {
		t.Errorf("Prompt = %q, want %q", in.Prompt, want)
	}
	if in.OriginalPrompt == in.Prompt {
		t.Error("OriginalPrompt must retain the code block text")
	}
	if got := "Explain this function\nfunc main() { }"; in.OriginalPrompt != got {
		t.Errorf("OriginalPrompt = %q, want %q", in.OriginalPrompt, got)
	}
}

func TestExtractInputMissingEditor(t *testing.T) {
	in := ExtractInput(mustParse(t, `<div></div>`))
	if in.Prompt != "" || in.OriginalPrompt != "" || len(in.AttachedFiles) != 0 {
		t.Errorf("expected zero input, got %+v", in)
	}
}

func TestExtractAttachmentsPrefersLongName(t *testing.T) {
	s := mustParse(t, `
		<div data-test-id="file-name" title="quarterly-report-final-v3.pdf">quarterly-…pdf</div>
		<div data-test-id="file-name">notes.txt</div>
		<div class="attachment-chip" data-file-name="diagram-export.png">diagram.png</div>`)
	in := ExtractInput(s)

	want := []string{"quarterly-report-final-v3.pdf", "notes.txt", "diagram-export.png"}
	if diff := cmp.Diff(want, in.AttachedFiles); diff != "" {
		t.Errorf("AttachedFiles mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractAccount(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		want  Account
	}{
		{
			name: "primary account button",
			html: `<a class="gb_B" aria-label="Google Account: Ada Lovelace (ada@example.com)"></a>`,
			want: Account{Name: "Ada Lovelace", Email: "ada@example.com"},
		},
		{
			name: "prefix fallback",
			html: `<div aria-label="Google Account: Grace Hopper (grace@navy.mil)"></div>`,
			want: Account{Name: "Grace Hopper", Email: "grace@navy.mil"},
		},
		{
			name: "generic email scan",
			html: `<span aria-label="Signed in as turing@bletchley.uk"></span>`,
			want: Account{Email: "turing@bletchley.uk"},
		},
		{
			name: "no label at all",
			html: `<div></div>`,
			want: Account{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAccount(mustParse(t, tt.html))
			if got != tt.want {
				t.Errorf("ExtractAccount() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
