package failure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := Timeout("send", "attempt 2 exceeded 30s", context.DeadlineExceeded)
	wrapped := fmt.Errorf("generate interior: %w", base)

	if got := KindOf(wrapped); got != KindTimeout {
		t.Errorf("KindOf() = %v, want %v", got, KindTimeout)
	}
	if !errors.Is(wrapped, context.DeadlineExceeded) {
		t.Error("wrapped error should unwrap to context.DeadlineExceeded")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain errors should be KindUnknown")
	}
	if Is(nil, KindTimeout) {
		t.Error("Is(nil) should be false")
	}
}

func TestError_Retryable(t *testing.T) {
	tests := []struct {
		err  *Error
		want bool
	}{
		{Validation("build", "no images"), false},
		{Network("send", errors.New("connection refused")), true},
		{Timeout("send", "", nil), true},
		{Service("send", 502, "", []byte("bad gateway")), true},
		{Delivery("save", "disk full"), false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			if got := tt.err.Retryable(); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		body string
		n    int
		want string
	}{
		{"plain text", "missing imageUrls", 200, "missing imageUrls"},
		{"html page", "<html><body><h1>502 Bad Gateway</h1>\n<p>nginx</p></body></html>", 200, "502 Bad Gateway nginx"},
		{"entities", "<p>a &amp; b</p>", 200, "a & b"},
		{"truncated", "abcdefghij", 4, "abcd..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt([]byte(tt.body), tt.n); got != tt.want {
				t.Errorf("Excerpt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestService_ErrorText(t *testing.T) {
	err := Service("send", 500, "", []byte("internal error"))
	if !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("Error() = %q, should mention the status", err.Error())
	}
	if !strings.Contains(err.Error(), "internal error") {
		t.Errorf("Error() = %q, should include the body excerpt", err.Error())
	}
}

func TestExplain_DistinctPerKind(t *testing.T) {
	errs := []error{
		Validation("check", "nome do projeto é obrigatório"),
		Network("send", errors.New("dial tcp: connection refused")),
		Timeout("send", "", context.DeadlineExceeded),
		Service("send", 500, "", []byte("boom")),
		Service("validate", 0, "not a pdf", []byte("{\"error\":\"bad\"}")),
		Delivery("save", "permission denied"),
		&Error{Kind: KindNetwork, Op: "probe", Err: ErrOfflineDeclined},
	}

	seen := make(map[string]bool)
	for _, err := range errs {
		title := Explain(err).Title
		if title == "" {
			t.Errorf("Explain(%v) has no title", err)
		}
		if seen[title] {
			t.Errorf("title %q used for more than one failure class", title)
		}
		seen[title] = true
	}
}

func TestUserMessage_IncludesSuggestions(t *testing.T) {
	msg := UserMessage(Timeout("send", "", nil))
	if !strings.Contains(msg, "Sugestões") {
		t.Errorf("UserMessage() = %q, want suggestions", msg)
	}
	if UserMessage(nil) != "" {
		t.Error("UserMessage(nil) should be empty")
	}
}

func TestExplain_InvalidResponsePrefersExtractedMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"extracted message", Service("validate", 0, "imagem 3 inacessível", []byte(`{"error": "imagem 3 inacessível"}`)), "imagem 3 inacessível"},
		{"body only", Service("validate", 0, "", []byte("página em manutenção")), "página em manutenção"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Explain(tt.err).Detail; got != tt.want {
				t.Errorf("Explain().Detail = %q, want %q", got, tt.want)
			}
		})
	}
}
