package ai

import "testing"

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"reply":"hi"}`,
			want:  `{"reply":"hi"}`,
		},
		{
			name:  "fenced with language tag",
			input: "```json\n{\"reply\":\"hi\"}\n```",
			want:  `{"reply":"hi"}`,
		},
		{
			name:  "fenced without language tag",
			input: "```\n{\"reply\":\"hi\"}\n```",
			want:  `{"reply":"hi"}`,
		},
		{
			name:  "surrounded by prose",
			input: "Sure! Here you go:\n{\"reply\":\"hi\"}\nLet me know if that helps.",
			want:  `{"reply":"hi"}`,
		},
		{
			name:  "nested braces",
			input: `{"outer":{"inner":1}}`,
			want:  `{"outer":{"inner":1}}`,
		},
		{
			name:  "leading and trailing whitespace",
			input: "  \n {\"reply\":\"hi\"} \n ",
			want:  `{"reply":"hi"}`,
		},
		{
			name:    "no object at all",
			input:   "I could not help with that.",
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   `{"reply": oops}`,
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tc.input)

			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %q", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
