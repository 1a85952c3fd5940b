package quizverify

import "testing"

func TestExtractRelevantSpan(t *testing.T) {
	tests := []struct {
		name        string
		question    string
		translation string
		want        string
	}{
		{
			name:        "quoted speech",
			question:    "What did Pharaoh declare?",
			translation: `He said, "I am your lord, most high"`,
			want:        "I am your lord, most high",
		},
		{
			name:        "curly quotes",
			question:    "What did Pharaoh say?",
			translation: "He said, “I am your lord, most high”",
			want:        "I am your lord, most high",
		},
		{
			name:        "said clause",
			question:    "What did Moses reply?",
			translation: "Moses said: Our Lord is the one who gave everything its form",
			want:        "Our Lord is the one who gave everything its form",
		},
		{
			name:        "speech question without speech falls back",
			question:    "What did Pharaoh say?",
			translation: "Then he gathered his people and called out",
			want:        "Then he gathered his people and called out",
		},
		{
			name:        "not a speech question",
			question:    "According to this verse, what happened?",
			translation: `He said, "I am your lord, most high"`,
			want:        `He said, "I am your lord, most high"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractRelevantSpan(tt.question, ReferenceRecord{CanonicalTranslation: tt.translation})
			if got != tt.want {
				t.Errorf("ExtractRelevantSpan = %q, want %q", got, tt.want)
			}
		})
	}
}
