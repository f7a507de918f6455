package migration

import (
	"testing"
)

func TestParseLegacyDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{
			name:  "zero",
			input: "0:0:0:0",
			want:  0,
		},
		{
			name:  "one day",
			input: "1:00:00:00",
			want:  86400,
		},
		{
			name:  "mixed segments",
			input: "76:04:59:37",
			want:  76*86400 + 4*3600 + 59*60 + 37,
		},
		{
			name:  "no fixed width",
			input: "0:5:0:0",
			want:  18000,
		},
		{
			name:  "days beyond calendar ranges",
			input: "1000:0:0:0",
			want:  1000 * 86400,
		},
		{
			name:  "oversized lower segments",
			input: "0:25:61:61",
			want:  25*3600 + 61*60 + 61,
		},
		{
			name:    "too few segments",
			input:   "1:2:3",
			wantErr: true,
		},
		{
			name:    "too many segments",
			input:   "1:2:3:4:5",
			wantErr: true,
		},
		{
			name:    "non-numeric segment",
			input:   "a:2:3:4",
			wantErr: true,
		},
		{
			name:    "empty segment",
			input:   "1::3:4",
			wantErr: true,
		},
		{
			name:    "negative segment",
			input:   "0:-1:0:0",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLegacyDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLegacyDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLegacyDuration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractVoiceUserID(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		want   string
		wantOK bool
	}{
		{
			name:   "voice key",
			key:    "223647480741363713_voice",
			want:   "223647480741363713",
			wantOK: true,
		},
		{
			name: "other key",
			key:  "223647480741363713_other",
		},
		{
			name: "suffix mid-string only",
			key:  "123_voice_backup",
		},
		{
			name:   "suffix alone",
			key:    "_voice",
			want:   "",
			wantOK: true,
		},
		{
			name: "empty key",
			key:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractVoiceUserID(tt.key)
			if ok != tt.wantOK {
				t.Errorf("ExtractVoiceUserID(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
				return
			}
			if got != tt.want {
				t.Errorf("ExtractVoiceUserID(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
