package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		level   string
		json    bool
		wantErr bool
		enabled zapcore.Level
	}{
		{"info", false, false, zapcore.InfoLevel},
		{"debug", true, false, zapcore.DebugLevel},
		{" warn ", false, false, zapcore.WarnLevel},
		{"loud", false, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			log, err := New(tc.level, tc.json)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !log.Core().Enabled(tc.enabled) {
				t.Errorf("level %s not enabled", tc.enabled)
			}
			if log.Core().Enabled(tc.enabled - 1) {
				t.Errorf("level below %s enabled", tc.enabled)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"abc":              "***",
		"AKIAABCDEFGH1234": "************1234",
	}
	for in, want := range cases {
		if got := MaskSecret(in); got != want {
			t.Errorf("MaskSecret(%q) = %q; want %q", in, got, want)
		}
	}
	m := MaskCredentials(map[string]string{"token": "ghp_secret9999"})
	if m["token"] != "**********9999" {
		t.Errorf("MaskCredentials = %v", m)
	}
}
