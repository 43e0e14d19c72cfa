package main

import (
	"testing"

	"github.com/san-kum/blobsim/internal/config"
)

func TestParseGrid(t *testing.T) {
	name, vs, err := parseGrid("damping=0.5:1.5:3")
	if err != nil {
		t.Fatal(err)
	}
	if name != "damping" || len(vs) != 3 || vs[0] != 0.5 || vs[1] != 1 || vs[2] != 1.5 {
		t.Errorf("got %s %v", name, vs)
	}

	for _, bad := range []string{"damping", "damping=1:2", "damping=a:2:3", "damping=1:b:3", "damping=1:2:0"} {
		if _, _, err := parseGrid(bad); err == nil {
			t.Errorf("parseGrid(%q) should fail", bad)
		}
	}
}

func TestSeconds(t *testing.T) {
	if seconds(-1) != "never" {
		t.Error("negative time should read never")
	}
	if got := seconds(1.5); got != "1.500s" {
		t.Errorf("seconds(1.5) = %q", got)
	}
}

func TestCheckConfigFlags(t *testing.T) {
	cfg, err := config.DefaultConfig(config.VariantQuad)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name        string
		preset      string
		variantFlag string
		wantErr     bool
	}{
		{"file alone", "", "", false},
		{"matching variant", "", config.VariantQuad, false},
		{"preset", "calm", "", true},
		{"other variant", "", config.VariantPair, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkConfigFlags(cfg, tt.preset, tt.variantFlag)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
