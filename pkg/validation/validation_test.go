package validation

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/go-armada/pkg/config"
	"github.com/opd-ai/go-armada/pkg/entity"
)

func TestValidatePilotName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid name", "Red Leader", "Red Leader", false},
		{"trims whitespace", "  Maverick  ", "Maverick", false},
		{"callsign punctuation", "Ghost-7_Actual", "Ghost-7_Actual", false},
		{"empty", "", "", true},
		{"only whitespace", "   ", "", true},
		{"too long", strings.Repeat("a", 40), "", true},
		{"invalid characters", "pilot;drop table", "", true},
		{"invalid utf8", "bad\xff", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePilotName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClampIntensity(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{0.5, 0.5},
		{0, 0},
		{1, 1},
		{-0.3, 0},
		{2.5, 1},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		if got := ClampIntensity(tt.value); got != tt.want {
			t.Errorf("ClampIntensity(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func loadDefaultClasses(t *testing.T) *entity.ClassSet {
	t.Helper()
	set, err := entity.LoadClasses(config.DefaultConfig())
	if err != nil {
		t.Fatalf("loading default classes: %v", err)
	}
	return set
}

func TestValidateClassSetAcceptsDefaults(t *testing.T) {
	if err := ValidateClassSet(loadDefaultClasses(t)); err != nil {
		t.Errorf("default classes rejected: %v", err)
	}
}

func TestValidateClassSetRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		corrupt func(set *entity.ClassSet)
	}{
		{"zero projectile mass", func(set *entity.ClassSet) {
			for _, pc := range set.Projectiles {
				pc.Mass = 0
				return
			}
		}},
		{"zero thrust", func(set *entity.ClassSet) {
			for _, pc := range set.Propulsion {
				pc.Thrust = 0
				return
			}
		}},
		{"inverted rotator range", func(set *entity.ClassSet) {
			for _, wc := range set.Weapons {
				for i := range wc.Rotators {
					if wc.Rotators[i].Restricted {
						wc.Rotators[i].Min = wc.Rotators[i].Max + 1
						return
					}
				}
			}
		}},
		{"zero muzzle velocity", func(set *entity.ClassSet) {
			for _, wc := range set.Weapons {
				if len(wc.Barrels) > 0 {
					wc.Barrels[0].Velocity = 0
					return
				}
			}
		}},
		{"zero hull", func(set *entity.ClassSet) {
			for _, sc := range set.Spacecraft {
				sc.MaxHull = 0
				return
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := loadDefaultClasses(t)
			tt.corrupt(set)
			if err := ValidateClassSet(set); err == nil {
				t.Error("broken class set passed validation")
			}
		})
	}
}

func TestCommandLimiter(t *testing.T) {
	cl := NewCommandLimiter(3, 50*time.Millisecond)
	defer cl.Close()

	for i := 0; i < 3; i++ {
		if !cl.Allow("red-1") {
			t.Fatalf("command %d denied under the limit", i)
		}
	}
	if cl.Allow("red-1") {
		t.Error("command allowed over the limit")
	}
	// Other pilots have their own budget
	if !cl.Allow("blue-1") {
		t.Error("fresh pilot denied")
	}

	time.Sleep(60 * time.Millisecond)
	if !cl.Allow("red-1") {
		t.Error("command denied after window refill")
	}
}
