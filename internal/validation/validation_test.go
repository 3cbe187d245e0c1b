package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestStringRules(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantErr bool
	}{
		{"utf8 ascii", ValidateUTF8("reflection", "long day"), false},
		{"utf8 emoji", ValidateUTF8("reflection", "shipped 🚀"), false},
		{"utf8 invalid", ValidateUTF8("reflection", "bad \xff\xfe"), true},
		{"null byte clean", ValidateNoNullBytes("name", "Meditation"), false},
		{"null byte present", ValidateNoNullBytes("name", "Medi\x00tation"), true},
		{"max length within", ValidateMaxLength("name", "Reading", 50), false},
		{"max length at limit", ValidateMaxLength("name", strings.Repeat("a", 50), 50), false},
		{"max length exceeded", ValidateMaxLength("name", strings.Repeat("a", 51), 50), true},
		{"max length counts runes", ValidateMaxLength("name", strings.Repeat("日", 50), 50), false},
		{"max length runes exceeded", ValidateMaxLength("name", strings.Repeat("日", 51), 50), true},
		{"required present", ValidateRequired("name", "Reading"), false},
		{"required empty", ValidateRequired("name", ""), true},
		{"required whitespace", ValidateRequired("name", " \t\n"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantErr {
				t.Errorf("got %v, wantErr %v", tt.err, tt.wantErr)
			}
		})
	}
}

func TestValidateEnum(t *testing.T) {
	units := []string{"minutes", "hours", "count", "boolean"}
	if err := ValidateEnum("unitType", "hours", units); err != nil {
		t.Errorf("ValidateEnum(hours) = %v, want nil", err)
	}
	err := ValidateEnum("unitType", "Hours", units)
	if err == nil {
		t.Fatal("ValidateEnum is case-sensitive; want error for Hours")
	}
	if err.Field != "unitType" || !strings.Contains(err.Message, "minutes, hours, count, boolean") {
		t.Errorf("err = %+v", err)
	}
}

func TestNumericRules(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantErr bool
	}{
		{"range low bound", ValidateRange("moodScore", 0, 0, 100), false},
		{"range high bound", ValidateRange("moodScore", 100, 0, 100), false},
		{"range below", ValidateRange("moodScore", -1, 0, 100), true},
		{"range above", ValidateRange("workoutCount", 8, 0, 7), true},
		{"non-negative zero", ValidateNonNegative("drinks", 0), false},
		{"non-negative fraction", ValidateNonNegative("drinks", 1.5), false},
		{"negative", ValidateNonNegative("drinks", -0.5), true},
		{"NaN", ValidateNonNegative("drinks", math.NaN()), true},
		{"infinity", ValidateNonNegative("drinks", math.Inf(1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantErr {
				t.Errorf("got %v, wantErr %v", tt.err, tt.wantErr)
			}
		})
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	if c.HasErrors() || len(c.Errors()) != 0 {
		t.Fatal("empty collector reports errors")
	}

	c.Add(nil)
	c.Add(ValidateNonNegative("drinks", -1))
	c.Add(ValidateNonNegative("tvMinutes", 30))
	c.Add(ValidateRange("moodScore", 140, 0, 100))

	if !c.HasErrors() {
		t.Fatal("HasErrors() = false after two failures")
	}
	errs := c.Errors()
	if len(errs) != 2 || errs[0].Field != "drinks" || errs[1].Field != "moodScore" {
		t.Errorf("Errors() = %+v", errs)
	}
}

func TestAsError(t *testing.T) {
	if err := AsError(nil); err != nil {
		t.Errorf("AsError(nil) = %v, want nil", err)
	}
	err := AsError([]ValidationError{
		{Field: "moodScore", Message: "must be between 0.0 and 100.0"},
		{Field: "drinks", Message: "must be a non-negative number"},
	})
	var fe FieldErrors
	if !errors.As(err, &fe) || len(fe) != 2 {
		t.Fatalf("AsError() = %v, want FieldErrors of 2", err)
	}
	want := "validation failed: moodScore: must be between 0.0 and 100.0; drinks: must be a non-negative number"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
