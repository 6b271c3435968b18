package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/codenexus/errors"
)

type workerConfig struct {
	Workers int `mapstructure:"workers" validate:"min=0,max=64"`
}

type sampleConfig struct {
	Name      string       `mapstructure:"name" validate:"required"`
	Delimiter string       `mapstructure:"csv_delimiter" validate:"len=1"`
	Mode      string       `mapstructure:"mode" validate:"oneof=sequential concurrent"`
	Manager   workerConfig `mapstructure:"manager"`
	NoTag     string       `validate:"required"`
}

func validSample() sampleConfig {
	return sampleConfig{
		Name:      "nexus",
		Delimiter: ",",
		Mode:      "sequential",
		Manager:   workerConfig{Workers: 4},
		NoTag:     "x",
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate(validSample()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_ReportsAllFields(t *testing.T) {
	cfg := validSample()
	cfg.Name = ""
	cfg.Delimiter = ";;"
	cfg.Manager.Workers = 100
	cfg.NoTag = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidConfig {
		t.Errorf("expected INVALID_CONFIG, got %s", appErr.Code)
	}

	for _, want := range []string{
		"name: is required",
		"csv_delimiter: must have length 1",
		"manager.workers: must be at most 64",
		"no_tag: is required",
	} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in %q", want, appErr.Message)
		}
	}

	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 4 {
		t.Errorf("expected 4 field errors, got %v", appErr.Details["fields"])
	}
}

func TestValidate_OneOf(t *testing.T) {
	cfg := validSample()
	cfg.Mode = "parallel"
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "mode: must be one of: sequential concurrent") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Workers":      "workers",
		"CSVDelimiter": "c_s_v_delimiter",
		"NoTag":        "no_tag",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
