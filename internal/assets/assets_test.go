package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadStyle(t *testing.T) {
	t.Parallel()

	content, err := LoadStyle(DefaultStyleName)
	if err != nil {
		t.Fatalf("LoadStyle(%q) error: %v", DefaultStyleName, err)
	}
	for _, want := range []string{"@page", "table", "border-collapse"} {
		if !strings.Contains(content, want) {
			t.Errorf("preview style should contain %q", want)
		}
	}

	if _, err := LoadStyle("missing"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(missing) error = %v, want ErrStyleNotFound", err)
	}
}

func TestLoadPipeline(t *testing.T) {
	t.Parallel()

	content, err := LoadPipeline(DefaultPipelineName)
	if err != nil {
		t.Fatalf("LoadPipeline(%q) error: %v", DefaultPipelineName, err)
	}
	// Stages appear in execution order.
	order := []string{`name: "0-2"`, `name: "4-1"`, `name: "MD0"`, `name: "MD1"`, `name: "MD2"`, `name: "MD3"`, `name: "MD7"`}
	last := -1
	for _, want := range order {
		i := strings.Index(string(content), want)
		if i < 0 {
			t.Fatalf("pipeline missing %s", want)
		}
		if i < last {
			t.Errorf("%s appears out of order", want)
		}
		last = i
	}

	if _, err := LoadPipeline("../etc"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadPipeline(../etc) error = %v, want ErrInvalidAssetName", err)
	}
}

func TestBuiltinNames(t *testing.T) {
	t.Parallel()

	if got := strings.Join(BuiltinStyles(), ","); got != DefaultStyleName {
		t.Errorf("BuiltinStyles() = %q, want %q", got, DefaultStyleName)
	}
	if got := strings.Join(BuiltinPipelines(), ","); got != DefaultPipelineName {
		t.Errorf("BuiltinPipelines() = %q, want %q", got, DefaultPipelineName)
	}
}
