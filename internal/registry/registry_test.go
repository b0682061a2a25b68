package registry

import (
	"errors"
	"testing"

	"github.com/jackzampolin/fingerprint/internal/config"
	"github.com/jackzampolin/fingerprint/internal/refusal"
)

func TestLoadBuiltinsResolveAndList(t *testing.T) {
	cfg := config.DefaultConfig()
	reg, err := Load(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := reg.Resolve("xlsx-assumptions.v1"); err != nil {
		t.Errorf("Resolve(xlsx-assumptions.v1): %v", err)
	}

	summaries := reg.List()
	if len(summaries) == 0 {
		t.Fatal("expected at least one built-in fingerprint")
	}
	for i := 1; i < len(summaries); i++ {
		if summaries[i-1].ID > summaries[i].ID {
			t.Fatalf("List() not sorted by id: %q before %q", summaries[i-1].ID, summaries[i].ID)
		}
	}

	children := reg.Children("cbre-appraisal.v1")
	if len(children) != 1 || children[0].ID != "cbre-appraisal.v1/rent-roll.v1" {
		t.Errorf("unexpected children: %+v", children)
	}
}

func TestResolveUnknownIsRefusal(t *testing.T) {
	cfg := config.DefaultConfig()
	reg, err := Load(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err = reg.Resolve("does-not-exist.v1")
	var refErr *refusal.Error
	if !errors.As(err, &refErr) {
		t.Fatalf("expected a refusal.Error, got %v", err)
	}
	if refErr.Code != refusal.CodeUnknownFP {
		t.Errorf("code = %q, want %q", refErr.Code, refusal.CodeUnknownFP)
	}
}
