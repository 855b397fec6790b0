package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_RepoTuning(t *testing.T) {
	tu, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tu.Pistons.PushLimit != 12 || tu.Pistons.PlaceholderStep != 0.5 {
		t.Fatalf("pistons=%+v", tu.Pistons)
	}
	if tu.Height != 64 || tu.TickRateHz != 20 {
		t.Fatalf("tuning=%+v", tu)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("height: 32\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tu, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Defaults()
	if tu.Height != 32 || tu.Pistons != def.Pistons || tu.ButtonPressTicks != def.ButtonPressTicks {
		t.Fatalf("tuning=%+v", tu)
	}
}

func TestLoad_RejectsBadStep(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("pistons:\n  placeholder_step: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected validation error")
	}
}
