package transform

import (
	"testing"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

func TestRegistryResolvesColdWar(t *testing.T) {
	r := NewRegistry()

	titles := []string{
		"Call of Duty: Cold War",
		"CallofDuty:ColdWar",
		"Call of Duty: Cold War ",
		"Call of\nDuty: Cold War",
		"Cold War",
		"ColdWar",
	}
	for _, title := range titles {
		if _, ok := r.Resolve(title); !ok {
			t.Errorf("expected transformer for %q", title)
		}
	}
}

func TestRegistryUnknownTitle(t *testing.T) {
	r := NewRegistry()

	fn, ok := r.Resolve("Call of Duty: Modern Warfare")
	if ok {
		t.Error("expected no transformer for unregistered game")
	}
	if fn != nil {
		t.Error("expected nil transformer on miss")
	}
}

func TestRegistryCaseSensitive(t *testing.T) {
	r := NewRegistry()

	// Whitespace is normalized, case is not
	if _, ok := r.Resolve("call of duty: cold war"); ok {
		t.Error("lookup should preserve case")
	}
}

func TestRegistryRegisterCustom(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("My Game", func(g models.Game) models.GameSummary {
		called = true
		return models.GameSummary{}
	})

	fn, ok := r.Resolve("MyGame")
	if !ok {
		t.Fatal("expected custom transformer to resolve")
	}
	fn(models.Game{})
	if !called {
		t.Error("resolved transformer was not the registered one")
	}
}
