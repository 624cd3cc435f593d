package registry

import (
	"testing"

	"github.com/vovakirdan/tui-2048/internal/core"
)

type stubGame struct {
	id    string
	state core.GameState
}

func (g *stubGame) ID() string               { return g.id }
func (g *stubGame) Title() string            { return "Stub " + g.id }
func (g *stubGame) Reset(core.RuntimeConfig) {}
func (g *stubGame) Render(*core.Screen)      {}
func (g *stubGame) State() core.GameState    { return g.state }
func (g *stubGame) Step(core.InputFrame) core.StepResult {
	return core.StepResult{State: g.state}
}

func TestRegisterAndCreate(t *testing.T) {
	Register("stub_a", func() Game { return &stubGame{id: "stub_a"} })

	if !Exists("stub_a") {
		t.Fatal("stub_a should exist after Register")
	}
	g, err := Create("stub_a")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if g.ID() != "stub_a" {
		t.Errorf("ID() = %q, want stub_a", g.ID())
	}

	other, _ := Create("stub_a")
	if other == g {
		t.Error("Create should return a fresh instance")
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("no_such_game"); err == nil {
		t.Error("Create() of unknown game should fail")
	}
	if Exists("no_such_game") {
		t.Error("Exists() of unknown game should be false")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("stub_dup", func() Game { return &stubGame{id: "stub_dup"} })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("stub_dup", func() Game { return &stubGame{id: "stub_dup"} })
}

func TestListSortedWithTitles(t *testing.T) {
	Register("stub_z", func() Game { return &stubGame{id: "stub_z"} })
	Register("stub_m", func() Game { return &stubGame{id: "stub_m"} })

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID > list[i].ID {
			t.Fatalf("List() not sorted: %q before %q", list[i-1].ID, list[i].ID)
		}
	}

	found := false
	for _, info := range list {
		if info.ID == "stub_m" {
			found = true
			if info.Title != "Stub stub_m" {
				t.Errorf("Title = %q, want %q", info.Title, "Stub stub_m")
			}
		}
	}
	if !found {
		t.Error("stub_m missing from List()")
	}
}

func TestListDoesNotBuildGames(t *testing.T) {
	calls := 0
	Register("stub_counted", func() Game {
		calls++
		return &stubGame{id: "stub_counted"}
	})
	if calls != 1 {
		t.Fatalf("Register called the factory %d times, want 1", calls)
	}

	for _, info := range List() {
		if info.ID == "stub_counted" && info.Title != "Stub stub_counted" {
			t.Errorf("Title = %q", info.Title)
		}
	}
	if calls != 1 {
		t.Errorf("List called the factory; calls = %d", calls)
	}
}
