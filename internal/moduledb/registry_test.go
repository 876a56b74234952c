package moduledb

import (
	"testing"

	"github.com/google/uuid"
)

func TestRegistryLookup(t *testing.T) {
	db, err := Parse([]byte(catalogJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reg := db.Registry()
	if reg.Len() != 5 {
		t.Fatalf("registry has %d connections, want 5", reg.Len())
	}

	id := ConnectionID("hall", "out")
	c, module, ok := reg.Lookup(id)
	if !ok {
		t.Fatal("hall/out not registered")
	}
	if module != "hall" || c.Name != "out" || c.Category != "B" {
		t.Errorf("Lookup = %+v in %q", c, module)
	}
	if got := reg.Connections("start"); len(got) != 2 || got[0].Name != "east" {
		t.Errorf("start connections = %+v, want east first", got)
	}
	if _, _, ok := reg.Lookup(uuid.New()); ok {
		t.Error("unknown id resolved")
	}
}

func TestConnectionIDStable(t *testing.T) {
	if ConnectionID("a", "b") != ConnectionID("a", "b") {
		t.Error("ConnectionID is not stable")
	}
	if ConnectionID("a", "b") == ConnectionID("ab", "") {
		t.Error("ConnectionID must separate module and connection names")
	}
}
