package checklist

import (
	"testing"

	"unlockdesk/pkg/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestChecklistMemoryOnly(t *testing.T) {
	c, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Complete() {
		t.Fatal("fresh checklist reports complete")
	}
	if got := c.Remaining(); len(got) != len(Items) {
		t.Fatalf("Remaining = %v", got)
	}

	for _, it := range Items {
		if err := c.Set(it, true); err != nil {
			t.Fatalf("Set(%s): %v", it, err)
		}
	}
	if !c.Complete() {
		t.Fatal("all items checked but Complete is false")
	}
	if got := c.Remaining(); got != nil {
		t.Fatalf("Remaining = %v, want none", got)
	}

	if err := c.Set(ItemBackup, false); err != nil {
		t.Fatalf("uncheck: %v", err)
	}
	if c.Checked(ItemBackup) {
		t.Fatal("unchecked item still reported checked")
	}
	if got := c.Remaining(); len(got) != 1 || got[0] != ItemBackup {
		t.Fatalf("Remaining = %v", got)
	}
}

func TestChecklistUnknownItemIgnored(t *testing.T) {
	c, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Set(Item("wifi_password"), true); err != nil {
		t.Fatalf("Set unknown: %v", err)
	}
	if c.Checked(Item("wifi_password")) {
		t.Fatal("unknown item was recorded")
	}
}

func TestChecklistPersistence(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	c, err := Load(st)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Set(ItemInternet, true); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ItemPower, true); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st2, err := store.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	c2, err := Load(st2)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !c2.Checked(ItemInternet) || !c2.Checked(ItemPower) {
		t.Fatal("checked items did not survive a restart")
	}
	if c2.Checked(ItemAccess) || c2.Checked(ItemBackup) {
		t.Fatal("unchecked items came back checked")
	}
}

func TestChecklistReset(t *testing.T) {
	st := openTestStore(t)
	c, err := Load(st)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, it := range Items {
		if err := c.Set(it, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if c.Complete() {
		t.Fatal("Complete after Reset")
	}

	c2, err := Load(st)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := c2.Remaining(); len(got) != len(Items) {
		t.Fatalf("persisted state survived Reset: remaining %v", got)
	}
}

func TestLabelsCoverAllItems(t *testing.T) {
	for _, it := range Items {
		if Labels[it] == "" {
			t.Errorf("item %s has no label", it)
		}
	}
}
