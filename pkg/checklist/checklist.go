// Package checklist persists the client readiness checklist a user
// works through before handing a device over for remote unlock.
package checklist

import (
	"sync"

	"unlockdesk/pkg/store"
)

// Item identifies one readiness check.
type Item string

const (
	ItemInternet Item = "internet"
	ItemPower    Item = "power"
	ItemAccess   Item = "access"
	ItemBackup   Item = "backup"
)

// Items is the canonical order the checks are presented in.
var Items = []Item{ItemInternet, ItemPower, ItemAccess, ItemBackup}

// Labels maps each item to its display text.
var Labels = map[Item]string{
	ItemInternet: "Устройство подключено к интернету",
	ItemPower:    "Устройство заряжено или на зарядке",
	ItemAccess:   "Есть доступ к устройству на время работ",
	ItemBackup:   "Сделана резервная копия данных",
}

// Checklist holds the per-user checked state, persisted to the local
// store under a stable key so state survives restarts.
type Checklist struct {
	mu      sync.Mutex
	st      *store.Store
	checked map[Item]bool
}

// Load reads persisted state. A missing record yields an empty
// checklist; the store may be nil for in-memory use.
func Load(st *store.Store) (*Checklist, error) {
	c := &Checklist{st: st, checked: make(map[Item]bool)}
	if st == nil {
		return c, nil
	}
	var saved map[Item]bool
	ok, err := st.GetJSON(store.KeyChecklist, &saved)
	if err != nil {
		return nil, err
	}
	if ok {
		for _, it := range Items {
			if saved[it] {
				c.checked[it] = true
			}
		}
	}
	return c, nil
}

// Set marks one item checked or unchecked and persists the change.
// Unknown items are ignored.
func (c *Checklist) Set(item Item, done bool) error {
	if _, known := Labels[item]; !known {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if done {
		c.checked[item] = true
	} else {
		delete(c.checked, item)
	}
	return c.persistLocked()
}

// Checked reports one item's state.
func (c *Checklist) Checked(item Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked[item]
}

// Complete reports whether every item is checked.
func (c *Checklist) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range Items {
		if !c.checked[it] {
			return false
		}
	}
	return true
}

// Remaining lists unchecked items in presentation order.
func (c *Checklist) Remaining() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Item
	for _, it := range Items {
		if !c.checked[it] {
			out = append(out, it)
		}
	}
	return out
}

// Reset clears all items, for when a new appointment starts.
func (c *Checklist) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = make(map[Item]bool)
	if c.st == nil {
		return nil
	}
	return c.st.Delete(store.KeyChecklist)
}

func (c *Checklist) persistLocked() error {
	if c.st == nil {
		return nil
	}
	return c.st.SetJSON(store.KeyChecklist, c.checked)
}
