// Package cart implements the local-first staging area of a shopping trip.
// Items accumulate in durable local storage while the user shops; nothing
// touches the network until the explicit checkout boundary, when the whole
// draft is committed to the server as one trip and then discarded.
package cart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"feira/internal/core"
)

var ErrIndexOutOfRange = errors.New("item index out of range")

// State is the persisted draft: one active cart at a time, stored under a
// fixed key (the equivalent of the browser's currentShoppingItems /
// currentShoppingStore entries).
type State struct {
	ID    string            `json:"id"`
	Store string            `json:"store"`
	Items []core.StagedItem `json:"items"`
}

// Store persists the draft between sessions. Implementations must be
// local and synchronous; the staging workflow never waits on a network.
type Store interface {
	Load() (State, bool, error)
	Save(State) error
	Clear() error
}

// Edit carries raw field values for an in-place item update. Price and
// quantity arrive as strings from user input and are coerced to numeric
// here, mirroring how the draft is edited interactively.
type Edit struct {
	Name     string
	Price    string
	Quantity string
}

// Checkout is the immutable snapshot handed to the commit step.
type Checkout struct {
	Store string
	Items []core.StagedItem
}

// Cart is the mutable draft. All operations persist immediately so the
// draft survives a restart, like localStorage survives a page reload.
type Cart struct {
	store Store
	state State
}

// Open loads the current draft if one exists, otherwise starts empty.
func Open(store Store) (*Cart, error) {
	state, ok, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !ok {
		state = State{ID: uuid.New().String()}
	}
	return &Cart{store: store, state: state}, nil
}

// Start discards any staged items and begins a fresh trip with no store
// label.
func (c *Cart) Start() error {
	c.state = State{ID: uuid.New().String()}
	return c.save()
}

// AddItem validates and appends an item to the end of the sequence.
func (c *Cart) AddItem(item core.StagedItem) error {
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if err := item.Validate(); err != nil {
		return err
	}
	c.state.Items = append(c.state.Items, item)
	return c.save()
}

// UpdateItem replaces the item at index with the edited fields. Blank
// fields keep their current value.
func (c *Cart) UpdateItem(index int, edit Edit) error {
	if index < 0 || index >= len(c.state.Items) {
		return ErrIndexOutOfRange
	}
	item := c.state.Items[index]

	if name := strings.TrimSpace(edit.Name); name != "" {
		item.Name = name
	}
	if edit.Price != "" {
		cents, err := core.ParseDecimalToCents(edit.Price)
		if err != nil {
			return err
		}
		item.Price = core.Money{Cents: cents}
	}
	if edit.Quantity != "" {
		qty, err := strconv.ParseInt(strings.TrimSpace(edit.Quantity), 10, 64)
		if err != nil || qty < 1 {
			return core.ErrInvalidQuantity
		}
		item.Quantity = qty
	}

	if err := item.Validate(); err != nil {
		return err
	}
	c.state.Items[index] = item
	return c.save()
}

// RemoveItem deletes the item at index, preserving the order of the rest.
func (c *Cart) RemoveItem(index int) error {
	if index < 0 || index >= len(c.state.Items) {
		return ErrIndexOutOfRange
	}
	c.state.Items = append(c.state.Items[:index], c.state.Items[index+1:]...)
	return c.save()
}

// SetStore attaches or overwrites the trip's store label.
func (c *Cart) SetStore(name string) error {
	c.state.Store = strings.TrimSpace(name)
	return c.save()
}

// Items returns a copy of the staged sequence.
func (c *Cart) Items() []core.StagedItem {
	items := make([]core.StagedItem, len(c.state.Items))
	copy(items, c.state.Items)
	return items
}

// StoreName returns the trip's store label.
func (c *Cart) StoreName() string {
	return c.state.Store
}

// Total sums price*quantity over the staged items.
func (c *Cart) Total() core.Money {
	var cents int64
	for _, it := range c.state.Items {
		cents += it.Price.Cents * it.Quantity
	}
	return core.Money{Cents: cents}
}

// Checkout validates the finalize preconditions and returns a snapshot of
// the draft. The draft itself stays intact until Discard, so a failed
// commit loses nothing.
func (c *Cart) Checkout() (Checkout, error) {
	if len(c.state.Items) == 0 {
		return Checkout{}, core.ErrEmptyCart
	}
	if strings.TrimSpace(c.state.Store) == "" {
		return Checkout{}, core.ErrEmptyStore
	}
	items := make([]core.StagedItem, len(c.state.Items))
	copy(items, c.state.Items)
	return Checkout{Store: c.state.Store, Items: items}, nil
}

// Discard drops the draft after a successful commit (or abandonment).
func (c *Cart) Discard() error {
	c.state = State{ID: uuid.New().String()}
	return c.store.Clear()
}

func (c *Cart) save() error {
	if err := c.store.Save(c.state); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
