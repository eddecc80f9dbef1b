package fxswap

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
)

//go:generate go run scripts/assets/codegen.go

// ErrUnknownAsset is returned when an asset id is absent from a registry
// or from a rate quote.
var ErrUnknownAsset = errors.New("unknown asset")

// Asset describes a value unit, such as a token or a currency, and the
// granularity of its atomic units.
// An amount of 1 corresponds to 10^decimals atomic units.
// Asset is immutable and designed to be safe for concurrent use by multiple
// goroutines.
type Asset struct {
	id       string
	decimals int
}

// NewAsset returns an asset with the given id and number of decimals.
//
// NewAsset returns an error if:
//   - the id is empty;
//   - the number of decimals is negative or greater than [Scale].
func NewAsset(id string, decimals int) (Asset, error) {
	if id == "" {
		return Asset{}, fmt.Errorf("asset id must not be empty")
	}
	if decimals < 0 || decimals > Scale {
		return Asset{}, fmt.Errorf("asset %v: decimals must be in range [0, %v], got %v", id, Scale, decimals)
	}
	return Asset{id: id, decimals: decimals}, nil
}

// MustNewAsset is like [NewAsset] but panics if the asset cannot be constructed.
// It simplifies safe initialization of global variables holding assets.
func MustNewAsset(id string, decimals int) Asset {
	a, err := NewAsset(id, decimals)
	if err != nil {
		panic(fmt.Sprintf("NewAsset(%q, %v) failed: %v", id, decimals, err))
	}
	return a
}

// ID returns the unique identifier of the asset.
func (a Asset) ID() string {
	return a.id
}

// Decimals returns the number of digits after the decimal point of the
// smallest representable amount of the asset.
func (a Asset) Decimals() int {
	return a.decimals
}

// ParseAmount converts a decimal string to an amount in atomic units.
// See also [ParseAtomic].
func (a Asset) ParseAmount(s string) (*big.Int, error) {
	amount, err := ParseAtomic(s, a.decimals)
	if err != nil {
		return nil, fmt.Errorf("asset %v: %w", a, err)
	}
	return amount, nil
}

// FormatAmount converts an amount in atomic units to a decimal string with
// the given number of digits after the decimal point.
// See also [FormatAtomicFixed].
func (a Asset) FormatAmount(amount *big.Int, digits int) string {
	return FormatAtomicFixed(amount, a.decimals, digits)
}

// String implements the [fmt.Stringer] interface and returns the asset id.
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (a Asset) String() string {
	return a.id
}

type assetJSON struct {
	ID       string `json:"id"`
	Decimals int    `json:"decimals"`
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
// See also constructor [NewAsset].
//
// [json.Unmarshaler]: https://pkg.go.dev/encoding/json#Unmarshaler
func (a *Asset) UnmarshalJSON(data []byte) error {
	var v assetJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshaling %T: %w", Asset{}, err)
	}
	b, err := NewAsset(v.ID, v.Decimals)
	if err != nil {
		return fmt.Errorf("unmarshaling %T: %w", Asset{}, err)
	}
	*a = b
	return nil
}

// MarshalJSON implements the [json.Marshaler] interface.
//
// [json.Marshaler]: https://pkg.go.dev/encoding/json#Marshaler
func (a Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal(assetJSON{ID: a.id, Decimals: a.decimals})
}

// Registry is a set of assets indexed by id.
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu     sync.RWMutex
	assets map[string]Asset
	ids    []string // insertion order
}

// NewRegistry returns a registry containing the given assets.
//
// NewRegistry returns an error if two assets share the same id.
func NewRegistry(assets ...Asset) (*Registry, error) {
	r := &Registry{assets: make(map[string]Asset, len(assets))}
	for _, a := range assets {
		if err := r.Add(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers an asset.
//
// Add returns an error if the asset is the zero value or its id is
// already registered.
func (r *Registry) Add(a Asset) error {
	if a.id == "" {
		return fmt.Errorf("registering %T: asset id must not be empty", a)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[a.id]; ok {
		return fmt.Errorf("registering asset %v: duplicate id", a)
	}
	r.assets[a.id] = a
	r.ids = append(r.ids, a.id)
	return nil
}

// Lookup returns the asset with the given id.
//
// Lookup returns an error wrapping [ErrUnknownAsset] if no such asset is registered.
func (r *Registry) Lookup(id string) (Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[id]
	if !ok {
		return Asset{}, fmt.Errorf("looking up %q: %w", id, ErrUnknownAsset)
	}
	return a, nil
}

// All returns the registered assets in registration order.
func (r *Registry) All() []Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Asset, 0, len(r.ids))
	for _, id := range r.ids {
		all = append(all, r.assets[id])
	}
	return all
}

// Len returns the number of registered assets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}
