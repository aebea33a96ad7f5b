package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/easydrink/internal/client/models"
	"github.com/dmitrijs2005/easydrink/internal/common"
	"github.com/dmitrijs2005/easydrink/internal/logging"
)

const favoritesKeyPrefix = "favorites:"

// KeyValueStore holds one favorites payload per key. Get returns (nil, nil)
// for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// UserSource yields the signed-in user, or nil.
type UserSource interface {
	CurrentUser() *models.User
}

// FavoritesService keeps each user's saved recipes under
// "favorites:<user id>" as a JSON array in insertion order.
type FavoritesService struct {
	store KeyValueStore
	users UserSource
	log   logging.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewFavoritesService(store KeyValueStore, users UserSource, log logging.Logger) *FavoritesService {
	if log == nil {
		log = logging.Nop()
	}
	return &FavoritesService{store: store, users: users, log: log, locks: make(map[string]*sync.Mutex)}
}

func favoritesKey(userID string) string {
	return favoritesKeyPrefix + userID
}

func (f *FavoritesService) currentKey() (string, error) {
	u := f.users.CurrentUser()
	if u == nil {
		return "", common.ErrNotLoggedIn
	}
	return favoritesKey(u.ID), nil
}

// lock serializes read-modify-write cycles on key.
func (f *FavoritesService) lock(key string) func() {
	f.locksMu.Lock()
	m, ok := f.locks[key]
	if !ok {
		m = &sync.Mutex{}
		f.locks[key] = m
	}
	f.locksMu.Unlock()

	m.Lock()
	return m.Unlock
}

func (f *FavoritesService) load(ctx context.Context, key string) ([]models.Drink, error) {
	raw, err := f.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	if len(raw) == 0 {
		return []models.Drink{}, nil
	}

	var drinks []models.Drink
	if err := json.Unmarshal(raw, &drinks); err != nil {
		return nil, fmt.Errorf("parse favorites: %w", err)
	}
	if drinks == nil {
		drinks = []models.Drink{}
	}
	return drinks, nil
}

func (f *FavoritesService) save(ctx context.Context, key string, drinks []models.Drink) error {
	raw, err := json.Marshal(drinks)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := f.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	return nil
}

// Favorites returns the saved recipes in storage order. The slice is never
// nil; on a read or parse failure it is empty and the failure is returned
// alongside so callers can tell it from "nothing saved".
func (f *FavoritesService) Favorites(ctx context.Context) ([]models.Drink, error) {
	key, err := f.currentKey()
	if err != nil {
		return []models.Drink{}, err
	}

	drinks, err := f.load(ctx, key)
	if err != nil {
		f.log.Warn(ctx, "favorites unavailable", "key", key, "error", err)
		return []models.Drink{}, err
	}
	return drinks, nil
}

// Add saves drink unless a record with the same IDDrink exists.
func (f *FavoritesService) Add(ctx context.Context, drink models.Drink) error {
	key, err := f.currentKey()
	if err != nil {
		return err
	}
	defer f.lock(key)()

	drinks, err := f.load(ctx, key)
	if err != nil {
		return err
	}
	for _, d := range drinks {
		if d.IDDrink == drink.IDDrink {
			return nil
		}
	}

	if err := f.save(ctx, key, append(drinks, drink)); err != nil {
		return err
	}
	f.log.Debug(ctx, "favorite added", "key", key, "drink", drink.IDDrink)
	return nil
}

// Remove deletes every record with idDrink. It is a no-op when there is none.
func (f *FavoritesService) Remove(ctx context.Context, idDrink string) error {
	key, err := f.currentKey()
	if err != nil {
		return err
	}
	defer f.lock(key)()

	drinks, err := f.load(ctx, key)
	if err != nil {
		return err
	}

	kept := drinks[:0]
	for _, d := range drinks {
		if d.IDDrink != idDrink {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(drinks) {
		return nil
	}

	if err := f.save(ctx, key, kept); err != nil {
		return err
	}
	f.log.Debug(ctx, "favorite removed", "key", key, "drink", idDrink)
	return nil
}

// IsFavorite reads through Favorites.
func (f *FavoritesService) IsFavorite(ctx context.Context, idDrink string) (bool, error) {
	drinks, err := f.Favorites(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range drinks {
		if d.IDDrink == idDrink {
			return true, nil
		}
	}
	return false, nil
}
