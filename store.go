package msgshot

import (
	"github.com/coyove/bbolt"
)

var themeBucket = []byte("themes")

// ThemeStore persists per-guild theme choices. Unset guilds resolve to the
// light theme.
type ThemeStore struct {
	db *bbolt.DB
}

func OpenThemeStore(path string) (*ThemeStore, error) {
	db, err := bbolt.Open(path, 0644, &bbolt.Options{
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, err
	}
	return &ThemeStore{db: db}, nil
}

func (ts *ThemeStore) Close() error { return ts.db.Close() }

// GetTheme returns the stored theme for a guild, defaulting to ThemeLight
// when unset or unreadable.
func (ts *ThemeStore) GetTheme(guildID string) Theme {
	tx, err := ts.db.Begin(false)
	if err != nil {
		return ThemeLight
	}
	defer tx.Rollback()

	bk := tx.Bucket(themeBucket)
	if bk == nil {
		return ThemeLight
	}
	v := bk.Get([]byte(guildID))
	if len(v) != 1 || Theme(v[0]) > ThemeDark {
		return ThemeLight
	}
	return Theme(v[0])
}

func (ts *ThemeStore) SetTheme(guildID string, t Theme) error {
	if t > ThemeDark {
		return ErrInvalidTheme
	}
	tx, err := ts.db.Begin(true)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	bk, err := tx.CreateBucketIfNotExists(themeBucket)
	if err != nil {
		return err
	}
	if err := bk.Put([]byte(guildID), []byte{byte(t)}); err != nil {
		return err
	}
	return tx.Commit()
}
