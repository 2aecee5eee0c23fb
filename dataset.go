package visux

import (
	"encoding/json"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"
)

var DatasetKeyPrefix = `datasets:`

// Dataset is column-oriented: feature name to the values of every row.
type Dataset map[string][]interface{}

func (self Dataset) Has(feature string) bool {
	_, ok := self[feature]
	return ok
}

// RecordSet is the row-oriented shape datasets arrive in.
type RecordSet struct {
	Features []string                 `json:"features"`
	Records  []map[string]interface{} `json:"records"`
}

func (self *RecordSet) Validate() error {
	if self == nil {
		return errors.Wrap(ErrValidation, `dataset is missing`)
	} else if self.Features == nil {
		return errors.Wrap(ErrValidation, `dataset has no features`)
	} else if self.Records == nil {
		return errors.Wrap(ErrValidation, `dataset has no records`)
	}

	return nil
}

// Columns transposes the records into a Dataset, one pass per feature.
// Records lacking a feature contribute nil for it.
func (self *RecordSet) Columns() Dataset {
	dataset := make(Dataset)

	for _, feature := range self.Features {
		column := make([]interface{}, len(self.Records))

		for i, record := range self.Records {
			column[i] = record[feature]
		}

		dataset[feature] = column
	}

	return dataset
}

// DatasetStore persists RecordSets by id.
type DatasetStore struct {
	filename string
	db       *buntdb.DB
}

func OpenDatasetStore(filename string) (*DatasetStore, error) {
	out := &DatasetStore{
		filename: filename,
	}

	if conn, err := buntdb.Open(out.filename); err == nil {
		out.db = conn
	} else {
		return nil, errors.Wrapf(err, "open dataset store %q", filename)
	}

	return out, nil
}

func datasetKey(id string) string {
	return DatasetKeyPrefix + id
}

func (self *DatasetStore) Put(id string, records *RecordSet) error {
	if id == `` {
		return errors.Wrap(ErrValidation, `dataset id is empty`)
	}

	if err := records.Validate(); err != nil {
		return err
	}

	if data, err := json.Marshal(records); err == nil {
		return self.db.Update(func(tx *buntdb.Tx) error {
			_, _, err := tx.Set(datasetKey(id), string(data), nil)
			return err
		})
	} else {
		return err
	}
}

func (self *DatasetStore) Get(id string) (*RecordSet, error) {
	var records RecordSet

	if err := self.db.View(func(tx *buntdb.Tx) error {
		if value, err := tx.Get(datasetKey(id)); err == nil {
			return json.Unmarshal([]byte(value), &records)
		} else if err == buntdb.ErrNotFound {
			return errors.Wrapf(ErrNotFound, "dataset %q", id)
		} else {
			return err
		}
	}); err != nil {
		return nil, err
	}

	return &records, nil
}

// GetNames returns the ids of stored datasets matching the given glob.
func (self *DatasetStore) GetNames(pattern string) ([]string, error) {
	if pattern == `` {
		pattern = `**`
	}

	if matcher, err := glob.Compile(pattern, '.'); err == nil {
		names := make([]string, 0)

		if err := self.db.View(func(tx *buntdb.Tx) error {
			return tx.AscendKeys(DatasetKeyPrefix+`*`, func(key, value string) bool {
				if name := strings.TrimPrefix(key, DatasetKeyPrefix); matcher.Match(name) {
					names = append(names, name)
				}

				return true
			})
		}); err != nil {
			return nil, err
		}

		return names, nil
	} else {
		return nil, errors.Wrapf(ErrValidation, "bad pattern %q: %v", pattern, err)
	}
}

// Remove deletes every dataset matching any of the given patterns and
// returns how many were removed.
func (self *DatasetStore) Remove(patterns ...string) (int, error) {
	keys := make([]string, 0)

	for _, pattern := range patterns {
		if names, err := self.GetNames(pattern); err == nil {
			for _, name := range names {
				keys = append(keys, datasetKey(name))
			}
		} else {
			return 0, err
		}
	}

	removed := 0

	err := self.db.Update(func(tx *buntdb.Tx) error {
		for _, key := range keys {
			if _, err := tx.Delete(key); err == nil {
				removed += 1
			} else if err != buntdb.ErrNotFound {
				return err
			}
		}

		return nil
	})

	return removed, err
}

func (self *DatasetStore) Close() error {
	if self.db != nil {
		return self.db.Close()
	}

	return nil
}
