package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice is a list of strings stored as a JSON array in a text column.
type StringSlice []string

// Value implements driver.Valuer interface for database storage
func (ss StringSlice) Value() (driver.Value, error) {
	if ss == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(ss))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for database retrieval
func (ss *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*ss = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}

	if len(data) == 0 {
		*ss = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(ss))
}

// GormDataType returns the data type for GORM
func (StringSlice) GormDataType() string {
	return "text"
}

// MarshalJSON writes nil as [] so clients always receive an array.
func (ss StringSlice) MarshalJSON() ([]byte, error) {
	if ss == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(ss))
}

func (ss *StringSlice) UnmarshalJSON(data []byte) error {
	var slice []string
	if err := json.Unmarshal(data, &slice); err != nil {
		return err
	}
	*ss = StringSlice(slice)
	return nil
}
